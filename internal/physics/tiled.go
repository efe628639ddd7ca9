package physics

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lafriks/go-tiled"
)

// Tiled maps are read top-down: map X is world X, map Y is world Z, one tile per world unit.
const (
	tiledFloorLayer  = "floor"
	tiledWallLayer   = "walls"
	tiledBoxGroup    = "Boxes"
	tiledSpawnGroup  = "PlayerSpawn"
	tiledWallHeight  = 3.0
	tiledFloorHeight = 1.0
)

// LoadLevelFile loads a yaml level, or a Tiled map when the extension is .tmx.
func LoadLevelFile(path string) (*Level, error) {
	if strings.EqualFold(filepath.Ext(path), ".tmx") {
		return LoadTiledLevel(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	}
	return LoadLevel(path)
}

// LoadTiledLevel converts a Tiled map into a level. Tiles on the "floor" layer become one
// unit slabs below y = 0; tiles on the "walls" layer become columns whose height comes
// from the tile's "height" property. Rectangles in the "Boxes" object group carry "base",
// "height", "layer" and "trigger" properties. The first "PlayerSpawn" object is the spawn.
func LoadTiledLevel(fsys fs.FS, tmxPath string) (*Level, error) {
	m, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return nil, fmt.Errorf("TMX %s: invalid tile size %dx%d", tmxPath, m.TileWidth, m.TileHeight)
	}

	level := &Level{
		Name:     strings.TrimSuffix(filepath.Base(tmxPath), filepath.Ext(tmxPath)),
		CellSize: DefaultCellSize,
	}

	for _, layer := range m.Layers {
		switch layer.Name {
		case tiledFloorLayer:
			eachTile(m, layer, func(x, z int, _ *tiled.LayerTile) {
				level.Boxes = append(level.Boxes, BoxSpec{
					Min: [3]float64{float64(x), -tiledFloorHeight, float64(z)},
					Max: [3]float64{float64(x + 1), 0, float64(z + 1)},
				})
			})
		case tiledWallLayer:
			eachTile(m, layer, func(x, z int, tile *tiled.LayerTile) {
				height := tiledWallHeight
				if tile.Tileset != nil {
					if tt, err := tile.Tileset.GetTilesetTile(tile.ID); err == nil {
						if h := tt.Properties.GetFloat("height"); h > 0 {
							height = h
						}
					}
				}
				level.Boxes = append(level.Boxes, BoxSpec{
					Min: [3]float64{float64(x), 0, float64(z)},
					Max: [3]float64{float64(x + 1), height, float64(z + 1)},
				})
			})
		}
	}

	tw := float64(m.TileWidth)
	th := float64(m.TileHeight)
	spawnSet := false
	for _, og := range m.ObjectGroups {
		switch og.Name {
		case tiledBoxGroup:
			for _, o := range og.Objects {
				base := o.Properties.GetFloat("base")
				height := o.Properties.GetFloat("height")
				if height <= 0 {
					height = 1
				}
				level.Boxes = append(level.Boxes, BoxSpec{
					Min:     [3]float64{o.X / tw, base, o.Y / th},
					Max:     [3]float64{(o.X + o.Width) / tw, base + height, (o.Y + o.Height) / th},
					Layer:   o.Properties.GetInt("layer"),
					Trigger: o.Properties.GetBool("trigger"),
					Script:  o.Properties.GetString("script"),
				})
			}
		case tiledSpawnGroup:
			if spawnSet || len(og.Objects) == 0 {
				continue
			}
			o := og.Objects[0]
			level.Spawn = [3]float64{o.X / tw, o.Properties.GetFloat("y"), o.Y / th}
			spawnSet = true
		}
	}

	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("TMX %s: %w", tmxPath, err)
	}
	return level, nil
}

func eachTile(m *tiled.Map, layer *tiled.Layer, fn func(x, z int, tile *tiled.LayerTile)) {
	for z := 0; z < m.Height; z++ {
		for x := 0; x < m.Width; x++ {
			i := z*m.Width + x
			if i >= len(layer.Tiles) {
				return
			}
			tile := layer.Tiles[i]
			if tile == nil || tile.IsNil() {
				continue
			}
			fn(x, z, tile)
		}
	}
}
