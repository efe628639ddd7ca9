package physics

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// BoxSpec describes one collider. Script is only meaningful on triggers: it runs when a
// body enters the volume.
type BoxSpec struct {
	Min     [3]float64 `yaml:"min"`
	Max     [3]float64 `yaml:"max"`
	Layer   int        `yaml:"layer"`
	Trigger bool       `yaml:"trigger"`
	Script  string     `yaml:"script,omitempty"`
}

func (s BoxSpec) AABB() AABB {
	return NewAABB(mgl64.Vec3(s.Min), mgl64.Vec3(s.Max))
}

// Level is the on-disk description of a world.
type Level struct {
	Name     string     `yaml:"name"`
	CellSize int        `yaml:"cell_size"`
	Bounds   *BoxSpec   `yaml:"bounds,omitempty"`
	Spawn    [3]float64 `yaml:"spawn"`
	Boxes    []BoxSpec  `yaml:"boxes"`
}

func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	level, err := ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return level, nil
}

func ParseLevel(data []byte) (*Level, error) {
	var level Level
	if err := yaml.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return &level, nil
}

func (l *Level) Validate() error {
	if l.CellSize < 0 {
		return fmt.Errorf("cell_size must not be negative, got %d", l.CellSize)
	}
	if len(l.Boxes) == 0 {
		return errors.New("level has no boxes")
	}
	for i, b := range l.Boxes {
		if b.Layer < 0 || b.Layer > 31 {
			return fmt.Errorf("box %d: layer %d out of range [0, 31]", i, b.Layer)
		}
		if b.Script != "" && !b.Trigger {
			return fmt.Errorf("box %d: script on a solid box", i)
		}
		size := b.AABB().Size()
		if size.X() <= 0 || size.Y() <= 0 || size.Z() <= 0 {
			return fmt.Errorf("box %d: degenerate extent %v", i, size)
		}
	}
	return nil
}

// AddBlock appends a unit cube whose minimum corner is at (x, y, z).
func (l *Level) AddBlock(x, y, z, layer int) {
	l.Boxes = append(l.Boxes, BoxSpec{
		Min:   [3]float64{float64(x), float64(y), float64(z)},
		Max:   [3]float64{float64(x + 1), float64(y + 1), float64(z + 1)},
		Layer: layer,
	})
}

// AddFloor appends one slab covering blocks minX..maxX and minZ..maxZ at height y.
func (l *Level) AddFloor(minX, maxX, minZ, maxZ, y, layer int) {
	l.Boxes = append(l.Boxes, BoxSpec{
		Min:   [3]float64{float64(minX), float64(y), float64(minZ)},
		Max:   [3]float64{float64(maxX + 1), float64(y + 1), float64(maxZ + 1)},
		Layer: layer,
	})
}

func (l *Level) SpawnPoint() mgl64.Vec3 {
	return mgl64.Vec3(l.Spawn)
}

// WorldBounds is the explicit bounds, or the union of all boxes and the spawn point padded
// by a margin.
func (l *Level) WorldBounds() AABB {
	if l.Bounds != nil {
		return l.Bounds.AABB()
	}
	spawn := l.SpawnPoint()
	bounds := AABB{Min: spawn, Max: spawn}
	for _, b := range l.Boxes {
		bounds = bounds.Union(b.AABB())
	}
	return bounds.Expand(levelMargin)
}

// Build creates the world holding every box of the level.
func (l *Level) Build() (*World, error) {
	w := NewWorld(l.WorldBounds(), l.CellSize)
	for i, b := range l.Boxes {
		if _, err := w.Add(Collider{Box: b.AABB(), Layer: b.Layer, Trigger: b.Trigger, Script: b.Script}); err != nil {
			return nil, fmt.Errorf("box %d: %w", i, err)
		}
	}
	return w, nil
}

// mudScript halves walk and sprint speed inside the arena's trigger pad.
const mudScript = `tunables.move_speed = tunables.move_speed / 2
tunables.sprint_speed = tunables.sprint_speed / 2`

// DefaultLevel is a walled 32x32 arena with a staircase, a raised platform and a mud pad
// trigger on layer 1.
func DefaultLevel() *Level {
	l := &Level{Name: "arena", CellSize: DefaultCellSize, Spawn: [3]float64{0, 0, 0}}
	l.AddFloor(-16, 15, -16, 15, -1, 0)

	l.Boxes = append(l.Boxes,
		BoxSpec{Min: [3]float64{-16, 0, -17}, Max: [3]float64{16, 4, -16}},
		BoxSpec{Min: [3]float64{-16, 0, 16}, Max: [3]float64{16, 4, 17}},
		BoxSpec{Min: [3]float64{-17, 0, -16}, Max: [3]float64{-16, 4, 16}},
		BoxSpec{Min: [3]float64{16, 0, -16}, Max: [3]float64{17, 4, 16}},
	)

	for step := 0; step < 4; step++ {
		l.Boxes = append(l.Boxes, BoxSpec{
			Min: [3]float64{6, 0, float64(-4 + step)},
			Max: [3]float64{10, 0.25 * float64(step+1), float64(-3 + step)},
		})
	}
	l.Boxes = append(l.Boxes, BoxSpec{Min: [3]float64{6, 0, 0}, Max: [3]float64{10, 1, 6}})

	for x := -10; x <= -8; x++ {
		l.AddBlock(x, 0, 8, 0)
	}
	l.AddBlock(-4, 0, -8, 0)
	l.AddBlock(-4, 1, -8, 0)

	l.Boxes = append(l.Boxes, BoxSpec{
		Min:     [3]float64{-2, 0, 6},
		Max:     [3]float64{2, 0.5, 10},
		Layer:   1,
		Trigger: true,
		Script:  mudScript,
	})
	return l
}
