package physics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/go-gl/mathgl/mgl64"
)

const testTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" tiledversion="1.10.2" orientation="orthogonal" renderorder="right-down" width="4" height="4" tilewidth="16" tileheight="16" infinite="0" nextlayerid="5" nextobjectid="3">
 <tileset firstgid="1" name="blocks" tilewidth="16" tileheight="16" tilecount="2" columns="2">
  <tile id="1">
   <properties>
    <property name="height" type="float" value="2.5"/>
   </properties>
  </tile>
 </tileset>
 <layer id="1" name="floor" width="4" height="4">
  <data encoding="csv">
1,1,1,1,
1,1,1,1,
1,1,1,1,
1,1,1,1
</data>
 </layer>
 <layer id="2" name="walls" width="4" height="4">
  <data encoding="csv">
0,0,0,0,
0,0,0,2,
0,0,0,0,
0,0,0,0
</data>
 </layer>
 <objectgroup id="3" name="Boxes">
  <object id="1" x="0" y="32" width="16" height="32">
   <properties>
    <property name="height" type="float" value="0.5"/>
    <property name="layer" type="int" value="1"/>
    <property name="trigger" type="bool" value="true"/>
    <property name="script" value="tunables.gravity = -5"/>
   </properties>
  </object>
 </objectgroup>
 <objectgroup id="4" name="PlayerSpawn">
  <object id="2" x="24" y="24"/>
 </objectgroup>
</map>
`

func writeTMX(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yard.tmx")
	if err := os.WriteFile(path, []byte(testTMX), 0o644); err != nil {
		t.Fatalf("write tmx: %v", err)
	}
	return path
}

func TestLoadTiledLevel(t *testing.T) {
	path := writeTMX(t)

	l, err := LoadLevelFile(path)
	if err != nil {
		t.Fatalf("LoadLevelFile: %v", err)
	}
	if l.Name != "yard" {
		t.Fatalf("name = %q, want yard", l.Name)
	}
	if len(l.Boxes) != 18 {
		t.Fatalf("boxes = %d, want 18", len(l.Boxes))
	}
	if l.SpawnPoint() != (mgl64.Vec3{1.5, 0, 1.5}) {
		t.Fatalf("spawn = %v", l.SpawnPoint())
	}

	var wall, trigger *BoxSpec
	for i := range l.Boxes {
		b := &l.Boxes[i]
		switch {
		case b.Trigger:
			trigger = b
		case b.Min[1] == 0:
			wall = b
		}
	}
	if wall == nil || wall.Min != [3]float64{3, 0, 1} || wall.Max != [3]float64{4, 2.5, 2} {
		t.Fatalf("wall = %+v", wall)
	}
	if trigger == nil || trigger.Layer != 1 || trigger.Script == "" {
		t.Fatalf("trigger = %+v", trigger)
	}
	if trigger.Min != [3]float64{0, 0, 2} || trigger.Max != [3]float64{1, 0.5, 4} {
		t.Fatalf("trigger extent = %v..%v", trigger.Min, trigger.Max)
	}

	w, err := l.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !w.OverlapSphere(mgl64.Vec3{1.5, 0.14, 1.5}, 0.5, locomotion.LayerBit(0), locomotion.IgnoreTriggers) {
		t.Fatal("spawn is not grounded")
	}
}

func TestLoadTiledLevelMissing(t *testing.T) {
	if _, err := LoadTiledLevel(os.DirFS(t.TempDir()), "none.tmx"); err == nil {
		t.Fatal("expected error")
	}
}
