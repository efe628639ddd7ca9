package main

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/locomotion"
	"github.com/Versifine/stride/internal/physics"
	"github.com/Versifine/stride/internal/session"
	"github.com/go-gl/mathgl/mgl64"
)

const frame = 1.0 / 60.0

type memStore struct {
	items map[string][]byte
}

func (m *memStore) LoadItem(key string) ([]byte, error) {
	return m.items[key], nil
}

func (m *memStore) SaveItem(key string, data []byte) error {
	if m.items == nil {
		m.items = make(map[string][]byte)
	}
	m.items[key] = data
	return nil
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	level := physics.DefaultLevel()
	world, err := level.Build()
	if err != nil {
		t.Fatalf("build level: %v", err)
	}
	a, err := newApp("", config.Default(), level, world)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	return a
}

func stepFor(a *app, input locomotion.InputSnapshot, seconds float64) {
	for i := 0; i < int(seconds/frame); i++ {
		a.Step(input, frame)
	}
}

func TestAppWalkEmitsFootsteps(t *testing.T) {
	a := newTestApp(t)
	stepFor(a, locomotion.InputSnapshot{Move: mgl64.Vec2{0, 1}}, 1)

	st := a.Status()
	if st.Position.Z() < 2 {
		t.Fatalf("z = %v, want the body to walk forward", st.Position.Z())
	}
	if !st.Grounded {
		t.Fatal("body should stay grounded on the arena floor")
	}
	if len(a.audio.Cues()) == 0 || st.LastClip == "" {
		t.Fatalf("cues = %d, last clip %q, want footsteps", len(a.audio.Cues()), st.LastClip)
	}
	if last := a.telemetry.Last(); last.Z != st.Position.Z() || last.Speed != st.Speed {
		t.Fatalf("telemetry frame %+v out of date", last)
	}
}

func TestAppZoneAppliesScript(t *testing.T) {
	a := newTestApp(t)

	if err := a.Teleport(mgl64.Vec3{0, 0, 8}); err != nil {
		t.Fatalf("Teleport: %v", err)
	}
	a.Step(locomotion.InputSnapshot{}, frame)
	if got := a.Status().Zones; len(got) != 1 || got[0] != 0 {
		t.Fatalf("zones = %v, want [0]", got)
	}
	if got := a.ctrl.Tunables().MoveSpeed; got != 2 {
		t.Fatalf("move speed in mud = %v, want 2", got)
	}

	if err := a.Teleport(mgl64.Vec3{0, 0, 0}); err != nil {
		t.Fatalf("Teleport: %v", err)
	}
	a.Step(locomotion.InputSnapshot{}, frame)
	if got := a.ctrl.Tunables().MoveSpeed; got != 4 {
		t.Fatalf("move speed after mud = %v, want 4", got)
	}
}

func TestAppTeleportOutsideLevel(t *testing.T) {
	a := newTestApp(t)
	if err := a.Teleport(mgl64.Vec3{500, 0, 0}); err == nil {
		t.Fatal("expected error outside the level")
	}
}

func TestAppRespawnsFallenBody(t *testing.T) {
	a := newTestApp(t)
	a.body.Teleport(mgl64.Vec3{0, a.world.Bounds().Min.Y() - a.cfg.World.RespawnDepth - 5, 0})
	a.Step(locomotion.InputSnapshot{}, frame)

	if got := a.body.Position(); got != a.spawn {
		t.Fatalf("position = %v, want spawn %v", got, a.spawn)
	}
}

func TestAppReload(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("controller:\n  move_speed: 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	a.cfgPath = path

	if err := a.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := a.ctrl.Tunables().MoveSpeed; got != 5 {
		t.Fatalf("move speed = %v, want 5", got)
	}

	if err := os.WriteFile(path, []byte("controller:\n  move_speed: -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := a.Reload(); !errors.Is(err, config.ErrInvalidTunables) {
		t.Fatalf("Reload error = %v, want ErrInvalidTunables", err)
	}
	if got := a.ctrl.Tunables().MoveSpeed; got != 5 {
		t.Fatalf("rejected reload changed move speed to %v", got)
	}
}

func TestAppQueuedReloadKeepsLatest(t *testing.T) {
	a := newTestApp(t)
	first, second := config.Default(), config.Default()
	first.Controller.MoveSpeed = 1
	second.Controller.MoveSpeed = 3

	a.queueReload(first, nil)
	a.queueReload(second, nil)
	a.queueReload(nil, errors.New("bad yaml"))
	a.Step(locomotion.InputSnapshot{}, frame)

	if got := a.ctrl.Tunables().MoveSpeed; got != 3 {
		t.Fatalf("move speed = %v, want 3", got)
	}
}

func TestAppSession(t *testing.T) {
	a := newTestApp(t)
	if err := a.Save(); !errors.Is(err, errSessionDisabled) {
		t.Fatalf("Save without session = %v, want errSessionDisabled", err)
	}

	saved, err := json.Marshal(session.Snapshot{Level: "arena", X: 3, Y: 0, Z: 3, Yaw: 90, Pitch: 10})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	store := &memStore{items: map[string][]byte{"session": saved}}
	a.restoreSession(store, "arena")

	if got := a.body.Position(); got != (mgl64.Vec3{3, 0, 3}) {
		t.Fatalf("restored position = %v", got)
	}
	if math.Abs(a.body.Yaw()-90) > 1e-6 || a.ctrl.Pitch() != 10 {
		t.Fatalf("restored yaw=%v pitch=%v", a.body.Yaw(), a.ctrl.Pitch())
	}

	a.body.Teleport(mgl64.Vec3{-2, 0, 1})
	a.close()

	var snap session.Snapshot
	if err := json.Unmarshal(store.items["session"], &snap); err != nil {
		t.Fatalf("unmarshal saved session: %v", err)
	}
	if snap.Level != "arena" || snap.X != -2 || snap.Z != 1 {
		t.Fatalf("saved snapshot = %+v", snap)
	}
}
