package animation

import (
	"math"
	"testing"

	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/locomotion"
	"github.com/go-gl/mathgl/mgl64"
)

type recordingEvents struct {
	steps []event.FootstepEvent
}

func (r *recordingEvents) Publish(name string, evt any) {
	if name == event.EventFootstep {
		r.steps = append(r.steps, evt.(event.FootstepEvent))
	}
}

func TestSmoothDampConvergesWithoutOvershoot(t *testing.T) {
	value, velocity := 0.0, 0.0
	for i := 0; i < 120; i++ {
		value, velocity = SmoothDamp(value, 1, velocity, 0.1, 1.0/60.0)
		if value > 1 {
			t.Fatalf("frame %d: overshoot %v", i, value)
		}
	}
	if math.Abs(value-1) > 1e-4 {
		t.Fatalf("value = %v, want ~1", value)
	}
}

func TestSmoothDampHalfwayAfterSmoothTime(t *testing.T) {
	value, velocity := 0.0, 0.0
	for i := 0; i < 60; i++ {
		value, velocity = SmoothDamp(value, 1, velocity, 1, 1.0/60.0)
	}
	// A critically damped spring covers 1-3e^-2 of a step in one smooth time.
	if value < 0.55 || value > 0.65 {
		t.Fatalf("value after one smooth time = %v, want ~0.59", value)
	}
}

func TestAnimatorSetParameter(t *testing.T) {
	a := NewAnimator()

	a.SetParameter("Snap", 2, 0, 1.0/60.0)
	if a.Float("Snap") != 2 {
		t.Fatalf("snap = %v, want 2", a.Float("Snap"))
	}

	a.SetParameter("Damped", 1, 0.1, 1.0/60.0)
	if v := a.Float("Damped"); v <= 0 || v >= 1 {
		t.Fatalf("damped = %v, want in (0, 1)", v)
	}

	if a.Float("Missing") != 0 {
		t.Fatal("missing parameter must read as zero")
	}
	names := a.Names()
	if len(names) != 2 || names[0] != "Damped" || names[1] != "Snap" {
		t.Fatalf("names = %v", names)
	}
	if snap := a.Snapshot(); snap["Snap"] != 2 || len(snap) != 2 {
		t.Fatalf("snapshot = %v", snap)
	}
}

func TestAnimatorAsLocomotionSink(t *testing.T) {
	a := NewAnimator()
	in := locomotion.InputSnapshot{Move: mgl64.Vec2{1, 0}}
	for i := 0; i < 120; i++ {
		locomotion.EmitAnimationParams(a, in, 6, 4, 0.1, 1.0/60.0)
	}
	if math.Abs(a.Float(locomotion.ParamVelocityZ)-1.5) > 1e-3 {
		t.Fatalf("VelocityZ = %v, want ~1.5", a.Float(locomotion.ParamVelocityZ))
	}
	if a.Float(locomotion.ParamVelocityY) != 0 {
		t.Fatalf("VelocityY = %v, want 0", a.Float(locomotion.ParamVelocityY))
	}
}

func TestPlaybackWeights(t *testing.T) {
	p := NewPlayback(NewAnimator(), nil, DefaultPlaybackConfig())
	tests := []struct {
		magnitude float64
		walk, run float64
	}{
		{0, 0, 0},
		{0.4, 0.4, 0},
		{1, 1, 0},
		{1.25, 0.5, 0.5},
		{1.5, 0, 1},
		{2, 0, 1},
	}
	for _, tt := range tests {
		walk, run := p.Weights(tt.magnitude)
		if math.Abs(walk-tt.walk) > 1e-12 || math.Abs(run-tt.run) > 1e-12 {
			t.Fatalf("Weights(%v) = (%v, %v), want (%v, %v)", tt.magnitude, walk, run, tt.walk, tt.run)
		}
	}
}

func TestPlaybackFootfallCadence(t *testing.T) {
	a := NewAnimator()
	a.SetParameter(locomotion.ParamVelocityY, 1, 0, 0)
	rec := &recordingEvents{}
	p := NewPlayback(a, rec, PlaybackConfig{StrideLength: 1, WalkSpeed: 4, RunThreshold: 1.5})

	total := 0
	for i := 0; i < 8; i++ {
		total += p.Advance(0.125)
	}

	// 4 units/s over 1 unit strides is 4 steps in one second.
	if total != 4 || len(rec.steps) != 4 {
		t.Fatalf("footfalls = %d, events = %d, want 4", total, len(rec.steps))
	}
	for _, s := range rec.steps {
		if s.Motion != MotionWalk || s.Weight != 1 {
			t.Fatalf("step = %+v", s)
		}
	}
}

func TestPlaybackSprintFiresRunOnly(t *testing.T) {
	a := NewAnimator()
	a.SetParameter(locomotion.ParamVelocityZ, 1.5, 0, 0)
	rec := &recordingEvents{}
	p := NewPlayback(a, rec, PlaybackConfig{StrideLength: 1, WalkSpeed: 4, RunThreshold: 1.5})

	p.Advance(0.5)

	if len(rec.steps) == 0 {
		t.Fatal("expected footsteps")
	}
	for _, s := range rec.steps {
		if s.Motion != MotionRun || s.Weight != 1 {
			t.Fatalf("step = %+v", s)
		}
	}
}

func TestPlaybackBlendFiresBothMotions(t *testing.T) {
	a := NewAnimator()
	a.SetParameter(locomotion.ParamVelocityY, 1.25, 0, 0)
	rec := &recordingEvents{}
	p := NewPlayback(a, rec, PlaybackConfig{StrideLength: 1, WalkSpeed: 4, RunThreshold: 1.5})

	if falls := p.Advance(0.2); falls != 1 {
		t.Fatalf("falls = %d, want 1", falls)
	}
	if len(rec.steps) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.steps))
	}
	if rec.steps[0].Weight != 0.5 || rec.steps[1].Weight != 0.5 {
		t.Fatalf("weights = %v, %v", rec.steps[0].Weight, rec.steps[1].Weight)
	}
}

func TestPlaybackIdle(t *testing.T) {
	rec := &recordingEvents{}
	p := NewPlayback(NewAnimator(), rec, DefaultPlaybackConfig())
	for i := 0; i < 100; i++ {
		p.Advance(1.0 / 60.0)
	}
	if len(rec.steps) != 0 || p.Phase() != 0 {
		t.Fatalf("idle produced %d steps, phase %v", len(rec.steps), p.Phase())
	}
}
