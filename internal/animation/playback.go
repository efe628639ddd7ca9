package animation

import (
	"math"

	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/locomotion"
)

// Motions of the locomotion blend tree.
const (
	MotionWalk = "walk"
	MotionRun  = "run"
)

type Publisher interface {
	Publish(eventName string, evt any)
}

// PlaybackConfig describes the one-dimensional blend tree driven by the blend magnitude:
// idle at 0, walk at 1 and run at RunThreshold.
type PlaybackConfig struct {
	// StrideLength is the distance covered by one step, in world units.
	StrideLength float64
	// WalkSpeed is the world speed that maps to a blend magnitude of 1.
	WalkSpeed    float64
	RunThreshold float64
}

func DefaultPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{StrideLength: 0.8, WalkSpeed: 4, RunThreshold: 1.5}
}

// Playback advances a synchronized walk/run cycle from the animator's blend parameters and
// publishes a footstep for each motion at every footfall. Footfalls are at phase 0 and 0.5
// of a cycle; the event weight is the motion's blend weight.
type Playback struct {
	cfg    PlaybackConfig
	anim   *Animator
	events Publisher
	phase  float64
}

func NewPlayback(anim *Animator, events Publisher, cfg PlaybackConfig) *Playback {
	return &Playback{cfg: cfg, anim: anim, events: events}
}

func (p *Playback) SetConfig(cfg PlaybackConfig) {
	p.cfg = cfg
}

func (p *Playback) Phase() float64 {
	return p.phase
}

// Magnitude is the length of the damped (VelocityZ, VelocityY) blend vector.
func (p *Playback) Magnitude() float64 {
	return math.Hypot(p.anim.Float(locomotion.ParamVelocityZ), p.anim.Float(locomotion.ParamVelocityY))
}

// Weights returns the walk and run blend weights for a blend magnitude.
func (p *Playback) Weights(magnitude float64) (walk, run float64) {
	run1 := p.cfg.RunThreshold
	switch {
	case magnitude <= 0:
		return 0, 0
	case magnitude <= 1:
		return magnitude, 0
	case run1 <= 1 || magnitude >= run1:
		return 0, 1
	default:
		t := (magnitude - 1) / (run1 - 1)
		return 1 - t, t
	}
}

// Advance moves the cycle forward by dt and returns the number of footfalls crossed.
func (p *Playback) Advance(dt float64) int {
	if dt <= 0 || p.cfg.StrideLength <= 0 {
		return 0
	}
	magnitude := p.Magnitude()
	speed := magnitude * p.cfg.WalkSpeed
	if speed <= 0 {
		return 0
	}

	before := p.phase * 2
	p.phase += dt * speed / (2 * p.cfg.StrideLength)
	after := p.phase * 2
	p.phase -= math.Floor(p.phase)

	falls := int(math.Floor(after) - math.Floor(before))
	if falls <= 0 {
		return 0
	}
	walk, run := p.Weights(magnitude)
	for i := 0; i < falls; i++ {
		p.publish(MotionWalk, walk)
		p.publish(MotionRun, run)
	}
	return falls
}

func (p *Playback) publish(motion string, weight float64) {
	if weight <= 0 || p.events == nil {
		return
	}
	p.events.Publish(event.EventFootstep, event.FootstepEvent{Motion: motion, Weight: weight})
}
