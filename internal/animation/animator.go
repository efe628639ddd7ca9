package animation

import (
	"math"
	"sort"
)

type param struct {
	value    float64
	velocity float64
}

// Animator stores blend parameters. SetParameter damps each one toward its target with a
// critically damped spring whose smooth time is dampTime. It is owned by the frame loop and
// not safe for concurrent use.
type Animator struct {
	params map[string]*param
}

func NewAnimator() *Animator {
	return &Animator{params: make(map[string]*param)}
}

// SetParameter implements locomotion.AnimationSink. A dampTime or dt of zero or less
// assigns the value directly.
func (a *Animator) SetParameter(name string, value, dampTime, dt float64) {
	p, ok := a.params[name]
	if !ok {
		p = &param{}
		a.params[name] = p
	}
	if dampTime <= 0 || dt <= 0 {
		p.value = value
		p.velocity = 0
		return
	}
	p.value, p.velocity = SmoothDamp(p.value, value, p.velocity, dampTime, dt)
}

// Float returns the current value of a parameter, zero if it was never set.
func (a *Animator) Float(name string) float64 {
	if p, ok := a.params[name]; ok {
		return p.value
	}
	return 0
}

// Names lists the parameters in sorted order.
func (a *Animator) Names() []string {
	names := make([]string, 0, len(a.params))
	for name := range a.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the current values.
func (a *Animator) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(a.params))
	for name, p := range a.params {
		out[name] = p.value
	}
	return out
}

// SmoothDamp moves current toward target with a critically damped spring of the given
// smooth time and returns the new value and velocity. It never overshoots the target.
func SmoothDamp(current, target, velocity, smoothTime, dt float64) (float64, float64) {
	smoothTime = math.Max(smoothTime, 1e-4)
	omega := 2 / smoothTime
	x := omega * dt
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	temp := (velocity + omega*change) * dt
	velocity = (velocity - omega*temp) * decay
	out := target + (change+temp)*decay

	if (target-current > 0) == (out > target) {
		out = target
		velocity = (out - target) / dt
	}
	return out, velocity
}
