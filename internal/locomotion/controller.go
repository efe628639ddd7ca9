package locomotion

import (
	"log/slog"
	"math/rand/v2"

	"github.com/Versifine/stride/internal/event"
)

// Options carries the optional collaborators. Nil sinks discard their output.
type Options struct {
	Animation AnimationSink
	Audio     AudioSink
	Clips     []Clip
	Events    Publisher
	Rand      *rand.Rand
}

// Controller drives one Locomotion Body. Update runs once per frame before rendering and
// LateUpdate runs after every transform-affecting step of the same frame. A controller is
// not safe for concurrent use; the frame loop owns it.
type Controller struct {
	tun   Tunables
	state State

	body   Body
	query  SpatialQuery
	camera PitchTarget

	anim   AnimationSink
	audio  AudioSink
	clips  []Clip
	events Publisher
	rng    *rand.Rand

	airTime float64
}

// New attaches a controller to body. It panics when a required collaborator is missing.
func New(tun Tunables, body Body, query SpatialQuery, camera PitchTarget, opts Options) *Controller {
	if body == nil {
		panic("locomotion: nil body")
	}
	if query == nil {
		panic("locomotion: nil spatial query")
	}
	if camera == nil {
		panic("locomotion: nil camera")
	}

	c := &Controller{
		tun:    tun,
		state:  NewState(tun),
		body:   body,
		query:  query,
		camera: camera,
		anim:   opts.Animation,
		audio:  opts.Audio,
		clips:  append([]Clip(nil), opts.Clips...),
		events: opts.Events,
		rng:    opts.Rand,
	}
	if c.anim == nil {
		c.anim = discardAnimation{}
	}
	if c.audio == nil {
		c.audio = discardAudio{}
	}
	if c.events == nil {
		c.events = discardEvents{}
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Tunables() Tunables {
	return c.tun
}

// SetTunables replaces the configuration. State is kept as is.
func (c *Controller) SetTunables(tun Tunables) {
	c.tun = tun
}

func (c *Controller) SetClips(clips []Clip) {
	c.clips = append(c.clips[:0], clips...)
}

func (c *Controller) Pitch() float64 {
	return c.state.Pitch
}

// SetPitch aims the camera directly, clamped to the pitch limits.
func (c *Controller) SetPitch(degrees float64) {
	limits := PitchLimits{Min: c.tun.PitchMin, Max: c.tun.PitchMax}
	c.state.Pitch = limits.Clamp(degrees)
	c.camera.SetLocalRotation(CameraRotation(c.state.Pitch))
}

func (c *Controller) Body() Body {
	return c.body
}

// Update runs gravity, the ground probe, speed smoothing, the body move and the animation
// parameters, in that order.
func (c *Controller) Update(input InputSnapshot, dt float64) {
	prev := c.state

	// Gravity sees last frame's grounded flag. Probing first would reset the velocity on the
	// same frame the probe starts hitting and keep the body stuck to the surface.
	IntegrateGravity(&c.state, prev.Grounded, c.tun.Gravity, dt)
	TickFallTimeout(&c.state, prev.Grounded, c.tun.FallTimeout, dt)

	c.state.Grounded = IsGrounded(c.query, c.body.Position(), c.tun.GroundedOffset, c.tun.GroundedRadius, c.tun.GroundLayers)

	current := horizontalSpeed(c.body.Velocity())
	UpdateSpeed(&c.state, input, c.tun.MoveSpeed, c.tun.SprintSpeed, c.tun.SpeedChangeRate, current, dt)

	forward, right := Basis(c.body.Orientation())
	MoveBody(c.body, &c.state, input, forward, right, dt)

	EmitAnimationParams(c.anim, input, c.state.Speed, c.tun.MoveSpeed, c.tun.AnimationDampTime, dt)

	c.publishTransitions(prev, dt)
}

// LateUpdate applies the frame's look input.
func (c *Controller) LateUpdate(input InputSnapshot, dt float64) {
	limits := PitchLimits{Min: c.tun.PitchMin, Max: c.tun.PitchMax}
	UpdateLook(&c.state, input.LookDelta, c.tun.LookSensitivity, dt, limits, c.body, c.camera)
}

// Step runs a whole frame.
func (c *Controller) Step(input InputSnapshot, dt float64) {
	c.Update(input, dt)
	c.LateUpdate(input, dt)
}

// OnFootstep is called by animation playback at a footfall. It reports whether a cue was
// emitted.
func (c *Controller) OnFootstep(weight float64) bool {
	at := c.body.ReferencePoint()
	clip, ok := PlayFootstep(c.audio, c.clips, c.rng.IntN, weight, c.tun.FootstepWeightThreshold, at, c.tun.FootstepVolume)
	if !ok {
		return false
	}
	c.events.Publish(event.EventFootfall, event.FootfallEvent{
		Clip: clip.Name(),
		X:    at.X(),
		Y:    at.Y(),
		Z:    at.Z(),
	})
	return true
}

func (c *Controller) publishTransitions(prev State, dt float64) {
	if !c.state.Grounded {
		c.airTime += dt
	}

	switch {
	case prev.Grounded && !c.state.Grounded:
		slog.Debug("Left ground", "vertical_velocity", c.state.VerticalVelocity)
		c.events.Publish(event.EventAirborne, event.AirborneEvent{VerticalVelocity: c.state.VerticalVelocity})
	case !prev.Grounded && c.state.Grounded:
		slog.Debug("Landed", "vertical_velocity", c.state.VerticalVelocity, "air_time", c.airTime)
		c.events.Publish(event.EventLanded, event.LandedEvent{
			VerticalVelocity: c.state.VerticalVelocity,
			AirTime:          c.airTime,
		})
		c.airTime = 0
	}

	if !prev.FreeFalling() && c.state.FreeFalling() {
		slog.Debug("Free fall", "vertical_velocity", c.state.VerticalVelocity)
		c.events.Publish(event.EventFreeFall, event.FreeFallEvent{VerticalVelocity: c.state.VerticalVelocity})
	}
}
