package locomotion

import "github.com/go-gl/mathgl/mgl64"

// Body is the collision-aware entity the controller drives.
type Body interface {
	YawTarget
	// Move resolves displacement against the world. dt is the frame delta the displacement
	// was integrated over; the body derives Velocity from it.
	Move(displacement mgl64.Vec3, dt float64)
	Velocity() mgl64.Vec3
	Position() mgl64.Vec3
	// ReferencePoint is the body's offset center in world space.
	ReferencePoint() mgl64.Vec3
	Orientation() mgl64.Quat
}

type YawTarget interface {
	RotateYaw(degrees float64)
}

// PitchTarget receives the camera's local rotation. It never rotates the body.
type PitchTarget interface {
	SetLocalRotation(q mgl64.Quat)
}

type SpatialQuery interface {
	OverlapSphere(center mgl64.Vec3, radius float64, mask LayerMask, triggers TriggerInteraction) bool
}

type AnimationSink interface {
	SetParameter(name string, value, dampTime, dt float64)
}

type Clip interface {
	Name() string
}

type AudioSink interface {
	PlayOneShotAt(clip Clip, position mgl64.Vec3, volume float64)
}

// Publisher receives locomotion transition events.
type Publisher interface {
	Publish(eventName string, evt any)
}

type discardAnimation struct{}

func (discardAnimation) SetParameter(string, float64, float64, float64) {}

type discardAudio struct{}

func (discardAudio) PlayOneShotAt(Clip, mgl64.Vec3, float64) {}

type discardEvents struct{}

func (discardEvents) Publish(string, any) {}
