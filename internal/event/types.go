package event

const (
	EventLanded    = "locomotion.landed"
	EventAirborne  = "locomotion.airborne"
	EventFreeFall  = "locomotion.freefall"
	EventFootstep  = "animation.footstep"
	EventFootfall  = "audio.footfall"
	EventConfigSet = "config.reloaded"
	EventZoneEnter = "zone.entered"
	EventZoneExit  = "zone.exited"
)

// LandedEvent is published on the frame the ground probe first hits after being airborne.
type LandedEvent struct {
	VerticalVelocity float64
	AirTime          float64
}

type AirborneEvent struct {
	VerticalVelocity float64
}

type FreeFallEvent struct {
	VerticalVelocity float64
}

// FootstepEvent is fired by animation playback at a footfall; Weight is the blend weight of
// the motion that owns the footfall.
type FootstepEvent struct {
	Motion string
	Weight float64
}

// FootfallEvent reports a cue the controller actually emitted.
type FootfallEvent struct {
	Clip string
	X    float64
	Y    float64
	Z    float64
}

type ConfigReloadedEvent struct {
	Path string
}

// ZoneEvent reports the body crossing into or out of a trigger zone. Zone is the zone's
// index among the world's trigger colliders.
type ZoneEvent struct {
	Zone   int
	Script bool
}
