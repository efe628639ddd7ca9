package locomotion

import "github.com/go-gl/mathgl/mgl64"

const (
	// TerminalVelocity caps gravity integration: vertical velocity at or above it is no
	// longer accelerated.
	TerminalVelocity = 53.0
	// GroundedVerticalVelocity keeps the body pressed onto the surface while grounded so the
	// next probe still reaches it.
	GroundedVerticalVelocity = -2.0
	// SpeedOffset is the half-width of the dead-zone around the target speed.
	SpeedOffset = 0.1
	// SpeedPrecision quantizes smoothed speeds to three decimals.
	SpeedPrecision = 1000.0

	DefaultPitchMin = -90.0
	DefaultPitchMax = 90.0
)

// Blend tree parameter names. The lateral parameter is named VelocityZ for blend trees
// authored against that name.
const (
	ParamVelocityZ = "VelocityZ"
	ParamVelocityY = "VelocityY"
)

// LayerMask selects collider layers 0..31.
type LayerMask uint32

const (
	NoLayers   LayerMask = 0
	AllLayers  LayerMask = ^LayerMask(0)
	maxLayerID           = 31
)

func LayerBit(layer int) LayerMask {
	if layer < 0 || layer > maxLayerID {
		return NoLayers
	}
	return LayerMask(1) << uint(layer)
}

func (m LayerMask) Has(layer int) bool {
	return m&LayerBit(layer) != 0
}

type TriggerInteraction int

const (
	IgnoreTriggers TriggerInteraction = iota
	CollideTriggers
)

// InputSnapshot is the normalized per-frame input. X is lateral / yaw, Y is forward / pitch.
type InputSnapshot struct {
	Move           mgl64.Vec2
	Sprint         bool
	AnalogMovement bool
	LookDelta      mgl64.Vec2
}

func (in InputSnapshot) HasMove() bool {
	return in.Move != mgl64.Vec2{}
}

// State is the controller's per-instance mutable state.
type State struct {
	Speed                float64
	VerticalVelocity     float64
	Grounded             bool
	Pitch                float64
	FallTimeoutRemaining float64
}

// FreeFalling reports an airborne body whose fall timeout has elapsed.
func (s State) FreeFalling() bool {
	return !s.Grounded && s.FallTimeoutRemaining <= 0
}

// Tunables holds the per-session configuration. Angles are degrees, distances are world
// units, rates are per second.
type Tunables struct {
	MoveSpeed               float64
	SprintSpeed             float64
	SpeedChangeRate         float64
	Gravity                 float64
	FallTimeout             float64
	GroundedOffset          float64
	GroundedRadius          float64
	GroundLayers            LayerMask
	LookSensitivity         float64
	PitchMin                float64
	PitchMax                float64
	AnimationDampTime       float64
	FootstepVolume          float64
	FootstepWeightThreshold float64
}

func DefaultTunables() Tunables {
	return Tunables{
		MoveSpeed:               4.0,
		SprintSpeed:             6.0,
		SpeedChangeRate:         10.0,
		Gravity:                 -15.0,
		FallTimeout:             0.15,
		GroundedOffset:          -0.14,
		GroundedRadius:          0.5,
		GroundLayers:            LayerBit(0),
		LookSensitivity:         100.0,
		PitchMin:                DefaultPitchMin,
		PitchMax:                DefaultPitchMax,
		AnimationDampTime:       0.1,
		FootstepVolume:          0.5,
		FootstepWeightThreshold: 0.5,
	}
}

// NewState returns the state of a freshly attached controller.
func NewState(t Tunables) State {
	return State{
		Grounded:             true,
		FallTimeoutRemaining: t.FallTimeout,
	}
}
