package telemetry

import (
	"github.com/Versifine/stride/internal/locomotion"
	"github.com/go-gl/mathgl/mgl64"
)

// Frame is the per-frame view of one controller served on /state and pushed to websocket
// clients.
type Frame struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Z                float64 `json:"z"`
	Yaw              float64 `json:"yaw"`
	Pitch            float64 `json:"pitch"`
	Speed            float64 `json:"speed"`
	VerticalVelocity float64 `json:"vertical_velocity"`
	Grounded         bool    `json:"grounded"`
	FreeFalling      bool    `json:"free_falling"`
	Zones            []int   `json:"zones,omitempty"`
}

func NewFrame(state locomotion.State, position mgl64.Vec3, yaw float64) Frame {
	return Frame{
		X:                position.X(),
		Y:                position.Y(),
		Z:                position.Z(),
		Yaw:              yaw,
		Pitch:            state.Pitch,
		Speed:            state.Speed,
		VerticalVelocity: state.VerticalVelocity,
		Grounded:         state.Grounded,
		FreeFalling:      state.FreeFalling(),
	}
}
