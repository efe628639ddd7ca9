package locomotion

import "github.com/go-gl/mathgl/mgl64"

type PitchLimits struct {
	Min float64
	Max float64
}

func (l PitchLimits) Clamp(pitch float64) float64 {
	return mgl64.Clamp(pitch, l.Min, l.Max)
}

// CameraRotation is the camera's local rotation for a pitch in degrees.
func CameraRotation(pitch float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(pitch), localRight)
}

// UpdateLook turns the body about world up by the horizontal look delta and tilts the camera
// by the vertical one. Yaw accumulates without bound; pitch stays within limits.
func UpdateLook(state *State, lookDelta mgl64.Vec2, sensitivity, dt float64, limits PitchLimits, yaw YawTarget, pitch PitchTarget) {
	yaw.RotateYaw(lookDelta.X() * sensitivity * dt)

	state.Pitch -= lookDelta.Y() * sensitivity * dt
	state.Pitch = limits.Clamp(state.Pitch)

	pitch.SetLocalRotation(CameraRotation(state.Pitch))
}
