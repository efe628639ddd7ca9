package locomotion

import "github.com/go-gl/mathgl/mgl64"

var (
	worldUp      = mgl64.Vec3{0, 1, 0}
	localForward = mgl64.Vec3{0, 0, 1}
	localRight   = mgl64.Vec3{1, 0, 0}
)

// Basis returns the body's forward and right vectors.
func Basis(orientation mgl64.Quat) (forward, right mgl64.Vec3) {
	return orientation.Rotate(localForward), orientation.Rotate(localRight)
}

// MoveDirection is the normalized body-relative direction of the move input, or zero.
func MoveDirection(input InputSnapshot, forward, right mgl64.Vec3) mgl64.Vec3 {
	if !input.HasMove() {
		return mgl64.Vec3{}
	}
	dir := right.Mul(input.Move.X()).Add(forward.Mul(input.Move.Y()))
	if dir.Len() == 0 {
		return mgl64.Vec3{}
	}
	return dir.Normalize()
}

func ComposeDisplacement(input InputSnapshot, forward, right mgl64.Vec3, speed, verticalVelocity, dt float64) mgl64.Vec3 {
	horizontal := MoveDirection(input, forward, right).Mul(speed * dt)
	return horizontal.Add(worldUp.Mul(verticalVelocity * dt))
}

// MoveBody issues the frame's single collision-resolved move.
func MoveBody(body Body, state *State, input InputSnapshot, forward, right mgl64.Vec3, dt float64) mgl64.Vec3 {
	displacement := ComposeDisplacement(input, forward, right, state.Speed, state.VerticalVelocity, dt)
	body.Move(displacement, dt)
	return displacement
}

func horizontalSpeed(v mgl64.Vec3) float64 {
	return mgl64.Vec2{v.X(), v.Z()}.Len()
}
