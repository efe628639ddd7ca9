package locomotion

// MapAnimationParams normalizes the speed by the walk speed, so values range over
// ±SprintSpeed/MoveSpeed.
func MapAnimationParams(input InputSnapshot, speed, moveSpeed float64) (lateral, forward float64) {
	lateral = input.Move.X() * speed / moveSpeed
	forward = input.Move.Y() * speed / moveSpeed
	return lateral, forward
}

// EmitAnimationParams pushes the blend parameters; the sink does the damping.
func EmitAnimationParams(sink AnimationSink, input InputSnapshot, speed, moveSpeed, dampTime, dt float64) {
	lateral, forward := MapAnimationParams(input, speed, moveSpeed)
	sink.SetParameter(ParamVelocityZ, lateral, dampTime, dt)
	sink.SetParameter(ParamVelocityY, forward, dampTime, dt)
}
