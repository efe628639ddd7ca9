package locomotion

import "math"

// TargetSpeed is zero without movement input, otherwise the walk or sprint speed.
func TargetSpeed(input InputSnapshot, moveSpeed, sprintSpeed float64) float64 {
	if !input.HasMove() {
		return 0
	}
	if input.Sprint {
		return sprintSpeed
	}
	return moveSpeed
}

func inputMagnitude(input InputSnapshot) float64 {
	if input.AnalogMovement {
		return input.Move.Len()
	}
	return 1.0
}

// UpdateSpeed smooths the horizontal speed toward the frame's target and stores it in
// state. Outside the dead-zone the speed is interpolated from the body's observed speed and
// quantized; inside it snaps to the target.
func UpdateSpeed(state *State, input InputSnapshot, moveSpeed, sprintSpeed, speedChangeRate, currentHorizontalSpeed, dt float64) float64 {
	target := TargetSpeed(input, moveSpeed, sprintSpeed)

	if currentHorizontalSpeed < target-SpeedOffset || currentHorizontalSpeed > target+SpeedOffset {
		speed := lerp(currentHorizontalSpeed, target*inputMagnitude(input), dt*speedChangeRate)
		state.Speed = math.RoundToEven(speed*SpeedPrecision) / SpeedPrecision
	} else {
		state.Speed = target
	}
	return state.Speed
}

// lerp clamps t to [0, 1].
func lerp(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}
