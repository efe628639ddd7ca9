package locomotion

// IntegrateGravity advances the vertical velocity by one frame. grounded is the value
// observed on the previous frame; the grounded probe for this frame runs afterwards.
func IntegrateGravity(state *State, grounded bool, gravity, dt float64) {
	if grounded && state.VerticalVelocity < 0 {
		state.VerticalVelocity = GroundedVerticalVelocity
	}

	// No clamp once at or past terminal velocity; a positive gravity keeps integrating.
	if state.VerticalVelocity < TerminalVelocity {
		state.VerticalVelocity += gravity * dt
	}
}

// TickFallTimeout rearms the fall timeout while grounded and counts it down while airborne.
func TickFallTimeout(state *State, grounded bool, fallTimeout, dt float64) {
	if grounded {
		state.FallTimeoutRemaining = fallTimeout
		return
	}
	if state.FallTimeoutRemaining > 0 {
		state.FallTimeoutRemaining -= dt
		if state.FallTimeoutRemaining < 0 {
			state.FallTimeoutRemaining = 0
		}
	}
}
