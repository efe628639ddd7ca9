package locomotion

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestUpdateLookClampsLargePitchDelta(t *testing.T) {
	state := State{}
	body := newFakeBody()
	camera := &fakeCamera{}
	limits := PitchLimits{Min: DefaultPitchMin, Max: DefaultPitchMax}

	UpdateLook(&state, mgl64.Vec2{0, 200}, 100, 1.0/60.0, limits, body, camera)

	if state.Pitch != -90 {
		t.Fatalf("pitch = %v, want -90", state.Pitch)
	}
	if len(camera.rotations) != 1 {
		t.Fatalf("camera rotations = %d, want 1", len(camera.rotations))
	}
	want := mgl64.QuatRotate(mgl64.DegToRad(-90), mgl64.Vec3{1, 0, 0})
	approxQuat(t, camera.rotations[0], want, 1e-9, "camera rotation")
	// No horizontal delta still issues a zero yaw rotation.
	if len(body.yaws) != 1 || body.yaws[0] != 0 {
		t.Fatalf("yaws = %v, want [0]", body.yaws)
	}
}

func TestUpdateLookYawAccumulates(t *testing.T) {
	state := State{}
	body := newFakeBody()
	camera := &fakeCamera{}
	limits := PitchLimits{Min: -90, Max: 90}

	for i := 0; i < 12; i++ {
		UpdateLook(&state, mgl64.Vec2{60, 0}, 100, 0.1, limits, body, camera)
	}

	total := 0.0
	for _, y := range body.yaws {
		total += y
	}
	approxEqual(t, total, 7200, 1e-9, "total yaw")
	if state.Pitch != 0 {
		t.Fatalf("pitch = %v, want 0", state.Pitch)
	}
}

func TestUpdateLookPitchStaysWithinLimits(t *testing.T) {
	limits := PitchLimits{Min: -60, Max: 45}
	state := State{}
	body := newFakeBody()
	camera := &fakeCamera{}

	deltas := []float64{3, -7, 0.5, -40, 80, -0.1, 12, -300, 300, 1}
	for i := 0; i < 200; i++ {
		d := deltas[i%len(deltas)] * float64(i%7)
		UpdateLook(&state, mgl64.Vec2{0, d}, 100, 1.0/60.0, limits, body, camera)
		if state.Pitch < limits.Min || state.Pitch > limits.Max {
			t.Fatalf("iteration %d: pitch %v outside [%v, %v]", i, state.Pitch, limits.Min, limits.Max)
		}
	}
}

func TestUpdateLookDownwardDeltaRaisesPitch(t *testing.T) {
	state := State{}
	limits := PitchLimits{Min: -90, Max: 90}
	UpdateLook(&state, mgl64.Vec2{0, -6}, 100, 0.05, limits, newFakeBody(), &fakeCamera{})
	approxEqual(t, state.Pitch, 30, 1e-9, "pitch")
}

func TestUpdateLookNeverTiltsBody(t *testing.T) {
	state := State{}
	body := newFakeBody()
	UpdateLook(&state, mgl64.Vec2{30, 20}, 100, 1.0/60.0, PitchLimits{Min: -90, Max: 90}, body, &fakeCamera{})

	up := body.orientation.Rotate(mgl64.Vec3{0, 1, 0})
	approxVec3(t, up, mgl64.Vec3{0, 1, 0}, 1e-9, "body up")
}

func TestCameraRotationIsAboutLocalX(t *testing.T) {
	q := CameraRotation(45)
	axis := q.Rotate(mgl64.Vec3{1, 0, 0})
	approxVec3(t, axis, mgl64.Vec3{1, 0, 0}, 1e-9, "rotated x axis")

	fwd := q.Rotate(mgl64.Vec3{0, 0, 1})
	approxEqual(t, fwd.Z(), math.Sqrt2/2, 1e-9, "forward z")
}
