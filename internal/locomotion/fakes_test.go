package locomotion

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type moveCall struct {
	displacement mgl64.Vec3
	dt           float64
}

type fakeBody struct {
	position    mgl64.Vec3
	velocity    mgl64.Vec3
	orientation mgl64.Quat
	center      mgl64.Vec3
	moves       []moveCall
	yaws        []float64
	// applyMoves makes Move translate the body and report velocity = displacement/dt.
	applyMoves bool
}

func newFakeBody() *fakeBody {
	return &fakeBody{orientation: mgl64.QuatIdent(), center: mgl64.Vec3{0, 1, 0}}
}

func (b *fakeBody) Move(d mgl64.Vec3, dt float64) {
	b.moves = append(b.moves, moveCall{displacement: d, dt: dt})
	if b.applyMoves {
		b.position = b.position.Add(d)
		if dt > 0 {
			b.velocity = d.Mul(1 / dt)
		}
	}
}

func (b *fakeBody) Velocity() mgl64.Vec3       { return b.velocity }
func (b *fakeBody) Position() mgl64.Vec3       { return b.position }
func (b *fakeBody) ReferencePoint() mgl64.Vec3 { return b.position.Add(b.center) }
func (b *fakeBody) Orientation() mgl64.Quat    { return b.orientation }

func (b *fakeBody) RotateYaw(degrees float64) {
	b.yaws = append(b.yaws, degrees)
	b.orientation = mgl64.QuatRotate(mgl64.DegToRad(degrees), worldUp).Mul(b.orientation).Normalize()
}

type overlapCall struct {
	center   mgl64.Vec3
	radius   float64
	mask     LayerMask
	triggers TriggerInteraction
}

// fakeQuery answers with a fixed result, or with results in order when script is set.
type fakeQuery struct {
	result bool
	script []bool
	calls  []overlapCall
}

func (q *fakeQuery) OverlapSphere(center mgl64.Vec3, radius float64, mask LayerMask, triggers TriggerInteraction) bool {
	q.calls = append(q.calls, overlapCall{center: center, radius: radius, mask: mask, triggers: triggers})
	if len(q.script) > 0 {
		r := q.script[0]
		q.script = q.script[1:]
		return r
	}
	return q.result
}

type fakeCamera struct {
	rotations []mgl64.Quat
}

func (c *fakeCamera) SetLocalRotation(q mgl64.Quat) {
	c.rotations = append(c.rotations, q)
}

type paramCall struct {
	name     string
	value    float64
	dampTime float64
	dt       float64
}

type recordingAnimation struct {
	calls []paramCall
}

func (a *recordingAnimation) SetParameter(name string, value, dampTime, dt float64) {
	a.calls = append(a.calls, paramCall{name: name, value: value, dampTime: dampTime, dt: dt})
}

type cue struct {
	clip     Clip
	position mgl64.Vec3
	volume   float64
}

type recordingAudio struct {
	cues []cue
}

func (a *recordingAudio) PlayOneShotAt(clip Clip, position mgl64.Vec3, volume float64) {
	a.cues = append(a.cues, cue{clip: clip, position: position, volume: volume})
}

type namedClip string

func (c namedClip) Name() string { return string(c) }

type recordingEvents struct {
	names  []string
	events []any
}

func (r *recordingEvents) Publish(name string, evt any) {
	r.names = append(r.names, name)
	r.events = append(r.events, evt)
}

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func approxVec3(t *testing.T, got, want mgl64.Vec3, tol float64, field string) {
	t.Helper()
	if got.Sub(want).Len() > tol {
		t.Fatalf("%s = %v, want %v (tol=%g)", field, got, want, tol)
	}
}

// approxQuat compares component-wise with an absolute tolerance. mgl64's ApproxEqual is
// relative and never accepts round-off against an exact zero.
func approxQuat(t *testing.T, got, want mgl64.Quat, tol float64, field string) {
	t.Helper()
	if math.Abs(got.W-want.W) > tol || got.V.Sub(want.V).Len() > tol {
		t.Fatalf("%s = %v, want %v (tol=%g)", field, got, want, tol)
	}
}
