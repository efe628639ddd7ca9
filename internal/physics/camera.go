package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	landingDipPerSpeed = 0.02
	landingDipMax      = 0.3
	landingDipDuration = 0.25
)

// Camera is a pitch-only rig mounted on a body at eye height.
type Camera struct {
	body   *Body
	eye    float64
	local  mgl64.Quat
	dip    *gween.Tween
	offset float64
}

func NewCamera(body *Body, eyeHeight float64) *Camera {
	return &Camera{body: body, eye: eyeHeight, local: mgl64.QuatIdent()}
}

// SetLocalRotation implements locomotion.PitchTarget.
func (c *Camera) SetLocalRotation(q mgl64.Quat) {
	c.local = q
}

func (c *Camera) LocalRotation() mgl64.Quat {
	return c.local
}

// Land starts an eye-height dip scaled by the landing speed.
func (c *Camera) Land(verticalVelocity float64) {
	depth := mgl64.Clamp(-verticalVelocity*landingDipPerSpeed, 0, landingDipMax)
	if depth == 0 {
		return
	}
	c.dip = gween.New(float32(-depth), 0, landingDipDuration, ease.OutQuad)
	c.offset = -depth
}

// Advance steps the landing dip.
func (c *Camera) Advance(dt float64) {
	if c.dip == nil {
		return
	}
	v, done := c.dip.Update(float32(dt))
	c.offset = float64(v)
	if done {
		c.dip = nil
		c.offset = 0
	}
}

func (c *Camera) EyeOffset() float64 {
	return c.offset
}

func (c *Camera) Position() mgl64.Vec3 {
	return c.body.Position().Add(mgl64.Vec3{0, c.eye + c.offset, 0})
}

func (c *Camera) Forward() mgl64.Vec3 {
	return c.body.Orientation().Mul(c.local).Rotate(mgl64.Vec3{0, 0, 1})
}

func (c *Camera) Right() mgl64.Vec3 {
	return c.body.Orientation().Rotate(mgl64.Vec3{1, 0, 0})
}
