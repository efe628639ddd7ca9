package physics

import (
	"math"
	"sync"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/go-gl/mathgl/mgl64"
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Shape is the body's collision volume: an upright box of half-width Radius and height
// Height standing on the body position. Center is the reference point offset in body space.
// A supported body climbs ledges up to StepOffset high while moving horizontally.
type Shape struct {
	Radius     float64
	Height     float64
	Center     mgl64.Vec3
	StepOffset float64
}

func DefaultShape() Shape {
	return Shape{
		Radius:     DefaultBodyRadius,
		Height:     DefaultBodyHeight,
		Center:     mgl64.Vec3{0, DefaultBodyHeight / 2, 0},
		StepOffset: DefaultStepOffset,
	}
}

// Body is a kinematic locomotion body. Position is the bottom center of its box.
type Body struct {
	mu          sync.Mutex
	world       *World
	shape       Shape
	mask        locomotion.LayerMask
	position    mgl64.Vec3
	velocity    mgl64.Vec3
	orientation mgl64.Quat
}

func NewBody(world *World, shape Shape, spawn mgl64.Vec3) *Body {
	return &Body{
		world:       world,
		shape:       shape,
		mask:        locomotion.AllLayers,
		position:    spawn,
		orientation: mgl64.QuatIdent(),
	}
}

// SetCollisionMask limits the layers that block the body.
func (b *Body) SetCollisionMask(mask locomotion.LayerMask) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mask = mask
}

func (b *Body) Shape() Shape {
	return b.shape
}

func (b *Body) Box() AABB {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.boxAt(b.position)
}

func (b *Body) boxAt(p mgl64.Vec3) AABB {
	r := b.shape.Radius
	return AABB{
		Min: mgl64.Vec3{p.X() - r, p.Y(), p.Z() - r},
		Max: mgl64.Vec3{p.X() + r, p.Y() + b.shape.Height, p.Z() + r},
	}
}

// Move resolves displacement one axis at a time (Y, X, Z) and records the velocity the body
// actually achieved over dt.
func (b *Body) Move(displacement mgl64.Vec3, dt float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.position
	pos := start
	if b.world == nil {
		pos = pos.Add(displacement)
	} else {
		pos[1] += b.world.sweep(b.boxAt(pos), 1, displacement[1], b.mask)
		canStep := displacement[1] <= 0 && b.supported(pos)
		for _, axis := range [2]int{0, 2} {
			pos = b.moveHorizontal(pos, axis, displacement[axis], canStep)
		}
	}
	b.position = pos

	if dt <= 0 {
		b.velocity = mgl64.Vec3{}
		return
	}
	b.velocity = pos.Sub(start).Mul(1 / dt)
}

func (b *Body) moveHorizontal(pos mgl64.Vec3, axis int, delta float64, canStep bool) mgl64.Vec3 {
	allowed := b.world.sweep(b.boxAt(pos), axis, delta, b.mask)
	if nearlyEqual(allowed, delta) || !canStep || b.shape.StepOffset <= 0 {
		pos[axis] += allowed
		return pos
	}

	raised := pos
	raised[1] += b.world.sweep(b.boxAt(raised), 1, b.shape.StepOffset, b.mask)
	stepped := b.world.sweep(b.boxAt(raised), axis, delta, b.mask)
	if math.Abs(stepped) <= math.Abs(allowed) {
		pos[axis] += allowed
		return pos
	}
	raised[axis] += stepped
	raised[1] += b.world.sweep(b.boxAt(raised), 1, pos[1]-raised[1], b.mask)
	return raised
}

// supported reports whether solid ground lies within groundSkin below the box.
func (b *Body) supported(pos mgl64.Vec3) bool {
	return b.world.sweep(b.boxAt(pos), 1, -groundSkin, b.mask) > -groundSkin+CollisionAxisTolerance
}

func (b *Body) Velocity() mgl64.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.velocity
}

func (b *Body) Position() mgl64.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

func (b *Body) ReferencePoint() mgl64.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position.Add(b.orientation.Rotate(b.shape.Center))
}

func (b *Body) Orientation() mgl64.Quat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.orientation
}

// RotateYaw turns the body about world up. Positive degrees turn forward (+Z) toward +X.
func (b *Body) RotateYaw(degrees float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	turn := mgl64.QuatRotate(mgl64.DegToRad(degrees), worldUp)
	b.orientation = turn.Mul(b.orientation).Normalize()
}

// Yaw returns the heading in degrees within (-180, 180], 0 facing +Z.
func (b *Body) Yaw() float64 {
	f := b.Forward()
	return mgl64.RadToDeg(math.Atan2(f.X(), f.Z()))
}

func (b *Body) Forward() mgl64.Vec3 {
	return b.Orientation().Rotate(mgl64.Vec3{0, 0, 1})
}

// Teleport places the body and clears its velocity. Orientation is kept.
func (b *Body) Teleport(pos mgl64.Vec3) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = pos
	b.velocity = mgl64.Vec3{}
}
