package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB orders the corners so Min <= Max on every axis.
func NewAABB(a, b mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max: mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Translate(d mgl64.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

func (b AABB) Union(o AABB) AABB {
	return NewAABB(
		mgl64.Vec3{math.Min(b.Min[0], o.Min[0]), math.Min(b.Min[1], o.Min[1]), math.Min(b.Min[2], o.Min[2])},
		mgl64.Vec3{math.Max(b.Max[0], o.Max[0]), math.Max(b.Max[1], o.Max[1]), math.Max(b.Max[2], o.Max[2])},
	)
}

func (b AABB) Expand(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Intersects reports interior overlap. Touching faces do not intersect.
func (b AABB) Intersects(o AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if !overlapsOn(b, o, axis) {
			return false
		}
	}
	return true
}

func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

func (b AABB) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p[0], b.Min[0], b.Max[0]),
		mgl64.Clamp(p[1], b.Min[1], b.Max[1]),
		mgl64.Clamp(p[2], b.Min[2], b.Max[2]),
	}
}

// OverlapsSphere counts a sphere touching the surface as overlapping.
func (b AABB) OverlapsSphere(center mgl64.Vec3, radius float64) bool {
	d := b.ClosestPoint(center).Sub(center)
	return d.Dot(d) <= radius*radius
}

func overlapsOn(a, b AABB, axis int) bool {
	return a.Min[axis] < b.Max[axis]-CollisionAxisTolerance &&
		a.Max[axis] > b.Min[axis]+CollisionAxisTolerance
}

// overlapsExcept checks interior overlap on the two axes other than axis.
func overlapsExcept(a, b AABB, axis int) bool {
	for i := 0; i < 3; i++ {
		if i == axis {
			continue
		}
		if !overlapsOn(a, b, i) {
			return false
		}
	}
	return true
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
