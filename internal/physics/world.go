package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

var ErrOutOfBounds = errors.New("collider outside world bounds")

// Collider is a static box. Trigger colliders never block movement and only answer
// overlap queries that ask for triggers.
type Collider struct {
	Box     AABB
	Layer   int
	Trigger bool
	Script  string

	object *resolv.Object
}

// World holds static colliders. A resolv space over the XZ plane is the broad phase; the
// box and sphere tests run on the candidates it returns.
type World struct {
	bounds    AABB
	cellSize  int
	space     *resolv.Space
	probe     *resolv.Object
	colliders []*Collider
}

func NewWorld(bounds AABB, cellSize int) *World {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	size := bounds.Size()
	width := int(math.Ceil(size.X()))
	depth := int(math.Ceil(size.Z()))
	if width < cellSize {
		width = cellSize
	}
	if depth < cellSize {
		depth = cellSize
	}

	w := &World{
		bounds:   bounds,
		cellSize: cellSize,
		space:    resolv.NewSpace(width*spaceScale, depth*spaceScale, cellSize*spaceScale, cellSize*spaceScale),
	}
	w.probe = resolv.NewObject(0, 0, 1, 1, probeTag)
	w.space.Add(w.probe)
	return w
}

func (w *World) Bounds() AABB {
	return w.bounds
}

func (w *World) Colliders() []*Collider {
	out := make([]*Collider, len(w.colliders))
	copy(out, w.colliders)
	return out
}

// Add registers a collider. Boxes entirely outside the XZ bounds are rejected.
func (w *World) Add(c Collider) (*Collider, error) {
	box := NewAABB(c.Box.Min, c.Box.Max)
	if box.Max.X() < w.bounds.Min.X() || box.Min.X() > w.bounds.Max.X() ||
		box.Max.Z() < w.bounds.Min.Z() || box.Min.Z() > w.bounds.Max.Z() {
		return nil, fmt.Errorf("add collider %v..%v: %w", box.Min, box.Max, ErrOutOfBounds)
	}

	col := &Collider{Box: box, Layer: c.Layer, Trigger: c.Trigger, Script: c.Script}
	x, y, width, depth := w.toSpace(box)
	tags := []string{colliderTag}
	if col.Trigger {
		tags = append(tags, triggerTag)
	}
	obj := resolv.NewObject(x, y, width, depth, tags...)
	obj.SetShape(resolv.NewRectangle(0, 0, width, depth))
	obj.Data = col
	col.object = obj

	w.space.Add(obj)
	w.colliders = append(w.colliders, col)
	return col, nil
}

func (w *World) Remove(c *Collider) {
	if c == nil || c.object == nil {
		return
	}
	w.space.Remove(c.object)
	for i, existing := range w.colliders {
		if existing == c {
			w.colliders = append(w.colliders[:i], w.colliders[i+1:]...)
			break
		}
	}
	c.object = nil
}

// OverlapSphere implements locomotion.SpatialQuery.
func (w *World) OverlapSphere(center mgl64.Vec3, radius float64, mask locomotion.LayerMask, triggers locomotion.TriggerInteraction) bool {
	r := mgl64.Vec3{radius, radius, radius}
	region := AABB{Min: center.Sub(r), Max: center.Add(r)}
	for _, c := range w.candidates(region) {
		if !mask.Has(c.Layer) {
			continue
		}
		if c.Trigger && triggers == locomotion.IgnoreTriggers {
			continue
		}
		if c.Box.OverlapsSphere(center, radius) {
			return true
		}
	}
	return false
}

// Overlapping returns the colliders whose interior overlaps box, triggers included.
func (w *World) Overlapping(box AABB, mask locomotion.LayerMask) []*Collider {
	var out []*Collider
	for _, c := range w.candidates(box) {
		if mask.Has(c.Layer) && c.Box.Intersects(box) {
			out = append(out, c)
		}
	}
	return out
}

// sweep returns how far box can travel along axis toward delta before hitting a solid
// collider on mask. The result has the sign of delta and never exceeds it.
func (w *World) sweep(box AABB, axis int, delta float64, mask locomotion.LayerMask) float64 {
	if nearlyZero(delta) {
		return delta
	}

	swept := box
	if delta > 0 {
		swept.Max[axis] += delta
	} else {
		swept.Min[axis] += delta
	}

	allowed := delta
	for _, c := range w.candidates(swept) {
		if c.Trigger || !mask.Has(c.Layer) {
			continue
		}
		if !overlapsExcept(box, c.Box, axis) {
			continue
		}
		if delta > 0 {
			if c.Box.Min[axis] < box.Max[axis]-CollisionAxisTolerance {
				continue
			}
			if gap := c.Box.Min[axis] - box.Max[axis]; gap < allowed {
				allowed = gap
			}
		} else {
			if c.Box.Max[axis] > box.Min[axis]+CollisionAxisTolerance {
				continue
			}
			if gap := c.Box.Max[axis] - box.Min[axis]; gap > allowed {
				allowed = gap
			}
		}
	}

	if delta > 0 && allowed < 0 || delta < 0 && allowed > 0 {
		return 0
	}
	return allowed
}

// candidates returns colliders sharing a broad-phase cell with region and overlapping it
// on Y.
func (w *World) candidates(region AABB) []*Collider {
	x, y, width, depth := w.toSpace(AABB{
		Min: region.Min.Sub(mgl64.Vec3{probePad, 0, probePad}),
		Max: region.Max.Add(mgl64.Vec3{probePad, 0, probePad}),
	})
	w.probe.X, w.probe.Y = x, y
	w.probe.W, w.probe.H = width, depth
	w.probe.Update()

	check := w.probe.Check(0, 0, colliderTag)
	if check == nil {
		return nil
	}

	seen := make(map[*Collider]struct{}, len(check.Objects))
	out := make([]*Collider, 0, len(check.Objects))
	for _, obj := range check.Objects {
		c, ok := obj.Data.(*Collider)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if c.Box.Max.Y() < region.Min.Y() || c.Box.Min.Y() > region.Max.Y() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// toSpace maps a box onto the resolv plane: resolv X is world X, resolv Y is world Z, both
// shifted so the bounds' minimum corner sits at the origin and scaled to resolv units.
func (w *World) toSpace(box AABB) (x, y, width, depth float64) {
	x = (box.Min.X() - w.bounds.Min.X()) * spaceScale
	y = (box.Min.Z() - w.bounds.Min.Z()) * spaceScale
	width = math.Max((box.Max.X()-box.Min.X())*spaceScale, 1)
	depth = math.Max((box.Max.Z()-box.Min.Z())*spaceScale, 1)
	return x, y, width, depth
}
