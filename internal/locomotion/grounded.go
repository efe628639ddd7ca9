package locomotion

import "github.com/go-gl/mathgl/mgl64"

// GroundProbe returns the center of the grounded sphere for a body standing at position.
func GroundProbe(position mgl64.Vec3, groundedOffset float64) mgl64.Vec3 {
	return mgl64.Vec3{position.X(), position.Y() - groundedOffset, position.Z()}
}

// IsGrounded reports whether the probe sphere below the body overlaps walkable geometry.
// Trigger volumes never count as ground.
func IsGrounded(query SpatialQuery, position mgl64.Vec3, groundedOffset, groundedRadius float64, mask LayerMask) bool {
	return query.OverlapSphere(GroundProbe(position, groundedOffset), groundedRadius, mask, IgnoreTriggers)
}
