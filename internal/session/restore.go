package session

import (
	"github.com/Versifine/stride/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Pitcher is the controller side of a restore.
type Pitcher interface {
	SetPitch(degrees float64)
	Pitch() float64
}

func Capture(body *physics.Body, ctrl Pitcher) Snapshot {
	p := body.Position()
	return Snapshot{
		X:     p.X(),
		Y:     p.Y(),
		Z:     p.Z(),
		Yaw:   body.Yaw(),
		Pitch: ctrl.Pitch(),
	}
}

// Restore places body and aims the camera as captured. Positions outside the world bounds
// are rejected and reported as false.
func Restore(snap Snapshot, body *physics.Body, world *physics.World, ctrl Pitcher) bool {
	pos := mgl64.Vec3{snap.X, snap.Y, snap.Z}
	if world != nil && !world.Bounds().Contains(pos) {
		return false
	}
	body.Teleport(pos)
	body.RotateYaw(snap.Yaw - body.Yaw())
	ctrl.SetPitch(snap.Pitch)
	return true
}
