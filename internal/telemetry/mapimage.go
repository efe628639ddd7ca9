package telemetry

import (
	"image"
	"image/color"
	"math"

	"github.com/Versifine/stride/internal/physics"
	"github.com/fogleman/gg"
)

var (
	backgroundColor = color.RGBA{18, 18, 26, 255}
	triggerColor    = color.RGBA{90, 160, 90, 110}
	bodyColor       = color.RGBA{240, 200, 60, 255}
	headingColor    = color.RGBA{240, 90, 60, 255}
)

// minBodyPixels keeps the body visible on large levels.
const minBodyPixels = 3.0

// solidColor shades a collider by the height of its top face: low floors are dark, walls
// light.
func solidColor(top float64) color.RGBA {
	v := 60 + 40*top
	v = math.Max(60, math.Min(220, v))
	return color.RGBA{uint8(v), uint8(v), uint8(v + 20*(1-v/255)), 255}
}

// RenderMap draws a top-down view of world with +Z up and the body from f. size is the
// longest image side in pixels.
func RenderMap(world *physics.World, f Frame, size int) image.Image {
	bounds := world.Bounds()
	extent := bounds.Size()
	scale := float64(size) / math.Max(extent.X(), extent.Z())
	w := int(math.Ceil(extent.X() * scale))
	h := int(math.Ceil(extent.Z() * scale))

	toPixel := func(x, z float64) (float64, float64) {
		return (x - bounds.Min.X()) * scale, (bounds.Max.Z() - z) * scale
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	colliders := world.Colliders()
	for _, c := range colliders {
		if c.Trigger {
			continue
		}
		x0, y0 := toPixel(c.Box.Min.X(), c.Box.Max.Z())
		dc.SetColor(solidColor(c.Box.Max.Y()))
		dc.DrawRectangle(x0, y0, c.Box.Size().X()*scale, c.Box.Size().Z()*scale)
		dc.Fill()
	}
	for _, c := range colliders {
		if !c.Trigger {
			continue
		}
		x0, y0 := toPixel(c.Box.Min.X(), c.Box.Max.Z())
		dc.SetColor(triggerColor)
		dc.DrawRectangle(x0, y0, c.Box.Size().X()*scale, c.Box.Size().Z()*scale)
		dc.Fill()
	}

	bx, by := toPixel(f.X, f.Z)
	radius := math.Max(minBodyPixels, physics.DefaultBodyRadius*scale)
	yaw := f.Yaw * math.Pi / 180
	dc.SetColor(headingColor)
	dc.SetLineWidth(2)
	dc.DrawLine(bx, by, bx+math.Sin(yaw)*radius*2.5, by-math.Cos(yaw)*radius*2.5)
	dc.Stroke()

	dc.SetColor(bodyColor)
	dc.DrawCircle(bx, by, radius)
	dc.Fill()

	return dc.Image()
}
