package console

import (
	"fmt"
	"math"

	"github.com/Versifine/stride/internal/locomotion"
	"github.com/Versifine/stride/internal/physics"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// Terminal cells are about twice as tall as wide.
const (
	cellWidth  = 0.5
	cellHeight = 1.0
	viewDepth  = 3.0 // vertical reach of a map column around the body
	stepHeight = 0.3
)

var (
	styleVoid    = tcell.StyleDefault
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStep    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleTrigger = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)

const (
	glyphVoid    = ' '
	glyphFloor   = '.'
	glyphStep    = ':'
	glyphWall    = '#'
	glyphTrigger = '~'
)

// Status is what the screen shows about the controlled body.
type Status struct {
	Position         mgl64.Vec3
	Yaw              float64
	Pitch            float64
	Speed            float64
	VerticalVelocity float64
	Grounded         bool
	FreeFalling      bool
	VelocityZ        float64
	VelocityY        float64
	LastClip         string
	Zones            []int
	LookSensitivity  float64
}

// classify picks the glyph for the world column under one cell, relative to the body's
// feet at y.
func classify(world *physics.World, x0, x1, z0, z1, y float64) (rune, tcell.Style) {
	box := physics.NewAABB(mgl64.Vec3{x0, y - viewDepth, z0}, mgl64.Vec3{x1, y + viewDepth, z1})
	glyph, style, rank := glyphVoid, styleVoid, 0
	for _, c := range world.Overlapping(box, locomotion.AllLayers) {
		var g rune
		var s tcell.Style
		var r int
		switch {
		case c.Trigger:
			g, s, r = glyphTrigger, styleTrigger, 2
		case c.Box.Max.Y() > y+stepHeight:
			g, s, r = glyphWall, styleWall, 4
		case c.Box.Max.Y() > y+0.01:
			g, s, r = glyphStep, styleStep, 3
		default:
			g, s, r = glyphFloor, styleFloor, 1
		}
		if r > rank {
			glyph, style, rank = g, s, r
		}
	}
	return glyph, style
}

// headingGlyph points toward yaw on a north-up map (+Z up, +X right).
func headingGlyph(yaw float64) rune {
	a := math.Mod(yaw+360+45, 360)
	switch int(a / 90) {
	case 0:
		return '^'
	case 1:
		return '>'
	case 2:
		return 'v'
	default:
		return '<'
	}
}

// draw renders a top-down view centered on the body, the status line and the message or
// command line.
func draw(screen tcell.Screen, world *physics.World, st Status, bottom string) {
	screen.Clear()
	w, h := screen.Size()
	mapRows := h - 2
	if mapRows < 1 || w < 1 {
		screen.Show()
		return
	}

	cx, cy := w/2, mapRows/2
	p := st.Position
	if world != nil {
		for row := 0; row < mapRows; row++ {
			zc := p.Z() - float64(row-cy)*cellHeight
			for col := 0; col < w; col++ {
				xc := p.X() + float64(col-cx)*cellWidth
				g, s := classify(world, xc-cellWidth/2, xc+cellWidth/2, zc-cellHeight/2, zc+cellHeight/2, p.Y())
				screen.SetContent(col, row, g, nil, s)
			}
		}
	}
	screen.SetContent(cx, cy, headingGlyph(st.Yaw), nil, stylePlayer)

	drawText(screen, 0, h-2, w, statusLine(st), styleStatus)
	drawText(screen, 0, h-1, w, bottom, tcell.StyleDefault)
	screen.Show()
}

func statusLine(st Status) string {
	ground := "air"
	switch {
	case st.Grounded:
		ground = "grounded"
	case st.FreeFalling:
		ground = "freefall"
	}
	line := fmt.Sprintf(" SPD %.2f  VY %6.2f  %-8s  YAW %6.1f  PIT %5.1f  BLEND %.2f,%.2f  X %.2f Y %.2f Z %.2f",
		st.Speed, st.VerticalVelocity, ground, st.Yaw, st.Pitch, st.VelocityZ, st.VelocityY,
		st.Position.X(), st.Position.Y(), st.Position.Z())
	if len(st.Zones) > 0 {
		line += fmt.Sprintf("  ZONE %v", st.Zones)
	}
	if st.LastClip != "" {
		line += "  STEP " + st.LastClip
	}
	return line
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= width {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}
