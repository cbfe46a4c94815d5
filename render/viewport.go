package render

import (
	"math"

	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/sim"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

// CellAspect is the height of a terminal cell relative to its width
const CellAspect = 2.0

// Viewport maps playfield units onto a block of terminal cells
// At zoom 1 the whole playfield fits the viewport
type Viewport struct {
	X, Y          int // top-left cell
	Width, Height int
	Camera        sim.Camera
	Playfield     vmath.Vec2
	Convention    engine.Convention
}

// scale returns cells per playfield unit along x
func (v Viewport) scale() float64 {
	if v.Playfield.X <= 0 || v.Playfield.Y <= 0 {
		return 1
	}
	fit := math.Min(float64(v.Width)/v.Playfield.X, float64(v.Height)*CellAspect/v.Playfield.Y)
	zoom := v.Camera.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return fit * zoom
}

// Project converts a playfield point to a cell, ok=false when outside the viewport
func (v Viewport) Project(p vmath.Vec2) (x, y int, ok bool) {
	s := v.scale()
	d := p.Sub(v.Camera.Pos)
	if v.Convention == engine.YUp {
		d.Y = -d.Y
	}
	fx := float64(v.Width)/2 + d.X*s
	fy := float64(v.Height)/2 + d.Y*s/CellAspect
	x, y = v.X+int(math.Floor(fx)), v.Y+int(math.Floor(fy))
	ok = x >= v.X && x < v.X+v.Width && y >= v.Y && y < v.Y+v.Height
	return x, y, ok
}

// Bounds returns the cell rectangle covered by the playfield, clipped to the viewport
func (v Viewport) Bounds() (x0, y0, x1, y1 int) {
	ax, ay, _ := v.Project(vmath.Vec2{})
	bx, by, _ := v.Project(v.Playfield)
	x0, x1 = min(ax, bx), max(ax, bx)
	y0, y1 = min(ay, by), max(ay, by)
	x0, y0 = max(x0, v.X), max(y0, v.Y)
	x1, y1 = min(x1, v.X+v.Width-1), min(y1, v.Y+v.Height-1)
	return
}
