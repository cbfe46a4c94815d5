package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/sim"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

const (
	originGlyph = '+'
	playerGlyph = 'A'
)

// TerminalRenderer draws simulation frames on a tcell screen
type TerminalRenderer struct {
	screen tcell.Screen
	width  int
	height int
}

var (
	_ sim.Renderer = (*TerminalRenderer)(nil)
	_ sim.Resizer  = (*TerminalRenderer)(nil)
)

// NewTerminalRenderer creates a renderer sized to the screen
func NewTerminalRenderer(screen tcell.Screen) *TerminalRenderer {
	w, h := screen.Size()
	return &TerminalRenderer{screen: screen, width: w, height: h}
}

// Resize records the new terminal size and repaints everything
func (r *TerminalRenderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.screen.Sync()
}

// Draw renders the playfield, movers and overlay
func (r *TerminalRenderer) Draw(f *sim.Frame) {
	bg := tcell.StyleDefault.Background(RgbBackground)
	r.screen.SetStyle(bg)
	r.screen.Clear()

	if r.width <= 0 || r.height <= 1 {
		r.screen.Show()
		return
	}

	errRows := r.drawOverlay(f)
	vp := Viewport{
		X:          0,
		Y:          1,
		Width:      r.width,
		Height:     r.height - 1 - errRows,
		Camera:     f.Camera,
		Playfield:  f.Playfield,
		Convention: f.Convention,
	}
	if vp.Height > 0 {
		r.drawPlayfield(vp)
		r.drawMovers(vp, f.Movers)
		r.drawMarker(vp, f.Origin, originGlyph, RgbOrigin)
		r.drawMarker(vp, f.Player, playerGlyph, RgbPlayer)
	}

	r.screen.Show()
}

func (r *TerminalRenderer) drawPlayfield(vp Viewport) {
	x0, y0, x1, y1 := vp.Bounds()
	fill := tcell.StyleDefault.Background(RgbPlayfield)
	edge := fill.Foreground(RgbBorder)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ch := ' '
			if y == y0 || y == y1 {
				ch = '─'
			} else if x == x0 || x == x1 {
				ch = '│'
			}
			if ch == ' ' {
				r.screen.SetContent(x, y, ch, nil, fill)
			} else {
				r.screen.SetContent(x, y, ch, nil, edge)
			}
		}
	}
}

func (r *TerminalRenderer) drawMovers(vp Viewport, movers []*engine.Mover) {
	for _, m := range movers {
		if !m.Alive() || m.Kind == engine.KindRoot || m.Tint.Alpha() == 0 {
			continue
		}
		x, y, ok := vp.Project(m.Pos)
		if !ok {
			continue
		}
		sp := m.Visual()
		glyph := sp.Glyph
		if glyph == 0 {
			glyph = '•'
		}
		_, _, style, _ := r.screen.GetContent(x, y)
		r.screen.SetContent(x, y, glyph, nil, style.Foreground(moverColor(sp.Color, m.Tint)))
	}
}

func (r *TerminalRenderer) drawMarker(vp Viewport, p vmath.Vec2, glyph rune, color tcell.Color) {
	x, y, ok := vp.Project(p)
	if !ok {
		return
	}
	_, _, style, _ := r.screen.GetContent(x, y)
	r.screen.SetContent(x, y, glyph, nil, style.Foreground(color).Bold(true))
}
