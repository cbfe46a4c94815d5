package render

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/sim"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(screen tcell.Screen, y, w int) string {
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func testFrame(movers []*engine.Mover) *sim.Frame {
	return &sim.Frame{
		Movers:       movers,
		Origin:       vmath.V(10, 10),
		Player:       vmath.V(90, 90),
		Playfield:    vmath.V(100, 100),
		Camera:       sim.Camera{Pos: vmath.V(50, 50), Zoom: 1},
		Pattern:      "a.xml",
		PatternCount: 2,
		Stats:        sim.Stats{FPS: 60, Movers: len(movers), Rank: 0.5, UpdateTime: 1500 * time.Microsecond},
	}
}

func TestDrawMovers(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := NewTerminalRenderer(screen)

	pool := engine.NewMoverPool(engine.PoolConfig{Playfield: vmath.V(100, 100)})
	m := pool.Spawn(engine.KindPooled)
	m.Pos = vmath.V(50, 50)
	root := pool.Spawn(engine.KindRoot)
	root.Pos = vmath.V(50, 50)

	r.Draw(testFrame(pool.Movers()))

	// fit = min(80/100, 23*2/100) = 0.46, center of a 80x23 viewport starting at row 1
	mainc, _, style, _ := screen.GetContent(40, 12)
	if mainc != '•' {
		t.Errorf("mover cell = %q, want bullet glyph", mainc)
	}
	if fg, _, _ := style.Decompose(); fg != moverColor(engine.ColorWhite, engine.ColorWhite) {
		t.Errorf("mover color = %v", fg)
	}

	ox, oy, ok := Viewport{Y: 1, Width: 80, Height: 23, Camera: sim.Camera{Pos: vmath.V(50, 50), Zoom: 1}, Playfield: vmath.V(100, 100)}.Project(vmath.V(10, 10))
	if !ok {
		t.Fatal("origin outside viewport")
	}
	if c, _, _, _ := screen.GetContent(ox, oy); c != originGlyph {
		t.Errorf("origin cell = %q", c)
	}

	if top := rowText(screen, 0, 80); !strings.HasPrefix(top, "FPS  60 | a.xml [1/2]") {
		t.Errorf("status line = %q", top)
	}
}

func TestHiddenMovers(t *testing.T) {
	screen := newScreen(t, 40, 20)
	r := NewTerminalRenderer(screen)
	pool := engine.NewMoverPool(engine.PoolConfig{Playfield: vmath.V(100, 100)})
	m := pool.Spawn(engine.KindPooled)
	m.Pos = vmath.V(50, 50)
	m.Tint = engine.RGBA(255, 255, 255, 0)

	r.Draw(testFrame(pool.Movers()))
	for y := 1; y < 20; y++ {
		if strings.ContainsRune(rowText(screen, y, 40), '•') {
			t.Fatalf("transparent mover drawn on row %d", y)
		}
	}
}

func TestErrorOverlayWraps(t *testing.T) {
	screen := newScreen(t, 20, 10)
	r := NewTerminalRenderer(screen)

	f := testFrame(nil)
	f.Error = "b.xml: XML syntax error on line 1: unexpected EOF"
	r.Draw(f)

	lines := WrapText(f.Error, 20)
	if len(lines) < 3 {
		t.Fatalf("expected the error to wrap, got %q", lines)
	}
	for i, want := range lines {
		y := 10 - len(lines) + i
		got := strings.TrimRight(rowText(screen, y, 20), " ")
		if got != strings.TrimRight(want, " ") {
			t.Errorf("row %d = %q, want %q", y, got, want)
		}
		_, _, style, _ := screen.GetContent(0, y)
		if fg, _, _ := style.Decompose(); fg != RgbError {
			t.Errorf("row %d not drawn in red", y)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short", 10, []string{"short"}},
		{"words", "one two three", 7, []string{"one two", "three"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"wide runes", "日本語テキスト", 6, []string{"日本語", "テキス", "ト"}},
		{"empty", "", 10, nil},
		{"no width", "text", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("WrapText = %q, want %q", got, tt.want)
			}
			for _, l := range got {
				if runewidth.StringWidth(l) > tt.width {
					t.Errorf("line %q wider than %d", l, tt.width)
				}
			}
		})
	}
}

func TestProjectConvention(t *testing.T) {
	vp := Viewport{Width: 40, Height: 20, Camera: sim.Camera{Pos: vmath.V(50, 50), Zoom: 1}, Playfield: vmath.V(100, 100)}

	_, yDown, _ := vp.Project(vmath.V(50, 80))
	vp.Convention = engine.YUp
	_, yUp, _ := vp.Project(vmath.V(50, 80))
	if !(yDown > 10 && yUp < 10) {
		t.Errorf("y-down row %d, y-up row %d", yDown, yUp)
	}

	vp.Camera.Zoom = 10
	if _, _, ok := vp.Project(vmath.V(0, 0)); ok {
		t.Error("corner should leave the viewport at zoom 10")
	}
}

func TestStatusLineFlags(t *testing.T) {
	f := testFrame(nil)
	f.Stats.Paused = true
	f.Stale = true
	f.Status = "reloaded a.xml"
	f.Stats.Bullets = 3
	f.Stats.Spawned = 40
	f.Stats.Culled = 37
	line := StatusLine(f)
	for _, want := range []string{"PAUSED", "STALE", "reloaded a.xml", "upd 1.50ms", "(3 bullets)", "culled 37/40"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line %q lacks %q", line, want)
		}
	}
}

func TestResize(t *testing.T) {
	screen := newScreen(t, 30, 10)
	r := NewTerminalRenderer(screen)
	screen.SetSize(50, 12)
	r.Resize(50, 12)
	r.Draw(testFrame(nil))
	if top := rowText(screen, 0, 50); !strings.HasPrefix(top, "FPS") {
		t.Errorf("status line after resize = %q", top)
	}
}
