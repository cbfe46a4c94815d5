package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/mitchellh/go-wordwrap"

	"github.com/lixenwraith/vi-danmaku/sim"
)

// StatusLine formats the diagnostics line
func StatusLine(f *sim.Frame) string {
	s := f.Stats
	var b strings.Builder
	fmt.Fprintf(&b, "FPS %3.0f | %s [%d/%d] | upd %.2fms rnd %.2fms | movers %d (%d bullets) | culled %d/%d | rank %.2f",
		s.FPS, f.Pattern, f.PatternIndex+1, f.PatternCount,
		float64(s.UpdateTime.Microseconds())/1000, float64(s.RenderTime.Microseconds())/1000,
		s.Movers, s.Bullets, s.Culled, s.Spawned, s.Rank)
	if s.Paused {
		b.WriteString(" | PAUSED")
	}
	if f.Stale {
		b.WriteString(" | STALE")
	}
	if f.Status != "" {
		b.WriteString(" | ")
		b.WriteString(f.Status)
	}
	return b.String()
}

// WrapText wraps text to width display cells
// Words longer than a line are hard split
func WrapText(text string, width int) []string {
	if width <= 0 || text == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(wordwrap.WrapString(text, uint(width)), "\n") {
		for runewidth.StringWidth(line) > width {
			head := runewidth.Truncate(line, width, "")
			if head == "" {
				break
			}
			out = append(out, head)
			line = line[len(head):]
		}
		out = append(out, line)
	}
	return out
}

// drawText writes s at (x, y) clipped to maxWidth cells, returns the cells used
func drawText(screen tcell.Screen, x, y, maxWidth int, s string, style tcell.Style) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > maxWidth {
			break
		}
		screen.SetContent(x+used, y, r, nil, style)
		used += w
	}
	return used
}

// drawOverlay paints the status bar on the top row and the error text at the bottom
// Returns the number of bottom rows taken by the error
func (r *TerminalRenderer) drawOverlay(f *sim.Frame) int {
	barStyle := tcell.StyleDefault.Foreground(RgbStatusBar).Background(RgbStatusBg)
	switch {
	case f.Stats.Paused:
		barStyle = barStyle.Foreground(RgbPaused)
	case f.Stale:
		barStyle = barStyle.Foreground(RgbStale)
	}
	line := StatusLine(f)
	used := drawText(r.screen, 0, 0, r.width, line, barStyle)
	for x := used; x < r.width; x++ {
		r.screen.SetContent(x, 0, ' ', nil, barStyle)
	}

	if f.Error == "" {
		return 0
	}
	lines := WrapText(f.Error, r.width)
	// keep at least the status bar and one playfield row
	if maxLines := r.height - 2; len(lines) > maxLines {
		if maxLines < 0 {
			maxLines = 0
		}
		lines = lines[:maxLines]
	}
	errStyle := tcell.StyleDefault.Foreground(RgbError).Background(RgbStatusBg)
	top := r.height - len(lines)
	for i, l := range lines {
		drawText(r.screen, 0, top+i, r.width, l, errStyle)
	}
	return len(lines)
}
