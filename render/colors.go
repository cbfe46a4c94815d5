package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-danmaku/engine"
)

var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbPlayfield  = tcell.NewRGBColor(36, 44, 78)    // Dim cornflower
	RgbBorder     = tcell.NewRGBColor(90, 110, 170)  // Playfield edge
	RgbOrigin     = tcell.NewRGBColor(255, 220, 0)   // Emitter origin
	RgbPlayer     = tcell.NewRGBColor(80, 255, 120)  // Target
	RgbStatusBar  = tcell.NewRGBColor(255, 255, 255) // White
	RgbStatusBg   = tcell.NewRGBColor(0, 0, 0)
	RgbPaused     = tcell.NewRGBColor(255, 165, 0)  // Orange
	RgbStale      = tcell.NewRGBColor(255, 200, 80) // Amber
	RgbError      = tcell.NewRGBColor(255, 0, 0)    // Error Red
)

// moverColor multiplies the sprite color by the mover tint
func moverColor(sprite, tint engine.Color) tcell.Color {
	sr, sg, sb := sprite.RGB()
	tr, tg, tb := tint.RGB()
	mul := func(a, b uint8) int32 { return int32(uint16(a) * uint16(b) / 255) }
	return tcell.NewRGBColor(mul(sr, tr), mul(sg, tg), mul(sb, tb))
}
