package engine

// Sprite is the visual a mover is drawn with
// Width and Height are in playfield units and drive the culling margin
type Sprite struct {
	Glyph  rune
	Width  float64
	Height float64
	Color  Color
}

// SpriteSheet is the ordered set of sprites a pattern may select by index
type SpriteSheet []Sprite

// DefaultSprites is the built-in sheet of seven bullet sprites
func DefaultSprites() SpriteSheet {
	return SpriteSheet{
		{Glyph: '•', Width: 8, Height: 8, Color: RGBA(255, 255, 255, 255)},
		{Glyph: '●', Width: 12, Height: 12, Color: RGBA(255, 96, 96, 255)},
		{Glyph: '○', Width: 12, Height: 12, Color: RGBA(96, 160, 255, 255)},
		{Glyph: '◆', Width: 10, Height: 10, Color: RGBA(255, 220, 64, 255)},
		{Glyph: '✦', Width: 10, Height: 10, Color: RGBA(160, 255, 128, 255)},
		{Glyph: '*', Width: 6, Height: 6, Color: RGBA(255, 128, 255, 255)},
		{Glyph: '◉', Width: 16, Height: 16, Color: RGBA(255, 160, 64, 255)},
	}
}

// Lookup returns the sprite at index i, ok=false when out of range
func (s SpriteSheet) Lookup(i int) (Sprite, bool) {
	if i < 0 || i >= len(s) {
		return Sprite{}, false
	}
	return s[i], true
}
