package engine

import "github.com/lixenwraith/vi-danmaku/vmath"

// Mover is one simulated projectile owned by a MoverPool
// Position and visual attributes are written by the interpreter through Script.Advance
type Mover struct {
	Pos      vmath.Vec2
	Sprite   int     // requested sprite index, rebound on the next tick
	Rotation float64 // degrees
	Scale    float64
	Tint     Color

	Kind   Kind
	Script Script

	alive       bool
	boundSprite int
	visual      Sprite
}

// Alive reports whether the mover survives the current tick
func (m *Mover) Alive() bool { return m.alive }

// Visual returns the sprite currently bound to the mover
func (m *Mover) Visual() Sprite { return m.visual }

// BoundSprite returns the index of the bound sprite
func (m *Mover) BoundSprite() int { return m.boundSprite }

// HalfExtents returns the culling margin derived from the bound sprite
func (m *Mover) HalfExtents() vmath.Vec2 {
	return vmath.Vec2{X: m.visual.Width / 2, Y: m.visual.Height / 2}
}

// rebind resolves a changed sprite index, keeping the old visual when out of range
func (m *Mover) rebind(sheet SpriteSheet) {
	if m.Sprite == m.boundSprite {
		return
	}
	if s, ok := sheet.Lookup(m.Sprite); ok {
		m.visual = s
		m.boundSprite = m.Sprite
	}
}

// outOfBounds applies the culling rule against a w x h playfield
// The far edges are inclusive: a mover exactly on W+hw or H+hh is out
func (m *Mover) outOfBounds(size vmath.Vec2) bool {
	h := m.HalfExtents()
	return m.Pos.X < -h.X || m.Pos.X >= size.X+h.X ||
		m.Pos.Y < -h.Y || m.Pos.Y >= size.Y+h.Y
}
