package engine

import "github.com/lixenwraith/vi-danmaku/vmath"

// PlayerSpeed is the target's movement speed in playfield units per second
const PlayerSpeed = 500

// Player is the aim target patterns query through Host.TargetPosition
type Player struct {
	pos        vmath.Vec2
	playfield  vmath.Vec2
	convention Convention
}

// NewPlayer places the target centered horizontally, a tenth of the field from the near edge
func NewPlayer(playfield vmath.Vec2, convention Convention) *Player {
	p := &Player{playfield: playfield, convention: convention}
	p.Reset()
	return p
}

// Reset moves the target back to its start position
func (p *Player) Reset() {
	y := p.playfield.Y * 0.9
	if p.convention == YUp {
		y = p.playfield.Y * 0.1
	}
	p.pos = vmath.V(p.playfield.X/2, y)
}

// Position satisfies TargetFunc
func (p *Player) Position() vmath.Vec2 { return p.pos }

// Move displaces the target along dir (screen orientation, y down) and clamps to the playfield
func (p *Player) Move(dir vmath.Vec2, dt float64) {
	if p.convention == YUp {
		dir.Y = -dir.Y
	}
	p.pos = p.pos.Add(dir.Scale(PlayerSpeed*dt)).Clamp(vmath.Vec2{}, p.playfield)
}

// SetPlayfield updates the clamp area after a resize
func (p *Player) SetPlayfield(size vmath.Vec2) {
	p.playfield = size
	p.pos = p.pos.Clamp(vmath.Vec2{}, size)
}
