package engine

import (
	"github.com/tliron/commonlog"

	"github.com/lixenwraith/vi-danmaku/vmath"
)

var log = commonlog.GetLogger("danmaku.engine")

// TargetFunc returns the current target position in the pool's convention
type TargetFunc func() vmath.Vec2

// PoolConfig holds the per-session settings injected into a MoverPool
type PoolConfig struct {
	Playfield  vmath.Vec2
	Convention Convention
	Random     RandomSource
	Sprites    SpriteSheet
	Target     TargetFunc
	Rank       float64
}

// MoverPool owns every live mover and implements Host for the interpreter
// Not safe for concurrent use, the simulation goroutine owns it
type MoverPool struct {
	movers []*Mover

	playfield  vmath.Vec2
	convention Convention
	random     RandomSource
	sprites    SpriteSheet
	target     TargetFunc
	rank       float64

	updating bool
	spawned  uint64
	culled   uint64
}

var _ Host = (*MoverPool)(nil)

// NewMoverPool creates an empty pool
func NewMoverPool(cfg PoolConfig) *MoverPool {
	if cfg.Random == nil {
		cfg.Random = NewFastRandSource(1)
	}
	if len(cfg.Sprites) == 0 {
		cfg.Sprites = DefaultSprites()
	}
	if cfg.Target == nil {
		center := cfg.Playfield.Scale(0.5)
		cfg.Target = func() vmath.Vec2 { return center }
	}
	return &MoverPool{
		movers:     make([]*Mover, 0, 256),
		playfield:  cfg.Playfield,
		convention: cfg.Convention,
		random:     cfg.Random,
		sprites:    cfg.Sprites,
		target:     cfg.Target,
		rank:       vmath.Clamp(cfg.Rank, 0, 1),
	}
}

// ===== HOST CAPABILITIES =====

// Spawn allocates a live mover and appends it to the pool
// During Update the new mover is culled and reclaimed this tick but first advanced next tick
func (p *MoverPool) Spawn(kind Kind) *Mover {
	m := &Mover{
		Kind:   kind,
		Scale:  1,
		Tint:   ColorWhite,
		alive:  true,
		visual: p.sprites[0],
	}
	p.movers = append(p.movers, m)
	p.spawned++
	return m
}

// Despawn marks m dead, removal happens in the reclamation pass
func (p *MoverPool) Despawn(m *Mover) {
	if m != nil {
		m.alive = false
	}
}

// TargetPosition returns the single global target, requester is ignored
func (p *MoverPool) TargetPosition(_ *Mover) vmath.Vec2 {
	return p.target()
}

func (p *MoverPool) RandomFloat() float64 {
	return p.random.Float64()
}

// RandomInt returns an integer in [min, max), or min for an empty range
func (p *MoverPool) RandomInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + p.random.IntN(max-min)
}

func (p *MoverPool) Convention() Convention { return p.convention }

func (p *MoverPool) Rank() float64 { return p.rank }

// ===== TICK =====

// Update advances the movers alive at tick start, then culls and reclaims
func (p *MoverPool) Update(dt float64) {
	p.updating = true
	n := len(p.movers)
	for i := 0; i < n; i++ {
		m := p.movers[i]
		if !m.alive || m.Script == nil {
			continue
		}
		m.Script.Advance(m, dt)
	}
	p.updating = false

	for _, m := range p.movers {
		if !m.alive {
			continue
		}
		m.rebind(p.sprites)
		if m.outOfBounds(p.playfield) {
			m.alive = false
			p.culled++
			continue
		}
		if m.Kind == KindRoot && (m.Script == nil || m.Script.Finished()) {
			m.alive = false
		}
	}

	p.reclaim()
}

// reclaim compacts the pool in place, preserving insertion order
func (p *MoverPool) reclaim() {
	live := p.movers[:0]
	for _, m := range p.movers {
		if m.alive {
			live = append(live, m)
		}
	}
	for i := len(live); i < len(p.movers); i++ {
		p.movers[i] = nil
	}
	p.movers = live
}

// Clear empties the pool unconditionally
func (p *MoverPool) Clear() {
	if p.updating {
		// Interpreter callbacks must not clear the pool they are iterated from
		log.Warning("clear requested during update, ignored")
		return
	}
	for i := range p.movers {
		p.movers[i].alive = false
		p.movers[i] = nil
	}
	p.movers = p.movers[:0]
}

// ===== ACCESSORS =====

// Len returns the number of movers including roots
func (p *MoverPool) Len() int { return len(p.movers) }

// Movers returns the pool contents in insertion order, callers must not retain the slice
func (p *MoverPool) Movers() []*Mover { return p.movers }

// Roots counts live root movers
func (p *MoverPool) Roots() int {
	n := 0
	for _, m := range p.movers {
		if m.Kind == KindRoot {
			n++
		}
	}
	return n
}

// Bullets counts live pooled movers, the figure shown in the overlay
func (p *MoverPool) Bullets() int { return len(p.movers) - p.Roots() }

func (p *MoverPool) Playfield() vmath.Vec2 { return p.playfield }

func (p *MoverPool) SetPlayfield(size vmath.Vec2) { p.playfield = size }

func (p *MoverPool) SetRank(rank float64) { p.rank = vmath.Clamp(rank, 0, 1) }

// SetRandom swaps the random source, used to replay a seed from the start
func (p *MoverPool) SetRandom(r RandomSource) {
	if r != nil {
		p.random = r
	}
}

func (p *MoverPool) Sprites() SpriteSheet { return p.sprites }

// Totals returns lifetime spawn and cull counters
func (p *MoverPool) Totals() (spawned, culled uint64) { return p.spawned, p.culled }
