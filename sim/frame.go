package sim

import (
	"time"

	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

// Camera maps playfield units to the terminal
// Pos is the playfield point shown at the viewport center
type Camera struct {
	Pos  vmath.Vec2
	Zoom float64
}

const (
	MinZoom = 0.1
	MaxZoom = 10
)

// Stats is the diagnostics line shown by the overlay
type Stats struct {
	Movers     int
	Roots      int
	Bullets    int
	Spawned    uint64
	Culled     uint64
	Tick       uint64
	UpdateTime time.Duration
	RenderTime time.Duration
	FPS        float64
	Paused     bool
	Rank       float64
	Seed       uint64
}

// Frame is everything a renderer needs for one draw
// Movers aliases the pool and is valid only during Draw
type Frame struct {
	Movers     []*engine.Mover
	Origin     vmath.Vec2
	Player     vmath.Vec2
	Playfield  vmath.Vec2
	Convention engine.Convention
	Camera     Camera

	Pattern      string
	PatternIndex int
	PatternCount int
	Stale        bool
	Error        string
	Status       string
	Stats        Stats
}

// Renderer draws frames on the simulation goroutine
type Renderer interface {
	Draw(f *Frame)
}

// Resizer is implemented by renderers that track the terminal size
type Resizer interface {
	Resize(width, height int)
}
