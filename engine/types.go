package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lixenwraith/vi-danmaku/vmath"
)

// Convention selects the vertical axis direction handed to the interpreter
type Convention uint8

const (
	YDown Convention = iota // screen space, y grows toward the bottom
	YUp                     // math space, y grows toward the top
)

func (c Convention) String() string {
	if c == YUp {
		return "y-up"
	}
	return "y-down"
}

// ParseConvention accepts "y-down"/"down" and "y-up"/"up"
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "y-down", "ydown", "down":
		return YDown, nil
	case "y-up", "yup", "up":
		return YUp, nil
	}
	return YDown, fmt.Errorf("unknown coordinate convention %q", s)
}

// Kind tags the behavioral variant of a mover
type Kind uint8

const (
	KindPooled Kind = iota // spawned by a script, lives until despawned or culled
	KindRoot               // seeded by the driver, dies when its script finishes
)

// Color is a packed 0xRRGGBBAA tint
type Color uint32

const ColorWhite Color = 0xFFFFFFFF

func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8)
}

func (c Color) Alpha() uint8 { return uint8(c) }

// ParseColor accepts #RRGGBB and #RRGGBBAA, alpha defaults to opaque
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 6:
		s += "ff"
	case 8:
	default:
		return 0, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad color %q: %w", s, err)
	}
	return Color(v), nil
}

// Host is the capability set the pattern interpreter calls back into
// MoverPool is the production implementation
type Host interface {
	Spawn(kind Kind) *Mover
	Despawn(m *Mover)
	TargetPosition(requester *Mover) vmath.Vec2
	RandomFloat() float64
	RandomInt(min, max int) int
	Convention() Convention
	Rank() float64
}

// Script is the interpreter state attached to one mover
// Advance may mutate the mover and call back into the Host
type Script interface {
	Advance(m *Mover, dt float64)
	Finished() bool
}

// Pattern is a parsed, immutable script definition
type Pattern interface {
	Name() string
}

// Interpreter binds a parsed pattern to a freshly spawned root mover
type Interpreter interface {
	BindRoot(root *Mover, p Pattern) error
}
