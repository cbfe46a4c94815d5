// Package snapshot serializes pool state as canonical CBOR
// Identical simulations produce byte-identical snapshots
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

// Version is bumped when the encoded layout changes
const Version = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Mover is the persisted subset of an engine mover
type Mover struct {
	Kind     uint8   `cbor:"1,keyasint"`
	X        float64 `cbor:"2,keyasint"`
	Y        float64 `cbor:"3,keyasint"`
	Sprite   int     `cbor:"4,keyasint"`
	Rotation float64 `cbor:"5,keyasint"`
	Scale    float64 `cbor:"6,keyasint"`
	Tint     uint32  `cbor:"7,keyasint"`
}

// Snapshot is one captured simulation state
type Snapshot struct {
	Version   int        `cbor:"1,keyasint"`
	Pattern   string     `cbor:"2,keyasint"`
	Tick      uint64     `cbor:"3,keyasint"`
	Seed      uint64     `cbor:"4,keyasint"`
	Rank      float64    `cbor:"5,keyasint"`
	Playfield [2]float64 `cbor:"6,keyasint"`
	Origin    [2]float64 `cbor:"7,keyasint"`
	Target    [2]float64 `cbor:"8,keyasint"`
	Movers    []Mover    `cbor:"9,keyasint"`
}

// Meta is the session state captured alongside the movers
type Meta struct {
	Pattern string
	Tick    uint64
	Seed    uint64
	Origin  vmath.Vec2
	Target  vmath.Vec2
}

func pair(v vmath.Vec2) [2]float64 { return [2]float64{v.X, v.Y} }

// Capture copies the live movers of a pool
func Capture(pool *engine.MoverPool, meta Meta) *Snapshot {
	s := &Snapshot{
		Version:   Version,
		Pattern:   meta.Pattern,
		Tick:      meta.Tick,
		Seed:      meta.Seed,
		Rank:      pool.Rank(),
		Playfield: pair(pool.Playfield()),
		Origin:    pair(meta.Origin),
		Target:    pair(meta.Target),
		Movers:    make([]Mover, 0, pool.Len()),
	}
	for _, m := range pool.Movers() {
		if !m.Alive() {
			continue
		}
		s.Movers = append(s.Movers, Mover{
			Kind:     uint8(m.Kind),
			X:        m.Pos.X,
			Y:        m.Pos.Y,
			Sprite:   m.Sprite,
			Rotation: m.Rotation,
			Scale:    m.Scale,
			Tint:     uint32(m.Tint),
		})
	}
	return s
}

// Marshal encodes a snapshot in canonical CBOR
func Marshal(s *Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

// Unmarshal decodes a snapshot
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	return &s, nil
}

// FileName is the snapshot file name for a pattern and tick
func FileName(s *Snapshot) string {
	base := strings.TrimSuffix(filepath.Base(s.Pattern), filepath.Ext(s.Pattern))
	if base == "" || base == "." {
		base = "pool"
	}
	return fmt.Sprintf("%s-%08d.cbor", base, s.Tick)
}

// WriteFile stores a snapshot under dir and returns its path
func WriteFile(dir string, s *Snapshot) (string, error) {
	data, err := Marshal(s)
	if err != nil {
		return "", fmt.Errorf("snapshot: marshal: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("snapshot: creating directory: %w", err)
	}
	path := filepath.Join(dir, FileName(s))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("snapshot: writing %s: %w", path, err)
	}
	return path, nil
}

// ReadFile loads a snapshot written by WriteFile
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading %s: %w", path, err)
	}
	return Unmarshal(data)
}
