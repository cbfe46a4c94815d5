package sim

import (
	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

// Commands posted to the driver inbox, applied on the simulation goroutine

type TogglePause struct{}

type NextPattern struct{}

type PreviousPattern struct{}

// SpawnOne adds a root at the origin without clearing the pool
type SpawnOne struct{}

// Reset clears the pool and reseeds the current pattern
type Reset struct{}

type ClearAll struct{}

// EditCurrent opens the selected pattern in the external editor and watches it
type EditCurrent struct{}

// MoveOrigin nudges the emitter origin by one key step in Dir
type MoveOrigin struct{ Dir vmath.Vec2 }

// MovePlayer nudges the target by one key step in Dir
type MovePlayer struct{ Dir vmath.Vec2 }

// PanCamera nudges the view by one key step in Dir, in screen orientation
type PanCamera struct{ Dir vmath.Vec2 }

type ZoomCamera struct{ Delta float64 }

// ResizePlayfield grows the playfield by Factor of its current size
type ResizePlayfield struct{ Factor float64 }

type AdjustRank struct{ Delta float64 }

// TakeSnapshot writes the pool state to the snapshot directory
type TakeSnapshot struct{}

// Resize reports a new terminal size to the renderer
type Resize struct{ Width, Height int }

type Quit struct{}

// Reloaded carries a reparse result from the watcher
type Reloaded struct {
	Index   int
	Path    string
	Pattern engine.Pattern
	Err     error
}

// envelope lets a sender wait until its command was applied
type envelope struct {
	cmd  any
	done chan struct{}
}
