package input

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/vi-danmaku/sim"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

// Action is a named editor operation a key can be bound to
type Action uint8

const (
	ActionNone Action = iota
	ActionQuit
	ActionTogglePause
	ActionNextPattern
	ActionPreviousPattern
	ActionSpawnOne
	ActionReset
	ActionClearAll
	ActionEditCurrent
	ActionOriginUp
	ActionOriginDown
	ActionOriginLeft
	ActionOriginRight
	ActionPlayerUp
	ActionPlayerDown
	ActionPlayerLeft
	ActionPlayerRight
	ActionPanUp
	ActionPanDown
	ActionPanLeft
	ActionPanRight
	ActionZoomIn
	ActionZoomOut
	ActionGrowPlayfield
	ActionShrinkPlayfield
	ActionRankUp
	ActionRankDown
	ActionSnapshot
)

// Step sizes for the adjustable settings
const (
	ZoomStep      = 0.1
	PlayfieldStep = 0.01
	RankStep      = 0.05
)

var (
	up    = vmath.V(0, -1)
	down  = vmath.V(0, 1)
	left  = vmath.V(-1, 0)
	right = vmath.V(1, 0)
)

// actionNames maps config names to actions, "none" unbinds a key
var actionNames = map[string]Action{
	"none":             ActionNone,
	"quit":             ActionQuit,
	"pause":            ActionTogglePause,
	"next_pattern":     ActionNextPattern,
	"previous_pattern": ActionPreviousPattern,
	"spawn":            ActionSpawnOne,
	"reset":            ActionReset,
	"clear":            ActionClearAll,
	"edit":             ActionEditCurrent,
	"origin_up":        ActionOriginUp,
	"origin_down":      ActionOriginDown,
	"origin_left":      ActionOriginLeft,
	"origin_right":     ActionOriginRight,
	"player_up":        ActionPlayerUp,
	"player_down":      ActionPlayerDown,
	"player_left":      ActionPlayerLeft,
	"player_right":     ActionPlayerRight,
	"pan_up":           ActionPanUp,
	"pan_down":         ActionPanDown,
	"pan_left":         ActionPanLeft,
	"pan_right":        ActionPanRight,
	"zoom_in":          ActionZoomIn,
	"zoom_out":         ActionZoomOut,
	"grow_playfield":   ActionGrowPlayfield,
	"shrink_playfield": ActionShrinkPlayfield,
	"rank_up":          ActionRankUp,
	"rank_down":        ActionRankDown,
	"snapshot":         ActionSnapshot,
}

// ParseAction resolves a config action name
func ParseAction(name string) (Action, error) {
	a, ok := actionNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ActionNone, fmt.Errorf("unknown action: %q", name)
	}
	return a, nil
}

func (a Action) String() string {
	for name, v := range actionNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Command returns the driver command for a, nil for ActionNone
func (a Action) Command() any {
	switch a {
	case ActionQuit:
		return sim.Quit{}
	case ActionTogglePause:
		return sim.TogglePause{}
	case ActionNextPattern:
		return sim.NextPattern{}
	case ActionPreviousPattern:
		return sim.PreviousPattern{}
	case ActionSpawnOne:
		return sim.SpawnOne{}
	case ActionReset:
		return sim.Reset{}
	case ActionClearAll:
		return sim.ClearAll{}
	case ActionEditCurrent:
		return sim.EditCurrent{}
	case ActionOriginUp:
		return sim.MoveOrigin{Dir: up}
	case ActionOriginDown:
		return sim.MoveOrigin{Dir: down}
	case ActionOriginLeft:
		return sim.MoveOrigin{Dir: left}
	case ActionOriginRight:
		return sim.MoveOrigin{Dir: right}
	case ActionPlayerUp:
		return sim.MovePlayer{Dir: up}
	case ActionPlayerDown:
		return sim.MovePlayer{Dir: down}
	case ActionPlayerLeft:
		return sim.MovePlayer{Dir: left}
	case ActionPlayerRight:
		return sim.MovePlayer{Dir: right}
	case ActionPanUp:
		return sim.PanCamera{Dir: up}
	case ActionPanDown:
		return sim.PanCamera{Dir: down}
	case ActionPanLeft:
		return sim.PanCamera{Dir: left}
	case ActionPanRight:
		return sim.PanCamera{Dir: right}
	case ActionZoomIn:
		return sim.ZoomCamera{Delta: ZoomStep}
	case ActionZoomOut:
		return sim.ZoomCamera{Delta: -ZoomStep}
	case ActionGrowPlayfield:
		return sim.ResizePlayfield{Factor: PlayfieldStep}
	case ActionShrinkPlayfield:
		return sim.ResizePlayfield{Factor: -PlayfieldStep}
	case ActionRankUp:
		return sim.AdjustRank{Delta: RankStep}
	case ActionRankDown:
		return sim.AdjustRank{Delta: -RankStep}
	case ActionSnapshot:
		return sim.TakeSnapshot{}
	}
	return nil
}
