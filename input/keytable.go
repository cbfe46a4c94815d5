package input

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that can't be bare single-char TOML keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
	"plus":      '+',
	"minus":     '-',
}

// keysByName is the reverse of tcell.KeyNames, lowercased
var keysByName = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// KeyTable maps keys to actions
type KeyTable struct {
	// Special keys (Ctrl+*, arrows, function keys)
	SpecialKeys map[tcell.Key]Action

	// Printable rune bindings
	Runes map[rune]Action
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]Action{
			tcell.KeyCtrlC:  ActionQuit,
			tcell.KeyEscape: ActionQuit,
			tcell.KeyPgDn:   ActionNextPattern,
			tcell.KeyPgUp:   ActionPreviousPattern,
			tcell.KeyDelete: ActionClearAll,
			tcell.KeyUp:     ActionPlayerUp,
			tcell.KeyDown:   ActionPlayerDown,
			tcell.KeyLeft:   ActionPlayerLeft,
			tcell.KeyRight:  ActionPlayerRight,
		},

		Runes: map[rune]Action{
			'q': ActionQuit,
			'p': ActionTogglePause,
			'n': ActionNextPattern,
			'N': ActionPreviousPattern,
			' ': ActionSpawnOne,
			'r': ActionReset,
			'x': ActionClearAll,
			'e': ActionEditCurrent,
			'S': ActionSnapshot,

			// Emitter origin
			'i': ActionOriginUp,
			'k': ActionOriginDown,
			'j': ActionOriginLeft,
			'l': ActionOriginRight,

			// Camera
			'w': ActionPanUp,
			's': ActionPanDown,
			'a': ActionPanLeft,
			'd': ActionPanRight,
			'+': ActionZoomIn,
			'=': ActionZoomIn,
			'-': ActionZoomOut,

			// Playfield and rank
			']': ActionGrowPlayfield,
			'[': ActionShrinkPlayfield,
			'>': ActionRankUp,
			'<': ActionRankDown,
		},
	}
}

// Clone returns a deep copy
func (kt *KeyTable) Clone() *KeyTable {
	c := &KeyTable{
		SpecialKeys: make(map[tcell.Key]Action, len(kt.SpecialKeys)),
		Runes:       make(map[rune]Action, len(kt.Runes)),
	}
	for k, v := range kt.SpecialKeys {
		c.SpecialKeys[k] = v
	}
	for k, v := range kt.Runes {
		c.Runes[k] = v
	}
	return c
}

// Lookup resolves a key event, ActionNone when unbound
func (kt *KeyTable) Lookup(ev *tcell.EventKey) Action {
	if ev.Key() == tcell.KeyRune {
		return kt.Runes[ev.Rune()]
	}
	return kt.SpecialKeys[ev.Key()]
}

// LoadKeyConfig parses key name → action name bindings into a sparse override KeyTable
// Single characters and aliases bind runes, anything else must be a tcell key name
func LoadKeyConfig(bindings map[string]string) (*KeyTable, error) {
	kt := &KeyTable{
		SpecialKeys: make(map[tcell.Key]Action),
		Runes:       make(map[rune]Action),
	}

	for keyStr, actionName := range bindings {
		a, err := ParseAction(actionName)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyStr, err)
		}

		if r, ok := resolveRune(keyStr); ok {
			kt.Runes[r] = a
			continue
		}

		k, ok := keysByName[strings.ToLower(keyStr)]
		if !ok {
			return nil, fmt.Errorf("unknown key name: %q", keyStr)
		}
		kt.SpecialKeys[k] = a
	}

	return kt, nil
}

// resolveRune accepts single characters and named aliases
func resolveRune(s string) (rune, bool) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, true
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], true
	}
	return 0, false
}

// MergeKeyTable returns a new KeyTable with base values overridden
// Override entries bound to ActionNone delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()
	if override == nil {
		return result
	}
	mergeMap(result.SpecialKeys, override.SpecialKeys)
	mergeMap(result.Runes, override.Runes)
	return result
}

func mergeMap[K comparable](base, override map[K]Action) {
	for k, v := range override {
		if v == ActionNone {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
}
