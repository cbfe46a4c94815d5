package input

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-danmaku/sim"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestDefaultBindings(t *testing.T) {
	h := NewHandler(nil)
	tests := []struct {
		ev   tcell.Event
		want any
	}{
		{key('p'), sim.TogglePause{}},
		{key('n'), sim.NextPattern{}},
		{key('N'), sim.PreviousPattern{}},
		{tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), sim.NextPattern{}},
		{tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), sim.PreviousPattern{}},
		{key(' '), sim.SpawnOne{}},
		{key('r'), sim.Reset{}},
		{tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone), sim.ClearAll{}},
		{key('e'), sim.EditCurrent{}},
		{key('i'), sim.MoveOrigin{Dir: vmath.V(0, -1)}},
		{key('l'), sim.MoveOrigin{Dir: vmath.V(1, 0)}},
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), sim.MovePlayer{Dir: vmath.V(0, 1)}},
		{key('a'), sim.PanCamera{Dir: vmath.V(-1, 0)}},
		{key('+'), sim.ZoomCamera{Delta: ZoomStep}},
		{key('-'), sim.ZoomCamera{Delta: -ZoomStep}},
		{key('['), sim.ResizePlayfield{Factor: -PlayfieldStep}},
		{key('>'), sim.AdjustRank{Delta: RankStep}},
		{key('S'), sim.TakeSnapshot{}},
		{key('q'), sim.Quit{}},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), sim.Quit{}},
		{tcell.NewEventResize(80, 24), sim.Resize{Width: 80, Height: 24}},
		{key('z'), nil},
	}
	for _, tt := range tests {
		if got := h.Translate(tt.ev); got != tt.want {
			t.Errorf("Translate(%v) = %#v, want %#v", tt.ev, got, tt.want)
		}
	}
}

func TestLoadKeyConfig(t *testing.T) {
	override, err := LoadKeyConfig(map[string]string{
		"space": "pause",
		"p":     "none",
		"F5":    "reset",
		"h":     "Origin_Left",
	})
	if err != nil {
		t.Fatalf("LoadKeyConfig: %v", err)
	}
	kt := MergeKeyTable(DefaultKeyTable(), override)

	if got := kt.Runes[' ']; got != ActionTogglePause {
		t.Errorf("space = %v", got)
	}
	if _, ok := kt.Runes['p']; ok {
		t.Error("none should unbind p")
	}
	if got := kt.SpecialKeys[tcell.KeyF5]; got != ActionReset {
		t.Errorf("F5 = %v", got)
	}
	if got := kt.Runes['h']; got != ActionOriginLeft {
		t.Errorf("h = %v", got)
	}
	if got := kt.Runes['r']; got != ActionReset {
		t.Error("untouched bindings should survive the merge")
	}

	if DefaultKeyTable().Runes['p'] != ActionTogglePause {
		t.Error("merge must not modify the base table")
	}
}

func TestLoadKeyConfigErrors(t *testing.T) {
	if _, err := LoadKeyConfig(map[string]string{"p": "explode"}); err == nil {
		t.Error("expected unknown action error")
	}
	if _, err := LoadKeyConfig(map[string]string{"NotAKey": "quit"}); err == nil {
		t.Error("expected unknown key error")
	}
}

func TestActionNames(t *testing.T) {
	for name, a := range actionNames {
		if a.String() != name {
			t.Errorf("%v.String() = %q, want %q", a, a.String(), name)
		}
		if a != ActionNone && a.Command() == nil {
			t.Errorf("%s has no command", name)
		}
	}
}

type fakeSource struct {
	events []tcell.Event
}

func (s *fakeSource) PollEvent() tcell.Event {
	if len(s.events) == 0 {
		return nil
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev
}

type fakeSink struct {
	got    []any
	accept int
}

func (s *fakeSink) Submit(cmd any) bool {
	if s.accept >= 0 && len(s.got) >= s.accept {
		return false
	}
	s.got = append(s.got, cmd)
	return true
}

func TestRunStopsOnQuit(t *testing.T) {
	src := &fakeSource{events: []tcell.Event{key('p'), key('z'), key('q'), key('r')}}
	sink := &fakeSink{accept: -1}
	if err := NewHandler(nil).Run(context.Background(), src, sink); err != nil {
		t.Fatal(err)
	}
	if len(sink.got) != 2 || sink.got[0] != (sim.TogglePause{}) || sink.got[1] != (sim.Quit{}) {
		t.Errorf("submitted %v", sink.got)
	}
	if len(src.events) != 1 {
		t.Error("events after quit should not be consumed")
	}
}

func TestRunStopsWhenDriverStops(t *testing.T) {
	src := &fakeSource{events: []tcell.Event{key('p'), key('r'), key('x')}}
	sink := &fakeSink{accept: 1}
	_ = NewHandler(nil).Run(context.Background(), src, sink)
	if len(sink.got) != 1 || len(src.events) != 1 {
		t.Errorf("submitted %v, left %d", sink.got, len(src.events))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{events: []tcell.Event{tcell.NewEventInterrupt(nil), key('p')}}
	sink := &fakeSink{accept: -1}
	_ = NewHandler(nil).Run(ctx, src, sink)
	if len(sink.got) != 0 {
		t.Errorf("submitted %v after cancel", sink.got)
	}
}

func TestRunWithSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	sink := &fakeSink{accept: -1}
	if err := NewHandler(nil).Run(context.Background(), screen, sink); err != nil {
		t.Fatal(err)
	}
	var spawned bool
	for _, c := range sink.got {
		if c == (sim.SpawnOne{}) {
			spawned = true
		}
	}
	if !spawned || sink.got[len(sink.got)-1] != (sim.Quit{}) {
		t.Errorf("submitted %v", sink.got)
	}
}
