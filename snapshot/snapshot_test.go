package snapshot

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/vi-danmaku/bulletml"
	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

const spread = `<bulletml>
  <action label="top">
    <repeat><times>40</times><action>
      <fire>
        <direction type="absolute">$rand * 360</direction>
        <speed>1 + $rand * 2 + $rank</speed>
        <bullet/>
      </fire>
      <wait>1</wait>
    </action></repeat>
  </action>
</bulletml>`

// run simulates the spread pattern for ticks frames and returns the encoded pool
func run(t *testing.T, seed uint64, ticks int) []byte {
	t.Helper()
	p, err := bulletml.Parse("spread.xml", strings.NewReader(spread))
	if err != nil {
		t.Fatal(err)
	}
	src, _ := engine.NewRandomSource(seed)
	pool := engine.NewMoverPool(engine.PoolConfig{
		Playfield: vmath.V(400, 400),
		Random:    src,
		Rank:      0.5,
	})
	root := pool.Spawn(engine.KindRoot)
	root.Pos = vmath.V(200, 200)
	if err := bulletml.NewInterpreter(pool).BindRoot(root, p); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < ticks; i++ {
		pool.Update(1.0 / 60)
	}

	data, err := Marshal(Capture(pool, Meta{Pattern: "spread.xml", Tick: uint64(ticks), Seed: seed}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

func TestSameSeedSameBytes(t *testing.T) {
	a := run(t, 42, 90)
	b := run(t, 42, 90)
	if !bytes.Equal(a, b) {
		t.Fatal("same seed produced different snapshots")
	}
	if c := run(t, 43, 90); bytes.Equal(a, c) {
		t.Error("different seeds produced identical snapshots")
	}
}

func TestWriteReadFile(t *testing.T) {
	pool := engine.NewMoverPool(engine.PoolConfig{Playfield: vmath.V(10, 20)})
	m := pool.Spawn(engine.KindPooled)
	m.Pos = vmath.V(1, 2)
	m.Sprite = 3
	dead := pool.Spawn(engine.KindPooled)
	pool.Despawn(dead)

	s := Capture(pool, Meta{Pattern: "patterns/a.xml", Tick: 7, Origin: vmath.V(5, 5)})
	if len(s.Movers) != 1 {
		t.Fatalf("dead movers must not be captured, got %d", len(s.Movers))
	}

	path, err := WriteFile(filepath.Join(t.TempDir(), "snaps"), s)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Base(path) != "a-00000007.cbor" {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Tick != 7 || got.Playfield != [2]float64{10, 20} || got.Origin != [2]float64{5, 5} {
		t.Errorf("header = %+v", got)
	}
	if got.Movers[0] != s.Movers[0] {
		t.Errorf("mover = %+v, want %+v", got.Movers[0], s.Movers[0])
	}
}

func TestUnmarshalRejectsVersion(t *testing.T) {
	data, err := Marshal(&Snapshot{Version: Version + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Error("expected version error")
	}
	if _, err := Unmarshal([]byte{0xff}); err == nil {
		t.Error("expected decode error")
	}
}
