package asset

import (
	"io/fs"
	"path"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/vi-danmaku/bulletml"
)

func TestEmbeddedPatternsParse(t *testing.T) {
	names, err := fs.Glob(Patterns(), path.Join(PatternsRoot, "*.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(names) < 4 {
		t.Fatalf("embedded patterns = %v", names)
	}
	for _, name := range names {
		f, err := Patterns().Open(name)
		if err != nil {
			t.Fatal(err)
		}
		p, err := bulletml.Parse(name, f)
		f.Close()
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if len(p.TopActions()) == 0 {
			t.Errorf("%s has no top action", name)
		}
	}
}

func TestDefaultConfigDecodes(t *testing.T) {
	var raw map[string]any
	md, err := toml.Decode(DefaultConfig, &raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"patterns_dir", "playfield.width", "reload.policy", "journal.path"} {
		if !md.IsDefined(strings.Split(key, ".")...) {
			t.Errorf("%s missing from default config", key)
		}
	}
}
