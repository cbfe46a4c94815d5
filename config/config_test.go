package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/vi-danmaku/asset"
	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/pattern"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Load("", false, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.TickRate != 60 || c.Rank != 0.5 || !c.Reload.FollowSelection {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.ReloadPolicy() != pattern.ReloadDiscard {
		t.Error("default policy should discard")
	}
	if c.Reload.PollInterval != 10*time.Millisecond {
		t.Errorf("poll interval = %s", c.Reload.PollInterval)
	}
	sheet, err := c.SpriteSheet()
	if err != nil || len(sheet) != len(engine.DefaultSprites()) {
		t.Errorf("default sprite sheet: %v, %d", err, len(sheet))
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.toml", `
patterns_dir = "patterns"
convention = "y-up"
seed = 99

[playfield]
width = 320

[reload]
policy = "preserve"
poll_interval = "25ms"

[editor]
command = ["vim", "-n"]

[[sprites]]
glyph = "o"
width = 4
height = 4
color = "#00ff00"

[keys]
space = "pause"
`)
	c, err := Load(path, false, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Source != path || c.PatternsDir != "patterns" || c.Seed != 99 {
		t.Errorf("top level not decoded: %+v", c)
	}
	if c.CoordinateConvention() != engine.YUp {
		t.Error("convention")
	}
	if c.Playfield.Width != 320 || c.Playfield.Height != 640 {
		t.Errorf("playfield = %+v, height should keep its default", c.Playfield)
	}
	if c.ReloadPolicy() != pattern.ReloadPreserve || c.Reload.PollInterval != 25*time.Millisecond {
		t.Errorf("reload = %+v", c.Reload)
	}
	if !c.Reload.FollowSelection {
		t.Error("omitted follow_selection should keep its default")
	}
	if len(c.Editor.Command) != 2 || c.Keys["space"] != "pause" {
		t.Errorf("editor/keys = %v/%v", c.Editor.Command, c.Keys)
	}
	sheet, err := c.SpriteSheet()
	if err != nil || len(sheet) != 1 || sheet[0].Glyph != 'o' || sheet[0].Color != engine.RGBA(0, 255, 0, 255) {
		t.Errorf("sheet = %v, %v", sheet, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")
	if _, err := Load(missing, false, ""); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("required missing file: %v", err)
	}
	if _, err := Load(missing, true, ""); err != nil {
		t.Errorf("optional missing file: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "DANMAKU_SEED=5\nDANMAKU_RANK=0.25\nDANMAKU_EDITOR=code --wait\n")
	t.Setenv("DANMAKU_SEED", "7")

	c, err := Load("", false, envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Seed != 7 {
		t.Errorf("process env should win over .env, seed = %d", c.Seed)
	}
	if c.Rank != 0.25 {
		t.Errorf("rank = %g", c.Rank)
	}
	if strings.Join(c.Editor.Command, " ") != "code --wait" {
		t.Errorf("editor = %v", c.Editor.Command)
	}
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("DANMAKU_TICK_RATE", "fast")
	_, err := Load("", false, "")
	if err == nil || !strings.Contains(err.Error(), "DANMAKU_TICK_RATE") {
		t.Errorf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(c *Config)
	}{
		{"playfield", func(c *Config) { c.Playfield.Width = 0 }},
		{"tick rate", func(c *Config) { c.TickRate = -1 }},
		{"rank", func(c *Config) { c.Rank = 2 }},
		{"poll", func(c *Config) { c.Reload.PollInterval = 0 }},
		{"convention", func(c *Config) { c.Convention = "sideways" }},
		{"policy", func(c *Config) { c.Reload.Policy = "retry" }},
		{"sprite glyph", func(c *Config) { c.Sprites = []Sprite{{Glyph: "ab", Width: 1, Height: 1}} }},
		{"sprite color", func(c *Config) { c.Sprites = []Sprite{{Glyph: "a", Width: 1, Height: 1, Color: "#zz"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mod(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	c := Default()
	c.Seed = 3
	c.Journal.Path = "j.db"

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(set)
	if err := set.Parse([]string{"-rank", "0.9", "-journal", "", "-editor", "nano -w", "-width", "100"}); err != nil {
		t.Fatal(err)
	}
	if err := f.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if c.Rank != 0.9 || c.Playfield.Width != 100 {
		t.Errorf("set flags not applied: %+v", c)
	}
	if c.Journal.Path != "" {
		t.Error("explicit empty journal should disable it")
	}
	if c.Seed != 3 {
		t.Error("unset flag must not override")
	}
	if len(c.Editor.Command) != 2 {
		t.Errorf("editor = %v", c.Editor.Command)
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sample.toml", asset.DefaultConfig)
	c, err := Load(path, false, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Default()
	if c.Playfield != d.Playfield || c.Reload != d.Reload || c.Journal != d.Journal || c.Snapshot != d.Snapshot {
		t.Errorf("sample config drifted from defaults:\n%+v\n%+v", c, d)
	}
	if c.Rank != d.Rank || c.TickRate != d.TickRate || c.Convention != d.Convention || c.PatternsDir != d.PatternsDir {
		t.Errorf("sample config drifted from defaults:\n%+v\n%+v", c, d)
	}
}
