// Package config loads the editor settings from TOML, the environment and the command line
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/pattern"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

const (
	DefaultPath    = "vi-danmaku.toml"
	DefaultEnvFile = ".env"
	EnvPrefix      = "DANMAKU_"
)

// Config is the full editor configuration
type Config struct {
	PatternsDir string  `toml:"patterns_dir"`
	Convention  string  `toml:"convention"`
	Seed        uint64  `toml:"seed"`
	Rank        float64 `toml:"rank"`
	TickRate    int     `toml:"tick_rate"`
	Debug       bool    `toml:"debug"`

	Playfield Playfield         `toml:"playfield"`
	Reload    Reload            `toml:"reload"`
	Editor    Editor            `toml:"editor"`
	Journal   Journal           `toml:"journal"`
	Snapshot  Snapshot          `toml:"snapshot"`
	Sprites   []Sprite          `toml:"sprites"`
	Keys      map[string]string `toml:"keys"`

	// Source is the file the values were read from, empty for defaults
	Source string `toml:"-"`
}

type Playfield struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type Reload struct {
	Policy          string        `toml:"policy"`
	PollInterval    time.Duration `toml:"poll_interval"`
	FollowSelection bool          `toml:"follow_selection"`
}

type Editor struct {
	Command []string `toml:"command"`
}

type Journal struct {
	Path string `toml:"path"`
}

type Snapshot struct {
	Dir string `toml:"dir"`
}

// Sprite overrides one entry of the sprite sheet
type Sprite struct {
	Glyph  string  `toml:"glyph"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Color  string  `toml:"color"`
}

// Default returns the built-in configuration
// An empty PatternsDir selects the embedded sample patterns
func Default() *Config {
	return &Config{
		Convention: engine.YDown.String(),
		Rank:       0.5,
		TickRate:   60,
		Playfield:  Playfield{Width: 480, Height: 640},
		Reload: Reload{
			Policy:          pattern.ReloadDiscard.String(),
			PollInterval:    10 * time.Millisecond,
			FollowSelection: true,
		},
		Journal:  Journal{Path: "logs/reloads.db"},
		Snapshot: Snapshot{Dir: "snapshots"},
	}
}

// Load reads path over the defaults, then applies the .env file and DANMAKU_* variables
// A missing file is an error unless optional is set
func Load(path string, optional bool, envFile string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse error in %s: %w", path, err)
			}
			c.Source = path
		case optional && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("cannot read %s: %w", envFile, err)
		}
	}

	// Process environment wins over the .env file
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := c.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// envVars maps variable suffixes to setters
var envVars = []struct {
	name string
	set  func(c *Config, v string) error
}{
	{"PATTERNS_DIR", func(c *Config, v string) error { c.PatternsDir = v; return nil }},
	{"CONVENTION", func(c *Config, v string) error { c.Convention = v; return nil }},
	{"SEED", func(c *Config, v string) (err error) { c.Seed, err = strconv.ParseUint(v, 10, 64); return }},
	{"RANK", func(c *Config, v string) (err error) { c.Rank, err = strconv.ParseFloat(v, 64); return }},
	{"TICK_RATE", func(c *Config, v string) (err error) { c.TickRate, err = strconv.Atoi(v); return }},
	{"DEBUG", func(c *Config, v string) (err error) { c.Debug, err = strconv.ParseBool(v); return }},
	{"RELOAD_POLICY", func(c *Config, v string) error { c.Reload.Policy = v; return nil }},
	{"EDITOR", func(c *Config, v string) error { c.Editor.Command = strings.Fields(v); return nil }},
	{"JOURNAL", func(c *Config, v string) error { c.Journal.Path = v; return nil }},
	{"SNAPSHOT_DIR", func(c *Config, v string) error { c.Snapshot.Dir = v; return nil }},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok {
			continue
		}
		if err := ev.set(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, ev.name, err)
		}
	}
	return nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	var errs []error
	if c.Playfield.Width <= 0 || c.Playfield.Height <= 0 {
		errs = append(errs, fmt.Errorf("playfield must be positive, got %gx%g", c.Playfield.Width, c.Playfield.Height))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", c.TickRate))
	}
	if c.Rank < 0 || c.Rank > 1 {
		errs = append(errs, fmt.Errorf("rank must be within [0, 1], got %g", c.Rank))
	}
	if c.Reload.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("reload.poll_interval must be positive, got %s", c.Reload.PollInterval))
	}
	if _, err := engine.ParseConvention(c.Convention); err != nil {
		errs = append(errs, err)
	}
	if _, err := pattern.ParseReloadPolicy(c.Reload.Policy); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SpriteSheet(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) PlayfieldSize() vmath.Vec2 {
	return vmath.V(c.Playfield.Width, c.Playfield.Height)
}

func (c *Config) CoordinateConvention() engine.Convention {
	conv, _ := engine.ParseConvention(c.Convention)
	return conv
}

func (c *Config) ReloadPolicy() pattern.ReloadPolicy {
	p, _ := pattern.ParseReloadPolicy(c.Reload.Policy)
	return p
}

// SpriteSheet builds the sheet, the built-in one when no sprites are configured
func (c *Config) SpriteSheet() (engine.SpriteSheet, error) {
	if len(c.Sprites) == 0 {
		return engine.DefaultSprites(), nil
	}
	sheet := make(engine.SpriteSheet, 0, len(c.Sprites))
	for i, s := range c.Sprites {
		glyph := []rune(s.Glyph)
		if len(glyph) != 1 {
			return nil, fmt.Errorf("sprites[%d]: glyph must be one character, got %q", i, s.Glyph)
		}
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("sprites[%d]: size must be positive", i)
		}
		color := engine.ColorWhite
		if s.Color != "" {
			var err error
			if color, err = engine.ParseColor(s.Color); err != nil {
				return nil, fmt.Errorf("sprites[%d]: %w", i, err)
			}
		}
		sheet = append(sheet, engine.Sprite{Glyph: glyph[0], Width: s.Width, Height: s.Height, Color: color})
	}
	return sheet, nil
}
