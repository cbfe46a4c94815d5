package config

import (
	"flag"
	"strings"
)

// Flags holds command line overrides, applied after the file and the environment
type Flags struct {
	fs *flag.FlagSet

	patterns   string
	convention string
	policy     string
	editor     string
	journal    string
	snapshots  string
	seed       uint64
	rank       float64
	tickRate   int
	width      float64
	height     float64
	debug      bool
}

// RegisterFlags defines the override flags on fs
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.patterns, "patterns", "", "Pattern directory, embedded samples when empty")
	fs.StringVar(&f.convention, "convention", "", "Coordinate convention: y-down, y-up")
	fs.StringVar(&f.policy, "reload-policy", "", "Failed reload handling: discard, preserve")
	fs.StringVar(&f.editor, "editor", "", "External editor command")
	fs.StringVar(&f.journal, "journal", "", "Reload journal database path, empty disables")
	fs.StringVar(&f.snapshots, "snapshots", "", "Snapshot directory, empty disables")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed, 0 picks one per session")
	fs.Float64Var(&f.rank, "rank", 0, "Initial difficulty rank in [0, 1]")
	fs.IntVar(&f.tickRate, "tick-rate", 0, "Simulation ticks per second")
	fs.Float64Var(&f.width, "width", 0, "Playfield width")
	fs.Float64Var(&f.height, "height", 0, "Playfield height")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging to file")
	return f
}

// Apply copies the flags that were set explicitly into c and revalidates
func (f *Flags) Apply(c *Config) error {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "patterns":
			c.PatternsDir = f.patterns
		case "convention":
			c.Convention = f.convention
		case "reload-policy":
			c.Reload.Policy = f.policy
		case "editor":
			c.Editor.Command = strings.Fields(f.editor)
		case "journal":
			c.Journal.Path = f.journal
		case "snapshots":
			c.Snapshot.Dir = f.snapshots
		case "seed":
			c.Seed = f.seed
		case "rank":
			c.Rank = f.rank
		case "tick-rate":
			c.TickRate = f.tickRate
		case "width":
			c.Playfield.Width = f.width
		case "height":
			c.Playfield.Height = f.height
		case "debug":
			c.Debug = f.debug
		}
	})
	return c.Validate()
}
