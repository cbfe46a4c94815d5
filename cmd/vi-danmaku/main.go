package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/vi-danmaku/asset"
	"github.com/lixenwraith/vi-danmaku/bulletml"
	"github.com/lixenwraith/vi-danmaku/config"
	"github.com/lixenwraith/vi-danmaku/core"
	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/input"
	"github.com/lixenwraith/vi-danmaku/journal"
	"github.com/lixenwraith/vi-danmaku/pattern"
	"github.com/lixenwraith/vi-danmaku/render"
	"github.com/lixenwraith/vi-danmaku/sim"
	"github.com/lixenwraith/vi-danmaku/watch"
)

var log = commonlog.GetLogger("danmaku.main")

var (
	configFlag      = flag.String("config", "", "Config file (default "+config.DefaultPath+" when present)")
	writeConfigFlag = flag.Bool("write-config", false, "Print the annotated default configuration and exit")
	historyFlag     = flag.Int("history", 0, "Print the newest N reload journal entries and exit")
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the editor crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	overrides := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if *writeConfigFlag {
		fmt.Print(asset.DefaultConfig)
		return
	}

	// File, then .env and DANMAKU_*, then flags
	path, optional := *configFlag, false
	if path == "" {
		path, optional = config.DefaultPath, true
	}
	cfg, err := config.Load(path, optional, config.DefaultEnvFile)
	if err == nil {
		err = overrides.Apply(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}

	if _, err := setupLogging(cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Logging disabled: %v\n", err)
	}

	if *historyFlag > 0 {
		err = showHistory(cfg, *historyFlag)
	} else {
		err = run(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "vi-danmaku: %v\n", err)
		os.Exit(1)
	}
}

func showHistory(cfg *config.Config, n int) error {
	if cfg.Journal.Path == "" {
		return errors.New("reload journal is disabled")
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()
	return printHistory(context.Background(), os.Stdout, j, n)
}

// openStore discovers the configured directory, or the embedded samples when none is set
func openStore(cfg *config.Config) (*pattern.Store, error) {
	opts := []pattern.Option{pattern.WithPolicy(cfg.ReloadPolicy())}
	if cfg.PatternsDir == "" {
		log.Infof("no pattern directory configured, using built-in samples")
		return pattern.Discover(asset.Patterns(), asset.PatternsRoot, bulletml.Parser{}, opts...)
	}
	return pattern.DiscoverDir(cfg.PatternsDir, bulletml.Parser{}, opts...)
}

// poster defers to the driver created after the watcher
type poster struct{ driver *sim.Driver }

func (p *poster) Do(ctx context.Context, cmd any) error { return p.driver.Do(ctx, cmd) }

func run(cfg *config.Config) error {
	// Fail fast before touching the terminal
	store, err := openStore(cfg)
	if err != nil {
		if errors.Is(err, pattern.ErrNoPatterns) {
			return fmt.Errorf("no %s patterns found in %q", pattern.Extension, cfg.PatternsDir)
		}
		return err
	}

	override, err := input.LoadKeyConfig(cfg.Keys)
	if err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	keys := input.MergeKeyTable(input.DefaultKeyTable(), override)

	sprites, err := cfg.SpriteSheet()
	if err != nil {
		return err
	}

	opts := []sim.Option{sim.WithLauncher(sim.ExecLauncher(cfg.Editor.Command))}

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Warningf("reload journal unavailable: %s", err)
		} else {
			defer j.Close()
			opts = append(opts, sim.WithRecorder(j))
		}
	}

	// Embedded patterns have no disk path, nothing to watch
	var watcher *watch.Watcher
	post := &poster{}
	if cfg.PatternsDir != "" {
		watcher, err = watch.New(store, post, watch.WithPollInterval(cfg.Reload.PollInterval))
		if err != nil {
			return err
		}
		defer watcher.Close()
		opts = append(opts, sim.WithBinder(watcher))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	// Normal exit terminal cleanup
	defer screen.Fini()
	core.SetCrashReset(screen.Fini)

	opts = append(opts, sim.WithRenderer(render.NewTerminalRenderer(screen)))

	driver, err := sim.NewDriver(store, sim.Config{
		Playfield:       cfg.PlayfieldSize(),
		Convention:      cfg.CoordinateConvention(),
		Seed:            cfg.Seed,
		Rank:            cfg.Rank,
		TickRate:        cfg.TickRate,
		Sprites:         sprites,
		FollowSelection: cfg.Reload.FollowSelection,
		SnapshotDir:     cfg.Snapshot.Dir,
		NewInterpreter: func(host engine.Host) engine.Interpreter {
			return bulletml.NewInterpreter(host)
		},
	}, opts...)
	if err != nil {
		return err
	}
	post.driver = driver

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(core.Guard(func() error { return driver.Run(gctx) }))
	g.Go(core.Guard(func() error { return input.NewHandler(keys).Run(gctx, screen, driver) }))
	if watcher != nil {
		g.Go(core.Guard(func() error { return watcher.Run(gctx) }))
	}

	// Wake the blocked poller and the watcher once anything ends the session
	g.Go(func() error {
		<-gctx.Done()
		screen.PostEvent(tcell.NewEventInterrupt(nil))
		if watcher != nil {
			watcher.Close()
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, sim.ErrQuit) || errors.Is(err, context.Canceled) {
		log.Infof("session ended")
		return nil
	}
	return err
}
