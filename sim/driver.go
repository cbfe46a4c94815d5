package sim

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/tliron/commonlog"

	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/journal"
	"github.com/lixenwraith/vi-danmaku/pattern"
	"github.com/lixenwraith/vi-danmaku/snapshot"
	"github.com/lixenwraith/vi-danmaku/vmath"
)

var log = commonlog.GetLogger("danmaku.sim")

// ErrQuit is returned by Run after a Quit command
var ErrQuit = errors.New("quit requested")

const (
	DefaultTickRate = 60
	inboxSize       = 256

	// KeyStep is the simulated time one key repeat stands for
	KeyStep = 1.0 / 30
	// OriginSpeed and PanSpeed are in units per second of held key
	OriginSpeed = 250
	PanSpeed    = 250
)

// Binder points a file watcher at a pattern entry
type Binder interface {
	Bind(index int, path string) error
}

// Recorder stores applied reloads
type Recorder interface {
	Record(ctx context.Context, r journal.Reload) error
}

// Launcher starts the external editor on a pattern file
type Launcher func(path string) error

// Config holds the session settings for a driver
type Config struct {
	Playfield       vmath.Vec2
	Convention      engine.Convention
	Seed            uint64 // 0 draws a seed from the clock once per session
	Rank            float64
	TickRate        int
	Sprites         engine.SpriteSheet
	FollowSelection bool
	SnapshotDir     string
	NewInterpreter  func(host engine.Host) engine.Interpreter
}

// Driver owns the pool, the pattern store and the player
// All mutation happens on the goroutine running Run, other goroutines talk through the inbox
type Driver struct {
	inbox chan any
	quit  chan struct{}

	cfg    Config
	seed   uint64
	pool   *engine.MoverPool
	store  *pattern.Store
	interp engine.Interpreter
	player *engine.Player

	renderer Renderer
	binder   Binder
	recorder Recorder
	launcher Launcher

	origin  vmath.Vec2
	camera  Camera
	paused  bool
	tick    uint64
	status  string
	watched bool
	stopped bool

	stats    Stats
	lastDraw time.Time
	frame    Frame
}

// Option wires an optional collaborator
type Option func(*Driver)

func WithRenderer(r Renderer) Option { return func(d *Driver) { d.renderer = r } }

func WithBinder(b Binder) Option { return func(d *Driver) { d.binder = b } }

func WithRecorder(r Recorder) Option { return func(d *Driver) { d.recorder = r } }

func WithLauncher(l Launcher) Option { return func(d *Driver) { d.launcher = l } }

// NewDriver builds the pool and seeds the current pattern
func NewDriver(store *pattern.Store, cfg Config, opts ...Option) (*Driver, error) {
	if store == nil || store.Len() == 0 {
		return nil, pattern.ErrNoPatterns
	}
	if cfg.NewInterpreter == nil {
		return nil, errors.New("sim: no interpreter factory")
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.Playfield.X <= 0 || cfg.Playfield.Y <= 0 {
		return nil, fmt.Errorf("sim: invalid playfield %v", cfg.Playfield)
	}

	d := &Driver{
		inbox:  make(chan any, inboxSize),
		quit:   make(chan struct{}),
		cfg:    cfg,
		store:  store,
		player: engine.NewPlayer(cfg.Playfield, cfg.Convention),
		origin: cfg.Playfield.Scale(0.5),
		camera: Camera{Pos: cfg.Playfield.Scale(0.5), Zoom: 1},
	}
	for _, opt := range opts {
		opt(d)
	}

	random, seed := engine.NewRandomSource(cfg.Seed)
	d.seed = seed
	log.Infof("random seed: %d", seed)

	d.pool = engine.NewMoverPool(engine.PoolConfig{
		Playfield:  cfg.Playfield,
		Convention: cfg.Convention,
		Random:     random,
		Sprites:    cfg.Sprites,
		Target:     d.player.Position,
		Rank:       cfg.Rank,
	})
	d.interp = cfg.NewInterpreter(d.pool)

	d.seedRoot()
	return d, nil
}

// Pool exposes the pool for snapshots and tests, only valid on the simulation goroutine
func (d *Driver) Pool() *engine.MoverPool { return d.pool }

func (d *Driver) Store() *pattern.Store { return d.store }

func (d *Driver) Seed() uint64 { return d.seed }

func (d *Driver) Origin() vmath.Vec2 { return d.origin }

func (d *Driver) Paused() bool { return d.paused }

func (d *Driver) Status() string { return d.status }

// ===== LOOP =====

// Run drives the fixed-step loop until ctx ends or a Quit arrives
func (d *Driver) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(d.cfg.TickRate)
	dt := 1 / float64(d.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer d.stop()

	d.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-d.inbox:
			if d.dispatch(msg) {
				return ErrQuit
			}
		case <-ticker.C:
			d.Tick(dt)
			d.draw()
		}
	}
}

func (d *Driver) stop() {
	if !d.stopped {
		d.stopped = true
		close(d.quit)
	}
}

// Done is closed once Run returned
func (d *Driver) Done() <-chan struct{} { return d.quit }

// Submit enqueues a command without waiting for it to be applied
// Returns false once the driver stopped
func (d *Driver) Submit(cmd any) bool {
	select {
	case <-d.quit:
		return false
	default:
	}
	select {
	case d.inbox <- cmd:
		return true
	case <-d.quit:
		return false
	}
}

// Do enqueues a command and waits until the driver applied it
func (d *Driver) Do(ctx context.Context, cmd any) error {
	env := envelope{cmd: cmd, done: make(chan struct{})}
	select {
	case d.inbox <- env:
	case <-d.quit:
		return ErrQuit
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-env.done:
		return nil
	case <-d.quit:
		return ErrQuit
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch applies one inbox message, reports whether the driver should stop
func (d *Driver) dispatch(msg any) bool {
	if env, ok := msg.(envelope); ok {
		defer close(env.done)
		msg = env.cmd
	}
	return d.Apply(msg)
}

// Apply executes a command on the calling goroutine, which must own the driver
func (d *Driver) Apply(cmd any) (quit bool) {
	switch c := cmd.(type) {
	case TogglePause:
		d.paused = !d.paused
	case NextPattern:
		d.AdvanceToPattern(1)
	case PreviousPattern:
		d.AdvanceToPattern(-1)
	case SpawnOne:
		d.SpawnOne()
	case Reset:
		d.ResetAndSeed()
	case ClearAll:
		d.pool.Clear()
	case EditCurrent:
		d.editCurrent()
	case MoveOrigin:
		d.origin = d.clampToPlayfield(d.origin.Add(d.worldDir(c.Dir).Scale(OriginSpeed * KeyStep)))
	case MovePlayer:
		d.player.Move(c.Dir, KeyStep)
	case PanCamera:
		d.camera.Pos = d.camera.Pos.Add(d.worldDir(c.Dir).Scale(PanSpeed * KeyStep / d.camera.Zoom))
	case ZoomCamera:
		d.camera.Zoom = vmath.Clamp(d.camera.Zoom+c.Delta, MinZoom, MaxZoom)
	case ResizePlayfield:
		d.resizePlayfield(c.Factor)
	case AdjustRank:
		d.pool.SetRank(d.pool.Rank() + c.Delta)
	case TakeSnapshot:
		d.takeSnapshot()
	case Resize:
		if r, ok := d.renderer.(Resizer); ok {
			r.Resize(c.Width, c.Height)
		}
	case Reloaded:
		d.applyReload(c)
	case Quit:
		return true
	default:
		log.Warningf("ignoring unknown command %T", cmd)
	}
	return false
}

// ===== SIMULATION =====

// Tick advances the pool by dt unless paused
func (d *Driver) Tick(dt float64) {
	if d.paused {
		return
	}
	start := time.Now()

	for _, m := range d.pool.Movers() {
		if m.Kind == engine.KindRoot && m.Alive() {
			m.Pos = d.origin
		}
	}
	d.pool.Update(dt)
	d.tick++

	d.stats.UpdateTime = time.Since(start)
}

// ResetAndSeed clears the pool and binds one root to the current pattern
func (d *Driver) ResetAndSeed() bool {
	d.pool.Clear()
	if d.cfg.Seed != 0 {
		random, _ := engine.NewRandomSource(d.cfg.Seed)
		d.pool.SetRandom(random)
	}
	return d.seedRoot()
}

// SpawnOne adds a root at the origin without clearing
func (d *Driver) SpawnOne() bool {
	return d.seedRoot()
}

func (d *Driver) seedRoot() bool {
	e := d.store.Current()
	if !e.Spawnable() {
		if e.Err != nil {
			d.status = fmt.Sprintf("%s not spawnable", e.Name)
		}
		return false
	}

	root := d.pool.Spawn(engine.KindRoot)
	root.Pos = d.origin
	if err := d.interp.BindRoot(root, e.Pattern); err != nil {
		d.pool.Despawn(root)
		d.status = err.Error()
		log.Errorf("binding %s: %s", e.Name, err)
		return false
	}
	return true
}

// AdvanceToPattern moves the selection by dir and reseeds
// An active watcher follows the selection when configured to
func (d *Driver) AdvanceToPattern(dir int) {
	if dir >= 0 {
		d.store.Next()
	} else {
		d.store.Previous()
	}
	e := d.store.Current()
	d.status = fmt.Sprintf("pattern %d/%d", d.store.Index()+1, d.store.Len())
	log.Debugf("selected %s", e.Name)

	d.ResetAndSeed()

	if d.watched && d.cfg.FollowSelection {
		d.bindWatcher()
	}
}

func (d *Driver) bindWatcher() {
	if d.binder == nil {
		d.status = "hot reload disabled"
		return
	}
	e := d.store.Current()
	if e.Path == "" {
		d.status = "hot reload unavailable for embedded patterns"
		return
	}
	if err := d.binder.Bind(d.store.Index(), e.Path); err != nil {
		d.status = fmt.Sprintf("watch failed: %s", err)
		log.Errorf("binding watcher to %s: %s", e.Path, err)
		return
	}
	d.watched = true
}

func (d *Driver) editCurrent() {
	e := d.store.Current()
	d.bindWatcher()
	if !d.watched {
		return
	}
	d.status = fmt.Sprintf("watching %s", path.Base(e.Name))
	if d.launcher == nil {
		return
	}
	if err := d.launcher(e.Path); err != nil {
		d.status = fmt.Sprintf("editor failed: %s", err)
		log.Errorf("launching editor on %s: %s", e.Path, err)
	}
}

func (d *Driver) applyReload(r Reloaded) {
	spawnable, err := d.store.Apply(r.Index, r.Pattern, r.Err)
	if err != nil {
		log.Errorf("applying reload: %s", err)
		return
	}
	e, _ := d.store.Entry(r.Index)

	if d.recorder != nil {
		rec := journal.Reload{
			At:      time.Now(),
			Pattern: e.Name,
			Path:    r.Path,
			OK:      r.Err == nil,
			Stale:   e.Stale,
			Policy:  d.store.Policy().String(),
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		if err := d.recorder.Record(context.Background(), rec); err != nil {
			log.Warningf("journal: %s", err)
		}
	}

	switch {
	case r.Err == nil:
		d.status = fmt.Sprintf("reloaded %s", path.Base(e.Name))
		log.Infof("reloaded %s", e.Name)
	case e.Stale:
		d.status = fmt.Sprintf("reload failed, keeping last good %s", path.Base(e.Name))
		log.Warningf("reload of %s failed, preserving: %s", e.Name, r.Err)
	default:
		d.status = fmt.Sprintf("reload failed: %s", path.Base(e.Name))
		log.Warningf("reload of %s failed: %s", e.Name, r.Err)
	}

	if r.Index != d.store.Index() {
		return
	}
	// a stale pattern keeps running untouched
	if r.Err != nil && spawnable {
		return
	}
	d.ResetAndSeed()
}

func (d *Driver) resizePlayfield(factor float64) {
	size := d.pool.Playfield()
	size = size.Add(size.Scale(factor))
	if size.X < 1 || size.Y < 1 {
		return
	}
	d.pool.SetPlayfield(size)
	d.player.SetPlayfield(size)
	d.origin = d.clampToPlayfield(d.origin)
}

func (d *Driver) clampToPlayfield(p vmath.Vec2) vmath.Vec2 {
	return p.Clamp(vmath.Vec2{}, d.pool.Playfield())
}

// worldDir converts a screen direction (y down) into the pool convention
func (d *Driver) worldDir(dir vmath.Vec2) vmath.Vec2 {
	if d.cfg.Convention == engine.YUp {
		dir.Y = -dir.Y
	}
	return dir
}

func (d *Driver) takeSnapshot() {
	if d.cfg.SnapshotDir == "" {
		d.status = "snapshots disabled"
		return
	}
	s := snapshot.Capture(d.pool, snapshot.Meta{
		Pattern: d.store.Current().Name,
		Tick:    d.tick,
		Seed:    d.seed,
		Origin:  d.origin,
		Target:  d.player.Position(),
	})
	p, err := snapshot.WriteFile(d.cfg.SnapshotDir, s)
	if err != nil {
		d.status = err.Error()
		log.Errorf("%s", err)
		return
	}
	d.status = fmt.Sprintf("snapshot %s", p)
	log.Infof("snapshot written: %s", p)
}

// ===== FRAME =====

// Frame assembles the current view, Movers aliases the pool
func (d *Driver) Frame() *Frame {
	f := &d.frame
	e := d.store.Current()

	f.Movers = d.pool.Movers()
	f.Origin = d.origin
	f.Player = d.player.Position()
	f.Playfield = d.pool.Playfield()
	f.Convention = d.cfg.Convention
	f.Camera = d.camera

	f.Pattern = path.Base(e.Name)
	f.PatternIndex = d.store.Index()
	f.PatternCount = d.store.Len()
	f.Stale = e.Stale
	f.Error = ""
	if e.Err != nil {
		f.Error = e.Err.Error()
	}
	f.Status = d.status

	d.stats.Movers = d.pool.Len()
	d.stats.Roots = d.pool.Roots()
	d.stats.Bullets = d.pool.Bullets()
	d.stats.Spawned, d.stats.Culled = d.pool.Totals()
	d.stats.Tick = d.tick
	d.stats.Paused = d.paused
	d.stats.Rank = d.pool.Rank()
	d.stats.Seed = d.seed
	f.Stats = d.stats
	return f
}

func (d *Driver) draw() {
	if d.renderer == nil {
		return
	}
	now := time.Now()
	if !d.lastDraw.IsZero() {
		if elapsed := now.Sub(d.lastDraw).Seconds(); elapsed > 0 {
			fps := 1 / elapsed
			if d.stats.FPS == 0 {
				d.stats.FPS = fps
			} else {
				d.stats.FPS = d.stats.FPS*0.9 + fps*0.1
			}
		}
	}
	d.lastDraw = now

	d.renderer.Draw(d.Frame())
	d.stats.RenderTime = time.Since(now)
}
