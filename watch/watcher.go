// Package watch reloads the edited pattern when its file changes on disk
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"

	"github.com/lixenwraith/vi-danmaku/core"
	"github.com/lixenwraith/vi-danmaku/engine"
	"github.com/lixenwraith/vi-danmaku/sim"
)

var log = commonlog.GetLogger("danmaku.watch")

// Reparser reads and parses a pattern entry without touching shared state
type Reparser interface {
	Reparse(i int) (engine.Pattern, error)
}

// Poster hands a command to the simulation goroutine and waits for it to be applied
type Poster interface {
	Do(ctx context.Context, cmd any) error
}

// Watcher follows one pattern file at a time
type Watcher struct {
	fsw      *fsnotify.Watcher
	store    Reparser
	post     Poster
	probe    LockProbe
	interval time.Duration

	mu    sync.Mutex
	index int
	path  string
	dir   string

	reloading atomic.Bool
	dirty     atomic.Bool // an event was dropped during the current reload
	reloads   atomic.Uint64
	dropped   atomic.Uint64
	wg        sync.WaitGroup
}

// Option configures a Watcher
type Option func(*Watcher)

// WithLockProbe replaces the exclusive lock check
func WithLockProbe(p LockProbe) Option {
	return func(w *Watcher) { w.probe = p }
}

// WithPollInterval sets the sleep between lock probes
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// New creates an unbound watcher
func New(store Reparser, post Poster, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		store:    store,
		post:     post,
		probe:    ExclusiveProbe,
		interval: DefaultPollInterval,
		index:    -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Bind watches path as the file of pattern entry index, replacing the previous binding
// The parent directory is watched so editors that replace the file are still seen
func (w *Watcher) Bind(index int, path string) error {
	if path == "" {
		return errors.New("empty pattern path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir != w.dir {
		if w.dir != "" {
			if err := w.fsw.Remove(w.dir); err != nil {
				log.Debugf("removing watch on %s: %s", w.dir, err)
			}
		}
		if err := w.fsw.Add(dir); err != nil {
			w.dir, w.path, w.index = "", "", -1
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dir = dir
	}
	w.index, w.path = index, abs
	log.Infof("watching %s (entry %d)", abs, index)
	return nil
}

// Bound returns the current binding, index is -1 when unbound
func (w *Watcher) Bound() (int, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index, w.path
}

// Stats returns completed and dropped reload counts
func (w *Watcher) Stats() (reloads, dropped uint64) {
	return w.reloads.Load(), w.dropped.Load()
}

// Run pumps file system events until ctx ends or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	defer w.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watcher error: %s", err)
		}
	}
}

// handle starts a reload for a relevant event unless one is already in flight
func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	index, path := w.index, w.path
	w.mu.Unlock()
	if index < 0 || filepath.Clean(ev.Name) != path {
		return
	}

	if !w.reloading.CompareAndSwap(false, true) {
		w.dirty.Store(true)
		w.dropped.Add(1)
		log.Debugf("reload in flight, dropping %s", ev)
		return
	}

	w.wg.Add(1)
	core.Go(func() {
		defer w.wg.Done()
		w.settle(ctx, index, path)
	})
}

// settle reloads until no event was dropped while the last reload ran
// A save that lands mid reload is read again rather than lost
func (w *Watcher) settle(ctx context.Context, index int, path string) {
	for {
		w.reload(ctx, index, path)
		w.reloading.Store(false)

		if !w.dirty.Swap(false) || ctx.Err() != nil {
			return
		}
		if i, p := w.Bound(); i != index || p != path {
			return
		}
		// a fresh event may already have started its own reload
		if !w.reloading.CompareAndSwap(false, true) {
			return
		}
		log.Debugf("%s changed during reload, reading it again", path)
	}
}

// reload waits for the writer, reparses off the simulation goroutine and hands the result over
func (w *Watcher) reload(ctx context.Context, index int, path string) {
	if err := WaitUnlocked(ctx, path, w.interval, w.probe); err != nil {
		return
	}

	p, perr := w.store.Reparse(index)
	if perr != nil {
		log.Warningf("reparse of %s failed: %s", path, perr)
	}

	if err := w.post.Do(ctx, sim.Reloaded{Index: index, Path: path, Pattern: p, Err: perr}); err != nil {
		log.Debugf("reload of %s not delivered: %s", path, err)
		return
	}
	w.reloads.Add(1)
}

// Close stops the event stream, Run returns after in-flight reloads finish
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
