package pattern

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/lixenwraith/vi-danmaku/engine"
)

var log = commonlog.GetLogger("danmaku.pattern")

const Extension = ".xml"

var (
	ErrNoPatterns      = errors.New("no pattern files found")
	ErrIndexOutOfRange = errors.New("pattern index out of range")
)

// Parser turns a pattern source into a bindable pattern
type Parser interface {
	Parse(name string, r io.Reader) (engine.Pattern, error)
}

// ReloadPolicy decides what a failed reparse does to an existing pattern
type ReloadPolicy uint8

const (
	// ReloadDiscard replaces the pattern with the error, nothing spawns until fixed
	ReloadDiscard ReloadPolicy = iota
	// ReloadPreserve keeps the last good pattern spawnable and marks it stale
	ReloadPreserve
)

func (p ReloadPolicy) String() string {
	if p == ReloadPreserve {
		return "preserve"
	}
	return "discard"
}

// ParseReloadPolicy accepts "discard" and "preserve"
func ParseReloadPolicy(s string) (ReloadPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard":
		return ReloadDiscard, nil
	case "preserve":
		return ReloadPreserve, nil
	}
	return ReloadDiscard, fmt.Errorf("unknown reload policy %q", s)
}

// Entry is one discovered pattern file
type Entry struct {
	Name    string // path inside the source fs
	Path    string // OS path when the source is a directory on disk, empty otherwise
	Pattern engine.Pattern
	Err     error
	Stale   bool // Pattern predates Err under ReloadPreserve
}

// Spawnable reports whether the driver may seed a root with this entry
func (e *Entry) Spawnable() bool {
	if e.Pattern == nil {
		return false
	}
	return e.Err == nil || e.Stale
}

// Store holds the discovered patterns and the selection
// Owned by the simulation goroutine, Reparse is the only method safe to call elsewhere
type Store struct {
	fsys     fs.FS
	root     string
	parser   Parser
	policy   ReloadPolicy
	entries  []*Entry
	selected int
}

// Option configures discovery
type Option func(*Store)

// WithPolicy sets the reload failure policy
func WithPolicy(p ReloadPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithRoot records the OS directory backing fsys so entries carry watchable paths
func WithRoot(dir string) Option {
	return func(s *Store) { s.root = dir }
}

// DiscoverDir discovers patterns in an OS directory
func DiscoverDir(dir string, parser Parser, opts ...Option) (*Store, error) {
	opts = append([]Option{WithRoot(dir)}, opts...)
	return Discover(os.DirFS(dir), ".", parser, opts...)
}

// Discover enumerates *.xml files under dir in fsys and parses each eagerly
// Parse failures are recorded per entry, an empty result fails with ErrNoPatterns
func Discover(fsys fs.FS, dir string, parser Parser, opts ...Option) (*Store, error) {
	s := &Store{fsys: fsys, parser: parser}
	for _, opt := range opts {
		opt(s)
	}

	dirEntries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern directory %s: %w", dir, err)
	}

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		fileName := de.Name()
		if strings.HasPrefix(fileName, ".") {
			log.Debugf("skipping hidden file: %s", fileName)
			continue
		}
		if !strings.EqualFold(path.Ext(fileName), Extension) {
			continue
		}

		e := &Entry{Name: path.Join(dir, fileName)}
		if s.root != "" {
			e.Path = filepath.Join(s.root, filepath.FromSlash(e.Name))
		}
		e.Pattern, e.Err = s.parse(e.Name)
		if e.Err != nil {
			e.Pattern = nil
			log.Warningf("pattern %s failed to parse: %s", e.Name, e.Err)
		} else {
			log.Infof("discovered pattern: %s", e.Name)
		}
		s.entries = append(s.entries, e)
	}

	if len(s.entries) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoPatterns)
	}
	log.Infof("discovered %d pattern file(s)", len(s.entries))
	return s, nil
}

func (s *Store) parse(name string) (engine.Pattern, error) {
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()
	return s.parser.Parse(path.Base(name), f)
}

// ===== SELECTION =====

func (s *Store) Len() int          { return len(s.entries) }
func (s *Store) Index() int        { return s.selected }
func (s *Store) Current() *Entry   { return s.entries[s.selected] }
func (s *Store) Entries() []*Entry { return s.entries }

func (s *Store) Policy() ReloadPolicy { return s.policy }

// Entry returns entry i
func (s *Store) Entry(i int) (*Entry, error) {
	if i < 0 || i >= len(s.entries) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.entries))
	}
	return s.entries[i], nil
}

// Select changes the selection, it never touches the simulation
func (s *Store) Select(i int) error {
	if i < 0 || i >= len(s.entries) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.entries))
	}
	s.selected = i
	return nil
}

// Next advances the selection, wrapping from the last entry to the first
func (s *Store) Next() *Entry {
	s.selected = (s.selected + 1) % len(s.entries)
	return s.Current()
}

// Previous moves the selection back, wrapping from the first entry to the last
func (s *Store) Previous() *Entry {
	s.selected = (s.selected - 1 + len(s.entries)) % len(s.entries)
	return s.Current()
}

// ===== RELOAD =====

// Reparse reads and parses entry i without changing the store
func (s *Store) Reparse(i int) (engine.Pattern, error) {
	e, err := s.Entry(i)
	if err != nil {
		return nil, err
	}
	return s.parse(e.Name)
}

// Apply records a reparse result on entry i according to the policy
// Returns whether the entry is spawnable afterwards
func (s *Store) Apply(i int, p engine.Pattern, parseErr error) (bool, error) {
	e, err := s.Entry(i)
	if err != nil {
		return false, err
	}

	switch {
	case parseErr == nil:
		e.Pattern, e.Err, e.Stale = p, nil, false
	case s.policy == ReloadPreserve && e.Pattern != nil:
		e.Err, e.Stale = parseErr, true
	default:
		e.Pattern, e.Err, e.Stale = nil, parseErr, false
	}
	return e.Spawnable(), nil
}
