// Package watcher reports when the node set stored in a file changes.
//
// File events (fsnotify, or stat polling on remote filesystems) only schedule a
// check. A Change is sent when the parsed nodes differ from the last set seen, so
// touching the file, rewriting it byte for byte, reformatting it or appending nodes
// the loader drops (closed ones, by default) never triggers a recompute.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/debug"
	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/loader"
)

// DefaultPollInterval is how often a polling watcher stats the file.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Fingerprint identifies a node set. Layout is the layout data hash; Content also
// covers fields the layout ignores (titles, urls, descriptions).
type Fingerprint struct {
	Layout  string
	Content string
	Nodes   int
}

// Fingerprinter reads the node set at path.
type Fingerprinter func(path string) (Fingerprint, error)

// NodeSetFingerprint loads path with opts and fingerprints the parsed nodes. Loader
// warnings are dropped unless opts sets a handler, since the consumer reloads the
// file and reports them itself.
func NodeSetFingerprint(opts loader.ParseOptions) Fingerprinter {
	if opts.WarningHandler == nil {
		opts.WarningHandler = func(string) {}
	}
	return func(path string) (Fingerprint, error) {
		ds, err := loader.Load(path, opts)
		if err != nil {
			return Fingerprint{}, err
		}
		data, err := json.Marshal(ds.Nodes)
		if err != nil {
			return Fingerprint{}, fmt.Errorf("fingerprint %s: %w", path, err)
		}
		sum := sha256.Sum256(data)
		return Fingerprint{
			Layout:  layout.ComputeDataHash(ds.Nodes),
			Content: hex.EncodeToString(sum[:8]),
			Nodes:   len(ds.Nodes),
		}, nil
	}
}

// Change is sent on Changed when the node set differs from the previous one.
type Change struct {
	Path     string
	Previous Fingerprint
	Current  Fingerprint
}

// LayoutChanged reports whether positions need recomputing. When false only display
// fields changed and a memoized layout can be reused.
func (c Change) LayoutChanged() bool {
	return c.Previous.Layout != c.Current.Layout
}

// Mode is how the watcher learns about file writes.
type Mode int

const (
	ModeNotify Mode = iota
	ModePoll
)

func (m Mode) String() string {
	if m == ModePoll {
		return "poll"
	}
	return "notify"
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long writes must settle before the file is re-read.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in poll mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithForcePoll polls even on local filesystems.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// WithOnError sets the callback for watch and reload errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithFingerprinter replaces the default NodeSetFingerprint(loader.ParseOptions{}).
func WithFingerprinter(fp Fingerprinter) Option {
	return func(w *Watcher) { w.fingerprint = fp }
}

// fileStat is what the poller compares between ticks.
type fileStat struct {
	exists bool
	mtime  time.Time
	size   int64
}

func statFile(path string) (fileStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStat{}, err
	}
	return fileStat{exists: true, mtime: info.ModTime(), size: info.Size()}, nil
}

func (s fileStat) differs(o fileStat) bool {
	return s.exists != o.exists || s.size != o.size || !s.mtime.Equal(o.mtime)
}

// Watcher watches one node file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onError      func(error)
	fingerprint  Fingerprinter

	debouncer *Debouncer
	changes   chan Change
	checkMu   sync.Mutex // serializes re-reads

	mu      sync.Mutex
	started bool
	mode    Mode
	fsType  FilesystemType
	current Fingerprint
	cancel  context.CancelFunc
	fsw     *fsnotify.Watcher
}

// NewWatcher returns a stopped watcher for the node file at path.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onError:      func(error) {},
		fingerprint:  NodeSetFingerprint(loader.ParseOptions{}),
		changes:      make(chan Change, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start reads the current node set and begins watching. A missing file starts with
// an empty fingerprint and is reported once it appears. Watching ends when ctx is
// done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	fp, err := w.fingerprint(w.path)
	switch {
	case err == nil:
	case errors.Is(err, loader.ErrNotFound):
		fp = Fingerprint{}
	case errors.Is(err, os.ErrPermission):
		return ErrPermission
	default:
		return err
	}
	w.current = fp

	w.fsType = DetectFilesystemType(w.path)
	w.mode = ModeNotify
	if w.forcePoll || isRemoteFilesystem(w.fsType) {
		w.mode = ModePoll
	}

	ctx, w.cancel = context.WithCancel(ctx)

	if w.mode == ModeNotify {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// The directory survives atomic rename-over writes; the file itself does not.
			if err = fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.mode = ModePoll
		} else {
			w.fsw = fsw
			go w.watchNotify(ctx, fsw)
		}
	}
	if w.mode == ModePoll {
		initial, _ := statFile(w.path)
		go w.watchPoll(ctx, initial)
	}

	debug.Log("watcher: %s in %s mode (%s), %d nodes", w.path, w.mode, w.fsType, fp.Nodes)
	w.started = true
	return nil
}

// Stop ends watching. The Changed channel stays open so readers block instead of
// spinning.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Changed delivers node-set changes. Only the latest undelivered change is kept.
func (w *Watcher) Changed() <-chan Change {
	return w.changes
}

// Current returns the fingerprint of the last node set read.
func (w *Watcher) Current() Fingerprint {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Mode returns how the running watcher learns about writes.
func (w *Watcher) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// FilesystemType returns the classification made by Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsType
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) watchNotify(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.check)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPoll(ctx context.Context, last fileStat) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		st, err := statFile(w.path)
		switch {
		case err == nil:
		case os.IsNotExist(err):
			if last.exists {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
			continue
		default:
			w.onError(err)
			continue
		}
		if st.differs(last) {
			last = st
			if st.exists {
				w.debouncer.Trigger(w.check)
			}
		}
	}
}

// check re-reads the file and sends a Change if the node set differs.
func (w *Watcher) check() {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	w.mu.Lock()
	started, prev := w.started, w.current
	w.mu.Unlock()
	if !started {
		return
	}

	fp, err := w.fingerprint(w.path)
	if err != nil {
		if errors.Is(err, loader.ErrNotFound) {
			err = ErrFileRemoved
		}
		w.onError(err)
		return
	}
	if fp == prev {
		debug.Log("watcher: %s rewritten, node set unchanged (%s)", w.path, fp.Content)
		return
	}

	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.current = fp
	w.mu.Unlock()

	c := Change{Path: w.path, Previous: prev, Current: fp}
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- c:
	default:
	}
}
