// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback whenever shader sources under a directory
// tree change.
//
// Filesystem events are debounced and coalesced; the callback runs on a
// single goroutine, so passes never overlap. Changes that arrive while a
// pass is running queue exactly one follow-up pass.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// DefaultPatterns select the files that trigger a pass.
	DefaultPatterns = []string{"**/*.vert", "**/*.frag", "**/*.glsl"}

	// builtinIgnores never trigger a pass and are not descended into.
	builtinIgnores = []string{
		"**/.git/**",
		"**/.vs/**",
		"**/Generated/**",
		"**/*.swp",
		"**/*~",
		"**/.DS_Store",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the directory tree to watch. Empty uses the working
		// directory.
		BaseDir string
		// Patterns are doublestar globs relative to BaseDir. Empty uses
		// DefaultPatterns.
		Patterns []string
		// Ignore adds doublestar globs to the built-in ignore list.
		Ignore []string
		// Debounce is the quiet period after the last event before a pass.
		Debounce time.Duration
		// OnChange runs one pass with the sorted, slash-separated paths that
		// changed since the previous pass.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher monitors BaseDir and runs OnChange after debounced changes.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		baseDir  string
		patterns []string
		ignores  []string
		debounce time.Duration
		started  atomic.Bool

		mu      sync.Mutex
		pending map[string]struct{}
	}
)

// New validates cfg and registers every non-ignored directory under BaseDir.
func New(cfg Config) (*Watcher, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, pat := range slices.Concat(patterns, cfg.Ignore) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		baseDir:  absBase,
		patterns: slices.Clone(patterns),
		ignores:  slices.Concat(builtinIgnores, cfg.Ignore),
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}
	if err := w.addTree(absBase); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watched directory.
func (w *Watcher) BaseDir() string {
	return w.baseDir
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Warn("closing file watcher", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	// Capacity one: a burst during a running pass queues a single rerun.
	trigger := make(chan struct{}, 1)
	var passes sync.WaitGroup
	passes.Go(func() { w.passLoop(ctx, trigger) })
	defer func() {
		cancel()
		passes.Wait()
	}()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if w.handle(evt) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			select {
			case trigger <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalWatchError(err) {
				return fmt.Errorf("watch: %w", err)
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}

// handle records evt and reports whether it should schedule a pass.
func (w *Watcher) handle(evt fsnotify.Event) bool {
	rel := w.relative(evt.Name)
	if w.ignored(rel) {
		return false
	}
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				slog.Warn("watching new directory", "dir", evt.Name, "error", err)
			}
			return false
		}
	}
	if !matchAny(w.patterns, rel) {
		return false
	}

	slog.Debug("shader source changed", "file", rel, "op", evt.Op.String())
	w.mu.Lock()
	w.pending[rel] = struct{}{}
	w.mu.Unlock()
	return true
}

func (w *Watcher) passLoop(ctx context.Context, trigger <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger:
		}

		changed := w.drain()
		if len(changed) == 0 || w.cfg.OnChange == nil {
			continue
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			slog.Error("watch pass failed", "error", err)
		}
	}
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		changed = append(changed, rel)
	}
	clear(w.pending)
	slices.Sort(changed)
	return changed
}

// addTree registers root and every non-ignored directory below it.
// Unreadable directories are skipped.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel := w.relative(path); rel != "." && (w.ignored(rel) || w.ignored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
