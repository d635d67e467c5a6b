// Package watcher reruns work when scenario, env or fixture files change.
package watcher

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aalvaropc/glimpse/internal/domain"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher batches file events under a set of directories and reports them
// once the directories have been quiet for the debounce window.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	exts     map[string]bool
	log      *slog.Logger
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions limits events to files with these extensions (".yaml").
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = map[string]bool{}
		for _, e := range exts {
			w.exts[strings.ToLower(e)] = true
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New watches dirs (not recursively). Missing directories are skipped.
func New(dirs []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &domain.OpError{Op: "watcher.new", Kind: domain.KindExecution, Err: err}
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: defaultDebounce,
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}

	added := 0
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			w.log.Warn("watch.skip", "dir", d, "err", err)
			continue
		}
		added++
	}
	if added == 0 {
		_ = fsw.Close()
		return nil, &domain.OpError{
			Op:   "watcher.new",
			Kind: domain.KindNotFound,
			Path: strings.Join(dirs, ","),
			Err:  domain.ErrNotFound,
		}
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange with the sorted set of
// changed paths after each quiet period. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.fsw.Close()

	pending := map[string]bool{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("watch.event", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch.error", "err", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = map[string]bool{}
			onChange(paths)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	// editor swap and temp files
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".tmp") {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[strings.ToLower(filepath.Ext(base))]
}
