// Package watcher reports job posting files as they appear in a directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/utils"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

// LockFileName is created in the watched directory while a watcher runs.
const LockFileName = ".jobanalyzer.lock"

const defaultDebounceDelay = time.Second

// Handler receives the posting files that changed during one debounce
// window, sorted by name.
type Handler func(ctx context.Context, paths []string)

// PostingWatcher watches a directory for new or rewritten posting files.
// Bursts of events are debounced into one Handler call.
type PostingWatcher struct {
	dir           string
	debounceDelay time.Duration
	handle        Handler
	logger        *errors.Logger

	mu            sync.Mutex
	pending       map[string]struct{}
	debounceTimer *time.Timer
	flushChan     chan struct{}
}

// New creates a watcher for dir. A zero debounce delay means one second.
func New(dir string, debounceDelay time.Duration, handle Handler, logger *errors.Logger) (*PostingWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("Cannot watch directory: %s", dir), err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Not a directory: %s", dir), nil)
	}
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounceDelay
	}

	return &PostingWatcher{
		dir:           dir,
		debounceDelay: debounceDelay,
		handle:        handle,
		logger:        logger,
		pending:       make(map[string]struct{}),
		flushChan:     make(chan struct{}, 1), // Buffered to prevent blocking
	}, nil
}

// Run watches until ctx is canceled. It fails fast when another watcher
// holds the directory lock.
func (pw *PostingWatcher) Run(ctx context.Context) error {
	lock := flock.New(filepath.Join(pw.dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to acquire watch lock", err).
			WithContext("dir", pw.dir)
	}
	if !locked {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Directory %s is already being watched", pw.dir), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			pw.logger.Warn("Failed to release watch lock", "error", err)
		}
	}()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := fsWatcher.Close(); err != nil {
			pw.logger.LogError(err, "Failed to close file system watcher")
		}
	}()

	if err := fsWatcher.Add(pw.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", pw.dir, err)
	}
	pw.logger.Info("Posting watcher started", "dir", pw.dir, "debounce_delay", pw.debounceDelay)

	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if shouldProcessEvent(event) {
				pw.schedule(event.Name)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			pw.logger.LogError(err, "File watcher error")

		case <-pw.flushChan:
			if paths := pw.drain(); len(paths) > 0 {
				pw.handle(ctx, paths)
			}

		case <-ctx.Done():
			pw.stopTimer()
			pw.logger.Info("Posting watcher stopped", "dir", pw.dir)
			return nil
		}
	}
}

// shouldProcessEvent accepts writes and creates of visible posting files
func shouldProcessEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || !utils.IsPostingFile(base) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// schedule records path and restarts the debounce timer
func (pw *PostingWatcher) schedule(path string) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.pending[path] = struct{}{}
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.flushChan <- struct{}{}:
		default:
			// flush already scheduled
		}
	})
}

// drain returns the pending paths that still exist as regular files
func (pw *PostingWatcher) drain() []string {
	pw.mu.Lock()
	pending := pw.pending
	pw.pending = make(map[string]struct{})
	pw.mu.Unlock()

	paths := make([]string, 0, len(pending))
	for path := range pending {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func (pw *PostingWatcher) stopTimer() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
}
