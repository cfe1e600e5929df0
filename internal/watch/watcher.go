package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/odoo2mod/internal/logging"
)

// RunFunc is called each time the watcher triggers a conversion.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the output of a single conversion so the watcher can
// report what changed.
type RunResult struct {
	// Artifacts are the paths written by the run.
	Artifacts []string
	Records   int
	Skipped   int
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the input documents to watch.
	Files []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns the default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Files) == 0 {
		return errors.New("no input files to watch")
	}

	targets, err := resolveTargets(opts.Files)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files by rename, so the parent directories are
	// watched and events are filtered by name.
	for _, dir := range targetDirs(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching input directory %q: %w", dir, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	s := &session{opts: opts, runFn: runFn}

	s.run(sigCtx, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, opts.Logger, func(paths []string) {
		s.run(sigCtx, triggerLabel(paths))
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) || !targets[filepath.Clean(event.Name)] {
				continue
			}

			opts.Logger.Debug("input changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", logging.Err(watchErr))
		}
	}
}

// session remembers the artifacts of the previous run.
type session struct {
	mu    sync.Mutex
	opts  Options
	runFn RunFunc
	prev  []string
	ran   bool
}

func (s *session) run(ctx context.Context, trigger string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Format("15:04:05")

	result, err := s.runFn(ctx)
	if err != nil {
		fmt.Fprintf(s.opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		s.opts.Logger.Debug("conversion failed", slog.String("trigger", trigger), logging.Err(err))

		return
	}

	fmt.Fprintf(s.opts.Out, "[%s] %s → OK (%d artifacts, %d records, %d skipped)\n",
		now, trigger, len(result.Artifacts), result.Records, result.Skipped)

	if s.ran {
		if changes := ArtifactDiff(s.prev, result.Artifacts); len(changes) > 0 {
			fmt.Fprintf(s.opts.Out, "  artifacts: %s\n", ArtifactDiffSummary(changes))
		}
	}

	s.prev = result.Artifacts
	s.ran = true
}

// triggerLabel names the changed inputs by their base names.
func triggerLabel(paths []string) string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}

	return strings.Join(names, ", ")
}

// resolveTargets returns the cleaned absolute paths of files.
func resolveTargets(files []string) (map[string]bool, error) {
	targets := make(map[string]bool, len(files))

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving input file %q: %w", f, err)
		}

		targets[filepath.Clean(abs)] = true
	}

	return targets, nil
}

func targetDirs(targets map[string]bool) []string {
	seen := make(map[string]bool)

	var dirs []string

	for path := range targets {
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// isRelevant filters out events that cannot change an input document.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	// Editor temporary and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
