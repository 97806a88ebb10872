package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 250 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Clock drives the debounce timer. Defaults to the real clock.
	Clock  clockz.Clock
	Logger *log.Logger
}

// Watcher calls a function after watched files settle.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	onChange func(ctx context.Context)
	debounce time.Duration
	clock    clockz.Clock
	logger   *log.Logger
}

// New creates a Watcher for the given files.
func New(files []string, onChange func(ctx context.Context), opts Options) *Watcher {
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		onChange: onChange,
		debounce: opts.Debounce,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.clock == nil {
		w.clock = clockz.RealClock
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = filepath.Clean(f)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		w.dirs = append(w.dirs, d)
	}
	sort.Strings(w.dirs)
	return w
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Watch blocks until ctx is cancelled, calling onChange after each settled
// burst of changes to the watched files.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	for _, d := range w.dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", d, err)
		}
	}
	w.logger.Debug("watching", "files", len(w.files), "debounce", w.debounce)

	changes := make(chan string)
	go w.forward(ctx, fw, changes)

	w.loop(ctx, changes)
	return nil
}

// forward relays events for watched files until ctx is done or the
// fsnotify watcher closes.
func (w *Watcher) forward(ctx context.Context, fw *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod || !w.files[filepath.Clean(event.Name)] {
				continue
			}
			select {
			case out <- event.Name:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// loop debounces changes and runs onChange when the timer fires. A change
// still pending when changes closes is flushed before returning.
func (w *Watcher) loop(ctx context.Context, changes <-chan string) {
	var (
		timer      clockz.Timer
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case name, ok := <-changes:
			if !ok {
				if hasPending {
					w.onChange(ctx)
				}
				return
			}
			w.logger.Debug("commit cache changed", "file", name)
			hasPending = true

			if timer == nil {
				timer = w.clock.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			if hasPending {
				w.onChange(ctx)
				hasPending = false
			}
		}
	}
}
