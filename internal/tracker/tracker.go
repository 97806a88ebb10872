package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zoobzio/clockz"

	"github.com/dshills/reviser/internal/commit"
)

// KeySuffix is appended to the lower-cased component name to form its store key.
const KeySuffix = "_latest_commit"

// Key returns the store key for a component.
func Key(name string) string {
	return strings.ToLower(name) + KeySuffix
}

// Store persists the last seen commit per key.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Transition records a change of a component's commit.
type Transition struct {
	Component string
	Current   commit.ID
	// Previous is the persisted value; HadPrevious is false on first record.
	Previous    commit.ID
	HadPrevious bool
	At          time.Time
}

func (t Transition) String() string {
	prev := "(none)"
	if t.HadPrevious {
		prev = t.Previous.Display()
	}
	return fmt.Sprintf("%s: %s -> %s", t.Component, prev, t.Current.Display())
}

// Sink receives transitions.
type Sink interface {
	CommitRevised(ctx context.Context, t Transition)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, t Transition)

// CommitRevised calls f.
func (f SinkFunc) CommitRevised(ctx context.Context, t Transition) { f(ctx, t) }

// Reconciler produces the current commit of a component.
type Reconciler interface {
	Current(ctx context.Context, name string) commit.ID
}

// Components lists the components to track, in order.
type Components interface {
	Tracked() []string
}

// Options configures a Tracker.
type Options struct {
	Logger *log.Logger
	// Clock stamps transitions. Defaults to clockz.RealClock.
	Clock clockz.Clock
}

// Tracker runs the detection loop.
type Tracker struct {
	components Components
	reconciler Reconciler
	store      Store
	sink       Sink
	logger     *log.Logger
	clock      clockz.Clock
}

// New creates a Tracker. sink may be nil.
func New(components Components, reconciler Reconciler, store Store, sink Sink, opts Options) *Tracker {
	t := &Tracker{
		components: components,
		reconciler: reconciler,
		store:      store,
		sink:       sink,
		logger:     opts.Logger,
		clock:      opts.Clock,
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	if t.clock == nil {
		t.clock = clockz.RealClock
	}
	if t.sink == nil {
		t.sink = SinkFunc(func(context.Context, Transition) {})
	}
	return t
}

// Run checks every tracked component once and returns the transitions it
// fired. Store write failures are joined into the returned error after all
// components have been processed.
func (t *Tracker) Run(ctx context.Context) ([]Transition, error) {
	var (
		fired []Transition
		errs  []error
	)
	for _, name := range t.components.Tracked() {
		tr, changed, err := t.check(ctx, name)
		if err != nil {
			errs = append(errs, err)
		}
		if changed {
			fired = append(fired, tr)
		}
	}
	return fired, errors.Join(errs...)
}

func (t *Tracker) check(ctx context.Context, name string) (Transition, bool, error) {
	current := t.reconciler.Current(ctx, name)
	key := Key(name)

	previous, had, err := t.store.Get(key)
	if err != nil {
		t.logger.Warn("reading persisted commit failed", "component", name, "key", key, "err", err)
		previous, had = "", false
	}

	// Unknown means no data; it never records or overwrites anything.
	if !current.Known() {
		t.logger.Debug("current commit unknown", "component", name)
		return Transition{}, false, nil
	}
	if had && previous == current.String() {
		return Transition{}, false, nil
	}

	tr := Transition{
		Component:   name,
		Current:     current,
		Previous:    commit.ID(previous),
		HadPrevious: had,
		At:          t.clock.Now(),
	}
	t.logger.Info("commit revised", "component", name, "commit", current, "previous", tr.Previous.Display())
	t.sink.CommitRevised(ctx, tr)

	if err := t.store.Set(key, current.String()); err != nil {
		return tr, true, fmt.Errorf("persisting %s: %w", key, err)
	}
	return tr, true, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

// Writes returns the number of Set calls.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
