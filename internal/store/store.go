package store

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/zoobzio/clockz"
)

// Entry is one persisted key/value pair.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a directory of JSON entries.
type Store struct {
	dir   string
	clock clockz.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp entries.
func WithClock(clock clockz.Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// New opens a Store in dir, creating it if needed. If dir is empty, uses the
// default state directory.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	s := &Store{dir: dir, clock: clockz.RealClock}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get returns the value stored under key. A missing key returns ("", false, nil).
func (s *Store) Get(key string) (string, bool, error) {
	entry, ok, err := s.read(s.entryPath(key))
	if err != nil || !ok {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Lookup returns the full entry for key.
func (s *Store) Lookup(key string) (Entry, bool, error) {
	return s.read(s.entryPath(key))
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	entry := Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: s.clock.Now().UTC(),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state entry: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("creating temp entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing state entry: %w", err)
	}
	if err := os.Rename(tmpName, s.entryPath(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing state entry: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.entryPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting state entry: %w", err)
	}
	return nil
}

// Entries returns every readable entry, sorted by key.
func (s *Store) Entries() ([]Entry, error) {
	files, err := s.entryFiles()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, path := range files {
		entry, ok, err := s.read(path)
		if err != nil || !ok {
			continue // skip unreadable entries
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes all entries.
func (s *Store) Clear() error {
	files, err := s.entryFiles()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clearing state: %w", err)
		}
	}
	return nil
}

// Stats summarizes the store.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Corrupt    int    `json:"corrupt"`
}

// GetStats returns information about the store.
func (s *Store) GetStats() (Stats, error) {
	stats := Stats{Dir: s.dir}
	files, err := s.entryFiles()
	if err != nil {
		return stats, err
	}
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		if _, ok, err := s.read(path); err != nil || !ok {
			stats.Corrupt++
		}
	}
	return stats, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// HashKey creates a SHA-256 hash of the given key.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, HashKey(key)+".json")
}

func (s *Store) entryFiles() ([]string, error) {
	des, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state directory: %w", err)
	}
	var files []string
	for _, e := range des {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	return files, nil
}

func (s *Store) read(path string) (Entry, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("reading state entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("parsing state entry %s: %w", filepath.Base(path), err)
	}
	return entry, true, nil
}

// DefaultDir returns the platform-appropriate state directory for reviser.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "reviser"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "reviser", "state"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "reviser", "state"), nil
		}
		return filepath.Join(home, "AppData", "Local", "reviser", "state"), nil
	default:
		return filepath.Join(home, ".local", "state", "reviser"), nil
	}
}
