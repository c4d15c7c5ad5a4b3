package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/viper"
)

// Store is a small persisted key-value file. Every setter writes through.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// Open loads (or starts empty) the store at dir/name.yaml.
func Open(dir, name string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	path := filepath.Join(dir, name+".yaml")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read prefs %s: %w", path, err)
		}
	}
	return &Store{v: v, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) GetBool(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetBool(key)
}

func (s *Store) SetBool(key string, value bool) error {
	return s.set(key, value)
}

func (s *Store) GetString(key, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.v.IsSet(key) {
		return def
	}
	return s.v.GetString(key)
}

func (s *Store) SetString(key, value string) error {
	return s.set(key, value)
}

// GetStringSet returns the stored set in sorted order.
func (s *Store) GetStringSet(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.v.GetStringSlice(key)...)
	sort.Strings(out)
	return out
}

// SetStringSet stores values de-duplicated and sorted.
func (s *Store) SetStringSet(key string, values []string) error {
	seen := make(map[string]struct{}, len(values))
	set := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	sort.Strings(set)
	return s.set(key, set)
}

// Edit applies several changes and persists once.
func (s *Store) Edit(fn func(e *Editor)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Editor{v: s.v})
	return s.write()
}

// Editor batches writes inside Store.Edit.
type Editor struct {
	v *viper.Viper
}

func (e *Editor) Set(key string, value any) { e.v.Set(key, value) }

func (s *Store) set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	return s.write()
}

// write must be called with mu held.
func (s *Store) write() error {
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write prefs %s: %w", s.path, err)
	}
	return nil
}
