package memorystore

import (
	"strings"
	"sync"
)

// SymbolSet is an ordered, de-duplicated set of upper-case ticker symbols.
type SymbolSet struct {
	mu      sync.Mutex
	symbols []string
	index   map[string]struct{}
	version uint64
}

func NewSymbolSet(symbols ...string) *SymbolSet {
	s := &SymbolSet{index: make(map[string]struct{})}
	for _, sym := range symbols {
		s.Add(sym)
	}
	return s
}

// Add reports whether symbol was newly added.
func (s *SymbolSet) Add(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[symbol]; ok {
		return false
	}
	s.index[symbol] = struct{}{}
	s.symbols = append(s.symbols, symbol)
	s.version++
	return true
}

// Version changes every time the contents change.
func (s *SymbolSet) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *SymbolSet) GetAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}
