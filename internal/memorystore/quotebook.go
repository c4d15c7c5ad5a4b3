package memorystore

import (
	"sort"
	"sync"

	"bysel/pkg/bysel"
)

// QuoteBook keeps the latest quote per symbol plus a short tick history.
type QuoteBook struct {
	globalMu sync.RWMutex
	data     map[string]*symbolQuotes
	depth    int
}

type symbolQuotes struct {
	mu      sync.Mutex
	latest  bysel.Quote
	history []bysel.Quote
}

// NewQuoteBook keeps up to depth ticks per symbol (minimum 1).
func NewQuoteBook(depth int) *QuoteBook {
	if depth < 1 {
		depth = 1
	}
	return &QuoteBook{
		data:  make(map[string]*symbolQuotes),
		depth: depth,
	}
}

func (b *QuoteBook) Add(q bysel.Quote) {
	if q.Symbol == "" {
		return
	}
	if q.Timestamp == 0 {
		q.Timestamp = bysel.Now()
	}

	b.globalMu.RLock()
	store, ok := b.data[q.Symbol]
	b.globalMu.RUnlock()

	if !ok {
		b.globalMu.Lock()
		if store, ok = b.data[q.Symbol]; !ok {
			store = &symbolQuotes{}
			b.data[q.Symbol] = store
		}
		b.globalMu.Unlock()
	}

	store.mu.Lock()
	// Out-of-order ticks update history but never roll back the latest price.
	if q.Timestamp >= store.latest.Timestamp {
		store.latest = q
	}
	store.history = append(store.history, q)
	if len(store.history) > b.depth {
		store.history = store.history[len(store.history)-b.depth:]
	}
	store.mu.Unlock()
}

func (b *QuoteBook) AddAll(quotes []bysel.Quote) {
	for _, q := range quotes {
		b.Add(q)
	}
}

func (b *QuoteBook) Latest(symbol string) (bysel.Quote, bool) {
	b.globalMu.RLock()
	store, ok := b.data[symbol]
	b.globalMu.RUnlock()
	if !ok {
		return bysel.Quote{}, false
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	return store.latest, true
}

func (b *QuoteBook) History(symbol string) []bysel.Quote {
	b.globalMu.RLock()
	store, ok := b.data[symbol]
	b.globalMu.RUnlock()
	if !ok {
		return nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	cp := make([]bysel.Quote, len(store.history))
	copy(cp, store.history)
	return cp
}

// Snapshot returns the latest quote of every symbol, sorted by symbol.
func (b *QuoteBook) Snapshot() []bysel.Quote {
	b.globalMu.RLock()
	defer b.globalMu.RUnlock()

	out := make([]bysel.Quote, 0, len(b.data))
	for _, store := range b.data {
		store.mu.Lock()
		out = append(out, store.latest)
		store.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (b *QuoteBook) Len() int {
	b.globalMu.RLock()
	defer b.globalMu.RUnlock()
	return len(b.data)
}
