package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"bysel/internal/prefs"
	"bysel/internal/state"
)

// Widget names.
const (
	WidgetPortfolio = "portfolio"
	WidgetNews      = "news"
	WidgetWatchlist = "watchlist"
)

// Preference store names and keys.
const (
	WidgetsStore = "pinned_widgets_prefs"
	StocksStore  = "pinned_stocks"

	KeyPortfolioPinned = "portfolio_pinned"
	KeyNewsPinned      = "news_pinned"
	KeyWatchlistPinned = "watchlist_pinned"
	KeyWidgetOrder     = "widget_order"
	KeyPinnedSymbols   = "pinned_symbols"
)

// DefaultOrder is the widget order before any customization.
var DefaultOrder = []string{WidgetPortfolio, WidgetNews, WidgetWatchlist}

var pinKeys = map[string]string{
	WidgetPortfolio: KeyPortfolioPinned,
	WidgetNews:      KeyNewsPinned,
	WidgetWatchlist: KeyWatchlistPinned,
}

// IsWidget reports whether name is a known widget.
func IsWidget(name string) bool {
	_, ok := pinKeys[name]
	return ok
}

// Model holds the customizable dashboard layout. Every mutation updates the
// observable values first and then persists.
type Model struct {
	mu      sync.Mutex
	widgets *prefs.Store
	stocks  *prefs.Store

	Order           *state.Value[[]string]
	PortfolioPinned *state.Value[bool]
	NewsPinned      *state.Value[bool]
	WatchlistPinned *state.Value[bool]
	PinnedStocks    *state.Value[[]string]
}

// Open opens both preference stores under dir and loads the layout.
func Open(dir string) (*Model, error) {
	widgets, err := prefs.Open(dir, WidgetsStore)
	if err != nil {
		return nil, err
	}
	stocks, err := prefs.Open(dir, StocksStore)
	if err != nil {
		return nil, err
	}
	m := New(widgets, stocks)
	m.Load()
	return m, nil
}

func New(widgets, stocks *prefs.Store) *Model {
	return &Model{
		widgets:         widgets,
		stocks:          stocks,
		Order:           state.NewValue(slices.Clone(DefaultOrder)),
		PortfolioPinned: state.NewValue(false),
		NewsPinned:      state.NewValue(false),
		WatchlistPinned: state.NewValue(false),
		PinnedStocks:    state.NewValue([]string{}),
	}
}

// Load refreshes the observable values from the stores.
func (m *Model) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Order.Set(parseOrder(m.widgets.GetString(KeyWidgetOrder, "")))
	m.PortfolioPinned.Set(m.widgets.GetBool(KeyPortfolioPinned, false))
	m.NewsPinned.Set(m.widgets.GetBool(KeyNewsPinned, false))
	m.WatchlistPinned.Set(m.widgets.GetBool(KeyWatchlistPinned, false))
	m.PinnedStocks.Set(m.stocks.GetStringSet(KeyPinnedSymbols))
}

func parseOrder(raw string) []string {
	if raw == "" {
		return slices.Clone(DefaultOrder)
	}
	var out []string
	for _, w := range strings.Split(raw, ",") {
		if strings.TrimSpace(w) != "" {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultOrder)
	}
	return out
}

func (m *Model) WidgetOrder() []string {
	return slices.Clone(m.Order.Get())
}

// MoveWidgetUp swaps widget with its predecessor. It is a no-op when widget
// is first or unknown.
func (m *Model) MoveWidgetUp(widget string) error {
	return m.move(widget, -1)
}

// MoveWidgetDown swaps widget with its successor. It is a no-op when widget
// is last or unknown.
func (m *Model) MoveWidgetDown(widget string) error {
	return m.move(widget, +1)
}

func (m *Model) move(widget string, delta int) error {
	if !IsWidget(widget) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	order := slices.Clone(m.Order.Get())
	idx := slices.Index(order, widget)
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(order) {
		return nil
	}
	order[idx], order[target] = order[target], order[idx]

	m.Order.Set(order)
	return m.widgets.SetString(KeyWidgetOrder, strings.Join(order, ","))
}

func (m *Model) TogglePortfolioPin() error { return m.ToggleWidgetPin(WidgetPortfolio) }
func (m *Model) ToggleNewsPin() error      { return m.ToggleWidgetPin(WidgetNews) }
func (m *Model) ToggleWatchlistPin() error { return m.ToggleWidgetPin(WidgetWatchlist) }

// ToggleWidgetPin flips the pinned flag of a widget by name.
func (m *Model) ToggleWidgetPin(widget string) error {
	key, ok := pinKeys[widget]
	if !ok {
		return fmt.Errorf("unknown widget %q", widget)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.pinValue(widget)
	next := !v.Get()
	v.Set(next)
	return m.widgets.SetBool(key, next)
}

func (m *Model) pinValue(widget string) *state.Value[bool] {
	switch widget {
	case WidgetPortfolio:
		return m.PortfolioPinned
	case WidgetNews:
		return m.NewsPinned
	default:
		return m.WatchlistPinned
	}
}

// IsPinned reports the pinned flag of a widget; unknown widgets are unpinned.
func (m *Model) IsPinned(widget string) bool {
	if !IsWidget(widget) {
		return false
	}
	return m.pinValue(widget).Get()
}

// TogglePin adds symbol to the pinned stocks, or removes it when present.
func (m *Model) TogglePin(symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("empty symbol")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := slices.Clone(m.PinnedStocks.Get())
	if i := slices.Index(current, symbol); i >= 0 {
		current = slices.Delete(current, i, i+1)
	} else {
		current = append(current, symbol)
		slices.Sort(current)
	}

	m.PinnedStocks.Set(current)
	return m.stocks.SetStringSet(KeyPinnedSymbols, current)
}

func (m *Model) IsStockPinned(symbol string) bool {
	return slices.Contains(m.PinnedStocks.Get(), strings.ToUpper(symbol))
}

// ResetLayout pins every widget and restores the default order.
func (m *Model) ResetLayout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PortfolioPinned.Set(true)
	m.NewsPinned.Set(true)
	m.WatchlistPinned.Set(true)
	m.Order.Set(slices.Clone(DefaultOrder))

	return m.widgets.Edit(func(e *prefs.Editor) {
		e.Set(KeyPortfolioPinned, true)
		e.Set(KeyNewsPinned, true)
		e.Set(KeyWatchlistPinned, true)
		e.Set(KeyWidgetOrder, strings.Join(DefaultOrder, ","))
	})
}

// VisibleWidgets returns the widget order restricted to pinned widgets.
func (m *Model) VisibleWidgets() []string {
	var out []string
	for _, w := range m.Order.Get() {
		if m.IsPinned(w) {
			out = append(out, w)
		}
	}
	return out
}
