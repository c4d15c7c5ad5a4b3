package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openModel(t *testing.T, dir string) *Model {
	t.Helper()
	m, err := Open(dir)
	require.NoError(t, err)
	return m
}

// go test -v --run TestDefaults
func TestDefaults(t *testing.T) {
	m := openModel(t, t.TempDir())

	assert.Equal(t, []string{"portfolio", "news", "watchlist"}, m.WidgetOrder())
	assert.False(t, m.PortfolioPinned.Get())
	assert.False(t, m.NewsPinned.Get())
	assert.False(t, m.WatchlistPinned.Get())
	assert.Empty(t, m.PinnedStocks.Get())
	assert.Empty(t, m.VisibleWidgets())
}

// go test -v --run TestMoveWidget
func TestMoveWidget(t *testing.T) {
	dir := t.TempDir()
	m := openModel(t, dir)

	require.NoError(t, m.MoveWidgetUp("news"))
	assert.Equal(t, []string{"news", "portfolio", "watchlist"}, m.WidgetOrder())

	require.NoError(t, m.MoveWidgetDown("portfolio"))
	assert.Equal(t, []string{"news", "watchlist", "portfolio"}, m.WidgetOrder())

	// Edges and unknown names are no-ops.
	require.NoError(t, m.MoveWidgetUp("news"))
	require.NoError(t, m.MoveWidgetDown("portfolio"))
	require.NoError(t, m.MoveWidgetUp("calendar"))
	assert.Equal(t, []string{"news", "watchlist", "portfolio"}, m.WidgetOrder())

	reopened := openModel(t, dir)
	assert.Equal(t, []string{"news", "watchlist", "portfolio"}, reopened.WidgetOrder())
}

// go test -v --run TestStoredOrderFiltersBlanks
func TestStoredOrderFiltersBlanks(t *testing.T) {
	dir := t.TempDir()
	m := openModel(t, dir)
	require.NoError(t, m.widgets.SetString(KeyWidgetOrder, "watchlist,,news, "))

	m.Load()
	assert.Equal(t, []string{"watchlist", "news"}, m.WidgetOrder())

	require.NoError(t, m.widgets.SetString(KeyWidgetOrder, ",,"))
	m.Load()
	assert.Equal(t, DefaultOrder, m.WidgetOrder())
}

// go test -v --run TestTogglePins
func TestTogglePins(t *testing.T) {
	dir := t.TempDir()
	m := openModel(t, dir)

	require.NoError(t, m.TogglePortfolioPin())
	require.NoError(t, m.ToggleWatchlistPin())
	require.NoError(t, m.ToggleNewsPin())
	require.NoError(t, m.ToggleNewsPin())
	assert.Equal(t, []string{"portfolio", "watchlist"}, m.VisibleWidgets())
	assert.Error(t, m.ToggleWidgetPin("calendar"))

	reopened := openModel(t, dir)
	assert.True(t, reopened.PortfolioPinned.Get())
	assert.False(t, reopened.NewsPinned.Get())
	assert.True(t, reopened.WatchlistPinned.Get())
}

// go test -v --run TestTogglePinnedStocks
func TestTogglePinnedStocks(t *testing.T) {
	dir := t.TempDir()
	m := openModel(t, dir)

	require.NoError(t, m.TogglePin("tcs"))
	require.NoError(t, m.TogglePin("INFY"))
	assert.Equal(t, []string{"INFY", "TCS"}, m.PinnedStocks.Get())
	assert.True(t, m.IsStockPinned("tcs"))

	require.NoError(t, m.TogglePin("TCS"))
	assert.Equal(t, []string{"INFY"}, m.PinnedStocks.Get())
	assert.Error(t, m.TogglePin(" "))

	reopened := openModel(t, dir)
	assert.Equal(t, []string{"INFY"}, reopened.PinnedStocks.Get())
}

// go test -v --run TestResetLayout
func TestResetLayout(t *testing.T) {
	dir := t.TempDir()
	m := openModel(t, dir)
	require.NoError(t, m.MoveWidgetDown("portfolio"))

	require.NoError(t, m.ResetLayout())
	assert.Equal(t, DefaultOrder, m.WidgetOrder())
	assert.Equal(t, DefaultOrder, m.VisibleWidgets())

	reopened := openModel(t, dir)
	assert.Equal(t, DefaultOrder, reopened.VisibleWidgets())
}

// go test -v --run TestOrderObservable
func TestOrderObservable(t *testing.T) {
	m := openModel(t, t.TempDir())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ch := m.Order.Subscribe(ctx)
	assert.Equal(t, DefaultOrder, <-ch)

	require.NoError(t, m.MoveWidgetDown("news"))
	select {
	case order := <-ch:
		assert.Equal(t, []string{"portfolio", "watchlist", "news"}, order)
	case <-ctx.Done():
		t.Fatal("no order update")
	}
}
