package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bysel/config"
	"bysel/pkg/bysel"
	"bysel/pkg/storage/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *cache.Client {
	t.Helper()
	client, err := cache.Open(config.CacheConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "cache.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// go test -v --run TestOpenUnknownDriver
func TestOpenUnknownDriver(t *testing.T) {
	_, err := cache.Open(config.CacheConfig{Driver: "mongo"})
	assert.Error(t, err)
}

// go test -v --run TestCacheHealthy
func TestCacheHealthy(t *testing.T) {
	client := openTestCache(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	assert.True(t, client.IsHealthy(ctx))
}

// go test -v --run TestQuoteUpsert
func TestQuoteUpsert(t *testing.T) {
	client := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, client.UpsertQuotes(ctx, []bysel.Quote{
		{Symbol: "TCS", Last: 4000, PctChange: 0.1},
		{Symbol: "INFY", Last: 1500, PctChange: -0.2, Timestamp: 1000},
	}))
	require.NoError(t, client.UpsertQuote(ctx, bysel.Quote{Symbol: "TCS", Last: 4100, PctChange: 2.5}))

	all, err := client.AllQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "INFY", all[0].Symbol)
	assert.Equal(t, bysel.Millis(1000), all[0].Timestamp)
	assert.Equal(t, 4100.0, all[1].Last)
	assert.NotZero(t, all[1].Timestamp, "missing timestamps are stamped on insert")

	some, err := client.QuotesBySymbols(ctx, []string{"TCS", "WIPRO", "INFY"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "TCS", some[0].Symbol)
	assert.Equal(t, "INFY", some[1].Symbol)

	none, err := client.QuotesBySymbols(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, client.ClearQuotes(ctx))
	all, err = client.AllQuotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// go test -v --run TestHoldingCRUD
func TestHoldingCRUD(t *testing.T) {
	client := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, client.UpsertHoldings(ctx, []bysel.Holding{
		{Symbol: "SBIN", Qty: 10, AvgPrice: 600, Last: 650, PnL: 500},
	}))

	h, err := client.HoldingBySymbol(ctx, "SBIN")
	require.NoError(t, err)
	assert.Equal(t, 10, h.Qty)
	assert.Equal(t, 500.0, h.PnL)

	_, err = client.HoldingBySymbol(ctx, "TCS")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, client.UpsertHolding(ctx, bysel.Holding{Symbol: "SBIN", Qty: 5, AvgPrice: 600, Last: 700, PnL: 500}))
	all, err := client.AllHoldings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 5, all[0].Qty)

	require.NoError(t, client.ClearHoldings(ctx))
	all, err = client.AllHoldings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// go test -v --run TestAlertCRUD
func TestAlertCRUD(t *testing.T) {
	client := openTestCache(t)
	ctx := context.Background()

	first, err := client.InsertAlert(ctx, bysel.Alert{Symbol: "TCS", ThresholdPrice: 4200, AlertType: bysel.AlertAbove, IsActive: true})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.NotZero(t, first.CreatedAt)

	second, err := client.InsertAlert(ctx, bysel.Alert{Symbol: "INFY", ThresholdPrice: 1400, AlertType: bysel.AlertBelow, IsActive: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// Replace on conflict keeps a single row per ID.
	first.ThresholdPrice = 4300
	_, err = client.InsertAlert(ctx, first)
	require.NoError(t, err)

	all, err := client.AllAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 4300.0, all[0].ThresholdPrice)

	require.NoError(t, client.DeactivateAlert(ctx, first.ID))
	active, err := client.ActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "INFY", active[0].Symbol)

	require.NoError(t, client.DeactivateAlert(ctx, 999))

	require.NoError(t, client.DeleteAlert(ctx, second.ID))
	assert.ErrorIs(t, client.DeleteAlert(ctx, second.ID), cache.ErrNotFound)

	active, err = client.ActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

// go test -v --run TestWatchNotifies
func TestWatchNotifies(t *testing.T) {
	client := openTestCache(t)
	ctx := context.Background()

	ch, cancel := client.Watch(cache.TableAlerts)
	defer cancel()
	quotesCh, cancelQuotes := client.Watch(cache.TableQuotes)

	_, err := client.InsertAlert(ctx, bysel.Alert{Symbol: "TCS", ThresholdPrice: 1, AlertType: bysel.AlertAbove, IsActive: true})
	require.NoError(t, err)
	_, err = client.InsertAlert(ctx, bysel.Alert{Symbol: "TCS", ThresholdPrice: 2, AlertType: bysel.AlertAbove, IsActive: true})
	require.NoError(t, err)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected alert notification")
	}
	// Two writes coalesce into a single pending signal.
	select {
	case <-ch:
		t.Fatal("notifications should coalesce")
	default:
	}

	select {
	case <-quotesCh:
		t.Fatal("quotes watcher should not fire on alert writes")
	default:
	}

	cancelQuotes()
	_, open := <-quotesCh
	assert.False(t, open, "cancel closes the channel")
}
