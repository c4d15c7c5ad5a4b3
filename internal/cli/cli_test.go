package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bysel/config"
	"bysel/internal/dashboard"
	"bysel/internal/mockserver"
	"bysel/internal/repository"
	"bysel/pkg/bysel"
	"bysel/pkg/storage/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	backend  *mockserver.Backend
	baseURL  string
	cache    *cache.Client
	prefsDir string
	builds   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := mockserver.New()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	c, err := cache.Open(config.CacheConfig{Driver: "sqlite", Path: filepath.Join(dir, "cli.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &fixture{backend: backend, baseURL: srv.URL, cache: c, prefsDir: filepath.Join(dir, "prefs")}
}

func (f *fixture) newApp(_ context.Context, _ string, _ bool) (*App, error) {
	f.builds++
	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: f.baseURL, Timeout: 5 * time.Second},
		Cache:   config.CacheConfig{Driver: "sqlite"},
		Refresh: config.RefreshConfig{Interval: 50 * time.Millisecond, Symbols: []string{"TCS", "INFY", "SBIN"}},
	}
	board, err := dashboard.Open(f.prefsDir)
	if err != nil {
		return nil, err
	}
	api := bysel.NewRESTClient(bysel.Options{BaseURL: f.baseURL, Timeout: 5 * time.Second})
	return &App{
		Config:    cfg,
		Logger:    zap.NewNop(),
		Repo:      repository.New(api, f.cache, nil),
		Dashboard: board,
	}, nil
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return f.runContext(context.Background(), args...)
}

func (f *fixture) runContext(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	err := Execute(ctx, f.newApp, args, &out)
	return out.String(), err
}

// go test -v --run TestVersionIsStandalone
func TestVersionIsStandalone(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), func(context.Context, string, bool) (*App, error) {
		return nil, errors.New("should not be built")
	}, []string{"version"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "bysel "+Version)
}

// go test -v --run TestFactoryError
func TestFactoryError(t *testing.T) {
	err := Execute(context.Background(), func(context.Context, string, bool) (*App, error) {
		return nil, errors.New("bad config")
	}, []string{"quotes"}, &bytes.Buffer{})
	assert.EqualError(t, err, "bad config")
}

// go test -v --run TestQuotesCommand
func TestQuotesCommand(t *testing.T) {
	f := newFixture(t)
	f.backend.SetQuote(bysel.Quote{Symbol: "TCS", Last: 4100, PctChange: 1.5})

	out, err := f.run(t, "quotes")
	require.NoError(t, err)
	assert.Contains(t, out, "TCS")
	assert.Contains(t, out, "4100.00")
	assert.Contains(t, out, "SBIN")

	out, err = f.run(t, "quotes", "--cached", "tcs")
	require.NoError(t, err)
	assert.Contains(t, out, "4100.00")
	assert.NotContains(t, out, "SBIN")

	out, err = f.run(t, "quotes", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "RELIANCE")

	out, err = f.run(t, "quote", "tcs")
	require.NoError(t, err)
	assert.Contains(t, out, "₹4100.00")

	_, err = f.run(t, "quote", "NOPE")
	assert.Error(t, err)
}

// go test -v --run TestBuyAndSell
func TestBuyAndSell(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "buy", "tcs", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Order placed: BUY 5 TCS")
	assert.Contains(t, out, "₹99500.00")

	out, err = f.run(t, "holdings", "--cached")
	require.NoError(t, err)
	assert.Contains(t, out, "TCS")

	_, err = f.run(t, "sell", "TCS", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient holdings")

	_, err = f.run(t, "buy", "TCS", "five")
	assert.ErrorContains(t, err, "invalid quantity")

	out, err = f.run(t, "trades", "TCS")
	require.NoError(t, err)
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "500.00")
}

// go test -v --run TestOrderWhenMarketClosed
func TestOrderWhenMarketClosed(t *testing.T) {
	f := newFixture(t)
	f.backend.SetMarketOpen(false)

	_, err := f.run(t, "buy", "TCS", "1")
	assert.EqualError(t, err, "Market is closed")

	out, err := f.run(t, "market-status")
	require.NoError(t, err)
	assert.Contains(t, out, "CLOSED")
}

// go test -v --run TestPortfolioFallsBackToCache
func TestPortfolioFallsBackToCache(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "buy", "INFY", "4")
	require.NoError(t, err)

	out, err := f.run(t, "portfolio")
	require.NoError(t, err)
	assert.Contains(t, out, "₹400.00")

	f.backend.Fail("/portfolio", http.StatusInternalServerError)
	out, err = f.run(t, "portfolio")
	require.NoError(t, err)
	assert.Contains(t, out, "₹400.00")
	assert.Contains(t, out, "Holdings  1")

	out, err = f.run(t, "portfolio", "--offline", "--value")
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio value")
	assert.Contains(t, out, "₹400.00")
}

// go test -v --run TestAlertCommands
func TestAlertCommands(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "alerts", "create", "tcs", "150", "above")
	require.NoError(t, err)
	assert.Contains(t, out, "Alert created: TCS ABOVE 150.00")

	_, err = f.run(t, "alerts", "create", "TCS", "150", "SIDEWAYS")
	assert.Error(t, err)

	out, err = f.run(t, "alerts", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "ABOVE 150.00")

	out, err = f.run(t, "alerts", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "No triggered alerts.")

	f.backend.SetQuote(bysel.Quote{Symbol: "TCS", Last: 160})
	out, err = f.run(t, "alerts", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "TCS at 160.00 is above 150.00")

	out, err = f.run(t, "alerts", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "No alerts.")

	out, err = f.run(t, "alerts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TCS")
}

// go test -v --run TestWalletCommand
func TestWalletCommand(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "wallet")
	require.NoError(t, err)
	assert.Contains(t, out, "₹100000.00")

	out, err = f.run(t, "wallet", "--add", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "₹100500.00")

	_, err = f.run(t, "wallet", "--add=-5")
	assert.EqualError(t, err, "Amount must be positive")
	assert.Equal(t, 100500.0, f.backend.Balance())
}

// go test -v --run TestInsightCommands
func TestInsightCommands(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "buy", "TCS", "2")
	require.NoError(t, err)

	out, err := f.run(t, "ai", "ask", "how", "is", "tcs")
	require.NoError(t, err)
	assert.Contains(t, out, "TCS")
	assert.Contains(t, out, "Try: ")

	f.backend.Fail("/ai/ask", http.StatusInternalServerError)
	out, err = f.run(t, "ai", "ask", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "Sorry, I couldn't process that.")

	out, err = f.run(t, "ai", "predict", "INFY")
	require.NoError(t, err)
	assert.Contains(t, out, "INFY")

	out, err = f.run(t, "ai", "analyze", "INFY")
	require.NoError(t, err)
	assert.Contains(t, out, "Infosys")

	out, err = f.run(t, "health-score")
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio health")

	out, err = f.run(t, "heatmap")
	require.NoError(t, err)
	assert.Contains(t, out, "Market heatmap")
	assert.Contains(t, out, "Banking")

	out, err = f.run(t, "heatmap", "it")
	require.NoError(t, err)
	assert.Contains(t, out, "WIPRO")

	out, err = f.run(t, "search", "bank")
	require.NoError(t, err)
	assert.Contains(t, out, "HDFCBANK")
}

// go test -v --run TestDashboardCommands
func TestDashboardCommands(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "dashboard", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "All widgets are hidden.")

	_, err = f.run(t, "dashboard", "reset")
	require.NoError(t, err)

	out, err = f.run(t, "dashboard", "up", "news")
	require.NoError(t, err)
	assert.Contains(t, out, "order: news, portfolio, watchlist")

	_, err = f.run(t, "dashboard", "pin", "news")
	require.NoError(t, err)

	_, err = f.run(t, "dashboard", "down", "clock")
	assert.ErrorContains(t, err, "unknown widget")

	out, err = f.run(t, "pins", "toggle", "sbin")
	require.NoError(t, err)
	assert.Contains(t, out, "SBIN pinned")

	out, err = f.run(t, "dashboard", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "hidden: news")
	assert.Contains(t, out, "2. portfolio")
	assert.Contains(t, out, "SBIN")
	assert.Contains(t, out, "100.00")

	_, err = f.run(t, "dashboard", "reset")
	require.NoError(t, err)
	out, err = f.run(t, "dashboard", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "RBI keeps repo rate unchanged")
	assert.Contains(t, out, "1. portfolio")
	assert.NotContains(t, out, "hidden")

	out, err = f.run(t, "pins", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SBIN")

	out, err = f.run(t, "pins", "toggle", "SBIN")
	require.NoError(t, err)
	assert.Contains(t, out, "SBIN unpinned")
}

// go test -v --run TestPing
func TestPing(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "backend "+f.baseURL+": ok")
	assert.Contains(t, out, "cache sqlite: ok")

	f.backend.Fail("/health", http.StatusServiceUnavailable)
	_, err = f.run(t, "ping")
	assert.ErrorContains(t, err, "unreachable")
}

// go test -v --run TestWatchCommand
func TestWatchCommand(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "alerts", "create", "SBIN", "150", "ABOVE")
	require.NoError(t, err)
	f.backend.SetQuote(bysel.Quote{Symbol: "SBIN", Last: 200, PctChange: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	out, err := f.runContext(ctx, "watch", "--interval", "50ms")
	require.NoError(t, err)
	assert.Contains(t, out, "3 quotes")
	assert.Contains(t, out, "200.00")
	assert.Contains(t, out, "SBIN at 200.00 is above 150.00")
}

// go test -v --run TestServeMock
func TestServeMock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- serveMock(ctx, "127.0.0.1:0", mockserver.New(), zap.NewNop(), func(addr string) { ready <- addr })
	}()

	var addr string
	select {
	case addr = <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("mock backend did not start")
	}

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("mock backend did not stop")
	}
}
