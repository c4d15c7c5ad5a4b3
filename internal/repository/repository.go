package repository

import (
	"context"
	"time"

	"bysel/internal/result"
	"bysel/logger"
	"bysel/pkg/bysel"
	"bysel/pkg/storage/cache"

	"go.uber.org/zap"
)

// API is the remote surface the repository needs; *bysel.RESTClient implements it.
type API interface {
	GetQuotes(ctx context.Context, symbols []string) ([]bysel.Quote, error)
	GetQuote(ctx context.Context, symbol string) (bysel.Quote, error)
	GetAllQuotes(ctx context.Context) ([]bysel.Quote, error)
	GetHoldings(ctx context.Context) ([]bysel.Holding, error)
	GetHolding(ctx context.Context, symbol string) (bysel.Holding, error)
	PlaceOrder(ctx context.Context, order bysel.Order) (bysel.OrderResponse, error)
	BuyStock(ctx context.Context, order bysel.Order) (bysel.OrderResponse, error)
	SellStock(ctx context.Context, order bysel.Order) (bysel.OrderResponse, error)
	GetTradeHistory(ctx context.Context) ([]bysel.TradeHistory, error)
	GetTradeHistoryForSymbol(ctx context.Context, symbol string) ([]bysel.TradeHistory, error)
	GetPortfolio(ctx context.Context) (bysel.PortfolioSummary, error)
	GetPortfolioValue(ctx context.Context) (bysel.PortfolioValue, error)
	GetPortfolioHealth(ctx context.Context) (bysel.PortfolioHealthScore, error)
	GetAlerts(ctx context.Context) ([]bysel.Alert, error)
	CreateAlert(ctx context.Context, alert bysel.Alert) (bysel.Alert, error)
	DeleteAlert(ctx context.Context, id int) (bysel.AlertResponse, error)
	SearchStocks(ctx context.Context, query string) ([]bysel.StockSearchResult, error)
	GetAllSymbols(ctx context.Context) ([]bysel.StockSearchResult, error)
	AiAsk(ctx context.Context, query bysel.AiQuery) (bysel.AiAssistantResponse, error)
	AiAnalyze(ctx context.Context, symbol string) (bysel.StockAnalysis, error)
	AiPredict(ctx context.Context, symbol string) (bysel.StockPredictionResponse, error)
	GetMarketHeatmap(ctx context.Context) (bysel.MarketHeatmap, error)
	GetSectorDetail(ctx context.Context, sector string) (bysel.HeatmapSector, error)
	GetMarketStatus(ctx context.Context) (bysel.MarketStatus, error)
	GetWallet(ctx context.Context) (bysel.Wallet, error)
	AddFunds(ctx context.Context, amount float64) (bysel.WalletResponse, error)
	HealthCheck(ctx context.Context) (map[string]string, error)
}

// Repository fronts the remote API with the local cache. Remote failures
// surface as result.Error; cache write failures are only logged.
type Repository struct {
	api         API
	cache       *cache.Client
	logger      *zap.Logger
	cacheWrites time.Duration
}

func New(api API, c *cache.Client, log *zap.Logger) *Repository {
	return &Repository{api: api, cache: c, logger: logger.OrNop(log), cacheWrites: 2 * time.Second}
}

// Cache returns the backing cache (may be nil).
func (r *Repository) Cache() *cache.Client {
	return r.cache
}

// stream emits Loading, then the outcome of call, then closes.
func stream[T any](ctx context.Context, call func(context.Context) (T, error)) <-chan result.Result[T] {
	ch := make(chan result.Result[T], 2)
	ch <- result.Loading[T]()
	go func() {
		defer close(ch)
		v, err := call(ctx)
		if err != nil {
			ch <- result.Error[T](err.Error())
			return
		}
		ch <- result.Success(v)
	}()
	return ch
}

func once[T any](ctx context.Context, call func(context.Context) (T, error)) result.Result[T] {
	v, err := call(ctx)
	if err != nil {
		return result.FromErr[T](err)
	}
	return result.Success(v)
}

// Await drains a stream and returns its final result.
func Await[T any](ch <-chan result.Result[T]) result.Result[T] {
	last := result.Loading[T]()
	for r := range ch {
		last = r
	}
	return last
}

func (r *Repository) writeCache(op string, fn func(ctx context.Context, c *cache.Client) error) {
	if r.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cacheWrites)
	defer cancel()
	if err := fn(ctx, r.cache); err != nil {
		r.logger.Warn("cache write failed", zap.String("op", op), zap.Error(err))
	}
}
