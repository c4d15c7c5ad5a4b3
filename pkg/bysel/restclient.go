package bysel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("bysel api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("bysel api error: status %d: %s", e.StatusCode, body)
}

// Options configures a RESTClient.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	UserID  string // sent as the user-id header the backend uses to scope wallets
	Token   string // bearer token, optional
}

type RESTClient struct {
	client *resty.Client
}

func NewRESTClient(opts Options) *RESTClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Retries > 0 {
		client.SetRetryCount(opts.Retries)
		client.SetRetryWaitTime(200 * time.Millisecond)
	}
	client.SetHeader("Accept", "application/json")
	if opts.UserID != "" {
		client.SetHeader("user-id", opts.UserID)
	}
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}

	return &RESTClient{client: client}
}

// HTTPClient exposes the underlying http.Client (for tests and transports).
func (c *RESTClient) HTTPClient() *http.Client {
	return c.client.GetClient()
}

// idempotent reports whether requests with method may be retried.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// noRetry replaces resty's default retry-on-error check for a request.
func noRetry(*resty.Response, error) bool { return false }

func do[T any](ctx context.Context, req *resty.Request, method, path string) (T, error) {
	var out T

	if !idempotent(method) {
		req.AddRetryCondition(noRetry)
	}
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return out, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return out, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return out, fmt.Errorf("decode %s response: %w", path, err)
	}
	return out, nil
}

// ==================== QUOTES ====================

func (c *RESTClient) GetQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	req := c.client.R().SetQueryParam("symbols", strings.Join(symbols, ","))
	return do[[]Quote](ctx, req, http.MethodGet, "/quotes")
}

func (c *RESTClient) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	req := c.client.R().SetPathParam("symbol", symbol)
	return do[Quote](ctx, req, http.MethodGet, "/quotes/{symbol}")
}

func (c *RESTClient) GetAllQuotes(ctx context.Context) ([]Quote, error) {
	return do[[]Quote](ctx, c.client.R(), http.MethodGet, "/quotes/all")
}

// ==================== HOLDINGS ====================

func (c *RESTClient) GetHoldings(ctx context.Context) ([]Holding, error) {
	return do[[]Holding](ctx, c.client.R(), http.MethodGet, "/holdings")
}

func (c *RESTClient) GetHolding(ctx context.Context, symbol string) (Holding, error) {
	req := c.client.R().SetPathParam("symbol", symbol)
	return do[Holding](ctx, req, http.MethodGet, "/holdings/{symbol}")
}

// ==================== TRADING OPERATIONS ====================

func (c *RESTClient) PlaceOrder(ctx context.Context, order Order) (OrderResponse, error) {
	return do[OrderResponse](ctx, c.client.R().SetBody(order), http.MethodPost, "/order")
}

func (c *RESTClient) BuyStock(ctx context.Context, order Order) (OrderResponse, error) {
	return do[OrderResponse](ctx, c.client.R().SetBody(order), http.MethodPost, "/trade/buy")
}

func (c *RESTClient) SellStock(ctx context.Context, order Order) (OrderResponse, error) {
	return do[OrderResponse](ctx, c.client.R().SetBody(order), http.MethodPost, "/trade/sell")
}

func (c *RESTClient) GetTradeHistory(ctx context.Context) ([]TradeHistory, error) {
	return do[[]TradeHistory](ctx, c.client.R(), http.MethodGet, "/trades/history")
}

func (c *RESTClient) GetTradeHistoryForSymbol(ctx context.Context, symbol string) ([]TradeHistory, error) {
	req := c.client.R().SetPathParam("symbol", symbol)
	return do[[]TradeHistory](ctx, req, http.MethodGet, "/trades/history/{symbol}")
}

// ==================== PORTFOLIO ====================

func (c *RESTClient) GetPortfolio(ctx context.Context) (PortfolioSummary, error) {
	return do[PortfolioSummary](ctx, c.client.R(), http.MethodGet, "/portfolio")
}

func (c *RESTClient) GetPortfolioValue(ctx context.Context) (PortfolioValue, error) {
	return do[PortfolioValue](ctx, c.client.R(), http.MethodGet, "/portfolio/value")
}

func (c *RESTClient) GetPortfolioHealth(ctx context.Context) (PortfolioHealthScore, error) {
	return do[PortfolioHealthScore](ctx, c.client.R(), http.MethodGet, "/portfolio/health")
}

// ==================== ALERTS ====================

func (c *RESTClient) GetAlerts(ctx context.Context) ([]Alert, error) {
	return do[[]Alert](ctx, c.client.R(), http.MethodGet, "/alerts")
}

func (c *RESTClient) GetActiveAlerts(ctx context.Context) ([]Alert, error) {
	return do[[]Alert](ctx, c.client.R(), http.MethodGet, "/alerts/active")
}

func (c *RESTClient) CreateAlert(ctx context.Context, alert Alert) (Alert, error) {
	return do[Alert](ctx, c.client.R().SetBody(alert), http.MethodPost, "/alerts")
}

func (c *RESTClient) UpdateAlert(ctx context.Context, id int, alert Alert) (Alert, error) {
	req := c.client.R().SetPathParam("id", strconv.Itoa(id)).SetBody(alert)
	return do[Alert](ctx, req, http.MethodPut, "/alerts/{id}")
}

// DeleteAlert uses the singular /alert/{id} path the backend exposes for deletes.
func (c *RESTClient) DeleteAlert(ctx context.Context, id int) (AlertResponse, error) {
	req := c.client.R().SetPathParam("id", strconv.Itoa(id))
	return do[AlertResponse](ctx, req, http.MethodDelete, "/alert/{id}")
}

// ==================== SEARCH ====================

func (c *RESTClient) SearchStocks(ctx context.Context, query string) ([]StockSearchResult, error) {
	req := c.client.R().SetQueryParam("q", query)
	return do[[]StockSearchResult](ctx, req, http.MethodGet, "/search")
}

func (c *RESTClient) GetAllSymbols(ctx context.Context) ([]StockSearchResult, error) {
	return do[[]StockSearchResult](ctx, c.client.R(), http.MethodGet, "/symbols")
}

// ==================== AI ASSISTANT ====================

func (c *RESTClient) AiAsk(ctx context.Context, query AiQuery) (AiAssistantResponse, error) {
	return do[AiAssistantResponse](ctx, c.client.R().SetBody(query), http.MethodPost, "/ai/ask")
}

func (c *RESTClient) AiAnalyze(ctx context.Context, symbol string) (StockAnalysis, error) {
	req := c.client.R().SetPathParam("symbol", symbol)
	return do[StockAnalysis](ctx, req, http.MethodGet, "/ai/analyze/{symbol}")
}

func (c *RESTClient) AiPredict(ctx context.Context, symbol string) (StockPredictionResponse, error) {
	req := c.client.R().SetPathParam("symbol", symbol)
	return do[StockPredictionResponse](ctx, req, http.MethodGet, "/ai/predict/{symbol}")
}

// ==================== MARKET ====================

func (c *RESTClient) GetMarketHeatmap(ctx context.Context) (MarketHeatmap, error) {
	return do[MarketHeatmap](ctx, c.client.R(), http.MethodGet, "/market/heatmap")
}

func (c *RESTClient) GetSectorDetail(ctx context.Context, sector string) (HeatmapSector, error) {
	req := c.client.R().SetPathParam("sector", sector)
	return do[HeatmapSector](ctx, req, http.MethodGet, "/market/heatmap/{sector}")
}

func (c *RESTClient) GetMarketStatus(ctx context.Context) (MarketStatus, error) {
	return do[MarketStatus](ctx, c.client.R(), http.MethodGet, "/market/status")
}

// ==================== WALLET ====================

func (c *RESTClient) GetWallet(ctx context.Context) (Wallet, error) {
	return do[Wallet](ctx, c.client.R(), http.MethodGet, "/wallet")
}

func (c *RESTClient) AddFunds(ctx context.Context, amount float64) (WalletResponse, error) {
	req := c.client.R().SetBody(AddFundsRequest{Amount: amount})
	return do[WalletResponse](ctx, req, http.MethodPost, "/wallet/add")
}

// ==================== HEALTH ====================

func (c *RESTClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	return do[map[string]string](ctx, c.client.R(), http.MethodGet, "/health")
}
