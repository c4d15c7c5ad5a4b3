package trading

import (
	"context"
	"strings"

	"bysel/internal/alerts"
	"bysel/internal/result"
	"bysel/pkg/bysel"

	"go.uber.org/zap"
)

// AiFailureMessage is appended to the chat when the assistant call fails.
const AiFailureMessage = "Sorry, I couldn't process that. Please try again."

// ==================== QUOTES ====================

func (m *Model) RefreshQuotes(ctx context.Context) {
	m.collectQuotes(m.repo.Quotes(ctx, m.symbols.GetAll()))
}

func (m *Model) LoadAllQuotes(ctx context.Context) {
	m.collectQuotes(m.repo.AllQuotesFromAPI(ctx))
}

func (m *Model) collectQuotes(ch <-chan result.Result[[]bysel.Quote]) {
	for r := range ch {
		switch {
		case r.IsLoading():
			m.IsLoading.Set(true)
		case r.IsSuccess():
			m.setQuotes(r.Data())
			m.IsLoading.Set(false)
		case r.IsError():
			m.Error.Set(r.Message())
			m.IsLoading.Set(false)
		}
	}
}

// ==================== SEARCH ====================

// SearchStocks clears the results for a blank query without calling the API.
func (m *Model) SearchStocks(ctx context.Context, query string) {
	if strings.TrimSpace(query) == "" {
		m.SearchResults.Set([]bysel.StockSearchResult{})
		return
	}

	m.IsSearching.Set(true)
	r := m.repo.SearchStocks(ctx, query)
	if r.IsSuccess() {
		m.SearchResults.Set(r.Data())
	} else {
		m.Error.Set(r.Message())
	}
	m.IsSearching.Set(false)
}

func (m *Model) ClearSearchResults() {
	m.SearchResults.Set([]bysel.StockSearchResult{})
}

// ==================== DETAIL ====================

func (m *Model) SetSelectedQuote(q bysel.Quote) {
	m.SelectedQuote.Set(&q)
}

func (m *Model) FetchAndSelectQuote(ctx context.Context, symbol string) {
	m.DetailLoading.Set(true)
	r := m.repo.Quote(ctx, symbol)
	if r.IsSuccess() {
		m.SelectedQuote.Set(ptr(r.Data()))
		m.book.Add(r.Data())
	} else {
		m.Error.Set(r.Message())
		// Keep showing the last known price for the symbol, if any.
		if q, ok := m.book.Latest(strings.ToUpper(symbol)); ok {
			m.SelectedQuote.Set(ptr(q))
		}
	}
	m.DetailLoading.Set(false)
}

// ==================== HOLDINGS ====================

func (m *Model) RefreshHoldings(ctx context.Context) {
	for r := range m.repo.Holdings(ctx) {
		switch {
		case r.IsLoading():
			m.IsLoading.Set(true)
		case r.IsSuccess():
			m.Holdings.Set(r.Data())
			m.IsLoading.Set(false)
		case r.IsError():
			m.Error.Set(r.Message())
			m.IsLoading.Set(false)
		}
	}
}

// ==================== ORDERS ====================

// PlaceOrder submits an order. A backend rejection (status "error") sets
// Error to its message; an accepted order refreshes holdings and wallet.
func (m *Model) PlaceOrder(ctx context.Context, symbol string, qty int, side string) {
	order := bysel.Order{Symbol: strings.ToUpper(symbol), Qty: qty, Side: strings.ToUpper(side)}
	r := m.repo.PlaceOrder(ctx, order)

	switch {
	case r.IsError():
		m.Error.Set(r.Message())
	case r.Data().Status == bysel.StatusError:
		m.Error.Set(r.Data().Message)
	default:
		m.Error.Set("")
		m.logger.Info("order placed",
			zap.String("symbol", order.Symbol),
			zap.String("side", order.Side),
			zap.Int("qty", order.Qty))
		m.RefreshHoldings(ctx)
		m.RefreshWallet(ctx)
	}
}

// ==================== WALLET & MARKET ====================

// RefreshWallet ignores failures.
func (m *Model) RefreshWallet(ctx context.Context) {
	if r := m.repo.Wallet(ctx); r.IsSuccess() {
		m.WalletBalance.Set(r.Data().Balance)
	}
}

// RefreshMarketStatus ignores failures.
func (m *Model) RefreshMarketStatus(ctx context.Context) {
	if r := m.repo.MarketStatus(ctx); r.IsSuccess() {
		m.MarketStatus.Set(ptr(r.Data()))
	}
}

func (m *Model) AddFunds(ctx context.Context, amount float64) {
	r := m.repo.AddFunds(ctx, amount)
	switch {
	case r.IsError():
		m.Error.Set(r.Message())
	case r.Data().Status == bysel.StatusOK:
		m.WalletBalance.Set(r.Data().Balance)
		m.Error.Set("")
	default:
		m.Error.Set(r.Data().Message)
	}
}

// ==================== ALERTS ====================

// CreateAlert validates input locally before calling the backend.
func (m *Model) CreateAlert(ctx context.Context, symbol string, threshold float64, alertType string) {
	normalized, err := alerts.Validate(alertType, threshold)
	if err != nil {
		m.Error.Set(err.Error())
		return
	}

	r := m.repo.CreateAlert(ctx, bysel.Alert{
		Symbol:         strings.ToUpper(symbol),
		ThresholdPrice: threshold,
		AlertType:      normalized,
		IsActive:       true,
		CreatedAt:      bysel.Now(),
	})
	if r.IsError() {
		m.Error.Set(r.Message())
		return
	}
	m.Error.Set("")
}

func (m *Model) DeleteAlert(ctx context.Context, id int) {
	if r := m.repo.DeleteAlert(ctx, id); r.IsError() {
		m.Error.Set(r.Message())
		return
	}
	m.Error.Set("")
}

// CheckAlerts evaluates the cached active alerts against the latest quotes.
// Triggered alerts are deactivated locally, logged and published.
func (m *Model) CheckAlerts(ctx context.Context) []alerts.Trigger {
	active, err := m.repo.ActiveAlerts(ctx)
	if err != nil {
		m.logger.Warn("failed to load active alerts", zap.Error(err))
		active = m.Alerts.Get()
	}

	triggers := alerts.Evaluate(active, m.book.Snapshot())
	if len(triggers) == 0 {
		return nil
	}

	for _, t := range triggers {
		if err := m.repo.DeactivateLocal(ctx, t.Alert.ID); err != nil {
			m.logger.Warn("failed to deactivate alert", zap.Int("id", t.Alert.ID), zap.Error(err))
		}
		m.logger.Info("price alert triggered",
			zap.Int("id", t.Alert.ID),
			zap.String("symbol", t.Alert.Symbol),
			zap.String("type", t.Alert.AlertType),
			zap.Float64("threshold", t.Alert.ThresholdPrice),
			zap.Float64("last", t.Quote.Last))
	}
	m.TriggeredAlerts.Update(func(prev []alerts.Trigger) []alerts.Trigger {
		return append(append([]alerts.Trigger(nil), prev...), triggers...)
	})
	return triggers
}

func (m *Model) ClearError() {
	m.Error.Set("")
}

// ==================== AI ASSISTANT ====================

func (m *Model) AskAI(ctx context.Context, query string) {
	m.AiLoading.Set(true)
	m.appendChat(ChatMessage{Text: query, IsUser: true, Timestamp: bysel.Now()})

	r := m.repo.AiAsk(ctx, query)
	if r.IsSuccess() {
		resp := r.Data()
		m.AiResponse.Set(&resp)
		m.appendChat(ChatMessage{Text: resp.Answer, Suggestions: resp.Suggestions, Timestamp: bysel.Now()})
	} else {
		m.logger.Debug("assistant request failed", zap.String("error", r.Message()))
		m.appendChat(ChatMessage{Text: AiFailureMessage, Timestamp: bysel.Now()})
	}
	m.AiLoading.Set(false)
}

func (m *Model) appendChat(msg ChatMessage) {
	m.ChatHistory.Update(func(prev []ChatMessage) []ChatMessage {
		return append(append([]ChatMessage(nil), prev...), msg)
	})
}

func (m *Model) ClearChatHistory() {
	m.ChatHistory.Set([]ChatMessage{})
	m.AiResponse.Set(nil)
}

// ==================== ANALYSIS ====================

func (m *Model) AnalyzeStock(ctx context.Context, symbol string) {
	loadInto(m, m.AnalysisLoading.Set, func() result.Result[bysel.StockAnalysis] {
		return m.repo.AiAnalyze(ctx, symbol)
	}, func(v bysel.StockAnalysis) { m.StockAnalysis.Set(&v) })
}

func (m *Model) PredictStock(ctx context.Context, symbol string) {
	loadInto(m, m.AnalysisLoading.Set, func() result.Result[bysel.StockPredictionResponse] {
		return m.repo.AiPredict(ctx, symbol)
	}, func(v bysel.StockPredictionResponse) { m.StockPrediction.Set(&v) })
}

func (m *Model) LoadPortfolioHealth(ctx context.Context) {
	loadInto(m, m.HealthLoading.Set, func() result.Result[bysel.PortfolioHealthScore] {
		return m.repo.PortfolioHealth(ctx)
	}, func(v bysel.PortfolioHealthScore) { m.PortfolioHealth.Set(&v) })
}

func (m *Model) LoadMarketHeatmap(ctx context.Context) {
	loadInto(m, m.HeatmapLoading.Set, func() result.Result[bysel.MarketHeatmap] {
		return m.repo.MarketHeatmap(ctx)
	}, func(v bysel.MarketHeatmap) { m.MarketHeatmap.Set(&v) })
}

// loadInto raises loading around call, storing the payload or the error.
func loadInto[T any](m *Model, loading func(bool), call func() result.Result[T], store func(T)) {
	loading(true)
	r := call()
	if r.IsSuccess() {
		store(r.Data())
	} else {
		m.Error.Set(r.Message())
	}
	loading(false)
}

