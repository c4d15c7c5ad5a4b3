package mockserver

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"bysel/pkg/bysel"
)

// Stock is a listing known to the mock exchange.
type Stock struct {
	Symbol string
	Name   string
	Sector string
}

// DefaultStocks seeds the mock exchange.
var DefaultStocks = []Stock{
	{"RELIANCE", "Reliance Industries", "Energy"},
	{"TCS", "Tata Consultancy Services", "IT"},
	{"INFY", "Infosys", "IT"},
	{"WIPRO", "Wipro", "IT"},
	{"HDFCBANK", "HDFC Bank", "Banking"},
	{"ICICIBANK", "ICICI Bank", "Banking"},
	{"SBIN", "State Bank of India", "Banking"},
	{"ITC", "ITC", "FMCG"},
	{"HINDUNILVR", "Hindustan Unilever", "FMCG"},
	{"TATAMOTORS", "Tata Motors", "Auto"},
}

// Backend is an in-memory trading backend speaking the bysel REST API.
type Backend struct {
	mu       sync.Mutex
	stocks   map[string]Stock
	quotes   map[string]bysel.Quote
	holdings map[string]bysel.Holding
	alerts   map[int]bysel.Alert
	trades   []bysel.TradeHistory
	balance  float64
	open     bool
	nextID   int
	failures map[string]int
	calls    map[string]int

	mux *http.ServeMux
}

// New returns a backend seeded with DefaultStocks priced at 100 and a
// wallet of 100000.
func New() *Backend {
	b := &Backend{
		stocks:   make(map[string]Stock),
		quotes:   make(map[string]bysel.Quote),
		holdings: make(map[string]bysel.Holding),
		alerts:   make(map[int]bysel.Alert),
		balance:  100000,
		open:     true,
		nextID:   1,
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
	for _, s := range DefaultStocks {
		b.stocks[s.Symbol] = s
		b.quotes[s.Symbol] = bysel.Quote{Symbol: s.Symbol, Last: 100, Timestamp: bysel.Now()}
	}
	b.routes()
	return b
}

// ==================== CONTROLS ====================

func (b *Backend) SetQuote(q bysel.Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q.Timestamp == 0 {
		q.Timestamp = bysel.Now()
	}
	if _, ok := b.stocks[q.Symbol]; !ok {
		b.stocks[q.Symbol] = Stock{Symbol: q.Symbol, Name: q.Symbol, Sector: "Other"}
	}
	b.quotes[q.Symbol] = q
}

func (b *Backend) SetBalance(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balance = v
}

func (b *Backend) SetMarketOpen(open bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = open
}

// Fail makes every request to path answer with status until Recover is called.
func (b *Backend) Fail(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = status
}

func (b *Backend) Recover(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, path)
}

// Calls returns how many requests reached path.
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *Backend) Balance() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	status, failing := b.failures[r.URL.Path]
	b.mu.Unlock()

	if failing {
		http.Error(w, `{"detail":"injected failure"}`, status)
		return
	}
	b.mux.ServeHTTP(w, r)
}

func (b *Backend) routes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "bysel-mock"})
	})

	mux.HandleFunc("GET /quotes", b.handleQuotes)
	mux.HandleFunc("GET /quotes/all", b.handleAllQuotes)
	mux.HandleFunc("GET /quotes/{symbol}", b.handleQuote)

	mux.HandleFunc("GET /holdings", b.handleHoldings)
	mux.HandleFunc("GET /holdings/{symbol}", b.handleHolding)

	mux.HandleFunc("POST /order", b.handleOrder(""))
	mux.HandleFunc("POST /trade/buy", b.handleOrder(bysel.SideBuy))
	mux.HandleFunc("POST /trade/sell", b.handleOrder(bysel.SideSell))
	mux.HandleFunc("GET /trades/history", b.handleTrades)
	mux.HandleFunc("GET /trades/history/{symbol}", b.handleTrades)

	mux.HandleFunc("GET /portfolio", b.handlePortfolio)
	mux.HandleFunc("GET /portfolio/value", b.handlePortfolioValue)
	mux.HandleFunc("GET /portfolio/health", b.handlePortfolioHealth)

	mux.HandleFunc("GET /alerts", b.handleAlerts(false))
	mux.HandleFunc("GET /alerts/active", b.handleAlerts(true))
	mux.HandleFunc("POST /alerts", b.handleCreateAlert)
	mux.HandleFunc("DELETE /alert/{id}", b.handleDeleteAlert)

	mux.HandleFunc("GET /search", b.handleSearch)
	mux.HandleFunc("GET /symbols", b.handleSymbols)

	mux.HandleFunc("POST /ai/ask", b.handleAiAsk)
	mux.HandleFunc("GET /ai/analyze/{symbol}", b.handleAiAnalyze)
	mux.HandleFunc("GET /ai/predict/{symbol}", b.handleAiPredict)

	mux.HandleFunc("GET /market/heatmap", b.handleHeatmap)
	mux.HandleFunc("GET /market/heatmap/{sector}", b.handleSector)
	mux.HandleFunc("GET /market/status", b.handleMarketStatus)

	mux.HandleFunc("GET /wallet", b.handleWallet)
	mux.HandleFunc("POST /wallet/add", b.handleAddFunds)

	b.mux = mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": what + " not found"})
}

// ==================== QUOTES ====================

func (b *Backend) handleQuotes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []bysel.Quote{}
	for _, s := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if q, ok := b.quotes[strings.ToUpper(strings.TrimSpace(s))]; ok {
			out = append(out, q)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleAllQuotes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.sortedQuotes())
}

func (b *Backend) handleQuote(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.quotes[strings.ToUpper(r.PathValue("symbol"))]
	if !ok {
		notFound(w, "symbol")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (b *Backend) sortedQuotes() []bysel.Quote {
	out := make([]bysel.Quote, 0, len(b.quotes))
	for _, q := range b.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ==================== HOLDINGS ====================

func (b *Backend) handleHoldings(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.sortedHoldings())
}

func (b *Backend) handleHolding(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.holdings[strings.ToUpper(r.PathValue("symbol"))]
	if !ok {
		notFound(w, "holding")
		return
	}
	writeJSON(w, http.StatusOK, b.marked(h))
}

// marked revalues h at the current quote.
func (b *Backend) marked(h bysel.Holding) bysel.Holding {
	if q, ok := b.quotes[h.Symbol]; ok {
		h.Last = q.Last
	}
	h.PnL = round2((h.Last - h.AvgPrice) * float64(h.Qty))
	h.Timestamp = bysel.Now()
	return h
}

func (b *Backend) sortedHoldings() []bysel.Holding {
	out := make([]bysel.Holding, 0, len(b.holdings))
	for _, h := range b.holdings {
		out = append(out, b.marked(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ==================== ORDERS ====================

func (b *Backend) handleOrder(side string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var order bysel.Order
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
			return
		}
		if side != "" {
			order.Side = side
		}
		order.Symbol = strings.ToUpper(order.Symbol)
		order.Side = strings.ToUpper(order.Side)

		b.mu.Lock()
		defer b.mu.Unlock()

		if msg := b.execute(order); msg != "" {
			writeJSON(w, http.StatusOK, bysel.OrderResponse{Status: bysel.StatusError, Order: order, Message: msg})
			return
		}
		writeJSON(w, http.StatusOK, bysel.OrderResponse{Status: bysel.StatusOK, Order: order, Message: "Order executed"})
	}
}

// execute applies order and returns a rejection message, or "" on success.
func (b *Backend) execute(order bysel.Order) string {
	if !b.open {
		return "Market is closed"
	}
	if order.Qty <= 0 {
		return "Quantity must be positive"
	}
	q, ok := b.quotes[order.Symbol]
	if !ok {
		return "Unknown symbol " + order.Symbol
	}
	total := round2(q.Last * float64(order.Qty))
	h := b.holdings[order.Symbol]
	h.Symbol = order.Symbol

	switch order.Side {
	case bysel.SideBuy:
		if total > b.balance {
			return fmt.Sprintf("Insufficient funds: need %.2f, have %.2f", total, b.balance)
		}
		invested := h.AvgPrice*float64(h.Qty) + total
		h.Qty += order.Qty
		h.AvgPrice = round2(invested / float64(h.Qty))
		b.holdings[order.Symbol] = h
		b.balance = round2(b.balance - total)
	case bysel.SideSell:
		if h.Qty < order.Qty {
			return fmt.Sprintf("Insufficient holdings: have %d", h.Qty)
		}
		h.Qty -= order.Qty
		if h.Qty == 0 {
			delete(b.holdings, order.Symbol)
		} else {
			b.holdings[order.Symbol] = h
		}
		b.balance = round2(b.balance + total)
	default:
		return "Side must be BUY or SELL"
	}

	b.trades = append(b.trades, bysel.TradeHistory{
		ID:        len(b.trades) + 1,
		Symbol:    order.Symbol,
		Side:      order.Side,
		Quantity:  order.Qty,
		Price:     q.Last,
		Total:     total,
		Timestamp: bysel.Now(),
	})
	return ""
}

func (b *Backend) handleTrades(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []bysel.TradeHistory{}
	for i := len(b.trades) - 1; i >= 0; i-- {
		if symbol == "" || b.trades[i].Symbol == symbol {
			out = append(out, b.trades[i])
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ==================== PORTFOLIO ====================

func (b *Backend) totals() (value, invested float64, count int) {
	for _, h := range b.holdings {
		h = b.marked(h)
		value += h.Last * float64(h.Qty)
		invested += h.AvgPrice * float64(h.Qty)
		count++
	}
	return round2(value), round2(invested), count
}

func (b *Backend) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, invested, count := b.totals()
	writeJSON(w, http.StatusOK, bysel.PortfolioSummary{
		TotalValue:      value,
		TotalInvested:   invested,
		TotalPnL:        round2(value - invested),
		TotalPnLPercent: pct(value-invested, invested),
		HoldingsCount:   count,
	})
}

func (b *Backend) handlePortfolioValue(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, invested, _ := b.totals()
	writeJSON(w, http.StatusOK, bysel.PortfolioValue{
		Value:      value,
		Invested:   invested,
		PnL:        round2(value - invested),
		PnLPercent: pct(value-invested, invested),
	})
}

func (b *Backend) handlePortfolioHealth(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, invested, count := b.totals()
	sectors := make(map[string]bysel.SectorAllocation)
	for _, h := range b.sortedHoldings() {
		name := b.stocks[h.Symbol].Sector
		alloc := sectors[name]
		alloc.Value = round2(alloc.Value + h.Last*float64(h.Qty))
		alloc.Stocks = append(alloc.Stocks, h.Symbol)
		sectors[name] = alloc
	}
	for name, alloc := range sectors {
		alloc.Weight = pct(alloc.Value, value)
		sectors[name] = alloc
	}

	diversification := float64(min(len(sectors)*5, 25))
	score := diversification + 50
	grade := "C"
	switch {
	case score >= 70:
		grade = "A"
	case score >= 60:
		grade = "B"
	}

	writeJSON(w, http.StatusOK, bysel.PortfolioHealthScore{
		OverallScore: score,
		Grade:        grade,
		Breakdown: map[string]bysel.ScoreComponent{
			"diversification": {Score: diversification, MaxScore: 25, Details: json.RawMessage(strconv.Quote(fmt.Sprintf("%d sectors", len(sectors))))},
			"risk":            {Score: 15, MaxScore: 25},
			"quality":         {Score: 20, MaxScore: 25},
			"balance":         {Score: 15, MaxScore: 25},
		},
		SectorAllocation: sectors,
		RiskLevel:        "Moderate",
		Suggestions:      []string{"Consider adding a defensive sector"},
		Summary:          fmt.Sprintf("%d holdings across %d sectors", count, len(sectors)),
		TotalValue:       value,
		TotalInvested:    invested,
		TotalPnL:         round2(value - invested),
		TotalPnLPercent:  pct(value-invested, invested),
		StockCount:       count,
		SectorCount:      len(sectors),
		LastUpdated:      time.Now().UTC().Format(time.RFC3339),
	})
}

// ==================== ALERTS ====================

func (b *Backend) handleAlerts(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		out := []bysel.Alert{}
		for _, a := range b.alerts {
			if activeOnly && !a.IsActive {
				continue
			}
			out = append(out, a)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		writeJSON(w, http.StatusOK, out)
	}
}

func (b *Backend) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var alert bysel.Alert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	alert.ID = b.nextID
	b.nextID++
	alert.Symbol = strings.ToUpper(alert.Symbol)
	alert.IsActive = true
	if alert.CreatedAt == 0 {
		alert.CreatedAt = bysel.Now()
	}
	b.alerts[alert.ID] = alert
	writeJSON(w, http.StatusOK, alert)
}

func (b *Backend) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.alerts[id]; !ok {
		notFound(w, "alert")
		return
	}
	delete(b.alerts, id)
	writeJSON(w, http.StatusOK, bysel.AlertResponse{Status: bysel.StatusOK, Message: "Alert deleted", ID: &id})
}

// ==================== SEARCH ====================

func (b *Backend) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("q")))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []bysel.StockSearchResult{}
	for _, s := range b.sortedStocks() {
		if q == "" || strings.Contains(s.Symbol, q) || strings.Contains(strings.ToUpper(s.Name), q) {
			out = append(out, bysel.StockSearchResult{Symbol: s.Symbol, Name: s.Name, Sector: s.Sector})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleSymbols(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]bysel.StockSearchResult, 0, len(b.stocks))
	for _, s := range b.sortedStocks() {
		out = append(out, bysel.StockSearchResult{Symbol: s.Symbol, Name: s.Name, Sector: s.Sector})
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) sortedStocks() []Stock {
	out := make([]Stock, 0, len(b.stocks))
	for _, s := range b.stocks {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ==================== AI ====================

func (b *Backend) handleAiAsk(w http.ResponseWriter, r *http.Request) {
	var query bysel.AiQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil || strings.TrimSpace(query.Query) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "query required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	resp := bysel.AiAssistantResponse{
		Type:        "general",
		Answer:      "**Market overview**\n\nAsk me about any listed stock, e.g. `analyze TCS`.",
		Suggestions: []string{"Analyze TCS", "Predict INFY"},
	}
	for _, word := range strings.Fields(strings.ToUpper(query.Query)) {
		if q, ok := b.quotes[word]; ok {
			resp.Type = "stock"
			resp.Symbol = q.Symbol
			resp.Answer = fmt.Sprintf("**%s** is trading at %.2f (%+.2f%%).", q.Symbol, q.Last, q.PctChange)
			break
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) predictions(q bysel.Quote) []bysel.PricePrediction {
	out := make([]bysel.PricePrediction, 0, 3)
	for _, h := range []struct {
		name string
		days int
	}{{"1 Week", 7}, {"1 Month", 30}, {"3 Months", 90}} {
		change := q.PctChange * float64(h.days) / 30
		predicted := round2(q.Last * (1 + change/100))
		direction := "up"
		if change < 0 {
			direction = "down"
		}
		out = append(out, bysel.PricePrediction{
			Horizon:        h.name,
			Days:           h.days,
			PredictedPrice: predicted,
			CurrentPrice:   q.Last,
			ChangePercent:  round2(change),
			ConfidenceHigh: round2(predicted * 1.05),
			ConfidenceLow:  round2(predicted * 0.95),
			Direction:      direction,
		})
	}
	return out
}

func signal(pctChange float64) string {
	switch {
	case pctChange >= 1:
		return "BUY"
	case pctChange <= -1:
		return "SELL"
	}
	return "HOLD"
}

func (b *Backend) handleAiAnalyze(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	symbol := strings.ToUpper(r.PathValue("symbol"))
	q, ok := b.quotes[symbol]
	if !ok {
		notFound(w, "symbol")
		return
	}
	s := b.stocks[symbol]
	writeJSON(w, http.StatusOK, bysel.StockAnalysis{
		Symbol:       symbol,
		Name:         s.Name,
		CurrentPrice: q.Last,
		Sector:       s.Sector,
		Industry:     s.Sector,
		Score:        round2(50 + q.PctChange*5),
		Signal:       signal(q.PctChange),
		Summary:      fmt.Sprintf("%s shows a %s bias.", s.Name, strings.ToLower(signal(q.PctChange))),
		Technical:    json.RawMessage(`{"rsi":50,"trend":"sideways"}`),
		Fundamental:  bysel.Fundamentals{PE: 22.5, DividendYield: 1.2},
		Predictions:  b.predictions(q),
		Disclaimer:   "Simulated analysis. Not investment advice.",
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (b *Backend) handleAiPredict(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	symbol := strings.ToUpper(r.PathValue("symbol"))
	q, ok := b.quotes[symbol]
	if !ok {
		writeJSON(w, http.StatusOK, bysel.StockPredictionResponse{Symbol: symbol, Error: "unknown symbol"})
		return
	}
	writeJSON(w, http.StatusOK, bysel.StockPredictionResponse{
		Symbol:        symbol,
		CurrentPrice:  q.Last,
		Predictions:   b.predictions(q),
		Signal:        signal(q.PctChange),
		ModelAccuracy: 61.5,
		LastUpdated:   time.Now().UTC().Format(time.RFC3339),
		Disclaimer:    "Simulated prediction. Not investment advice.",
	})
}

// ==================== MARKET ====================

func intensity(pct float64) string {
	switch {
	case pct >= 3:
		return "strong_positive"
	case pct >= 1:
		return "positive"
	case pct > 0:
		return "mild_positive"
	case pct == 0:
		return "neutral"
	case pct > -1:
		return "mild_negative"
	case pct > -3:
		return "negative"
	}
	return "strong_negative"
}

func (b *Backend) sector(name string) (bysel.HeatmapSector, bool) {
	sec := bysel.HeatmapSector{Name: name}
	var sum float64
	for _, s := range b.sortedStocks() {
		if s.Sector != name {
			continue
		}
		q := b.quotes[s.Symbol]
		stock := bysel.HeatmapStock{
			Symbol:    s.Symbol,
			Name:      s.Name,
			Price:     q.Last,
			Change:    round2(q.Last * q.PctChange / 100),
			PctChange: q.PctChange,
			Intensity: intensity(q.PctChange),
		}
		sec.Stocks = append(sec.Stocks, stock)
		sum += q.PctChange
		switch {
		case q.PctChange > 0:
			sec.Advances++
		case q.PctChange < 0:
			sec.Declines++
		default:
			sec.Unchanged++
		}
		if sec.TopGainer == nil || stock.PctChange > sec.TopGainer.PctChange {
			g := stock
			sec.TopGainer = &g
		}
		if sec.TopLoser == nil || stock.PctChange < sec.TopLoser.PctChange {
			l := stock
			sec.TopLoser = &l
		}
	}
	if len(sec.Stocks) == 0 {
		return sec, false
	}
	sec.TotalStocks = len(sec.Stocks)
	sec.AvgChange = round2(sum / float64(sec.TotalStocks))
	sec.Intensity = intensity(sec.AvgChange)
	return sec, true
}

func (b *Backend) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := map[string]struct{}{}
	for _, s := range b.stocks {
		names[s.Sector] = struct{}{}
	}

	hm := bysel.MarketHeatmap{LastUpdated: time.Now().UTC().Format(time.RFC3339)}
	for name := range names {
		sec, _ := b.sector(name)
		hm.Sectors = append(hm.Sectors, sec)
		hm.MarketBreadth.Advances += sec.Advances
		hm.MarketBreadth.Declines += sec.Declines
		hm.MarketBreadth.Unchanged += sec.Unchanged
	}
	sort.Slice(hm.Sectors, func(i, j int) bool { return hm.Sectors[i].AvgChange > hm.Sectors[j].AvgChange })

	mb := &hm.MarketBreadth
	mb.Total = mb.Advances + mb.Declines + mb.Unchanged
	if mb.Total > 0 {
		mb.AdvanceRatio = round2(float64(mb.Advances) / float64(mb.Total))
	}
	switch {
	case mb.AdvanceRatio >= 0.6:
		hm.Mood, hm.MoodEmoji, hm.MoodDescription = "Bullish", "🐂", "Most stocks are advancing"
	case mb.AdvanceRatio <= 0.4:
		hm.Mood, hm.MoodEmoji, hm.MoodDescription = "Bearish", "🐻", "Most stocks are declining"
	default:
		hm.Mood, hm.MoodEmoji, hm.MoodDescription = "Neutral", "😐", "Advances and declines are balanced"
	}
	if n := len(hm.Sectors); n > 0 {
		hm.BestSector = bysel.SectorMove{Name: hm.Sectors[0].Name, Change: hm.Sectors[0].AvgChange}
		hm.WorstSector = bysel.SectorMove{Name: hm.Sectors[n-1].Name, Change: hm.Sectors[n-1].AvgChange}
	}
	writeJSON(w, http.StatusOK, hm)
}

func (b *Backend) handleSector(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	want := r.PathValue("sector")
	for _, s := range b.stocks {
		if strings.EqualFold(s.Sector, want) {
			sec, _ := b.sector(s.Sector)
			writeJSON(w, http.StatusOK, sec)
			return
		}
	}
	notFound(w, "sector")
}

func (b *Backend) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		writeJSON(w, http.StatusOK, bysel.MarketStatus{IsOpen: true, Status: "OPEN", Message: "Market is open"})
		return
	}
	writeJSON(w, http.StatusOK, bysel.MarketStatus{IsOpen: false, Status: "CLOSED", Message: "Market is closed", NextOpen: "09:15 IST"})
}

// ==================== WALLET ====================

func (b *Backend) handleWallet(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, bysel.Wallet{Balance: b.balance})
}

func (b *Backend) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	var req bysel.AddFundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if req.Amount <= 0 {
		writeJSON(w, http.StatusOK, bysel.WalletResponse{Status: bysel.StatusError, Balance: b.balance, Message: "Amount must be positive"})
		return
	}
	b.balance = round2(b.balance + req.Amount)
	writeJSON(w, http.StatusOK, bysel.WalletResponse{Status: bysel.StatusOK, Balance: b.balance, Message: "Funds added"})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(part / whole * 100)
}
