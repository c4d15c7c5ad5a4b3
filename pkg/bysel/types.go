package bysel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	AlertAbove = "ABOVE"
	AlertBelow = "BELOW"

	StatusOK    = "ok"
	StatusError = "error"
)

// Millis is a timestamp in milliseconds since epoch. The backend emits either
// epoch numbers or ISO-8601 strings depending on the endpoint; both decode here.
type Millis int64

// Now returns the current time as Millis.
func Now() Millis { return Millis(time.Now().UnixMilli()) }

// Time converts m to a time.Time (zero time for 0).
func (m Millis) Time() time.Time {
	if m == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m))
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	if b[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		*m = Millis(int64(f))
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*m = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*m = Millis(n)
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*m = Millis(t.UnixMilli())
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized value %q", s)
}

// Quote is the latest price and percentage change for a ticker symbol.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Last      float64 `json:"last"`
	PctChange float64 `json:"pctChange"`
	Timestamp Millis  `json:"timestamp,omitempty"`
}

// Holding is a position owned by the simulated user.
type Holding struct {
	Symbol    string  `json:"symbol"`
	Qty       int     `json:"qty"`
	AvgPrice  float64 `json:"avgPrice"`
	Last      float64 `json:"last"`
	PnL       float64 `json:"pnl"`
	Timestamp Millis  `json:"timestamp,omitempty"`
}

// Alert is a user-defined price threshold for a symbol.
type Alert struct {
	ID             int     `json:"id"`
	Symbol         string  `json:"symbol"`
	ThresholdPrice float64 `json:"thresholdPrice"`
	AlertType      string  `json:"alertType"` // ABOVE or BELOW
	IsActive       bool    `json:"isActive"`
	CreatedAt      Millis  `json:"createdAt,omitempty"`
}

// UnmarshalJSON treats an omitted isActive as true.
func (a *Alert) UnmarshalJSON(b []byte) error {
	type alias Alert
	v := alias{IsActive: true}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Alert(v)
	return nil
}

type Order struct {
	Symbol string `json:"symbol"`
	Qty    int    `json:"qty"`
	Side   string `json:"side"` // BUY or SELL
}

// OrderResponse carries the backend verdict. Status "error" is a business
// failure (market closed, insufficient holdings) delivered with HTTP 200.
type OrderResponse struct {
	Status  string `json:"status"`
	Order   Order  `json:"order"`
	Message string `json:"message,omitempty"`
}

type TradeHistory struct {
	ID        int     `json:"id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	Timestamp Millis  `json:"timestamp"`
}

type PortfolioSummary struct {
	TotalValue      float64 `json:"totalValue"`
	TotalInvested   float64 `json:"totalInvested"`
	TotalPnL        float64 `json:"totalPnL"`
	TotalPnLPercent float64 `json:"totalPnLPercent"`
	HoldingsCount   int     `json:"holdingsCount"`
}

type PortfolioValue struct {
	Value      float64 `json:"value"`
	Invested   float64 `json:"invested"`
	PnL        float64 `json:"pnl"`
	PnLPercent float64 `json:"pnlPercent"`
}

type AlertResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      *int   `json:"id,omitempty"`
}

type StockSearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector,omitempty"`
}

type AiQuery struct {
	Query string `json:"query"`
}

type AiAssistantResponse struct {
	Type        string          `json:"type"`
	Symbol      string          `json:"symbol,omitempty"`
	Answer      string          `json:"answer"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

type Fundamentals struct {
	PE               float64 `json:"pe"`
	MarketCap        float64 `json:"marketCap"`
	DividendYield    float64 `json:"dividendYield"`
	FiftyTwoWeekHigh float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  float64 `json:"fiftyTwoWeekLow"`
	BookValue        float64 `json:"bookValue"`
	DebtToEquity     float64 `json:"debtToEquity"`
	ROE              float64 `json:"roe"`
	RevenueGrowth    float64 `json:"revenueGrowth"`
}

type PricePrediction struct {
	Horizon        string  `json:"horizon"`
	Days           int     `json:"days"`
	PredictedPrice float64 `json:"predictedPrice"`
	CurrentPrice   float64 `json:"currentPrice"`
	ChangePercent  float64 `json:"changePercent"`
	ConfidenceHigh float64 `json:"confidenceHigh"`
	ConfidenceLow  float64 `json:"confidenceLow"`
	Direction      string  `json:"direction"` // up or down
}

type StockAnalysis struct {
	Symbol         string            `json:"symbol"`
	Name           string            `json:"name"`
	CurrentPrice   float64           `json:"currentPrice"`
	Sector         string            `json:"sector"`
	Industry       string            `json:"industry"`
	Score          float64           `json:"score"`
	ScoreBreakdown json.RawMessage   `json:"scoreBreakdown,omitempty"`
	Signal         string            `json:"signal"`
	Summary        string            `json:"summary"`
	Technical      json.RawMessage   `json:"technical,omitempty"`
	Fundamental    Fundamentals      `json:"fundamental"`
	Predictions    []PricePrediction `json:"predictions"`
	ModelAccuracy  float64           `json:"modelAccuracy"`
	Disclaimer     string            `json:"disclaimer"`
	LastUpdated    string            `json:"lastUpdated"`
}

type StockPredictionResponse struct {
	Symbol        string            `json:"symbol"`
	CurrentPrice  float64           `json:"currentPrice"`
	Predictions   []PricePrediction `json:"predictions"`
	Signal        string            `json:"signal"`
	ModelAccuracy float64           `json:"modelAccuracy"`
	LastUpdated   string            `json:"lastUpdated"`
	Disclaimer    string            `json:"disclaimer"`
	Error         string            `json:"error,omitempty"`
}

type ScoreComponent struct {
	Score    float64         `json:"score"`
	MaxScore float64         `json:"maxScore"`
	Details  json.RawMessage `json:"details,omitempty"` // string or list depending on component
}

type SectorAllocation struct {
	Value  float64  `json:"value"`
	Weight float64  `json:"weight"`
	Stocks []string `json:"stocks"`
}

type PortfolioHealthScore struct {
	OverallScore     float64                     `json:"overallScore"`
	Grade            string                      `json:"grade"`
	Breakdown        map[string]ScoreComponent   `json:"breakdown"`
	SectorAllocation map[string]SectorAllocation `json:"sectorAllocation"`
	RiskLevel        string                      `json:"riskLevel"`
	Suggestions      []string                    `json:"suggestions"`
	Summary          string                      `json:"summary"`
	TotalValue       float64                     `json:"totalValue"`
	TotalInvested    float64                     `json:"totalInvested"`
	TotalPnL         float64                     `json:"totalPnl"`
	TotalPnLPercent  float64                     `json:"totalPnlPercent"`
	StockCount       int                         `json:"stockCount"`
	SectorCount      int                         `json:"sectorCount"`
	LastUpdated      string                      `json:"lastUpdated"`
}

type HeatmapStock struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	PctChange float64 `json:"pctChange"`
	Intensity string  `json:"intensity"`
}

type HeatmapSector struct {
	Name        string         `json:"name"`
	Stocks      []HeatmapStock `json:"stocks"`
	AvgChange   float64        `json:"avgChange"`
	Advances    int            `json:"advances"`
	Declines    int            `json:"declines"`
	Unchanged   int            `json:"unchanged"`
	TotalStocks int            `json:"totalStocks"`
	Intensity   string         `json:"intensity"`
	TopGainer   *HeatmapStock  `json:"topGainer,omitempty"`
	TopLoser    *HeatmapStock  `json:"topLoser,omitempty"`
}

type MarketBreadth struct {
	Advances     int     `json:"advances"`
	Declines     int     `json:"declines"`
	Unchanged    int     `json:"unchanged"`
	Total        int     `json:"total"`
	AdvanceRatio float64 `json:"advanceRatio"`
}

type SectorMove struct {
	Name   string  `json:"name"`
	Change float64 `json:"change"`
}

type MarketHeatmap struct {
	Sectors         []HeatmapSector `json:"sectors"`
	MarketBreadth   MarketBreadth   `json:"marketBreadth"`
	Mood            string          `json:"mood"`
	MoodEmoji       string          `json:"moodEmoji"`
	MoodDescription string          `json:"moodDescription"`
	BestSector      SectorMove      `json:"bestSector"`
	WorstSector     SectorMove      `json:"worstSector"`
	LastUpdated     string          `json:"lastUpdated"`
}

type Wallet struct {
	Balance float64 `json:"balance"`
}

type AddFundsRequest struct {
	Amount float64 `json:"amount"`
}

type WalletResponse struct {
	Status  string  `json:"status"`
	Balance float64 `json:"balance"`
	Message string  `json:"message,omitempty"`
}

type MarketStatus struct {
	IsOpen   bool   `json:"isOpen"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	NextOpen string `json:"nextOpen,omitempty"`
}
