package trading

import (
	"bysel/internal/alerts"
	"bysel/internal/state"
	"bysel/pkg/bysel"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Text        string
	IsUser      bool
	Suggestions []string
	Timestamp   bysel.Millis
}

// State is the observable surface of the trading model. Error is empty
// when there is nothing to report.
type State struct {
	Quotes        *state.Value[[]bysel.Quote]
	Holdings      *state.Value[[]bysel.Holding]
	Alerts        *state.Value[[]bysel.Alert]
	SearchResults *state.Value[[]bysel.StockSearchResult]
	IsLoading     *state.Value[bool]
	IsSearching   *state.Value[bool]
	Error         *state.Value[string]

	WalletBalance *state.Value[float64]
	MarketStatus  *state.Value[*bysel.MarketStatus]

	SelectedQuote *state.Value[*bysel.Quote]
	DetailLoading *state.Value[bool]

	ChatHistory *state.Value[[]ChatMessage]
	AiResponse  *state.Value[*bysel.AiAssistantResponse]
	AiLoading   *state.Value[bool]

	StockAnalysis   *state.Value[*bysel.StockAnalysis]
	StockPrediction *state.Value[*bysel.StockPredictionResponse]
	AnalysisLoading *state.Value[bool]

	PortfolioHealth *state.Value[*bysel.PortfolioHealthScore]
	HealthLoading   *state.Value[bool]

	MarketHeatmap  *state.Value[*bysel.MarketHeatmap]
	HeatmapLoading *state.Value[bool]

	TriggeredAlerts *state.Value[[]alerts.Trigger]
}

func newState() State {
	return State{
		Quotes:        state.NewValue([]bysel.Quote{}),
		Holdings:      state.NewValue([]bysel.Holding{}),
		Alerts:        state.NewValue([]bysel.Alert{}),
		SearchResults: state.NewValue([]bysel.StockSearchResult{}),
		IsLoading:     state.NewValue(false),
		IsSearching:   state.NewValue(false),
		Error:         state.NewValue(""),

		WalletBalance: state.NewValue(0.0),
		MarketStatus:  state.NewValue[*bysel.MarketStatus](nil),

		SelectedQuote: state.NewValue[*bysel.Quote](nil),
		DetailLoading: state.NewValue(false),

		ChatHistory: state.NewValue([]ChatMessage{}),
		AiResponse:  state.NewValue[*bysel.AiAssistantResponse](nil),
		AiLoading:   state.NewValue(false),

		StockAnalysis:   state.NewValue[*bysel.StockAnalysis](nil),
		StockPrediction: state.NewValue[*bysel.StockPredictionResponse](nil),
		AnalysisLoading: state.NewValue(false),

		PortfolioHealth: state.NewValue[*bysel.PortfolioHealthScore](nil),
		HealthLoading:   state.NewValue(false),

		MarketHeatmap:  state.NewValue[*bysel.MarketHeatmap](nil),
		HeatmapLoading: state.NewValue(false),

		TriggeredAlerts: state.NewValue([]alerts.Trigger{}),
	}
}

func ptr[T any](v T) *T { return &v }
