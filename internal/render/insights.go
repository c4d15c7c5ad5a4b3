package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"bysel/pkg/bysel"

	"github.com/charmbracelet/lipgloss"
)

// Heatmap renders one row of colored tiles per sector followed by breadth and mood.
func Heatmap(w io.Writer, h bysel.MarketHeatmap) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Market heatmap %s %s", h.MoodEmoji, h.Mood)))
	b.WriteString("\n")
	if h.MoodDescription != "" {
		b.WriteString(mutedStyle.Render(h.MoodDescription))
		b.WriteString("\n")
	}
	for _, s := range h.Sectors {
		b.WriteString(sectorRow(s))
		b.WriteString("\n")
	}
	br := h.MarketBreadth
	fmt.Fprintf(&b, "Breadth  %s up  %s down  %d unchanged  (ratio %.2f)\n",
		gainStyle.Render(fmt.Sprint(br.Advances)), lossStyle.Render(fmt.Sprint(br.Declines)), br.Unchanged, br.AdvanceRatio)
	fmt.Fprintf(&b, "Best     %s %s\n", h.BestSector.Name, signed(h.BestSector.Change, ".2f%%"))
	fmt.Fprintf(&b, "Worst    %s %s", h.WorstSector.Name, signed(h.WorstSector.Change, ".2f%%"))
	return write(w, b.String())
}

func sectorRow(s bysel.HeatmapSector) string {
	label := heatStyle(s.Intensity).Width(22).Render(fmt.Sprintf("%s %+.2f%%", s.Name, s.AvgChange))
	tiles := make([]string, 0, len(s.Stocks)+1)
	tiles = append(tiles, label)
	for _, st := range s.Stocks {
		tiles = append(tiles, " ", heatStyle(st.Intensity).Render(fmt.Sprintf("%s %+.2f%%", st.Symbol, st.PctChange)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

// Sector renders the detail of a single heatmap sector.
func Sector(w io.Writer, s bysel.HeatmapSector) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Name))
	fmt.Fprintf(&b, "  avg %s  %d up / %d down / %d flat\n", signed(s.AvgChange, ".2f%%"), s.Advances, s.Declines, s.Unchanged)
	t := newTable("Symbol", "Name", "Price", "Change", "Change %")
	for _, st := range s.Stocks {
		t.Row(st.Symbol, st.Name, fmt.Sprintf("%.2f", st.Price), signed(st.Change, ".2f"), signed(st.PctChange, ".2f%%"))
	}
	b.WriteString(t.String())
	if s.TopGainer != nil {
		fmt.Fprintf(&b, "\nTop gainer  %s %s", s.TopGainer.Symbol, signed(s.TopGainer.PctChange, ".2f%%"))
	}
	if s.TopLoser != nil {
		fmt.Fprintf(&b, "\nTop loser   %s %s", s.TopLoser.Symbol, signed(s.TopLoser.PctChange, ".2f%%"))
	}
	return write(w, b.String())
}

// Health renders the portfolio health score card.
func Health(w io.Writer, h bysel.PortfolioHealthScore) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %.0f/100  grade %s  risk %s\n",
		titleStyle.Render("Portfolio health"), h.OverallScore, h.Grade, h.RiskLevel)

	names := make([]string, 0, len(h.Breakdown))
	for name := range h.Breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	t := newTable("Component", "Score")
	for _, name := range names {
		c := h.Breakdown[name]
		t.Row(name, fmt.Sprintf("%.0f/%.0f", c.Score, c.MaxScore))
	}
	b.WriteString(t.String())

	if len(h.SectorAllocation) > 0 {
		sectors := make([]string, 0, len(h.SectorAllocation))
		for name := range h.SectorAllocation {
			sectors = append(sectors, name)
		}
		sort.Strings(sectors)
		b.WriteString("\nSectors")
		for _, name := range sectors {
			a := h.SectorAllocation[name]
			fmt.Fprintf(&b, "\n  %-12s %5.1f%%  %s", name, a.Weight, strings.Join(a.Stocks, ", "))
		}
	}
	for _, s := range h.Suggestions {
		b.WriteString("\n• " + s)
	}
	if h.Summary != "" {
		b.WriteString("\n" + mutedStyle.Render(h.Summary))
	}
	return write(w, b.String())
}

func predictions(list []bysel.PricePrediction) string {
	t := newTable("Horizon", "Target", "Change", "Range")
	for _, p := range list {
		t.Row(p.Horizon, fmt.Sprintf("%.2f", p.PredictedPrice), signed(p.ChangePercent, ".2f%%"),
			fmt.Sprintf("%.2f – %.2f", p.ConfidenceLow, p.ConfidenceHigh))
	}
	return t.String()
}

// Analysis renders the stock analysis header and predictions. The summary
// text goes through the markdown renderer when md is non-nil.
func Analysis(w io.Writer, a bysel.StockAnalysis, md *Markdown) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", titleStyle.Render(a.Symbol), a.Name, mutedStyle.Render(a.Sector+" / "+a.Industry))
	fmt.Fprintf(&b, "Price %s  score %.0f  signal %s\n", money(a.CurrentPrice), a.Score, signalStyle(a.Signal))
	f := a.Fundamental
	fmt.Fprintf(&b, "P/E %.2f  ROE %.2f%%  D/E %.2f  52w %.2f – %.2f\n", f.PE, f.ROE, f.DebtToEquity, f.FiftyTwoWeekLow, f.FiftyTwoWeekHigh)
	if len(a.Predictions) > 0 {
		b.WriteString(predictions(a.Predictions))
		b.WriteString("\n")
	}
	if err := write(w, strings.TrimRight(b.String(), "\n")); err != nil {
		return err
	}
	if a.Summary != "" {
		if err := md.Write(w, a.Summary); err != nil {
			return err
		}
	}
	if a.Disclaimer != "" {
		return write(w, mutedStyle.Render(a.Disclaimer))
	}
	return nil
}

func Prediction(w io.Writer, p bysel.StockPredictionResponse) error {
	if p.Error != "" {
		return write(w, lossStyle.Render(p.Error))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  signal %s  accuracy %.0f%%\n",
		titleStyle.Render(p.Symbol), money(p.CurrentPrice), signalStyle(p.Signal), p.ModelAccuracy)
	b.WriteString(predictions(p.Predictions))
	if p.Disclaimer != "" {
		b.WriteString("\n" + mutedStyle.Render(p.Disclaimer))
	}
	return write(w, b.String())
}

func signalStyle(signal string) string {
	switch strings.ToUpper(signal) {
	case "BUY", "STRONG BUY":
		return gainStyle.Render(signal)
	case "SELL", "STRONG SELL":
		return lossStyle.Render(signal)
	}
	return mutedStyle.Render(signal)
}
