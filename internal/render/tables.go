package render

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"bysel/internal/alerts"
	"bysel/pkg/bysel"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func write(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

func empty(w io.Writer, what string) error {
	return write(w, mutedStyle.Render("No "+what+"."))
}

// Quotes renders quotes, starring pinned symbols.
func Quotes(w io.Writer, quotes []bysel.Quote, pinned []string) error {
	if len(quotes) == 0 {
		return empty(w, "quotes")
	}
	t := newTable("", "Symbol", "Last", "Change %", "Updated")
	for _, q := range quotes {
		star := ""
		if slices.Contains(pinned, q.Symbol) {
			star = alertStyle.Render("★")
		}
		t.Row(star, q.Symbol, fmt.Sprintf("%.2f", q.Last), signed(q.PctChange, ".2f%%"), timeOf(q.Timestamp))
	}
	return write(w, t.String())
}

func timeOf(m bysel.Millis) string {
	if m == 0 {
		return "-"
	}
	return m.Time().Local().Format("15:04:05")
}

func Quote(w io.Writer, q bysel.Quote) error {
	body := fmt.Sprintf("%s\nLast     %s\nChange   %s\nUpdated  %s",
		titleStyle.Render(q.Symbol), money(q.Last), signed(q.PctChange, ".2f%%"), timeOf(q.Timestamp))
	return write(w, panelStyle.Render(body))
}

func Holdings(w io.Writer, holdings []bysel.Holding) error {
	if len(holdings) == 0 {
		return empty(w, "holdings")
	}
	t := newTable("Symbol", "Qty", "Avg", "Last", "P&L")
	for _, h := range holdings {
		t.Row(h.Symbol, strconv.Itoa(h.Qty), fmt.Sprintf("%.2f", h.AvgPrice), fmt.Sprintf("%.2f", h.Last), signed(h.PnL, ".2f"))
	}
	return write(w, t.String())
}

func Trades(w io.Writer, trades []bysel.TradeHistory) error {
	if len(trades) == 0 {
		return empty(w, "trades")
	}
	t := newTable("ID", "Time", "Side", "Symbol", "Qty", "Price", "Total")
	for _, tr := range trades {
		side := gainStyle.Render(tr.Side)
		if tr.Side == bysel.SideSell {
			side = lossStyle.Render(tr.Side)
		}
		t.Row(strconv.Itoa(tr.ID), tr.Timestamp.Time().Local().Format("2006-01-02 15:04"), side, tr.Symbol,
			strconv.Itoa(tr.Quantity), fmt.Sprintf("%.2f", tr.Price), fmt.Sprintf("%.2f", tr.Total))
	}
	return write(w, t.String())
}

func Alerts(w io.Writer, list []bysel.Alert) error {
	if len(list) == 0 {
		return empty(w, "alerts")
	}
	t := newTable("ID", "Symbol", "Condition", "Active")
	for _, a := range list {
		active := gainStyle.Render("yes")
		if !a.IsActive {
			active = mutedStyle.Render("no")
		}
		t.Row(strconv.Itoa(a.ID), a.Symbol, fmt.Sprintf("%s %.2f", a.AlertType, a.ThresholdPrice), active)
	}
	return write(w, t.String())
}

func Triggers(w io.Writer, triggers []alerts.Trigger) error {
	if len(triggers) == 0 {
		return empty(w, "triggered alerts")
	}
	for _, t := range triggers {
		if err := write(w, alertStyle.Render("🔔 "+t.String())); err != nil {
			return err
		}
	}
	return nil
}

func SearchResults(w io.Writer, results []bysel.StockSearchResult) error {
	if len(results) == 0 {
		return empty(w, "matches")
	}
	t := newTable("Symbol", "Name", "Sector")
	for _, r := range results {
		t.Row(r.Symbol, r.Name, r.Sector)
	}
	return write(w, t.String())
}

func Portfolio(w io.Writer, s bysel.PortfolioSummary) error {
	body := fmt.Sprintf("%s\nValue     %s\nInvested  %s\nP&L       %s (%s)\nHoldings  %d",
		titleStyle.Render("Portfolio"),
		money(s.TotalValue), money(s.TotalInvested),
		signed(s.TotalPnL, ".2f"), signed(s.TotalPnLPercent, ".2f%%"),
		s.HoldingsCount)
	return write(w, panelStyle.Render(body))
}

func PortfolioValue(w io.Writer, v bysel.PortfolioValue) error {
	body := fmt.Sprintf("%s\nValue     %s\nInvested  %s\nP&L       %s (%s)",
		titleStyle.Render("Portfolio value"),
		money(v.Value), money(v.Invested), signed(v.PnL, ".2f"), signed(v.PnLPercent, ".2f%%"))
	return write(w, panelStyle.Render(body))
}

func Wallet(w io.Writer, balance float64) error {
	return write(w, fmt.Sprintf("Wallet balance: %s", titleStyle.Render(money(balance))))
}

func MarketStatus(w io.Writer, s bysel.MarketStatus) error {
	state := lossStyle.Render(s.Status)
	if s.IsOpen {
		state = gainStyle.Render(s.Status)
	}
	line := fmt.Sprintf("Market: %s", state)
	if s.Message != "" {
		line += "  " + s.Message
	}
	if !s.IsOpen && s.NextOpen != "" {
		line += mutedStyle.Render("  (next open " + s.NextOpen + ")")
	}
	return write(w, line)
}
