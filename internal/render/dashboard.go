package render

import (
	"fmt"
	"io"
	"strings"

	"bysel/pkg/bysel"

	"github.com/charmbracelet/lipgloss"
)

// DashboardView is the data behind one dashboard screen.
type DashboardView struct {
	Order        []string
	Pinned       map[string]bool
	PinnedStocks []string
	Portfolio    *bysel.PortfolioSummary
	Watchlist    []bysel.Quote
	News         []string
}

// Dashboard renders pinned widgets in order. Unpinned widgets are listed as hidden.
func Dashboard(w io.Writer, v DashboardView) error {
	var panels, hidden []string
	for i, name := range v.Order {
		if !v.Pinned[name] {
			hidden = append(hidden, name)
			continue
		}
		title := titleStyle.Render(fmt.Sprintf("%d. %s", i+1, name))
		panels = append(panels, panelStyle.Render(title+"\n"+widgetBody(name, v)))
	}

	out := lipgloss.JoinVertical(lipgloss.Left, panels...)
	if len(panels) == 0 {
		out = mutedStyle.Render("All widgets are hidden.")
	}
	if len(hidden) > 0 {
		out += "\n" + mutedStyle.Render("hidden: "+strings.Join(hidden, ", "))
	}
	return write(w, out)
}

func widgetBody(name string, v DashboardView) string {
	switch name {
	case "portfolio":
		if v.Portfolio == nil {
			return mutedStyle.Render("Portfolio unavailable.")
		}
		p := v.Portfolio
		return fmt.Sprintf("Value %s  P&L %s (%s)  %d holdings",
			money(p.TotalValue), signed(p.TotalPnL, ".2f"), signed(p.TotalPnLPercent, ".2f%%"), p.HoldingsCount)
	case "watchlist":
		if len(v.PinnedStocks) == 0 {
			return mutedStyle.Render("No pinned stocks.")
		}
		last := make(map[string]bysel.Quote, len(v.Watchlist))
		for _, q := range v.Watchlist {
			last[q.Symbol] = q
		}
		lines := make([]string, 0, len(v.PinnedStocks))
		for _, sym := range v.PinnedStocks {
			q, ok := last[sym]
			if !ok {
				lines = append(lines, fmt.Sprintf("%-12s %s", sym, mutedStyle.Render("-")))
				continue
			}
			lines = append(lines, fmt.Sprintf("%-12s %10.2f %s", sym, q.Last, signed(q.PctChange, ".2f%%")))
		}
		return strings.Join(lines, "\n")
	case "news":
		if len(v.News) == 0 {
			return mutedStyle.Render("No news.")
		}
		return "• " + strings.Join(v.News, "\n• ")
	}
	return ""
}
