package cli

import (
	"context"
	"fmt"
	"strings"

	"bysel/internal/dashboard"
	"bysel/internal/portfolio"
	"bysel/internal/render"
	"bysel/internal/repository"
	"bysel/pkg/bysel"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// headlines fill the news widget; the backend has no news feed.
var headlines = []string{
	"Sensex rises 200 points as IT stocks rally",
	"RBI keeps repo rate unchanged",
	"Oil prices steady amid global cues",
}

func newDashboardCmd(r *runner) *cobra.Command {
	dashCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show and customize the dashboard",
	}

	dashCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Render pinned widgets in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render.Dashboard(cmd.OutOrStdout(), r.dashboardView(cmd.Context()))
		},
	})

	layoutCmd := func(use, short string, fn func(*dashboard.Model, string) error) *cobra.Command {
		return &cobra.Command{
			Use:       use + " WIDGET",
			Short:     short,
			Args:      cobra.ExactArgs(1),
			ValidArgs: dashboard.DefaultOrder,
			RunE: func(cmd *cobra.Command, args []string) error {
				widget := strings.ToLower(args[0])
				if !dashboard.IsWidget(widget) {
					return fmt.Errorf("unknown widget %q (want one of %s)", args[0], strings.Join(dashboard.DefaultOrder, ", "))
				}
				if err := fn(r.app.Dashboard, widget); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "order: %s\n", strings.Join(r.app.Dashboard.WidgetOrder(), ", "))
				return nil
			},
		}
	}

	dashCmd.AddCommand(
		layoutCmd("up", "Move a widget up", (*dashboard.Model).MoveWidgetUp),
		layoutCmd("down", "Move a widget down", (*dashboard.Model).MoveWidgetDown),
		layoutCmd("pin", "Toggle whether a widget is shown", (*dashboard.Model).ToggleWidgetPin),
	)

	dashCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.app.Dashboard.ResetLayout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dashboard layout reset")
			return nil
		},
	})

	return dashCmd
}

func newPinsCmd(r *runner) *cobra.Command {
	pinsCmd := &cobra.Command{
		Use:   "pins",
		Short: "Manage pinned stocks",
	}

	pinsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pinned stocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			pinned := r.app.Dashboard.PinnedStocks.Get()
			if len(pinned) == 0 {
				fmt.Fprintln(out, "No pinned stocks.")
				return nil
			}
			for _, s := range pinned {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	})

	pinsCmd.AddCommand(&cobra.Command{
		Use:   "toggle SYMBOL",
		Short: "Pin or unpin a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.app.Dashboard.TogglePin(args[0]); err != nil {
				return err
			}
			sym := strings.ToUpper(strings.TrimSpace(args[0]))
			state := "unpinned"
			if r.app.Dashboard.IsStockPinned(sym) {
				state = "pinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", sym, state)
			return nil
		},
	})

	return pinsCmd
}

// dashboardView gathers widget data, falling back to the cache when the
// backend is unavailable.
func (r *runner) dashboardView(ctx context.Context) render.DashboardView {
	board := r.app.Dashboard
	repo := r.app.Repo

	v := render.DashboardView{
		Order:        board.WidgetOrder(),
		Pinned:       make(map[string]bool),
		PinnedStocks: board.PinnedStocks.Get(),
		News:         headlines,
	}
	for _, w := range v.Order {
		v.Pinned[w] = board.IsPinned(w)
	}

	if v.Pinned[dashboard.WidgetPortfolio] {
		if res := repo.PortfolioSummary(ctx); res.IsSuccess() {
			s := res.Data()
			v.Portfolio = &s
		} else if holdings, err := repo.CachedHoldings(ctx); err == nil && len(holdings) > 0 {
			s := portfolio.Summarize(holdings)
			v.Portfolio = &s
		}
	}

	if v.Pinned[dashboard.WidgetWatchlist] && len(v.PinnedStocks) > 0 {
		v.Watchlist = r.watchlist(ctx, v.PinnedStocks)
	}
	return v
}

func (r *runner) watchlist(ctx context.Context, symbols []string) []bysel.Quote {
	res := repository.Await(r.app.Repo.Quotes(ctx, symbols))
	if res.IsSuccess() {
		return res.Data()
	}
	r.app.Logger.Debug("watchlist quotes unavailable, using cache", zap.String("error", res.Message()))
	quotes, err := r.app.Repo.CachedQuotes(ctx, symbols)
	if err != nil {
		return nil
	}
	return quotes
}
