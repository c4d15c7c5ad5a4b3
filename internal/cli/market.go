package cli

import (
	"fmt"
	"strings"

	"bysel/internal/render"
	"bysel/internal/repository"
	"bysel/pkg/bysel"

	"github.com/spf13/cobra"
)

func upper(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.ToUpper(strings.TrimSpace(a)); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func newQuotesCmd(r *runner) *cobra.Command {
	var all, cached bool

	cmd := &cobra.Command{
		Use:   "quotes [SYMBOL...]",
		Short: "Show quotes for symbols (the configured watch list by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := r.app.Repo
			symbols := upper(args)
			if len(symbols) == 0 {
				symbols = r.app.Config.Refresh.Symbols
			}

			var quotes []bysel.Quote
			switch {
			case cached && all:
				q, err := repo.CachedAllQuotes(ctx)
				if err != nil {
					return err
				}
				quotes = q
			case cached:
				q, err := repo.CachedQuotes(ctx, symbols)
				if err != nil {
					return err
				}
				quotes = q
			case all:
				res := repository.Await(repo.AllQuotesFromAPI(ctx))
				if res.IsError() {
					return failed(res.Message())
				}
				quotes = res.Data()
			default:
				res := repository.Await(repo.Quotes(ctx, symbols))
				if res.IsError() {
					return failed(res.Message())
				}
				quotes = res.Data()
			}
			return render.Quotes(cmd.OutOrStdout(), quotes, r.app.Dashboard.PinnedStocks.Get())
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show every listed symbol")
	cmd.Flags().BoolVar(&cached, "cached", false, "Read from the local cache without calling the backend")
	return cmd
}

func newQuoteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show a single quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := r.app.Repo.Quote(cmd.Context(), strings.ToUpper(args[0]))
			if res.IsError() {
				return failed(res.Message())
			}
			return render.Quote(cmd.OutOrStdout(), res.Data())
		},
	}
}

func newSearchCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search stocks by symbol or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := r.app.Model()
			m.SearchStocks(cmd.Context(), strings.Join(args, " "))
			if msg := m.Error.Get(); msg != "" {
				return failed(msg)
			}
			return render.SearchResults(cmd.OutOrStdout(), m.SearchResults.Get())
		},
	}
}

func newHeatmapCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap [SECTOR]",
		Short: "Show the sector heatmap, or one sector in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				res := r.app.Repo.SectorDetail(ctx, args[0])
				if res.IsError() {
					return failed(res.Message())
				}
				return render.Sector(cmd.OutOrStdout(), res.Data())
			}

			m := r.app.Model()
			m.LoadMarketHeatmap(ctx)
			h := m.MarketHeatmap.Get()
			if h == nil {
				return failed(m.Error.Get())
			}
			return render.Heatmap(cmd.OutOrStdout(), *h)
		},
	}
}

func newMarketStatusCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "market-status",
		Short: "Show whether the market is open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := r.app.Repo.MarketStatus(cmd.Context())
			if res.IsError() {
				return failed(res.Message())
			}
			return render.MarketStatus(cmd.OutOrStdout(), res.Data())
		},
	}
}

func newPingCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check backend and cache health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			res := r.app.Repo.Health(ctx)
			if res.IsError() {
				return fmt.Errorf("backend %s unreachable: %s", r.app.Config.API.BaseURL, res.Message())
			}
			status := res.Data()["status"]
			if status == "" {
				status = "ok"
			}
			fmt.Fprintf(out, "backend %s: %s\n", r.app.Config.API.BaseURL, status)

			cacheState := "disabled"
			if c := r.app.Repo.Cache(); c != nil {
				cacheState = "unhealthy"
				if c.IsHealthy(ctx) {
					cacheState = "ok"
				}
			}
			fmt.Fprintf(out, "cache %s: %s\n", r.app.Config.Cache.Driver, cacheState)
			return nil
		},
	}
}
