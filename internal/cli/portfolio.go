package cli

import (
	"fmt"
	"strconv"
	"strings"

	"bysel/internal/portfolio"
	"bysel/internal/render"
	"bysel/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHoldingsCmd(r *runner) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "holdings",
		Short: "Show the positions you own",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cached {
				holdings, err := r.app.Repo.CachedHoldings(ctx)
				if err != nil {
					return err
				}
				return render.Holdings(cmd.OutOrStdout(), holdings)
			}
			res := repository.Await(r.app.Repo.Holdings(ctx))
			if res.IsError() {
				return failed(res.Message())
			}
			return render.Holdings(cmd.OutOrStdout(), res.Data())
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Read from the local cache without calling the backend")
	return cmd
}

// newOrderCmd builds the buy and sell commands.
func newOrderCmd(r *runner, verb string) *cobra.Command {
	side := strings.ToUpper(verb)

	return &cobra.Command{
		Use:   verb + " SYMBOL QTY",
		Short: fmt.Sprintf("Place a market %s order", verb),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}

			m := r.app.Model()
			m.PlaceOrder(cmd.Context(), args[0], qty, side)
			if msg := m.Error.Get(); msg != "" {
				return failed(msg)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order placed: %s %d %s\n", side, qty, strings.ToUpper(args[0]))
			return render.Wallet(out, m.WalletBalance.Get())
		},
	}
}

func newTradesCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "trades [SYMBOL]",
		Short: "Show trade history, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch := r.app.Repo.TradeHistory(ctx)
			if len(args) == 1 {
				ch = r.app.Repo.TradeHistoryForSymbol(ctx, strings.ToUpper(args[0]))
			}
			res := repository.Await(ch)
			if res.IsError() {
				return failed(res.Message())
			}
			return render.Trades(cmd.OutOrStdout(), res.Data())
		},
	}
}

func newPortfolioCmd(r *runner) *cobra.Command {
	var offline, value bool

	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show the portfolio summary",
		Long: `Show the portfolio summary from the backend. With --offline, or when the
backend is unreachable, the summary is computed from cached holdings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			repo := r.app.Repo

			if !offline {
				if value {
					res := repo.PortfolioValue(ctx)
					if res.IsSuccess() {
						return render.PortfolioValue(out, res.Data())
					}
					r.app.Logger.Warn("portfolio value unavailable, using cached holdings", zap.String("error", res.Message()))
				} else {
					res := repo.PortfolioSummary(ctx)
					if res.IsSuccess() {
						return render.Portfolio(out, res.Data())
					}
					r.app.Logger.Warn("portfolio summary unavailable, using cached holdings", zap.String("error", res.Message()))
				}
			}

			holdings, err := repo.CachedHoldings(ctx)
			if err != nil {
				return fmt.Errorf("offline portfolio: %w", err)
			}
			if value {
				return render.PortfolioValue(out, portfolio.Value(holdings))
			}
			return render.Portfolio(out, portfolio.Summarize(holdings))
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Compute from cached holdings only")
	cmd.Flags().BoolVar(&value, "value", false, "Show current value instead of the summary")
	return cmd
}

func newHealthScoreCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "health-score",
		Short: "Score portfolio diversification, risk and performance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := r.app.Model()
			m.LoadPortfolioHealth(cmd.Context())
			h := m.PortfolioHealth.Get()
			if h == nil {
				return failed(m.Error.Get())
			}
			return render.Health(cmd.OutOrStdout(), *h)
		},
	}
}

func newWalletCmd(r *runner) *cobra.Command {
	var add float64

	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show the wallet balance or add funds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("add") {
				m := r.app.Model()
				m.AddFunds(ctx, add)
				if msg := m.Error.Get(); msg != "" {
					return failed(msg)
				}
				fmt.Fprintf(out, "Added ₹%.2f\n", add)
				return render.Wallet(out, m.WalletBalance.Get())
			}

			res := r.app.Repo.Wallet(ctx)
			if res.IsError() {
				return failed(res.Message())
			}
			return render.Wallet(out, res.Data().Balance)
		},
	}

	cmd.Flags().Float64Var(&add, "add", 0, "Amount to add to the wallet")
	return cmd
}
