package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X bysel/internal/cli.Version=...".
var Version = "dev"

// standalone marks commands that run without loading the App.
const standalone = "standalone"

type runner struct {
	newApp  Factory
	app     *App
	cfgPath string
	debug   bool
}

// Execute builds the command tree, runs it with args and releases the App.
// A nil out keeps cobra's default of stdout.
func Execute(ctx context.Context, newApp Factory, args []string, out io.Writer) error {
	r := &runner{newApp: newApp}
	cmd := newRootCmd(r)
	cmd.SetArgs(args)
	if out != nil {
		cmd.SetOut(out)
	}
	defer r.close()
	return cmd.ExecuteContext(ctx)
}

// newRootCmd creates the root command. r.newApp is called once per
// execution before any command that needs the backend.
func newRootCmd(r *runner) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bysel",
		Short: "bysel - simulated stock trading from the terminal",
		Long: `bysel talks to a simulated trading backend: live quotes, a paper
portfolio with a wallet, price alerts, an AI assistant and a market heatmap.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[standalone] != "" {
				return nil
			}
			app, err := r.newApp(cmd.Context(), r.cfgPath, r.debug)
			if err != nil {
				return err
			}
			r.app = app
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&r.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&r.cfgPath, "config", "", "Configuration file path")

	rootCmd.AddCommand(
		newQuotesCmd(r),
		newQuoteCmd(r),
		newHoldingsCmd(r),
		newOrderCmd(r, "buy"),
		newOrderCmd(r, "sell"),
		newTradesCmd(r),
		newPortfolioCmd(r),
		newAlertsCmd(r),
		newSearchCmd(r),
		newAICmd(r),
		newHealthScoreCmd(r),
		newHeatmapCmd(r),
		newWalletCmd(r),
		newMarketStatusCmd(r),
		newDashboardCmd(r),
		newPinsCmd(r),
		newWatchCmd(r),
		newPingCmd(r),
		newMockServerCmd(r),
		newVersionCmd(),
	)
	return rootCmd
}

func (r *runner) close() {
	if r.app == nil {
		return
	}
	_ = r.app.Close()
	r.app = nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{standalone: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bysel %s\n", Version)
		},
	}
}

// failed turns a result message into a command error.
func failed(message string) error {
	if message == "" {
		message = "Unknown error"
	}
	return errors.New(message)
}
