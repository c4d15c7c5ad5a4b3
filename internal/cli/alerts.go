package cli

import (
	"fmt"
	"strconv"
	"strings"

	"bysel/internal/render"

	"github.com/spf13/cobra"
)

func newAlertsCmd(r *runner) *cobra.Command {
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Manage price alerts",
	}

	alertsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all alerts known to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := r.app.Repo.AllAlerts(cmd.Context())
			if res.IsError() {
				return failed(res.Message())
			}
			return render.Alerts(cmd.OutOrStdout(), res.Data())
		},
	})

	alertsCmd.AddCommand(&cobra.Command{
		Use:   "active",
		Short: "List active alerts from the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := r.app.Repo.ActiveAlerts(cmd.Context())
			if err != nil {
				return err
			}
			return render.Alerts(cmd.OutOrStdout(), list)
		},
	})

	alertsCmd.AddCommand(&cobra.Command{
		Use:   "create SYMBOL PRICE ABOVE|BELOW",
		Short: "Create a price alert",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[1], err)
			}

			m := r.app.Model()
			m.CreateAlert(cmd.Context(), args[0], price, args[2])
			if msg := m.Error.Get(); msg != "" {
				return failed(msg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alert created: %s %s %.2f\n",
				strings.ToUpper(args[0]), strings.ToUpper(args[2]), price)
			return nil
		},
	})

	alertsCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid alert id %q: %w", args[0], err)
			}

			m := r.app.Model()
			m.DeleteAlert(cmd.Context(), id)
			if msg := m.Error.Get(); msg != "" {
				return failed(msg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alert %d deleted\n", id)
			return nil
		},
	})

	alertsCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Evaluate active alerts against fresh quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			active, err := r.app.Repo.ActiveAlerts(ctx)
			if err != nil {
				return err
			}

			m := r.app.Model()
			for _, a := range active {
				m.Watch(a.Symbol)
			}
			m.RefreshQuotes(ctx)
			if msg := m.Error.Get(); msg != "" {
				return failed(msg)
			}
			return render.Triggers(cmd.OutOrStdout(), m.CheckAlerts(ctx))
		},
	})

	return alertsCmd
}
