package cli

import (
	"strings"

	"bysel/internal/render"
	"bysel/internal/trading"

	"github.com/spf13/cobra"
)

func newAICmd(r *runner) *cobra.Command {
	aiCmd := &cobra.Command{
		Use:   "ai",
		Short: "Ask the AI assistant",
	}

	aiCmd.AddCommand(&cobra.Command{
		Use:   "ask QUERY...",
		Short: "Ask a free-form question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := r.app.Model()
			m.AskAI(cmd.Context(), strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if resp := m.AiResponse.Get(); resp != nil {
				return render.Answer(out, *resp, r.app.Markdown)
			}
			return r.app.Markdown.Write(out, trading.AiFailureMessage)
		},
	})

	aiCmd.AddCommand(&cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Full technical and fundamental analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := r.app.Model()
			m.AnalyzeStock(cmd.Context(), strings.ToUpper(args[0]))
			a := m.StockAnalysis.Get()
			if a == nil {
				return failed(m.Error.Get())
			}
			return render.Analysis(cmd.OutOrStdout(), *a, r.app.Markdown)
		},
	})

	aiCmd.AddCommand(&cobra.Command{
		Use:   "predict SYMBOL",
		Short: "Price predictions across horizons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := r.app.Model()
			m.PredictStock(cmd.Context(), strings.ToUpper(args[0]))
			p := m.StockPrediction.Get()
			if p == nil {
				return failed(m.Error.Get())
			}
			return render.Prediction(cmd.OutOrStdout(), *p)
		},
	})

	return aiCmd
}
