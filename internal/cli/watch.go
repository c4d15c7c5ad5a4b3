package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"bysel/config"
	"bysel/internal/mockserver"
	"bysel/internal/render"
	"bysel/internal/stream"
	"bysel/logger"
	"bysel/pkg/bysel"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(r *runner) *cobra.Command {
	var (
		interval  time.Duration
		streamURL string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Auto-refresh quotes and evaluate alerts until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			log := r.app.Logger

			if cmd.Flags().Changed("interval") {
				r.app.Config.Refresh.Interval = interval
			}
			if !cmd.Flags().Changed("stream") {
				streamURL = r.app.Config.API.StreamURL
			}

			m := r.app.Model()
			if streamURL != "" {
				ws := bysel.NewWSClient(streamURL, m.Topics, log)
				var sink stream.QuoteSink
				if c := r.app.Repo.Cache(); c != nil {
					sink = c
				}
				ws.SetMessageHandler(stream.MakeMessageHandler(log, m.Book(), sink))
				m.AttachStream(ws)
			}

			quotes := m.Quotes.Subscribe(ctx)
			triggered := m.TriggeredAlerts.Subscribe(ctx)

			m.Start(ctx)
			defer func() {
				m.Stop()
				log.Info("watch stopped", zap.Int("symbols_quoted", m.Book().Len()))
			}()
			log.Info("watching quotes", zap.Strings("symbols", m.Symbols()), zap.Bool("stream", streamURL != ""))

			if msg := m.Error.Get(); msg != "" {
				log.Warn("initial refresh failed", zap.String("error", msg))
			}

			printed := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case q, ok := <-quotes:
					if !ok {
						return nil
					}
					if len(q) == 0 {
						continue
					}
					fmt.Fprintf(out, "%s  %d quotes\n", time.Now().Format("15:04:05"), len(q))
					if err := render.Quotes(out, q, r.app.Dashboard.PinnedStocks.Get()); err != nil {
						return err
					}
				case list, ok := <-triggered:
					if !ok {
						return nil
					}
					if len(list) <= printed {
						continue
					}
					if err := render.Triggers(out, list[printed:]); err != nil {
						return err
					}
					printed = len(list)
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (defaults to refresh.interval)")
	cmd.Flags().StringVar(&streamURL, "stream", "", "WebSocket quote stream URL (defaults to api.stream_url)")
	return cmd
}

func newMockServerCmd(r *runner) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:         "mock-server",
		Short:       "Serve an in-memory trading backend for local use",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{standalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if r.debug {
				level = "debug"
			}
			log, err := logger.New(config.LogConfig{Level: level, Format: "console", Environment: "dev"})
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer log.Sync()

			return serveMock(cmd.Context(), addr, mockserver.New(), log, func(bound string) {
				fmt.Fprintf(cmd.OutOrStdout(), "mock backend listening on http://%s\n", bound)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	return cmd
}

// serveMock serves backend on addr until ctx is done.
func serveMock(ctx context.Context, addr string, backend http.Handler, log *zap.Logger, ready func(string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{Handler: backend, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	log.Info("mock backend started", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mock backend: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown mock backend: %w", err)
	}
	log.Info("mock backend stopped")
	return nil
}
