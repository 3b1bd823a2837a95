package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillsage/server/internal/app"
	"github.com/skillsage/server/internal/metrics"
	logx "github.com/skillsage/server/pkg/logger"
)

var (
	envFile string
	quiet   bool
	cfg     app.Config
)

var rootCmd = &cobra.Command{
	Use:   "skillsage",
	Short: "IT skills advisor: agentic retrieval, answer composition and signal scoring",
	Long: `skillsage answers questions about IT skills from a Postgres/pgvector
knowledge store, loads collection reports into that store, and scores raw
trend and relevance signals.

Configuration comes from the environment; a .env file is loaded first when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := app.LoadConfig(envFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logx.Init(logx.LoggerOpts{Environment: cfg.Env(), Output: os.Stderr, Quiet: quiet})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openApp connects the shared clients and starts the metrics endpoint when
// METRICS_ADDR is set. The returned cleanup is always safe to call.
func openApp(ctx context.Context) (*app.App, func(), error) {
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	shutdown := serveMetrics(cfg.MetricsAddr, a.Metrics)
	return a, func() {
		shutdown()
		a.Close()
	}, nil
}

func serveMetrics(addr string, m *metrics.Metrics) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logx.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
