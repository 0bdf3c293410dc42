package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/usage"
)

var serveFlags struct {
	listen string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the long-lived companion process",
	Long: `Serve runs AI.duino as a long-lived process: it exposes prometheus
metrics over HTTP and prunes the usage history on the configured cron
schedule. Editor integrations use this mode; one-shot commands do not
need it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var sched *usage.RetentionScheduler
		if a.history != nil {
			sched, err = usage.NewRetentionScheduler(a.history, usage.RetentionConfig{
				RetentionDays: a.cfg.Usage.RetentionDays,
				Schedule:      a.cfg.Usage.RetentionSchedule,
			})
			if err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.prom, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})

		server := &http.Server{
			Addr:              serveFlags.listen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("metrics server listening", "addr", serveFlags.listen)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("shut down cleanly")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", "127.0.0.1:9090", "metrics listen address")
	rootCmd.AddCommand(serveCmd)
}
