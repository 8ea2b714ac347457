package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/scoring-api/internal/adapters/httpapi"
	"github.com/Overland-East-Bay/scoring-api/internal/app/auth"
	"github.com/Overland-East-Bay/scoring-api/internal/app/dispatch"
	"github.com/Overland-East-Bay/scoring-api/internal/app/requests"
	"github.com/Overland-East-Bay/scoring-api/internal/app/scoring"
	platformclock "github.com/Overland-East-Bay/scoring-api/internal/platform/clock"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/config"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/logging"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scoring-api",
		Short:         "Scoring API: online_score and clients_interests over POST /method/",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	log, closeLog, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return err
	}
	defer closeLog.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()
	m := metrics.New()

	backend, cleanup, err := openBackend(ctx, cfg.Store)
	if err != nil {
		log.WithError(err).WithField("backend", cfg.Store.Backend).Error("store: backend unavailable at startup")
		return err
	}
	defer cleanup()

	retry, err := cfg.Store.RetryPolicy()
	if err != nil {
		return err
	}
	st := store.New(backend, clk, store.Options{
		Retry:    retry,
		CacheTTL: cfg.Store.CacheTTL,
		Timeout:  cfg.Store.Timeout,
		Logger:   log,
		Metrics:  m,
	})

	d := dispatch.New(
		requests.NewCatalog(clk),
		auth.NewAuthenticator(cfg.Auth, clk),
		scoring.NewService(st),
		log,
	)
	handler := httpapi.NewRouter(
		httpapi.NewServer(d, log, m),
		httpapi.RouterOptions{Metrics: m.Handler(), Logger: log},
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"backend": cfg.Store.Backend,
		}).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("listen")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

