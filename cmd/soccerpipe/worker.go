package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soccerpipe/internal/adminhttp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const adminShutdownTimeout = 10 * time.Second

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the scheduler and admin HTTP surface until signaled to stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(parent context.Context) error {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("soccerpipe: received shutdown signal, draining")
		cancel()
	}()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("worker: bootstrap: %w", err)
	}
	defer a.Close()

	if cfg.AdminHTTPEnabled {
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.AdminHTTPPort),
			Handler: adminhttp.NewRouter(a.db, cfg.CheckpointDir),
		}
		go func() {
			log.Info().Int("port", cfg.AdminHTTPPort).Msg("soccerpipe: admin http listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("soccerpipe: admin http server failed")
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.EnableScheduler {
		if err := a.sched.Start(ctx); err != nil {
			return fmt.Errorf("worker: start scheduler: %w", err)
		}
		log.Info().Msg("soccerpipe: scheduler started")
	}

	<-ctx.Done()
	a.sched.Stop(context.Background())
	log.Info().Msg("soccerpipe: worker shutdown complete")
	return nil
}
