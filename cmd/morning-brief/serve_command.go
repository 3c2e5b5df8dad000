package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"morning-brief/internal/config"
	"morning-brief/internal/episodes"
	"morning-brief/internal/pipeline"
	"morning-brief/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated site locally and rebuild the feed when episodes change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}
			if err := config.ValidateListenAddr(addr); err != nil {
				return fmt.Errorf("invalid listen address %q: %w", addr, err)
			}

			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline, logger zerolog.Logger) error {
				return serve(cmd.Context(), cfg, addr, p, logger)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to BRIEF_LISTEN_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, addr string, p *pipeline.Pipeline, logger zerolog.Logger) error {
	if _, err := p.Rebuild(); err != nil {
		return err
	}

	watcher, err := episodes.NewWatcher(cfg.EpisodeDir, cfg.RefreshDebounce, func() {
		if _, err := p.Rebuild(); err != nil {
			logger.Error().Err(err).Msg("feed rebuild failed")
		}
	}, logger)
	if err != nil {
		return fmt.Errorf("watch episode dir: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing episode watcher")
		}
	}()

	handler := server.New(p.Store(), server.Paths{
		EpisodeDir: cfg.EpisodeDir,
		FeedPath:   cfg.FeedPath,
		IndexPath:  cfg.IndexPath,
	}, logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("graceful shutdown error")
		}
	}()

	logger.Info().Str("addr", addr).Str("episodes", cfg.EpisodeDir).Msg("preview server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info().Msg("shutdown complete")
	return nil
}
