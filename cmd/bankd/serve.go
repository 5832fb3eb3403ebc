package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/JMan003/banking-system-project/cmd/httpserver"
	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API until SIGINT or SIGTERM.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, logger, err := setup()
		if err != nil {
			return err
		}

		if config.Environment != "development" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(logger.WithContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server, err := httpserver.New(logger, config)
		if err != nil {
			return err
		}

		if n, err := server.Sessions.Reconcile(ctx); err != nil {
			logger.Error().Err(err).Msg("startup session reconciliation failed")
		} else if n > 0 {
			logger.Warn().Int("stale", n).Msg("removed stale session locks")
		}

		sweeper, err := server.Sessions.StartSweeper(ctx, config.SessionSweepSchedule)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              config.ServerAddress,
			Handler:           server,
			ReadHeaderTimeout: 5 * time.Second,
		}

		serveErr := make(chan error, 1)

		go func() {
			serveErr <- srv.ListenAndServe()
		}()

		color.Green("bank API listening on %s (session backend: %s)", config.ServerAddress, config.SessionBackend)
		logger.Info().Str("addr", config.ServerAddress).Msg("BANK API SERVER HAS STARTED")

		select {
		case err = <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(logger.WithContext(context.Background()), shutdownTimeout)
		defer cancel()

		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Error().Err(serr).Msg("http shutdown")
		}

		<-sweeper.Stop().Done()

		if cerr := server.Close(shutdownCtx); cerr != nil {
			logger.Error().Err(cerr).Msg("session backend close")
		}

		return errors.Wrap(err, "serve")
	},
}
