package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/flight-data/internal/handler"
	"github.com/deppfellow/flight-data/internal/repository"
	"github.com/deppfellow/flight-data/internal/router"
	"github.com/deppfellow/flight-data/internal/service"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			s, err := bootstrap(cfg)
			if err != nil {
				return err
			}

			services, err := service.NewService(s, repository.NewRepositories(s))
			if err != nil {
				_ = s.Shutdown(context.Background())
				return err
			}

			r := router.NewRouter(s, handler.NewHandlers(s, services))
			s.SetupHTTPServer(r)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			serveErr := make(chan error, 1)
			go func() {
				if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					s.Logger.Error().Err(err).Msg("server stopped")
					_ = s.Shutdown(context.Background())
					return err
				}
			case <-ctx.Done():
			}

			s.Logger.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return s.Shutdown(shutdownCtx)
		},
	}
}
