package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	logger2 "gitlab.com/casesync.net/internal/global/logger"
	"gitlab.com/casesync.net/internal/handlers/testrailmock"
	http2 "gitlab.com/casesync.net/internal/http"
)

func newMockServerCmd() *cobra.Command {
	var port int
	var username, apiKey string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory TestRail API for local runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := logger2.Logger.With("command", cmd.Name())
			defer logger.Sync()

			if username == "" {
				username = os.Getenv("TESTRAIL_USERNAME")
			}
			if apiKey == "" {
				apiKey = os.Getenv("TESTRAIL_API_KEY")
			}

			handler := testrailmock.NewHandler(testrailmock.NewStore(), username, apiKey, logger)
			server := http2.NewServer(port, "testrail-mock", handler.Router(), logger)
			errCh, err := server.Start(ctx)
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", "error", err)
				return err
			}
			logger.Info("successfully shutdown server")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 8089, "port to listen on")
	cmd.Flags().StringVar(&username, "username", "", "accepted user (default TESTRAIL_USERNAME)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "accepted API key (default TESTRAIL_API_KEY)")
	return cmd
}
