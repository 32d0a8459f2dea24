package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/gateway"
	"github.com/lehigh-university-libraries/transcribe/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port       string
		sessionTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the transcription interface",
		Long: `Starts the Transcribe web interface on the specified port.

The web interface lets you upload an image, extract its text and
translate the result into one of the supported languages.`,
		Example: `  # Start server on default port 8888
  transcribe serve

  # Start server on custom port using OpenAI
  transcribe serve --port 3000 --provider openai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionTTL <= 0 {
				return fmt.Errorf("--session-ttl must be positive, got %s", sessionTTL)
			}

			client, err := gateway.NewFromConfig(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			handler := handlers.New(client, handlers.Options{
				MaxUploadBytes:   opts.cfg.MaxUploadBytes,
				DefaultLanguage:  opts.cfg.DefaultLanguage,
				AllowPrivateURLs: opts.cfg.AllowPrivateURLs,
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Transcribe interface available",
					"addr", addr,
					"url", "http://localhost"+addr,
					"provider", client.Provider(),
					"model", client.Model())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			ticker := time.NewTicker(sessionTTL / 4)
			defer ticker.Stop()

			// Wait for context cancellation (Ctrl+C) or server error
			for {
				select {
				case <-ticker.C:
					handler.PruneSessions(sessionTTL)
				case <-cmd.Context().Done():
					slog.Info("Shutting down server...")
					// Give server 5 seconds to shut down gracefully
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := server.Shutdown(shutdownCtx); err != nil {
						slog.Error("Server shutdown failed", "err", err)
						return err
					}
					slog.Info("Server stopped")
					return nil
				case err := <-serverErr:
					return err
				}
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", time.Hour, "Drop sessions idle for longer than this")

	return cmd
}
