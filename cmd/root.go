package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/transcribe/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions holds the settings shared by every subcommand. cfg is filled
// in by the root command's PersistentPreRun.
type rootOptions struct {
	cfg      *config.Config
	logLevel string
	provider string
	model    string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Extract and translate the text in images with vision-capable LLMs",
		Long: `Transcribe reads the text in an image (a photo, a scan, a screenshot) and
translates it into a target language using Gemini, OpenAI or Ollama.

It runs as a small web application or from the command line, one image
at a time or over a whole directory.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			opts.cfg = config.Load()
			if opts.logLevel != "" {
				opts.cfg.LogLevel = opts.logLevel
			}
			if opts.provider != "" {
				opts.cfg.Provider = opts.provider
			}
			if opts.model != "" {
				opts.cfg.Model = opts.model
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: opts.cfg.SlogLevel(),
			}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "LLM provider: gemini, openai, ollama (default from TRANSCRIBE_PROVIDER)")
	cmd.PersistentFlags().StringVar(&opts.model, "model", "", "Model name (default depends on provider)")

	// Add subcommands
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newLanguagesCmd())

	return cmd
}
