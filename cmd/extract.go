package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/transcribe/internal/gateway"
	"github.com/lehigh-university-libraries/transcribe/internal/images"
	"github.com/lehigh-university-libraries/transcribe/internal/languages"
	"github.com/lehigh-university-libraries/transcribe/internal/models"
	"github.com/lehigh-university-libraries/transcribe/internal/workflow"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var (
		translateTo string
		combined    bool
		format      string
	)

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the text of one image and optionally translate it",
		Long: `Extracts the text of a local image file or an http(s) image URL.

With --translate the extracted text is then translated into the given
language. --combined does both in a single provider call.`,
		Example: `  # Print the text of a scan
  transcribe extract scan.png

  # Extract and translate into French, as JSON
  transcribe extract scan.png --translate fr --format json

  # One round trip against Ollama
  transcribe extract https://example.org/page.jpg --translate German --combined --provider ollama`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (supported: text, json, yaml)", format)
			}

			lang := ""
			if translateTo != "" {
				resolved, err := languages.Resolve(translateTo)
				if err != nil {
					return err
				}
				lang = resolved
			} else if combined {
				lang = opts.cfg.DefaultLanguage
			}

			in, err := loadImage(cmd, args[0], opts.cfg.MaxUploadBytes)
			if err != nil {
				return err
			}

			client, err := gateway.NewFromConfig(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			controller := workflow.New(client, workflow.WithTargetLanguage(opts.cfg.DefaultLanguage))
			if err := controller.SelectImage(in); err != nil {
				return err
			}

			switch {
			case combined:
				err = controller.RequestProcess(cmd.Context(), lang)
			case lang != "":
				err = extractThenTranslate(cmd.Context(), controller, lang)
			default:
				err = controller.RequestExtract(cmd.Context())
			}
			if err != nil {
				return err
			}

			return printSnapshot(cmd.OutOrStdout(), controller.State().Snapshot(""), format)
		},
	}

	cmd.Flags().StringVarP(&translateTo, "translate", "t", "", "Translate the extracted text into this language (name or code)")
	cmd.Flags().BoolVar(&combined, "combined", false, "Extract and translate in a single provider call")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml")

	return cmd
}

// extractThenTranslate runs the two-call flow. An image without text has
// nothing to translate and ends after extraction.
func extractThenTranslate(ctx context.Context, controller *workflow.Controller, lang string) error {
	if err := controller.RequestExtract(ctx); err != nil {
		return err
	}
	if controller.State().ExtractedText() == "" {
		slog.Info("No text found, skipping translation")
		return nil
	}
	return controller.RequestTranslate(ctx, lang)
}

// loadImage reads a local file, or downloads the image when source is a URL.
// The CLI runs on the caller's behalf so internal hosts are reachable.
func loadImage(cmd *cobra.Command, source string, maxBytes int64) (*images.Input, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		fetcher := images.NewFetcher(maxBytes)
		fetcher.AllowPrivate = true
		return fetcher.Fetch(cmd.Context(), source)
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, &images.EncodingError{Err: err}
	}
	defer file.Close()

	name := filepath.Base(source)
	return images.ReadInput(file, images.TypeForFilename(name), name, maxBytes)
}

func printSnapshot(w io.Writer, snap models.Snapshot, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(snap)
	}

	if snap.Extraction != nil {
		if snap.Translation != nil {
			fmt.Fprintln(w, "--- extracted ---")
		}
		fmt.Fprintln(w, snap.Extraction.RawText)
	}
	if snap.Translation != nil {
		fmt.Fprintf(w, "--- %s ---\n", snap.Translation.Language)
		fmt.Fprintln(w, snap.Translation.Text)
	}
	return nil
}
