package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/evaluation"
	"github.com/lehigh-university-libraries/transcribe/internal/export"
	"github.com/lehigh-university-libraries/transcribe/internal/gateway"
	"github.com/lehigh-university-libraries/transcribe/internal/images"
	"github.com/lehigh-university-libraries/transcribe/internal/languages"
	"github.com/lehigh-university-libraries/transcribe/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		language    string
		output      string
		concurrency int
		twoStep     bool
		references  bool
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Extract and translate every image in a directory",
		Long: `Processes every supported image in a directory and writes one record per
image to a Parquet or YAML file. Images that fail are recorded with their
error; the run continues.`,
		Example: `  # Translate a folder of scans into Spanish
  transcribe batch ./scans --output results.parquet

  # Four images at a time, into Japanese, as YAML
  transcribe batch ./scans --language ja --output results.yaml --concurrency 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1, got %d", concurrency)
			}

			if language == "" {
				language = opts.cfg.DefaultLanguage
			}
			lang, err := languages.Resolve(language)
			if err != nil {
				return err
			}

			files, err := imageFiles(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no supported images found in %s", dir)
			}

			client, err := gateway.NewFromConfig(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			slog.Info("Starting batch", "images", len(files), "language", lang, "concurrency", concurrency)

			records := make([]export.Record, len(files))
			outcomes := make([]evaluation.Outcome, len(files))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for i, path := range files {
				g.Go(func() error {
					start := time.Now()
					controller := workflow.New(client, workflow.WithTargetLanguage(lang))
					err := processFile(ctx, controller, path, lang, twoStep, opts.cfg.MaxUploadBytes)

					record := export.FromSnapshot(controller.State().Snapshot(""))
					if record.Filename == "" {
						record.Filename = filepath.Base(path)
					}
					outcome := evaluation.Outcome{Duration: time.Since(start)}
					record.DurationMillis = outcome.Duration.Milliseconds()

					if err != nil {
						record.Error = workflow.UserMessage(err)
						outcome.Failed = true
						slog.Warn("Image failed", "file", path, "error", err)
					} else if references {
						if ref, ok := readReference(path); ok {
							score := evaluation.Compare(ref, record.RawText)
							record.ReferenceDistance = score.Distance
							record.ReferenceSimilarity = score.Similarity
							outcome.Score = &score
						}
					}
					records[i] = record
					outcomes[i] = outcome

					// Interrupts stop the whole run; provider failures do not
					if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
						return err
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			summary := evaluation.Summarize(outcomes)

			report := export.Report{
				Config:  export.NewConfig(client.Provider(), client.Model(), lang, dir),
				Results: records,
			}
			if err := export.Write(output, report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d images (%d failed), results saved to %s\n", summary.Total, summary.Failed, output)
			fmt.Fprintf(out, "Average time per image: %s\n", summary.AverageDuration.Round(time.Millisecond))
			if summary.Scored > 0 {
				fmt.Fprintf(out, "Reference similarity over %d images: mean %.1f%%, min %.1f%%\n",
					summary.Scored, summary.MeanSimilarity*100, summary.MinSimilarity*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Target language (name or code, default from TRANSCRIBE_LANGUAGE)")
	cmd.Flags().StringVarP(&output, "output", "o", "results.parquet", "Output file (.parquet or .yaml)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 2, "Images processed at once")
	cmd.Flags().BoolVar(&references, "references", false, "Score extracted text against <image name>.txt files next to each image")
	cmd.Flags().BoolVar(&twoStep, "two-step", false, "Use separate extract and translate calls instead of one combined call")

	return cmd
}

func processFile(ctx context.Context, controller *workflow.Controller, path, lang string, twoStep bool, maxBytes int64) error {
	file, err := os.Open(path)
	if err != nil {
		return &images.EncodingError{Err: err}
	}
	name := filepath.Base(path)
	in, err := images.ReadInput(file, images.TypeForFilename(name), name, maxBytes)
	file.Close()
	if err != nil {
		return err
	}

	if err := controller.SelectImage(in); err != nil {
		return err
	}
	if !twoStep {
		return controller.RequestProcess(ctx, lang)
	}
	return extractThenTranslate(ctx, controller, lang)
}

// readReference loads the transcription stored beside an image, e.g.
// page-1.png -> page-1.txt
func readReference(imagePath string) (string, bool) {
	refPath := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt"
	data, err := os.ReadFile(refPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Unable to read reference transcription", "path", refPath, "error", err)
		}
		return "", false
	}
	return string(data), true
}

// imageFiles lists the supported images directly inside dir, sorted by name
func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || images.TypeForFilename(entry.Name()) == "" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
