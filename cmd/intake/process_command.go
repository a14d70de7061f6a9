package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/stages"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var imagePath string
	var text string
	var textFile string
	var compact bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the pipeline on a scanned form or form text and print the result as JSON",
		Example: `  intake process --image ./fir-scan.png
  intake process --text "Name: Asha Rao. I wish to report a theft..."
  intake process --text-file complaint.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd.ErrOrStderr())

			img, err := readImage(imagePath)
			if err != nil {
				return err
			}

			if textFile != "" {
				data, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("read text file: %w", err)
				}
				text = string(data)
			}

			client, err := inference.New(&cfg.Agent, logger)
			if err != nil {
				return err
			}

			executor, err := pipeline.New(
				stages.New(client, &cfg.Stages, logger),
				pipeline.WithObserver(pipeline.NewLogObserver(logger)),
			)
			if err != nil {
				return err
			}

			form, err := executor.Process(cmd.Context(), img, text)
			if err != nil {
				return err
			}

			return writeJSON(cmd, form, compact)
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to a scanned form (PNG, JPEG, or PDF)")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Form text")
	cmd.Flags().StringVar(&textFile, "text-file", "", "Path to a file containing form text")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print JSON on a single line")
	cmd.MarkFlagsMutuallyExclusive("text", "text-file")

	return cmd
}

func readImage(path string) (pipeline.Image, error) {
	if strings.TrimSpace(path) == "" {
		return pipeline.Image{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Image{}, fmt.Errorf("read image: %w", err)
	}

	contentType := http.DetectContentType(data)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		contentType = "application/pdf"
	}

	return pipeline.Image{Data: data, ContentType: contentType}, nil
}

func writeJSON(cmd *cobra.Command, v any, compact bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
