package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dialogueforge/dialogueforge/internal/chunk"
	"github.com/dialogueforge/dialogueforge/internal/extract"
)

// newExtractCmd creates the extract subcommand.
func newExtractCmd() *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract plain text from a document without generating dialogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Pipeline.Timeout)
			defer cancel()

			fileBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			spin := NewSpinner("extracting text")
			spin.Start()
			result, err := extract.New(logger).Extract(ctx, fileBytes, format)
			spin.Stop()
			if err != nil {
				return err
			}

			if outputJSON {
				payload := map[string]interface{}{
					"format": result.Format,
					"chars":  len(result.Text),
					"text":   result.Text,
				}
				if result.Quality != nil {
					payload["quality"] = map[string]interface{}{
						"pageCount":      result.Quality.PageCount,
						"charsPerPage":   result.Quality.CharsPerPage,
						"printableRatio": result.Quality.PrintableRatio,
						"needsOcr":       result.Quality.NeedsOCR(),
					}
				}
				return json.NewEncoder(os.Stdout).Encode(payload)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()
			if result.Quality != nil && result.Quality.NeedsOCR() {
				ui.Warning("document looks image-based, extracted text may be incomplete")
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(result.Text), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				ui.Success("extracted %d characters (%s) to %s", len(result.Text), result.Format, outPath)
				return nil
			}
			fmt.Println(result.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "auto", "input format: txt, pdf, docx, epub, or auto")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write text to a file instead of stdout")
	return cmd
}

// newChunksCmd creates the chunks subcommand for previewing chunk boundaries.
func newChunksCmd() *cobra.Command {
	var (
		format   string
		maxChars int
		preview  int
	)

	cmd := &cobra.Command{
		Use:   "chunks <file>",
		Short: "Preview how a document splits into chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Pipeline.Timeout)
			defer cancel()

			fileBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			result, err := extract.New(logger).Extract(ctx, fileBytes, format)
			if err != nil {
				return err
			}
			if maxChars <= 0 {
				maxChars = cfg.Chunking.MaxChars
			}
			chunks := chunk.New().Split(result.Text, maxChars)

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(chunks)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()
			ui.Info("%d chunk(s) at max %d chars", len(chunks), maxChars)
			for _, ch := range chunks {
				head := []rune(ch.Text)
				if len(head) > preview {
					head = head[:preview]
				}
				ui.KeyValue(fmt.Sprintf("chunk %d (%d words, %d tokens)", ch.ID, ch.WordCount, ch.TokenCount), string(head))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "auto", "input format: txt, pdf, docx, epub, or auto")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "maximum characters per chunk")
	cmd.Flags().IntVar(&preview, "preview", 80, "characters of each chunk to display")
	return cmd
}
