package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dialogueforge/dialogueforge/internal/cache"
	"github.com/dialogueforge/dialogueforge/internal/chunk"
	"github.com/dialogueforge/dialogueforge/internal/dialogue"
	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/export"
	"github.com/dialogueforge/dialogueforge/internal/extract"
	"github.com/dialogueforge/dialogueforge/internal/pipeline"
	"github.com/dialogueforge/dialogueforge/internal/storage"
)

// newConvertCmd creates the convert subcommand.
func newConvertCmd() *cobra.Command {
	var (
		format       string
		style        string
		questions    int
		model        string
		temperature  float64
		maxChars     int
		chunkIDs     []int
		workers      int
		outPath      string
		exportFormat string
		noStore      bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a document into dialogue records",
		Long: `Convert extracts text from the document, splits it into chunks, generates
question-and-answer pairs for each chunk, stores the session, and writes the
records in the chosen export format.

Without an API key the generator produces deterministic demo content, so the
pipeline can be exercised end to end offline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Pipeline.Timeout)
			defer cancel()

			fileBytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			generator, cacheClient, err := buildGenerator()
			if err != nil {
				return err
			}
			defer cacheClient.Close()

			if cfg.Generation.APIKey == "" {
				ui.Warning("no API key configured, generating demo content")
			}

			p := pipeline.New(extract.New(logger), chunk.New(), generator, logger)

			req := pipeline.Request{
				FileBytes:        fileBytes,
				Format:           format,
				MaxChars:         maxChars,
				SelectedChunkIDs: chunkIDs,
				Options: domain.GenerationOptions{
					Style:             domain.DialogueStyle(style),
					QuestionsPerChunk: questions,
					Model:             model,
					Temperature:       temperature,
				},
				Workers: workers,
			}
			if req.Options.Model == "" {
				req.Options.Model = cfg.Generation.Model
			}

			// The bar total is unknown until chunking finishes, so size it
			// lazily from the first progress callback.
			var bar = ui.ProgressBar("generating", 1)
			req.OnProgress = func(completed, total int) {
				if bar != nil {
					bar.SetTotal(int64(total), false)
					bar.SetCurrent(int64(completed))
				}
			}

			result, err := p.Run(ctx, req)
			if err != nil {
				if bar != nil {
					// An unfinished bar would block Close's Wait on a terminal.
					bar.Abort(true)
				}
				ui.Error("conversion failed: %v", err)
				return err
			}
			if bar != nil {
				bar.SetTotal(-1, true)
			}

			if !noStore {
				if err := persistRun(ctx, args[0], req, result); err != nil {
					ui.Warning("could not store session: %v", err)
				}
			}

			output, err := export.Export(result.Records, domain.ExportFormat(exportFormat))
			if err != nil {
				return err
			}

			if outPath == "" {
				base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				outPath = base + "_dialogue" + export.FileExtension(domain.ExportFormat(exportFormat))
			}
			if err := os.WriteFile(outPath, output, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"sessionId":  result.SessionID,
					"format":     result.Format,
					"chunks":     len(result.Chunks),
					"records":    len(result.Records),
					"demoChunks": result.DemoChunks,
					"durationMs": result.Duration.Milliseconds(),
					"output":     outPath,
				})
			}

			ui.Success("converted %s in %s", filepath.Base(args[0]), FormatDuration(result.Duration))
			ui.KeyValue("session", result.SessionID)
			ui.KeyValue("format", result.Format)
			ui.KeyValue("chunks", len(result.Chunks))
			ui.KeyValue("records", len(result.Records))
			if result.DemoChunks > 0 {
				ui.Warning("%d chunk(s) fell back to demo content", result.DemoChunks)
			}
			ui.KeyValue("output", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "auto", "input format: txt, pdf, docx, epub, or auto")
	cmd.Flags().StringVarP(&style, "style", "s", "", "dialogue style: qa, conversation, or interview")
	cmd.Flags().IntVarP(&questions, "questions", "q", 0, "question-answer pairs per chunk")
	cmd.Flags().StringVarP(&model, "model", "m", "", "completion model override")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature override")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "maximum characters per chunk")
	cmd.Flags().IntSliceVar(&chunkIDs, "chunks", nil, "restrict generation to these chunk IDs")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent generation workers")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path")
	cmd.Flags().StringVar(&exportFormat, "export-format", "json", "export format: json, jsonl, csv, or xlsx")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "skip storing the session in the database")

	return cmd
}

// buildGenerator wires the completion client, cache, and generator from the
// loaded configuration.
func buildGenerator() (*dialogue.Generator, cache.Client, error) {
	var cacheClient cache.Client
	var err error
	switch cfg.Cache.Driver {
	case "redis":
		cacheClient, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect cache: %w", err)
		}
	default:
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}

	var client dialogue.CompletionClient
	if cfg.Generation.APIKey != "" {
		client = dialogue.NewOpenAIClient(dialogue.ClientConfig{
			APIKey:     cfg.Generation.APIKey,
			BaseURL:    cfg.Generation.BaseURL,
			Timeout:    cfg.Generation.Timeout,
			MaxRetries: cfg.Generation.MaxRetries,
		})
	}

	generator := dialogue.NewGenerator(client, logger,
		dialogue.WithCache(cacheClient, cfg.Cache.TTL))
	return generator, cacheClient, nil
}

// openDatabase opens the configured session store and applies the schema.
func openDatabase(ctx context.Context) (*sql.DB, error) {
	var dsn string
	switch cfg.Database.Driver {
	case "postgres":
		dsn = cfg.Database.Postgres.DSN
	default:
		dsn = cfg.Database.SQLite.Path
	}
	db, err := storage.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// persistRun stores the session and its records.
func persistRun(ctx context.Context, filename string, req pipeline.Request, result *pipeline.Result) error {
	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := req.Options.Normalize()

	// The session row is created with zero counts; final stats land via
	// UpdateStats once the records are committed, so the stored counts
	// always reflect stored rows.
	sessions := storage.NewSessionRepository(db)
	session := &storage.Session{
		ID:       result.SessionID,
		Filename: filepath.Base(filename),
		Format:   string(result.Format),
		Model:    opts.Model,
		Style:    string(opts.Style),
	}
	if err := sessions.Create(ctx, session); err != nil {
		return err
	}

	stored := make([]*storage.StoredRecord, 0, len(result.Records))
	for _, rec := range result.Records {
		// Leave ID empty so the repository assigns a globally unique one;
		// record IDs from generation are only unique within a session.
		stored = append(stored, &storage.StoredRecord{
			SessionID:     result.SessionID,
			Question:      rec.Question,
			Answer:        rec.Answer,
			SourceChunkID: rec.SourceChunkID,
			DialogueType:  string(rec.DialogueType),
			Topics:        strings.Join(rec.Topics, ","),
			Confidence:    rec.Confidence,
			IsDemo:        rec.IsDemo,
		})
	}

	records := storage.NewRecordRepository(db)
	if outputJSON || !IsTerminal() {
		if err := records.CreateBatch(ctx, stored); err != nil {
			return err
		}
		return sessions.UpdateStats(ctx, session.ID, len(result.Chunks), len(result.Records), result.DemoChunks)
	}

	bar := NewStepBar(int64(len(stored)), "storing records")
	for _, rec := range stored {
		if err := records.CreateBatch(ctx, []*storage.StoredRecord{rec}); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	if err := bar.Finish(); err != nil {
		return err
	}
	return sessions.UpdateStats(ctx, session.ID, len(result.Chunks), len(result.Records), result.DemoChunks)
}
