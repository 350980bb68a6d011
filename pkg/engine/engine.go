// Package engine provides the public Go SDK for DialogueForge. It wires the
// extraction, chunking, generation, and export stages from a single
// configuration so embedders do not touch the internal packages directly.
package engine

import (
	"context"
	"time"

	"github.com/dialogueforge/dialogueforge/internal/cache"
	"github.com/dialogueforge/dialogueforge/internal/chunk"
	"github.com/dialogueforge/dialogueforge/internal/config"
	"github.com/dialogueforge/dialogueforge/internal/dialogue"
	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/export"
	"github.com/dialogueforge/dialogueforge/internal/extract"
	"github.com/dialogueforge/dialogueforge/internal/observability"
	"github.com/dialogueforge/dialogueforge/internal/pipeline"
)

// Engine is the embeddable conversion engine.
type Engine struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	cache    cache.Client
	logger   *observability.Logger
}

// New builds an Engine from configuration. A missing API key is not an
// error; generation then runs in demo mode with deterministic fallback
// content.
func New(cfg *config.Config, logger *observability.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = observability.Nop()
	}

	var completionClient dialogue.CompletionClient
	if cfg.Generation.APIKey != "" {
		completionClient = dialogue.NewOpenAIClient(dialogue.ClientConfig{
			APIKey:     cfg.Generation.APIKey,
			BaseURL:    cfg.Generation.BaseURL,
			Timeout:    cfg.Generation.Timeout,
			MaxRetries: cfg.Generation.MaxRetries,
		})
	}

	cacheClient, err := newCache(cfg)
	if err != nil {
		return nil, err
	}

	generator := dialogue.NewGenerator(completionClient, logger,
		dialogue.WithCache(cacheClient, cfg.Cache.TTL))

	p := pipeline.New(
		extract.New(logger),
		chunk.New(),
		generator,
		logger,
	)

	return &Engine{cfg: cfg, pipeline: p, cache: cacheClient, logger: logger}, nil
}

func newCache(cfg *config.Config) (cache.Client, error) {
	switch cfg.Cache.Driver {
	case "redis":
		return cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
	default:
		return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
	}
}

// ConvertRequest describes a document conversion.
type ConvertRequest struct {
	FileBytes         []byte
	Format            string
	MaxChars          int
	SelectedChunkIDs  []int
	Style             string
	QuestionsPerChunk int
	Model             string
	// Temperature overrides the configured sampling temperature when set.
	// A pointer distinguishes an explicit 0 from "use the default".
	Temperature *float64
	Workers     int
}

// ConvertResult is the outcome of a conversion.
type ConvertResult struct {
	SessionID  string
	Format     domain.DocumentFormat
	Chunks     []domain.Chunk
	Records    []domain.DialogueRecord
	DemoChunks int
	Duration   time.Duration
}

// Convert runs the full document-to-dialogue pipeline.
func (e *Engine) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	workers := req.Workers
	if workers <= 0 {
		workers = e.cfg.Pipeline.Workers
	}
	opts := e.buildOptions(req)
	maxChars := req.MaxChars
	if maxChars <= 0 {
		maxChars = e.cfg.Chunking.MaxChars
	}

	res, err := e.pipeline.Run(ctx, pipeline.Request{
		FileBytes:        req.FileBytes,
		Format:           req.Format,
		MaxChars:         maxChars,
		SelectedChunkIDs: req.SelectedChunkIDs,
		Options:          opts,
		Workers:          workers,
	})
	if err != nil {
		return nil, err
	}
	return &ConvertResult{
		SessionID:  res.SessionID,
		Format:     res.Format,
		Chunks:     res.Chunks,
		Records:    res.Records,
		DemoChunks: res.DemoChunks,
		Duration:   res.Duration,
	}, nil
}

// buildOptions fills request options from configuration defaults.
func (e *Engine) buildOptions(req ConvertRequest) domain.GenerationOptions {
	opts := domain.GenerationOptions{
		Style:             domain.DialogueStyle(req.Style),
		QuestionsPerChunk: req.QuestionsPerChunk,
		Model:             req.Model,
	}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	} else {
		opts.Temperature = e.cfg.Generation.Temperature
	}
	if opts.Model == "" {
		opts.Model = e.cfg.Generation.Model
	}
	if opts.QuestionsPerChunk == 0 {
		opts.QuestionsPerChunk = e.cfg.Generation.QuestionsPerChunk
	}
	return opts
}

// ExtractText extracts plain text from a document without generating
// dialogue.
func (e *Engine) ExtractText(ctx context.Context, fileBytes []byte, format string) (string, domain.DocumentFormat, error) {
	res, err := extract.New(e.logger).Extract(ctx, fileBytes, format)
	if err != nil {
		return "", "", err
	}
	return res.Text, res.Format, nil
}

// ChunkText splits text into bounded, sentence-aligned chunks.
func (e *Engine) ChunkText(text string, maxChars int) []domain.Chunk {
	if maxChars <= 0 {
		maxChars = e.cfg.Chunking.MaxChars
	}
	return chunk.New().Split(text, maxChars)
}

// Export serializes records into the requested format.
func (e *Engine) Export(records []domain.DialogueRecord, format string) ([]byte, error) {
	return export.Export(records, domain.ExportFormat(format))
}

// Close releases held resources such as cache connections.
func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}
