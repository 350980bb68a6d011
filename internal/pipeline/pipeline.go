// Package pipeline orchestrates the document-to-dialogue conversion:
// extraction, chunking, per-chunk generation, and record collection.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dialogueforge/dialogueforge/internal/chunk"
	"github.com/dialogueforge/dialogueforge/internal/dialogue"
	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/extract"
	"github.com/dialogueforge/dialogueforge/internal/observability"
)

// Pipeline wires the conversion stages together. Stages share no mutable
// state; everything flows through explicit values.
type Pipeline struct {
	extractor *extract.Extractor
	chunker   *chunk.Chunker
	generator *dialogue.Generator
	logger    *observability.Logger
}

// New creates a Pipeline.
func New(extractor *extract.Extractor, chunker *chunk.Chunker, generator *dialogue.Generator, logger *observability.Logger) *Pipeline {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		generator: generator,
		logger:    logger.WithComponent("pipeline"),
	}
}

// Request describes a full conversion run.
type Request struct {
	FileBytes []byte
	Format    string // txt, pdf, docx, epub, or auto

	MaxChars int // chunk size bound; <=0 uses the chunker default

	// SelectedChunkIDs limits generation to these chunk IDs. Empty selects
	// every chunk.
	SelectedChunkIDs []int

	Options domain.GenerationOptions

	// Workers bounds concurrent generation calls. Values <=1 run
	// sequentially. Parallel runs preserve chunk order in the output.
	Workers int

	// OnProgress, when set, is called after each chunk finishes generation
	// with the completed and total counts. Calls are serialized.
	OnProgress func(completed, total int)
}

// Result is the outcome of a conversion run.
type Result struct {
	SessionID string
	Format    domain.DocumentFormat
	Quality   *extract.Quality

	Chunks  []domain.Chunk
	Records []domain.DialogueRecord

	// PerChunk holds each processed chunk's generation result in chunk order.
	PerChunk []domain.GenerationResult

	DemoChunks  int
	EmptyChunks int
	StartedAt   time.Time
	Duration    time.Duration
}

// Run executes the full pipeline. Extraction failures abort the run with a
// single error; per-chunk generation failures degrade to fallback or empty
// results and never abort the batch. Cancellation is checked before each
// chunk's external call.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	sessionID := uuid.NewString()
	logger := p.logger.WithSession(sessionID)

	extracted, err := p.extractor.Extract(ctx, req.FileBytes, req.Format)
	if err != nil {
		return nil, err
	}

	chunks := p.chunker.Split(extracted.Text, req.MaxChars)
	logger.Info().
		Str("format", string(extracted.Format)).
		Int("chunks", len(chunks)).
		Msg("document extracted and chunked")

	selected := selectChunks(chunks, req.SelectedChunkIDs)

	perChunk := p.generateAll(ctx, selected, req.Options, req.Workers, req.OnProgress)

	result := &Result{
		SessionID: sessionID,
		Format:    extracted.Format,
		Quality:   extracted.Quality,
		Chunks:    chunks,
		PerChunk:  perChunk,
		StartedAt: start,
	}
	for _, gr := range perChunk {
		result.Records = append(result.Records, gr.Records...)
		if gr.IsDemo {
			result.DemoChunks++
		}
		if len(gr.Records) == 0 {
			result.EmptyChunks++
		}
	}
	result.Duration = time.Since(start)

	logger.Info().
		Int("records", len(result.Records)).
		Int("demo_chunks", result.DemoChunks).
		Int("empty_chunks", result.EmptyChunks).
		Dur("duration", result.Duration).
		Msg("conversion run complete")

	return result, nil
}

// generateAll runs generation for every selected chunk, optionally on a
// bounded worker pool. Results land in an indexed slice so output order
// always matches input chunk order.
func (p *Pipeline) generateAll(ctx context.Context, chunks []domain.Chunk, opts domain.GenerationOptions, workers int, onProgress func(completed, total int)) []domain.GenerationResult {
	results := make([]domain.GenerationResult, len(chunks))
	if len(chunks) == 0 {
		return results
	}

	var progressMu sync.Mutex
	completed := 0
	reportProgress := func() {
		if onProgress == nil {
			return
		}
		// The mutex is held across the callback so calls are serialized and
		// counts arrive in order.
		progressMu.Lock()
		defer progressMu.Unlock()
		completed++
		onProgress(completed, len(chunks))
	}

	if workers <= 1 {
		for i, ch := range chunks {
			if ctx.Err() != nil {
				break
			}
			results[i] = p.generator.Generate(ctx, ch.ID, ch.Text, opts)
			reportProgress()
		}
		return results
	}

	type workItem struct {
		index int
		chunk domain.Chunk
	}

	workChan := make(chan workItem, len(chunks))
	for i, ch := range chunks {
		workChan <- workItem{index: i, chunk: ch}
	}
	close(workChan)

	if workers > len(chunks) {
		workers = len(chunks)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workChan {
				// Best-effort cancellation between chunks; the external call
				// is the one blocking boundary.
				if ctx.Err() != nil {
					return
				}
				results[item.index] = p.generator.Generate(ctx, item.chunk.ID, item.chunk.Text, opts)
				reportProgress()
			}
		}()
	}
	wg.Wait()

	return results
}

// selectChunks filters chunks down to the requested IDs, preserving document
// order. An empty selection means all chunks.
func selectChunks(chunks []domain.Chunk, ids []int) []domain.Chunk {
	if len(ids) == 0 {
		return chunks
	}
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []domain.Chunk
	for _, ch := range chunks {
		if wanted[ch.ID] {
			out = append(out, ch)
		}
	}
	return out
}
