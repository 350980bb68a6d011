package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dialogueforge/dialogueforge/internal/cache"
	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/observability"
)

// maxTopicsPerRecord bounds the topic labels attached to each record.
const maxTopicsPerRecord = 3

// Generator produces dialogue records for chunks. Generation is total: any
// completion-service failure degrades to deterministic demo content, and a
// malformed response degrades to zero records. Generate never returns an
// error and never panics on empty input.
type Generator struct {
	client     CompletionClient
	cache      cache.Client
	cacheTTL   time.Duration
	confidence *ConfidenceCalculator
	logger     *observability.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithCache attaches a completion-response cache. Cache failures are treated
// as misses.
func WithCache(c cache.Client, ttl time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// NewGenerator creates a Generator. A nil client is allowed and forces the
// fallback path on every call, which keeps offline use working.
func NewGenerator(client CompletionClient, logger *observability.Logger, opts ...GeneratorOption) *Generator {
	if logger == nil {
		logger = observability.Nop()
	}
	g := &Generator{
		client:     client,
		confidence: NewConfidenceCalculator(),
		logger:     logger.WithComponent("dialogue"),
		cacheTTL:   15 * time.Minute,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces dialogue records for one chunk. chunkID seeds record IDs
// and provenance; options are normalized before use.
func (g *Generator) Generate(ctx context.Context, chunkID int, chunkText string, opts domain.GenerationOptions) domain.GenerationResult {
	opts = opts.Normalize()
	start := time.Now()

	if strings.TrimSpace(chunkText) == "" {
		// Callers should not pass empty chunks through, but an empty result
		// beats a crash if one slips in.
		return domain.GenerationResult{
			Records:    []domain.DialogueRecord{},
			Confidence: 0.1,
			Model:      opts.Model,
			Duration:   time.Since(start),
		}
	}

	content, isDemo := g.complete(ctx, chunkText, opts)

	pairs := parsePairs(content)
	if len(pairs) == 0 && !isDemo {
		g.logger.Warn().
			Int("chunk_id", chunkID).
			Str("style", string(opts.Style)).
			Msg("completion response yielded no parseable pairs")
	}
	if len(pairs) > opts.QuestionsPerChunk {
		pairs = pairs[:opts.QuestionsPerChunk]
	}

	score := g.confidence.Score(chunkText, content, opts.QuestionsPerChunk)
	if isDemo {
		// Demo content ranks below anything a live model produced.
		score = 0.1
	}

	records := make([]domain.DialogueRecord, 0, len(pairs))
	for i, pair := range pairs {
		records = append(records, domain.DialogueRecord{
			ID:            fmt.Sprintf("%d-%d", chunkID, i+1),
			Question:      pair.Question,
			Answer:        pair.Answer,
			SourceChunkID: chunkID,
			DialogueType:  opts.Style,
			Topics:        extractTopics(pair.Question+" "+pair.Answer, maxTopicsPerRecord),
			Confidence:    score,
			IsDemo:        isDemo,
		})
	}

	return domain.GenerationResult{
		Records:    records,
		Content:    content,
		WordCount:  len(strings.Fields(content)),
		Confidence: score,
		IsDemo:     isDemo,
		Model:      opts.Model,
		Duration:   time.Since(start),
	}
}

// complete fetches completion content, serving from cache when possible and
// degrading to deterministic fallback text on any service failure.
func (g *Generator) complete(ctx context.Context, chunkText string, opts domain.GenerationOptions) (content string, isDemo bool) {
	key := cache.CompletionKey(opts.Model, string(opts.Style), opts.QuestionsPerChunk, opts.Temperature, chunkText)

	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, key); err == nil {
			return string(cached), false
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			g.logger.Debug().Err(err).Msg("completion cache read failed, treating as miss")
		}
	}

	if g.client == nil {
		return renderFallback(chunkText, opts), true
	}

	raw, err := g.client.Complete(ctx, CompletionRequest{
		Prompt:      buildPrompt(chunkText, opts),
		Model:       opts.Model,
		Temperature: opts.Temperature,
	})
	if err != nil {
		g.logger.Warn().Err(err).
			Str("model", opts.Model).
			Msg("completion service unavailable, using fallback generation")
		return renderFallback(chunkText, opts), true
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, []byte(raw), g.cacheTTL); err != nil {
			g.logger.Debug().Err(err).Msg("completion cache write failed")
		}
	}

	return raw, false
}

// renderFallback serializes fallback pairs in the marker format so the same
// parsing path handles real and synthesized content.
func renderFallback(chunkText string, opts domain.GenerationOptions) string {
	var sb strings.Builder
	for _, pair := range fallbackPairs(chunkText, opts) {
		fmt.Fprintf(&sb, "Q: %s\nA: %s\n", pair.Question, pair.Answer)
	}
	return sb.String()
}
