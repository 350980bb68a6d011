package pipeline

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialogueforge/dialogueforge/internal/chunk"
	"github.com/dialogueforge/dialogueforge/internal/dialogue"
	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/extract"
)

// stubClient is a CompletionClient with controllable latency and failures.
type stubClient struct {
	mu    sync.Mutex
	calls int

	failOn string // fail when the prompt contains this substring
	delay  func(call int) time.Duration
}

func (s *stubClient) Complete(ctx context.Context, req dialogue.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if s.delay != nil {
		time.Sleep(s.delay(call))
	}
	if s.failOn != "" && strings.Contains(req.Prompt, s.failOn) {
		return "", context.DeadlineExceeded
	}
	return "Q: What does this section cover?\nA: It covers the described material.\n", nil
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestPipeline(client dialogue.CompletionClient) *Pipeline {
	return New(
		extract.New(nil),
		chunk.New(),
		dialogue.NewGenerator(client, nil),
		nil,
	)
}

// sixSections forces one chunk per sentence under a tight size bound.
const sixSections = "Alpha section covers intake. Bravo section covers parsing. " +
	"Charlie section covers storage. Delta section covers retries. " +
	"Echo section covers export. Foxtrot section covers cleanup."

func TestRun_EndToEnd(t *testing.T) {
	client := &stubClient{}
	p := newTestPipeline(client)

	result, err := p.Run(context.Background(), Request{
		FileBytes: []byte(sixSections),
		Format:    "txt",
		MaxChars:  40,
		Options:   domain.GenerationOptions{QuestionsPerChunk: 1},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, domain.FormatTXT, result.Format)
	assert.Len(t, result.Chunks, 6)
	assert.Len(t, result.PerChunk, 6)
	assert.Len(t, result.Records, 6)
	assert.Equal(t, 0, result.DemoChunks)
	assert.Equal(t, 0, result.EmptyChunks)
	assert.Equal(t, 6, client.callCount())
}

func TestRun_ExtractionFailureAborts(t *testing.T) {
	client := &stubClient{}
	p := newTestPipeline(client)

	result, err := p.Run(context.Background(), Request{
		FileBytes: []byte("content"),
		Format:    "rtf",
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, domain.IsKind(err, domain.KindUnsupportedFormat))
	assert.Equal(t, 0, client.callCount(), "no generation after extraction failure")
}

func TestRun_ParallelPreservesChunkOrder(t *testing.T) {
	// Stagger latencies so completion order differs from submission order.
	client := &stubClient{
		delay: func(call int) time.Duration {
			return time.Duration((7-call)%5) * 2 * time.Millisecond
		},
	}
	p := newTestPipeline(client)

	result, err := p.Run(context.Background(), Request{
		FileBytes: []byte(sixSections),
		Format:    "txt",
		MaxChars:  40,
		Workers:   4,
		Options:   domain.GenerationOptions{QuestionsPerChunk: 1},
	})
	require.NoError(t, err)
	require.Len(t, result.PerChunk, 6)

	for i, gr := range result.PerChunk {
		require.Len(t, gr.Records, 1)
		assert.Equal(t, i+1, gr.Records[0].SourceChunkID)
	}
	prev := 0
	for _, rec := range result.Records {
		assert.Greater(t, rec.SourceChunkID, prev)
		prev = rec.SourceChunkID
	}
}

func TestRun_PerChunkFailureDegradesToDemo(t *testing.T) {
	client := &stubClient{failOn: "Charlie"}
	p := newTestPipeline(client)

	result, err := p.Run(context.Background(), Request{
		FileBytes: []byte(sixSections),
		Format:    "txt",
		MaxChars:  40,
		Options:   domain.GenerationOptions{QuestionsPerChunk: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.DemoChunks)
	for i, gr := range result.PerChunk {
		if i == 2 {
			assert.True(t, gr.IsDemo)
			assert.NotEmpty(t, gr.Records, "failed chunk still yields fallback records")
			continue
		}
		assert.False(t, gr.IsDemo)
	}
}

func TestRun_CancelledContextSkipsGeneration(t *testing.T) {
	client := &stubClient{}
	p := newTestPipeline(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx, Request{
		FileBytes: []byte(sixSections),
		Format:    "txt",
		MaxChars:  40,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, client.callCount())
	assert.Empty(t, result.Records)
	assert.Equal(t, len(result.PerChunk), result.EmptyChunks)
}

func TestRun_ChunkSelection(t *testing.T) {
	client := &stubClient{}
	p := newTestPipeline(client)

	result, err := p.Run(context.Background(), Request{
		FileBytes:        []byte(sixSections),
		Format:           "txt",
		MaxChars:         40,
		SelectedChunkIDs: []int{5, 2},
		Options:          domain.GenerationOptions{QuestionsPerChunk: 1},
	})
	require.NoError(t, err)

	assert.Len(t, result.Chunks, 6, "selection does not hide unselected chunks")
	require.Len(t, result.PerChunk, 2)
	assert.Equal(t, 2, result.PerChunk[0].Records[0].SourceChunkID)
	assert.Equal(t, 5, result.PerChunk[1].Records[0].SourceChunkID)
	assert.Equal(t, 2, client.callCount())
}

func TestRun_SelectionWithUnknownIDs(t *testing.T) {
	client := &stubClient{}
	p := newTestPipeline(client)

	result, err := p.Run(context.Background(), Request{
		FileBytes:        []byte(sixSections),
		Format:           "txt",
		MaxChars:         40,
		SelectedChunkIDs: []int{99},
	})
	require.NoError(t, err)
	assert.Empty(t, result.PerChunk)
	assert.Equal(t, 0, client.callCount())
}

func TestRun_ProgressReporting(t *testing.T) {
	client := &stubClient{}
	p := newTestPipeline(client)

	var mu sync.Mutex
	var completions []int
	total := 0
	var inFlight, overlapped int32

	_, err := p.Run(context.Background(), Request{
		FileBytes: []byte(sixSections),
		Format:    "txt",
		MaxChars:  40,
		Workers:   4,
		OnProgress: func(done, n int) {
			if atomic.AddInt32(&inFlight, 1) > 1 {
				atomic.StoreInt32(&overlapped, 1)
			}
			// Widen the window so a concurrent second call would be seen.
			time.Sleep(time.Millisecond)
			mu.Lock()
			completions = append(completions, done)
			total = n
			mu.Unlock()
			atomic.AddInt32(&inFlight, -1)
		},
	})
	require.NoError(t, err)

	assert.Zero(t, atomic.LoadInt32(&overlapped), "progress callbacks ran concurrently")
	require.Len(t, completions, 6)
	assert.Equal(t, 6, total)
	// Serialized delivery means counts arrive strictly in order.
	for i, done := range completions {
		assert.Equal(t, i+1, done)
	}
}
