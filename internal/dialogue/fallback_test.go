package dialogue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

func TestFallbackPairs_CountMatchesRequest(t *testing.T) {
	opts := domain.GenerationOptions{Style: domain.StyleQA, QuestionsPerChunk: 5}

	pairs := fallbackPairs("Some chunk text to summarize here.", opts)
	assert.Len(t, pairs, 5)
}

func TestFallbackPairs_Deterministic(t *testing.T) {
	opts := domain.GenerationOptions{Style: domain.StyleConversation, QuestionsPerChunk: 3}
	text := "Deterministic fallback content derives only from the chunk text."

	first := fallbackPairs(text, opts)
	second := fallbackPairs(text, opts)
	assert.Equal(t, first, second)
}

func TestFallbackPairs_MarkedAsDemo(t *testing.T) {
	opts := domain.GenerationOptions{Style: domain.StyleQA, QuestionsPerChunk: 2}

	for _, pair := range fallbackPairs("Chunk text.", opts) {
		assert.Contains(t, pair.Answer, "Demo content")
	}
}

func TestFallbackPairs_UsesLeadingWords(t *testing.T) {
	opts := domain.GenerationOptions{Style: domain.StyleQA, QuestionsPerChunk: 1}
	text := "Photosynthesis converts light energy into chemical energy in plants."

	pairs := fallbackPairs(text, opts)
	require.Len(t, pairs, 1)
	assert.Contains(t, pairs[0].Question, "Photosynthesis")
}

func TestFallbackPairs_EmptyChunk(t *testing.T) {
	opts := domain.GenerationOptions{Style: domain.StyleQA, QuestionsPerChunk: 2}

	pairs := fallbackPairs("   ", opts)
	require.Len(t, pairs, 2)
	for _, pair := range pairs {
		assert.NotEmpty(t, pair.Question)
		assert.NotEmpty(t, pair.Answer)
	}
}

func TestFallbackPairs_StyleSpecificTemplates(t *testing.T) {
	text := "Style-specific placeholder content."
	qa := fallbackPairs(text, domain.GenerationOptions{Style: domain.StyleQA, QuestionsPerChunk: 1})
	interview := fallbackPairs(text, domain.GenerationOptions{Style: domain.StyleInterview, QuestionsPerChunk: 1})

	require.Len(t, qa, 1)
	require.Len(t, interview, 1)
	assert.NotEqual(t, qa[0].Question, interview[0].Question)
}

func TestRenderFallback_ParsesBack(t *testing.T) {
	opts := domain.GenerationOptions{Style: domain.StyleQA, QuestionsPerChunk: 3}
	content := renderFallback("Round-trip chunk text for the fallback path.", opts)

	pairs := parsePairs(content)
	assert.Len(t, pairs, 3)
}

func TestLeadingWords(t *testing.T) {
	assert.Equal(t, "one two three", leadingWords("one two three four five", 3))
	assert.Equal(t, "one two", leadingWords("one two", 5))
	assert.Equal(t, "", leadingWords("   ", 3))
	assert.False(t, strings.Contains(leadingWords("a b c d", 2), "c"))
}
