package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTopics_FrequencyOrdering(t *testing.T) {
	text := "Engines need fuel. Engines need maintenance. Maintenance schedules vary."

	topics := extractTopics(text, 3)
	require.NotEmpty(t, topics)
	// "engines" and "maintenance" both appear twice; "engines" appeared first.
	assert.Equal(t, "engines", topics[0])
	assert.Equal(t, "maintenance", topics[1])
}

func TestExtractTopics_ExcludesStopwordsAndShortWords(t *testing.T) {
	topics := extractTopics("the cat and the dog ran to the big red barn", 5)

	assert.NotContains(t, topics, "the")
	assert.NotContains(t, topics, "and")
	assert.NotContains(t, topics, "cat") // under four runes
	assert.Contains(t, topics, "barn")
}

func TestExtractTopics_RespectsLimit(t *testing.T) {
	text := "alpha bravo charlie delta echoes foxtrot gamma hotel india juliet"

	topics := extractTopics(text, 3)
	assert.Len(t, topics, 3)
}

func TestExtractTopics_StripsPunctuation(t *testing.T) {
	topics := extractTopics("What about photosynthesis? Photosynthesis, obviously!", 2)

	require.NotEmpty(t, topics)
	assert.Equal(t, "photosynthesis", topics[0])
}

func TestExtractTopics_Empty(t *testing.T) {
	assert.Empty(t, extractTopics("", 3))
	assert.Empty(t, extractTopics("a an of to", 3))
	assert.Empty(t, extractTopics("anything at all", 0))
}
