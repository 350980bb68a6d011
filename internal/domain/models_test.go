package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStyle(t *testing.T) {
	assert.True(t, ValidStyle(StyleQA))
	assert.True(t, ValidStyle(StyleConversation))
	assert.True(t, ValidStyle(StyleInterview))
	assert.False(t, ValidStyle(""))
	assert.False(t, ValidStyle("debate"))
}

func TestNewChunk_DerivedCounts(t *testing.T) {
	ch := NewChunk(3, "Grüße from the engine room.")
	assert.Equal(t, 3, ch.ID)
	assert.Equal(t, 5, ch.WordCount)
	assert.Equal(t, 27, ch.CharCount, "char count is runes, not bytes")
	assert.Equal(t, 0, ch.TokenCount)
}

func TestGenerationOptions_Normalize(t *testing.T) {
	got := GenerationOptions{}.Normalize()
	assert.Equal(t, StyleQA, got.Style)
	assert.Equal(t, 3, got.QuestionsPerChunk)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)

	got = GenerationOptions{
		Style:             StyleInterview,
		QuestionsPerChunk: MaxQuestionsPerChunk + 5,
		Temperature:       3.0,
	}.Normalize()
	assert.Equal(t, StyleInterview, got.Style)
	assert.Equal(t, MaxQuestionsPerChunk, got.QuestionsPerChunk)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)

	got = GenerationOptions{Style: "debate", QuestionsPerChunk: 5, Temperature: 0}.Normalize()
	assert.Equal(t, StyleQA, got.Style)
	assert.Equal(t, 5, got.QuestionsPerChunk)
	assert.InDelta(t, 0.0, got.Temperature, 1e-9, "zero temperature is valid and preserved")
}
