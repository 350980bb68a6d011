package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyInput(t *testing.T) {
	c := New()

	assert.Empty(t, c.Split("", 100))
	assert.Empty(t, c.Split("   \n\t  ", 100))
}

func TestSplit_SingleShortText(t *testing.T) {
	c := New()

	chunks := c.Split("One short sentence.", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].ID)
	assert.Equal(t, "One short sentence.", chunks[0].Text)
	assert.Equal(t, 3, chunks[0].WordCount)
	assert.Equal(t, 19, chunks[0].CharCount)
}

func TestSplit_RespectsSizeBound(t *testing.T) {
	c := New()
	text := "The first sentence is here. The second sentence follows it. A third sentence closes the paragraph."

	chunks := c.Split(text, 60)
	require.NotEmpty(t, chunks)
	// Three sentences, none fitting two-to-a-chunk at this bound.
	assert.GreaterOrEqual(t, len(chunks), 2)
	assert.LessOrEqual(t, len(chunks), 3)
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.CharCount, 60, "chunk %d exceeds bound", ch.ID)
	}
}

func TestSplit_SequentialIDs(t *testing.T) {
	c := New()
	text := strings.Repeat("This sentence pads the text out to force multiple chunks. ", 20)

	chunks := c.Split(text, 120)
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, i+1, ch.ID)
	}
}

func TestSplit_OversizedSentenceBecomesOwnChunk(t *testing.T) {
	c := New()
	long := "This single sentence runs far beyond the configured chunk size bound and cannot be split because splitting happens only at sentence boundaries."

	chunks := c.Split(long, 40)
	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0].Text)
	assert.Greater(t, chunks[0].CharCount, 40)
}

func TestSplit_CoversAllInput(t *testing.T) {
	c := New()
	text := "Alpha begins the text. Beta continues it! Gamma asks a question? Delta ends everything."

	chunks := c.Split(text, 50)
	var joined strings.Builder
	for _, ch := range chunks {
		joined.WriteString(ch.Text)
		joined.WriteByte(' ')
	}
	for _, word := range []string{"Alpha", "Beta", "Gamma", "Delta"} {
		assert.Contains(t, joined.String(), word)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c := New()
	text := strings.Repeat("Determinism matters for caching and reproducible datasets. Chunk boundaries must never drift between runs. ", 10)

	first := c.Split(text, 200)
	second := c.Split(text, 200)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

func TestSplit_DefaultMaxChars(t *testing.T) {
	c := New()
	text := "A sentence. Another sentence."

	// Non-positive bound falls back to the default instead of panicking.
	chunks := c.Split(text, 0)
	require.Len(t, chunks, 1)
	chunks = c.Split(text, -5)
	require.Len(t, chunks, 1)
}

func TestSplitSentences_Basic(t *testing.T) {
	sentences := SplitSentences("First sentence. Second sentence! Third sentence?")
	require.Len(t, sentences, 3)
	assert.Equal(t, "First sentence.", sentences[0])
	assert.Equal(t, "Second sentence!", sentences[1])
	assert.Equal(t, "Third sentence?", sentences[2])
}

func TestSplitSentences_Abbreviations(t *testing.T) {
	sentences := SplitSentences("Dr. Smith arrived at noon. He spoke with Mr. Jones.")
	require.Len(t, sentences, 2)
	assert.Equal(t, "Dr. Smith arrived at noon.", sentences[0])
	assert.Equal(t, "He spoke with Mr. Jones.", sentences[1])
}

func TestSplitSentences_Decimals(t *testing.T) {
	sentences := SplitSentences("The engine displaces 2.5 liters. It produces 300 horsepower.")
	require.Len(t, sentences, 2)
	assert.Equal(t, "The engine displaces 2.5 liters.", sentences[0])
}

func TestSplitSentences_Initials(t *testing.T) {
	sentences := SplitSentences("J. R. Tolkien wrote extensively. His letters survive.")
	require.Len(t, sentences, 2)
	assert.Equal(t, "J. R. Tolkien wrote extensively.", sentences[0])
}

func TestSplitSentences_ClosingQuotes(t *testing.T) {
	sentences := SplitSentences(`He said "stop." Then he left.`)
	require.Len(t, sentences, 2)
	assert.Equal(t, `He said "stop."`, sentences[0])
}

func TestSplitSentences_PunctuationRuns(t *testing.T) {
	sentences := SplitSentences("Really?! That seems wrong... Let me check.")
	require.Len(t, sentences, 3)
	assert.Equal(t, "Really?!", sentences[0])
	assert.Equal(t, "That seems wrong...", sentences[1])
}

func TestSplitSentences_CollapsesWhitespace(t *testing.T) {
	sentences := SplitSentences("Spread   across\n\nlines. Second one.")
	require.Len(t, sentences, 2)
	assert.Equal(t, "Spread across lines.", sentences[0])
}

func TestSplitSentences_NoTerminalPunctuation(t *testing.T) {
	sentences := SplitSentences("a fragment with no terminal punctuation")
	require.Len(t, sentences, 1)
	assert.Equal(t, "a fragment with no terminal punctuation", sentences[0])
}
