package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs_JSONArray(t *testing.T) {
	content := `[{"question": "What is X?", "answer": "X is Y."}, {"question": "Why?", "answer": "Because Z."}]`

	pairs := parsePairs(content)
	require.Len(t, pairs, 2)
	assert.Equal(t, "What is X?", pairs[0].Question)
	assert.Equal(t, "X is Y.", pairs[0].Answer)
	assert.Equal(t, "Why?", pairs[1].Question)
	assert.Equal(t, "Because Z.", pairs[1].Answer)
}

func TestParsePairs_JSONWithCodeFence(t *testing.T) {
	content := "```json\n[{\"question\": \"Q1?\", \"answer\": \"A1.\"}]\n```"

	pairs := parsePairs(content)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Q1?", pairs[0].Question)
}

func TestParsePairs_JSONSurroundedByProse(t *testing.T) {
	content := `Here are your pairs:
[{"question": "Q1?", "answer": "A1."}]
Hope this helps!`

	pairs := parsePairs(content)
	require.Len(t, pairs, 1)
	assert.Equal(t, "A1.", pairs[0].Answer)
}

func TestParsePairs_JSONSkipsIncompleteEntries(t *testing.T) {
	content := `[{"question": "Q1?", "answer": "A1."}, {"question": "", "answer": "orphan"}, {"question": "no answer"}]`

	pairs := parsePairs(content)
	require.Len(t, pairs, 1)
}

func TestParsePairs_MarkerFormat(t *testing.T) {
	content := "Q: What is X?\nA: X is Y.\nQ: Why?\nA: Because Z."

	pairs := parsePairs(content)
	require.Len(t, pairs, 2)
	assert.Equal(t, "What is X?", pairs[0].Question)
	assert.Equal(t, "X is Y.", pairs[0].Answer)
	assert.Equal(t, "Why?", pairs[1].Question)
	assert.Equal(t, "Because Z.", pairs[1].Answer)
}

func TestParsePairs_NumberedMarkers(t *testing.T) {
	content := "Question 1: First?\nAnswer 1: Yes.\nQuestion 2: Second?\nAnswer 2: Also yes."

	pairs := parsePairs(content)
	require.Len(t, pairs, 2)
	assert.Equal(t, "First?", pairs[0].Question)
	assert.Equal(t, "Also yes.", pairs[1].Answer)
}

func TestParsePairs_AnswerContinuationLines(t *testing.T) {
	content := "Q: What happened?\nA: The first part happened.\nThen the second part followed."

	pairs := parsePairs(content)
	require.Len(t, pairs, 1)
	assert.Equal(t, "The first part happened. Then the second part followed.", pairs[0].Answer)
}

func TestParsePairs_UnansweredQuestionDropped(t *testing.T) {
	content := "Q: Orphan question?\nQ: Answered question?\nA: Yes."

	pairs := parsePairs(content)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Answered question?", pairs[0].Question)
}

func TestParsePairs_AnswerWithoutQuestionSkipped(t *testing.T) {
	content := "A: An answer from nowhere.\nQ: Real question?\nA: Real answer."

	pairs := parsePairs(content)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Real question?", pairs[0].Question)
}

func TestParsePairs_GarbageYieldsEmpty(t *testing.T) {
	assert.Empty(t, parsePairs("complete nonsense with no structure at all"))
	assert.Empty(t, parsePairs(""))
	assert.Empty(t, parsePairs("[not valid json"))
}

func TestParsePairs_OrdinaryWordsAreNotMarkers(t *testing.T) {
	// Words starting with q or a must not be mistaken for markers.
	content := "Quickly the plot advanced.\nAlmost nobody noticed."

	assert.Empty(t, parsePairs(content))
}

func TestParsePairs_JSONPreferredOverMarkers(t *testing.T) {
	content := `[{"question": "From JSON?", "answer": "Yes."}]
Q: From markers?
A: Should be ignored.`

	pairs := parsePairs(content)
	require.Len(t, pairs, 1)
	assert.Equal(t, "From JSON?", pairs[0].Question)
}
