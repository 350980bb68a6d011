// Package chunk splits extracted text into bounded, sentence-aligned segments.
package chunk

import (
	"strings"
	"unicode"

	"github.com/pkoukk/tiktoken-go"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// DefaultMaxChars is used when the caller passes a non-positive size.
const DefaultMaxChars = 2000

// Chunker accumulates sentences into chunks of at most maxChars characters.
// Splitting is deterministic: identical input always yields identical
// boundaries.
type Chunker struct {
	encoder *tiktoken.Tiktoken
}

// New creates a Chunker. Token counting uses the cl100k_base encoding; if the
// encoding cannot be loaded the chunker still works with TokenCount left zero.
func New() *Chunker {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &Chunker{encoder: enc}
}

// Split segments text into sentence-aligned chunks of at most maxChars
// characters. A single sentence longer than maxChars becomes its own
// oversized chunk; the final partial chunk is always emitted. Empty or
// whitespace-only input yields an empty slice.
func (c *Chunker) Split(text string, maxChars int) []domain.Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var current strings.Builder
	currentRunes := 0
	nextID := 1

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s == "" {
			return
		}
		ch := domain.NewChunk(nextID, s)
		ch.TokenCount = c.countTokens(s)
		chunks = append(chunks, ch)
		nextID++
		current.Reset()
		currentRunes = 0
	}

	for _, sentence := range sentences {
		candidate := len([]rune(sentence))
		// +1 for the joining space.
		if currentRunes > 0 && currentRunes+1+candidate > maxChars {
			flush()
		}
		if currentRunes > 0 {
			current.WriteByte(' ')
			currentRunes++
		}
		current.WriteString(sentence)
		currentRunes += candidate
	}
	flush()

	return chunks
}

func (c *Chunker) countTokens(text string) int {
	if c.encoder == nil {
		return 0
	}
	return len(c.encoder.Encode(text, nil, nil))
}

// commonAbbreviations holds terminal-dot tokens that do not end a sentence.
var commonAbbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true, "cf": true, "al": true, "fig": true,
	"no": true, "vol": true, "approx": true,
}

// SplitSentences breaks text into sentences on terminal punctuation
// (., !, ?, …), guarding against decimals and common abbreviations.
// Whitespace inside a sentence is collapsed to single spaces.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(collapseSpaces(current.String()))
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' && r != '…' {
			continue
		}

		// Swallow closing punctuation runs like "?!" or "...".
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		// Trailing quotes or brackets belong to the sentence.
		for i+1 < len(runes) && isClosing(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}

		if r == '.' {
			// Decimal point: digit on both sides.
			if i+1 < len(runes) && unicode.IsDigit(runes[i+1]) && endsWithDigit(current.String()) {
				continue
			}
			if isAbbreviation(current.String()) {
				continue
			}
		}

		// A sentence ends only when followed by whitespace or end of input.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		flush()
	}
	flush()

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isClosing(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}

func endsWithDigit(s string) bool {
	runes := []rune(s)
	// Last rune is the dot itself; look before it.
	if len(runes) < 2 {
		return false
	}
	return unicode.IsDigit(runes[len(runes)-2])
}

// isAbbreviation checks whether the sentence-so-far ends in a known
// abbreviation or a single initial such as "J.".
func isAbbreviation(s string) bool {
	s = strings.TrimRight(s, ".")
	idx := strings.LastIndexFunc(s, unicode.IsSpace)
	word := strings.ToLower(s[idx+1:])
	if word == "" {
		return false
	}
	if len([]rune(word)) == 1 {
		return true
	}
	return commonAbbreviations[word]
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
