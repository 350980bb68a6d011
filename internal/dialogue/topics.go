package dialogue

import (
	"sort"
	"strings"
	"unicode"
)

// topicStopwords are common words excluded from topic extraction.
var topicStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "for": true, "with": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"it": true, "its": true, "this": true, "that": true, "these": true, "those": true,
	"as": true, "at": true, "by": true, "from": true, "has": true, "have": true,
	"had": true, "not": true, "no": true, "can": true, "will": true, "would": true,
	"what": true, "which": true, "who": true, "how": true, "why": true, "when": true,
	"their": true, "there": true, "they": true, "them": true, "then": true,
	"more": true, "most": true, "some": true, "such": true, "also": true,
	"into": true, "about": true, "over": true, "than": true, "other": true,
}

// extractTopics returns up to maxTopics frequent content words from text,
// ordered by frequency then first appearance. Purely lexical; an empty
// result is fine.
func extractTopics(text string, maxTopics int) []string {
	if maxTopics <= 0 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	pos := 0

	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(word)) < 4 || topicStopwords[word] {
			continue
		}
		if _, ok := counts[word]; !ok {
			firstSeen[word] = pos
		}
		counts[word]++
		pos++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	if len(words) > maxTopics {
		words = words[:maxTopics]
	}
	return words
}
