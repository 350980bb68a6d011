package dialogue

import (
	"encoding/json"
	"regexp"
	"strings"
)

// qaPair is the wire shape expected from the completion service.
type qaPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// parsePairs extracts question/answer pairs from raw completion content.
// Structured JSON extraction is attempted first; on failure it degrades to
// line-oriented marker matching. Both failing yields an empty slice, never
// an error: malformed output means fewer records, not a crash.
func parsePairs(content string) []qaPair {
	if pairs := parseJSONPairs(content); len(pairs) > 0 {
		return pairs
	}
	return parseMarkerPairs(content)
}

// parseJSONPairs pulls a JSON array of {question, answer} out of the
// content, tolerating code fences and surrounding prose.
func parseJSONPairs(content string) []qaPair {
	candidate := strings.TrimSpace(content)

	// Strip a ```json ... ``` fence if present.
	if strings.HasPrefix(candidate, "```") {
		candidate = strings.TrimPrefix(candidate, "```json")
		candidate = strings.TrimPrefix(candidate, "```")
		if idx := strings.LastIndex(candidate, "```"); idx >= 0 {
			candidate = candidate[:idx]
		}
		candidate = strings.TrimSpace(candidate)
	}

	// Try the content as-is first, then the outermost bracketed span for
	// arrays surrounded by prose.
	candidates := []string{candidate}
	start := strings.Index(candidate, "[")
	end := strings.LastIndex(candidate, "]")
	if start >= 0 && end > start {
		candidates = append(candidates, candidate[start:end+1])
	}

	for _, c := range candidates {
		var raw []qaPair
		if err := json.Unmarshal([]byte(c), &raw); err != nil {
			continue
		}
		var pairs []qaPair
		for _, p := range raw {
			q := strings.TrimSpace(p.Question)
			a := strings.TrimSpace(p.Answer)
			if q != "" && a != "" {
				pairs = append(pairs, qaPair{Question: q, Answer: a})
			}
		}
		return pairs
	}
	return nil
}

var questionMarkerRe = regexp.MustCompile(`(?i)^(?:question|q)\s*\d*\s*[:.)]\s*(.+)$`)
var answerMarkerRe = regexp.MustCompile(`(?i)^(?:answer|a)\s*\d*\s*[:.)]\s*(.+)$`)

// parseMarkerPairs assembles pairs from Q:/A:-style lines. A question with
// no matching answer is dropped; answers continue across unmarked lines.
func parseMarkerPairs(content string) []qaPair {
	var pairs []qaPair
	var question string
	var answer strings.Builder
	inAnswer := false

	commit := func() {
		q := strings.TrimSpace(question)
		a := strings.TrimSpace(answer.String())
		if q != "" && a != "" {
			pairs = append(pairs, qaPair{Question: q, Answer: a})
		}
		question = ""
		answer.Reset()
		inAnswer = false
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := questionMarkerRe.FindStringSubmatch(line); m != nil {
			commit()
			question = m[1]
			continue
		}
		if m := answerMarkerRe.FindStringSubmatch(line); m != nil {
			if question == "" {
				continue // answer with no question; skip
			}
			if inAnswer {
				answer.WriteByte(' ')
			}
			answer.WriteString(m[1])
			inAnswer = true
			continue
		}
		// Unmarked continuation line extends the current answer.
		if inAnswer {
			answer.WriteByte(' ')
			answer.WriteString(line)
		}
	}
	commit()

	return pairs
}
