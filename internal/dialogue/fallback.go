package dialogue

import (
	"fmt"
	"strings"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// fallbackLeadWords is how many leading words of the chunk seed the
// synthesized placeholder content.
const fallbackLeadWords = 12

// fallbackPairs synthesizes deterministic placeholder pairs from the chunk's
// leading words. Used when the completion service is unavailable so the
// batch still produces visible, clearly-tagged output.
func fallbackPairs(chunkText string, opts domain.GenerationOptions) []qaPair {
	lead := leadingWords(chunkText, fallbackLeadWords)
	if lead == "" {
		lead = "this passage"
	}

	templates := fallbackTemplates(opts.Style)
	pairs := make([]qaPair, 0, opts.QuestionsPerChunk)
	for i := 0; i < opts.QuestionsPerChunk; i++ {
		t := templates[i%len(templates)]
		pairs = append(pairs, qaPair{
			Question: fmt.Sprintf(t.question, lead),
			Answer:   fmt.Sprintf(t.answer, lead),
		})
	}
	return pairs
}

type fallbackTemplate struct {
	question string
	answer   string
}

func fallbackTemplates(style domain.DialogueStyle) []fallbackTemplate {
	switch style {
	case domain.StyleConversation:
		return []fallbackTemplate{
			{"I was reading about %q - what's it about?", "It discusses %s and related points from the source passage. (Demo content: the completion service was unavailable.)"},
			{"What stood out to you in %q?", "The passage's treatment of %s is the central thread. (Demo content: the completion service was unavailable.)"},
		}
	case domain.StyleInterview:
		return []fallbackTemplate{
			{"Could you walk us through %q?", "The passage centers on %s; a live model response would elaborate here. (Demo content: the completion service was unavailable.)"},
			{"What should readers take away from %q?", "The key material concerns %s. (Demo content: the completion service was unavailable.)"},
		}
	default: // qa
		return []fallbackTemplate{
			{"What is the main topic of the passage beginning %q?", "The passage discusses %s. (Demo content: the completion service was unavailable.)"},
			{"What details does the passage beginning %q provide?", "It elaborates on %s. (Demo content: the completion service was unavailable.)"},
		}
	}
}

// leadingWords returns the first n whitespace-delimited words of text.
func leadingWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
