package dialogue

import (
	"fmt"
	"strings"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// buildPrompt constructs the style-specific instruction prompt for a chunk.
// All styles request the same JSON shape so response parsing is uniform.
func buildPrompt(chunkText string, opts domain.GenerationOptions) string {
	var sb strings.Builder

	switch opts.Style {
	case domain.StyleConversation:
		sb.WriteString("You are a dialogue writer. Read the passage below and write ")
		sb.WriteString(fmt.Sprintf("%d conversational exchanges about it, ", opts.QuestionsPerChunk))
		sb.WriteString("as if two people were discussing the passage naturally. ")
		sb.WriteString("Each exchange is one remark or question and one informative reply grounded in the passage.\n\n")
	case domain.StyleInterview:
		sb.WriteString("You are an interviewer preparing questions for an expert on the passage below. Write ")
		sb.WriteString(fmt.Sprintf("%d interview questions with the expert's answers. ", opts.QuestionsPerChunk))
		sb.WriteString("Questions should probe motivation and implications; answers must stay grounded in the passage.\n\n")
	default: // qa
		sb.WriteString("You are a question-writing assistant. Read the passage below and write ")
		sb.WriteString(fmt.Sprintf("%d question/answer pairs that test understanding of it. ", opts.QuestionsPerChunk))
		sb.WriteString("Answers must be fully supported by the passage; do not invent facts.\n\n")
	}

	sb.WriteString("Return ONLY a JSON array, no prose, in exactly this shape:\n")
	sb.WriteString(`[{"question": "...", "answer": "..."}]`)
	sb.WriteString("\n\nPassage:\n\"\"\"\n")
	sb.WriteString(chunkText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}
