package export

import (
	"bytes"
	"encoding/json"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// trainingLine is the fine-tuning shape: one conversation per line with
// role-tagged turns, provenance kept in a side metadata object.
type trainingLine struct {
	Messages []turn       `json:"messages"`
	Metadata lineMetadata `json:"metadata"`
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type lineMetadata struct {
	ID            string   `json:"id"`
	SourceChunkID int      `json:"source_chunk_id"`
	DialogueType  string   `json:"dialogue_type"`
	Topics        []string `json:"topics"`
	Confidence    float64  `json:"confidence"`
	IsDemo        bool     `json:"is_demo"`
}

// exportJSONL writes one role-tagged conversation per line: the question as
// the user turn, the answer as the assistant turn.
func exportJSONL(records []domain.DialogueRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, r := range records {
		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		line := trainingLine{
			Messages: []turn{
				{Role: "user", Content: r.Question},
				{Role: "assistant", Content: r.Answer},
			},
			Metadata: lineMetadata{
				ID:            r.ID,
				SourceChunkID: r.SourceChunkID,
				DialogueType:  string(r.DialogueType),
				Topics:        topics,
				Confidence:    r.Confidence,
				IsDemo:        r.IsDemo,
			},
		}
		if err := enc.Encode(line); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
