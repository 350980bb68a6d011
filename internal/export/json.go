package export

import (
	"encoding/json"
	"time"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// Envelope wraps exported records with volatile metadata. GeneratedAt is the
// only non-deterministic field in any export output.
type Envelope struct {
	Metadata EnvelopeMetadata        `json:"metadata"`
	Records  []domain.DialogueRecord `json:"records"`
}

// EnvelopeMetadata describes an export run.
type EnvelopeMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
}

// exportJSON serializes records as a JSON object with a metadata envelope.
func exportJSON(records []domain.DialogueRecord) ([]byte, error) {
	env := Envelope{
		Metadata: EnvelopeMetadata{
			GeneratedAt: time.Now().UTC(),
			Count:       len(records),
		},
		Records: records,
	}
	if env.Records == nil {
		env.Records = []domain.DialogueRecord{}
	}
	return json.MarshalIndent(env, "", "  ")
}
