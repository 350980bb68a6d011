package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

// csvHeader is the fixed column order for tabular exports. The xlsx data
// sheet mirrors it.
var csvHeader = []string{"id", "question", "answer", "source_chunk_id", "dialogue_type", "topics", "confidence"}

// exportCSV writes a flat table: one header line plus one row per record.
func exportCSV(records []domain.DialogueRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := w.Write(csvRow(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvRow(r domain.DialogueRecord) []string {
	return []string{
		r.ID,
		r.Question,
		r.Answer,
		strconv.Itoa(r.SourceChunkID),
		string(r.DialogueType),
		strings.Join(r.Topics, ", "),
		strconv.FormatFloat(r.Confidence, 'f', 2, 64),
	}
}
