package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dialogueforge/dialogueforge/internal/domain"
)

const (
	sheetDialogues = "Dialogues"
	sheetSummary   = "Summary"
	sheetTopics    = "Topics"
)

// exportXLSX builds a three-sheet workbook: the data sheet mirroring the CSV
// layout, a summary sheet, and a topic-frequency sheet.
func exportXLSX(records []domain.DialogueRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetDialogues); err != nil {
		return nil, err
	}

	if err := writeDialogueSheet(f, records); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, records); err != nil {
		return nil, err
	}
	if err := writeTopicSheet(f, records); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDialogueSheet(f *excelize.File, records []domain.DialogueRecord) error {
	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetDialogues, "A1", &header); err != nil {
		return err
	}

	for i, r := range records {
		row := []interface{}{
			r.ID,
			r.Question,
			r.Answer,
			r.SourceChunkID,
			string(r.DialogueType),
			strings.Join(r.Topics, ", "),
			r.Confidence,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetDialogues, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, records []domain.DialogueRecord) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	avgConfidence := 0.0
	demoCount := 0
	typeCounts := make(map[string]int)
	for _, r := range records {
		avgConfidence += r.Confidence
		if r.IsDemo {
			demoCount++
		}
		typeCounts[string(r.DialogueType)]++
	}
	if len(records) > 0 {
		avgConfidence /= float64(len(records))
	}

	mostCommonType := ""
	best := 0
	for _, t := range sortedKeys(typeCounts) {
		if typeCounts[t] > best {
			mostCommonType = t
			best = typeCounts[t]
		}
	}

	rows := [][]interface{}{
		{"metric", "value"},
		{"total_records", len(records)},
		{"demo_records", demoCount},
		{"average_confidence", avgConfidence},
		{"most_common_dialogue_type", mostCommonType},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeTopicSheet(f *excelize.File, records []domain.DialogueRecord) error {
	if _, err := f.NewSheet(sheetTopics); err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, r := range records {
		for _, t := range r.Topics {
			counts[t]++
		}
	}

	topics := sortedKeys(counts)
	sort.SliceStable(topics, func(i, j int) bool {
		return counts[topics[i]] > counts[topics[j]]
	})

	header := []interface{}{"topic", "count"}
	if err := f.SetSheetRow(sheetTopics, "A1", &header); err != nil {
		return err
	}
	for i, t := range topics {
		row := []interface{}{t, counts[t]}
		if err := f.SetSheetRow(sheetTopics, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
