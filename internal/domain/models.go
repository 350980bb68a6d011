// Package domain defines the shared data model for the dialogue pipeline.
package domain

import (
	"strings"
	"time"
)

// DialogueStyle selects the prompt shape used for generation.
type DialogueStyle string

const (
	StyleQA           DialogueStyle = "qa"
	StyleConversation DialogueStyle = "conversation"
	StyleInterview    DialogueStyle = "interview"
)

// ValidStyle reports whether s is one of the supported dialogue styles.
func ValidStyle(s DialogueStyle) bool {
	switch s {
	case StyleQA, StyleConversation, StyleInterview:
		return true
	}
	return false
}

// DocumentFormat identifies a supported source document type.
type DocumentFormat string

const (
	FormatTXT  DocumentFormat = "txt"
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
	FormatEPUB DocumentFormat = "epub"
	// FormatAuto asks the extractor to sniff the format from magic bytes.
	FormatAuto DocumentFormat = "auto"
)

// ExportFormat identifies a supported export serialization.
type ExportFormat string

const (
	ExportJSON  ExportFormat = "json"
	ExportJSONL ExportFormat = "jsonl"
	ExportCSV   ExportFormat = "csv"
	ExportXLSX  ExportFormat = "xlsx"
)

// Chunk is a bounded-size, sentence-aligned segment of extracted text.
// Chunks are created once by the chunker and immutable thereafter; the
// derived counts are computed at construction and never mutated.
type Chunk struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	TokenCount int    `json:"token_count"`
}

// NewChunk builds a Chunk with derived stats. TokenCount is filled in by the
// chunker when a token encoder is available and left zero otherwise.
func NewChunk(id int, text string) Chunk {
	return Chunk{
		ID:        id,
		Text:      text,
		WordCount: len(strings.Fields(text)),
		CharCount: len([]rune(text)),
	}
}

// DialogueRecord is one generated question/answer pair with provenance and
// quality metadata. Records are never mutated after creation.
type DialogueRecord struct {
	ID            string        `json:"id"`
	Question      string        `json:"question"`
	Answer        string        `json:"answer"`
	SourceChunkID int           `json:"source_chunk_id"`
	DialogueType  DialogueStyle `json:"dialogue_type"`
	Topics        []string      `json:"topics"`
	Confidence    float64       `json:"confidence"`
	IsDemo        bool          `json:"is_demo"`
}

// GenerationOptions controls a single generation call.
type GenerationOptions struct {
	Style             DialogueStyle `json:"style"`
	QuestionsPerChunk int           `json:"questions_per_chunk"`
	Model             string        `json:"model"`
	Temperature       float64       `json:"temperature"`
}

// MaxQuestionsPerChunk caps how many pairs a single chunk may request.
const MaxQuestionsPerChunk = 10

// Normalize clamps out-of-range option values to their documented defaults.
func (o GenerationOptions) Normalize() GenerationOptions {
	if !ValidStyle(o.Style) {
		o.Style = StyleQA
	}
	if o.QuestionsPerChunk <= 0 {
		o.QuestionsPerChunk = 3
	}
	if o.QuestionsPerChunk > MaxQuestionsPerChunk {
		o.QuestionsPerChunk = MaxQuestionsPerChunk
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		o.Temperature = 0.7
	}
	return o
}

// GenerationResult is the outcome of generating dialogue for one chunk.
// Generation is total: a result is always produced, with IsDemo marking
// synthesized fallback content.
type GenerationResult struct {
	Records    []DialogueRecord `json:"records"`
	Content    string           `json:"content"`
	WordCount  int              `json:"word_count"`
	Confidence float64          `json:"confidence"`
	IsDemo     bool             `json:"is_demo"`
	Model      string           `json:"model"`
	Duration   time.Duration    `json:"duration"`
}
