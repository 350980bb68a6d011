// Package handlers provides HTTP handlers for the DialogueForge API.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dialogueforge/dialogueforge/internal/config"
	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/extract"
	"github.com/dialogueforge/dialogueforge/internal/observability"
	"github.com/dialogueforge/dialogueforge/internal/pipeline"
	"github.com/dialogueforge/dialogueforge/internal/storage"
)

// ConversionHandler handles document conversion requests.
type ConversionHandler struct {
	logger   *observability.Logger
	pipeline *pipeline.Pipeline
	sessions *storage.SessionRepository
	records  *storage.RecordRepository
	cfg      *config.Config
}

// NewConversionHandler creates a new conversion handler.
func NewConversionHandler(logger *observability.Logger, p *pipeline.Pipeline, db *sql.DB, cfg *config.Config) *ConversionHandler {
	return &ConversionHandler{
		logger:   logger,
		pipeline: p,
		sessions: storage.NewSessionRepository(db),
		records:  storage.NewRecordRepository(db),
		cfg:      cfg,
	}
}

// RecordDTO represents a dialogue record in API responses.
type RecordDTO struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	SourceChunkID int      `json:"sourceChunkId"`
	DialogueType  string   `json:"dialogueType"`
	Topics        []string `json:"topics,omitempty"`
	Confidence    float64  `json:"confidence"`
	IsDemo        bool     `json:"isDemo"`
}

// ConversionResponseDTO represents the conversion API response.
type ConversionResponseDTO struct {
	SessionID  string      `json:"sessionId"`
	Format     string      `json:"format"`
	ChunkCount int         `json:"chunkCount"`
	DemoChunks int         `json:"demoChunks"`
	DurationMs int64       `json:"durationMs"`
	Records    []RecordDTO `json:"records"`
}

// Convert handles POST /api/v1/conversions. The request is a multipart form
// with a "file" part plus optional generation parameters.
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	fileBytes, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	req := pipeline.Request{
		FileBytes: fileBytes,
		Format:    formValue(r, "format", "auto"),
		Options: domain.GenerationOptions{
			Style:       domain.DialogueStyle(formValue(r, "style", h.cfg.Generation.Style)),
			Model:       formValue(r, "model", h.cfg.Generation.Model),
			Temperature: h.cfg.Generation.Temperature,
		},
		Workers: h.cfg.Pipeline.Workers,
	}
	if v := r.FormValue("questionsPerChunk"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > domain.MaxQuestionsPerChunk {
			h.writeError(w, http.StatusBadRequest, "invalid questionsPerChunk", "")
			return
		}
		req.Options.QuestionsPerChunk = n
	}
	if v := r.FormValue("maxChars"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid maxChars", "")
			return
		}
		req.MaxChars = n
	}
	if v := r.FormValue("chunks"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				h.writeError(w, http.StatusBadRequest, "invalid chunks selection", "")
				return
			}
			req.SelectedChunkIDs = append(req.SelectedChunkIDs, id)
		}
	}
	if !domain.ValidStyle(req.Options.Style) {
		h.writeError(w, http.StatusBadRequest, "unknown dialogue style", string(req.Options.Style))
		return
	}

	result, err := h.pipeline.Run(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.persist(r, filename, req, result)

	resp := ConversionResponseDTO{
		SessionID:  result.SessionID,
		Format:     string(result.Format),
		ChunkCount: len(result.Chunks),
		DemoChunks: result.DemoChunks,
		DurationMs: result.Duration.Milliseconds(),
		Records:    toRecordDTOs(result.Records),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// ExtractionResponseDTO represents the extraction API response.
type ExtractionResponseDTO struct {
	Format   string `json:"format"`
	Chars    int    `json:"chars"`
	Text     string `json:"text"`
	NeedsOCR *bool  `json:"needsOcr,omitempty"`
}

// Extract handles POST /api/v1/extractions and returns extracted text
// without generating dialogue.
func (h *ConversionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	fileBytes, _, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	extractor := extract.New(h.logger)
	result, err := extractor.Extract(r.Context(), fileBytes, formValue(r, "format", "auto"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp := ExtractionResponseDTO{
		Format: string(result.Format),
		Chars:  len(result.Text),
		Text:   result.Text,
	}
	if result.Quality != nil {
		needsOCR := result.Quality.NeedsOCR()
		resp.NeedsOCR = &needsOCR
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// readUpload parses the multipart form and returns the uploaded file bytes.
func (h *ConversionHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(h.cfg.Server.MaxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file part is required", "")
		return nil, "", false
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(file, h.cfg.Server.MaxUploadBytes+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "read upload", err.Error())
		return nil, "", false
	}
	if int64(len(fileBytes)) > h.cfg.Server.MaxUploadBytes {
		h.writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit", "")
		return nil, "", false
	}
	return fileBytes, header.Filename, true
}

// persist stores the session and records. Storage failures are logged but do
// not fail the request; the caller already has the records.
func (h *ConversionHandler) persist(r *http.Request, filename string, req pipeline.Request, result *pipeline.Result) {
	opts := req.Options.Normalize()

	// Final counts land via UpdateStats after the records commit, so the
	// stored stats always reflect stored rows.
	session := &storage.Session{
		ID:       result.SessionID,
		Filename: filename,
		Format:   string(result.Format),
		Model:    opts.Model,
		Style:    string(opts.Style),
	}
	if err := h.sessions.Create(r.Context(), session); err != nil {
		h.logger.Error().Err(err).Str("session_id", result.SessionID).Msg("store session")
		return
	}

	stored := make([]*storage.StoredRecord, 0, len(result.Records))
	for _, rec := range result.Records {
		// Leave ID empty so the repository assigns a globally unique one;
		// record IDs from generation are only unique within a session.
		stored = append(stored, &storage.StoredRecord{
			SessionID:     result.SessionID,
			Question:      rec.Question,
			Answer:        rec.Answer,
			SourceChunkID: rec.SourceChunkID,
			DialogueType:  string(rec.DialogueType),
			Topics:        strings.Join(rec.Topics, ","),
			Confidence:    rec.Confidence,
			IsDemo:        rec.IsDemo,
		})
	}
	if err := h.records.CreateBatch(r.Context(), stored); err != nil {
		h.logger.Error().Err(err).Str("session_id", result.SessionID).Msg("store records")
		return
	}
	if err := h.sessions.UpdateStats(r.Context(), result.SessionID,
		len(result.Chunks), len(result.Records), result.DemoChunks); err != nil {
		h.logger.Error().Err(err).Str("session_id", result.SessionID).Msg("update session stats")
	}
}

func toRecordDTOs(records []domain.DialogueRecord) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, RecordDTO{
			ID:            rec.ID,
			Question:      rec.Question,
			Answer:        rec.Answer,
			SourceChunkID: rec.SourceChunkID,
			DialogueType:  string(rec.DialogueType),
			Topics:        rec.Topics,
			Confidence:    rec.Confidence,
			IsDemo:        rec.IsDemo,
		})
	}
	return dtos
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

// writeDomainError maps typed pipeline errors onto HTTP statuses.
func (h *ConversionHandler) writeDomainError(w http.ResponseWriter, err error) {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		status := http.StatusInternalServerError
		switch derr.Kind {
		case domain.KindUnsupportedFormat, domain.KindExportFormatInvalid:
			status = http.StatusBadRequest
		case domain.KindParseFailure:
			status = http.StatusUnprocessableEntity
		}
		h.writeError(w, status, derr.Message, string(derr.Kind))
		return
	}
	h.writeError(w, http.StatusInternalServerError, "conversion failed", err.Error())
}

func (h *ConversionHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	writeError(w, status, message, detail)
}

// writeError is shared by all handlers.
func writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
