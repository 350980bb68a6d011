package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dialogueforge/dialogueforge/internal/domain"
	"github.com/dialogueforge/dialogueforge/internal/export"
	"github.com/dialogueforge/dialogueforge/internal/observability"
	"github.com/dialogueforge/dialogueforge/internal/storage"
)

// SessionHandler serves stored conversion sessions.
type SessionHandler struct {
	logger   *observability.Logger
	sessions *storage.SessionRepository
	records  *storage.RecordRepository
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(logger *observability.Logger, db *sql.DB) *SessionHandler {
	return &SessionHandler{
		logger:   logger,
		sessions: storage.NewSessionRepository(db),
		records:  storage.NewRecordRepository(db),
	}
}

// SessionDTO represents a session in API responses.
type SessionDTO struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Format      string    `json:"format"`
	ChunkCount  int       `json:"chunkCount"`
	RecordCount int       `json:"recordCount"`
	DemoChunks  int       `json:"demoChunks"`
	Model       string    `json:"model"`
	Style       string    `json:"style"`
	CreatedAt   time.Time `json:"createdAt"`
}

// List handles GET /api/v1/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = n
	}

	sessions, err := h.sessions.List(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("list sessions")
		writeError(w, http.StatusInternalServerError, "list sessions failed", "")
		return
	}

	dtos := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dtos = append(dtos, toSessionDTO(s))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dtos)
}

// Get handles GET /api/v1/sessions/{sessionID} and includes the session's
// records.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessions.GetByID(r.Context(), sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found", sessionID)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("get session")
		writeError(w, http.StatusInternalServerError, "get session failed", "")
		return
	}

	stored, err := h.records.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("list records")
		writeError(w, http.StatusInternalServerError, "list records failed", "")
		return
	}

	resp := struct {
		Session SessionDTO  `json:"session"`
		Records []RecordDTO `json:"records"`
	}{
		Session: toSessionDTO(session),
		Records: toRecordDTOs(toDomainRecords(stored)),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Delete handles DELETE /api/v1/sessions/{sessionID}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	err := h.sessions.Delete(r.Context(), sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found", sessionID)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "delete session failed", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/sessions/{sessionID}/export?format=jsonl and
// streams the serialized records as a download.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	format := domain.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = domain.ExportJSON
	}

	if _, err := h.sessions.GetByID(r.Context(), sessionID); errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found", sessionID)
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "get session failed", "")
		return
	}

	stored, err := h.records.ListBySession(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list records failed", "")
		return
	}

	output, err := export.Export(toDomainRecords(stored), format)
	if err != nil {
		if domain.IsKind(err, domain.KindExportFormatInvalid) {
			writeError(w, http.StatusBadRequest, "unknown export format", string(format))
			return
		}
		writeError(w, http.StatusInternalServerError, "export failed", err.Error())
		return
	}

	filename := fmt.Sprintf("%s%s", sessionID, export.FileExtension(format))
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(output)
}

func toSessionDTO(s *storage.Session) SessionDTO {
	return SessionDTO{
		ID:          s.ID,
		Filename:    s.Filename,
		Format:      s.Format,
		ChunkCount:  s.ChunkCount,
		RecordCount: s.RecordCount,
		DemoChunks:  s.DemoChunks,
		Model:       s.Model,
		Style:       s.Style,
		CreatedAt:   s.CreatedAt,
	}
}

func toDomainRecords(stored []*storage.StoredRecord) []domain.DialogueRecord {
	records := make([]domain.DialogueRecord, 0, len(stored))
	for _, s := range stored {
		var topics []string
		if s.Topics != "" {
			topics = strings.Split(s.Topics, ",")
		}
		records = append(records, domain.DialogueRecord{
			ID:            s.ID,
			Question:      s.Question,
			Answer:        s.Answer,
			SourceChunkID: s.SourceChunkID,
			DialogueType:  domain.DialogueStyle(s.DialogueType),
			Topics:        topics,
			Confidence:    s.Confidence,
			IsDemo:        s.IsDemo,
		})
	}
	return records
}
