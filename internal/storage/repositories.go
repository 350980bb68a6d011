package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SessionRepository handles session CRUD operations.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt

	query := `
		INSERT INTO sessions (id, filename, format, chunk_count, record_count, demo_chunks, model, style, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.Filename, session.Format, session.ChunkCount,
		session.RecordCount, session.DemoChunks, session.Model, session.Style,
		session.CreatedAt, session.UpdatedAt,
	)
	return err
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, filename, format, chunk_count, record_count, demo_chunks, model, style, created_at, updated_at
		FROM sessions WHERE id = $1
	`
	session := &Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.Filename, &session.Format, &session.ChunkCount,
		&session.RecordCount, &session.DemoChunks, &session.Model, &session.Style,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return session, err
}

// List returns sessions newest first, bounded by limit.
func (r *SessionRepository) List(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, filename, format, chunk_count, record_count, demo_chunks, model, style, created_at, updated_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		if err := rows.Scan(
			&session.ID, &session.Filename, &session.Format, &session.ChunkCount,
			&session.RecordCount, &session.DemoChunks, &session.Model, &session.Style,
			&session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// UpdateStats records post-run statistics on a session.
func (r *SessionRepository) UpdateStats(ctx context.Context, id string, chunkCount, recordCount, demoChunks int) error {
	query := `
		UPDATE sessions
		SET chunk_count = $2, record_count = $3, demo_chunks = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, chunkCount, recordCount, demoChunks, time.Now())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session and its records.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dialogue_records WHERE session_id = $1`, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordRepository handles dialogue record persistence.
type RecordRepository struct {
	db DB
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// CreateBatch persists a batch of records for a session.
func (r *RecordRepository) CreateBatch(ctx context.Context, records []*StoredRecord) error {
	query := `
		INSERT INTO dialogue_records (id, session_id, question, answer, source_chunk_id, dialogue_type, topics, confidence, is_demo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	now := time.Now()
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		if _, err := r.db.ExecContext(ctx, query,
			rec.ID, rec.SessionID, rec.Question, rec.Answer, rec.SourceChunkID,
			rec.DialogueType, rec.Topics, rec.Confidence, rec.IsDemo, rec.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListBySession returns a session's records ordered by source chunk then
// insertion order.
func (r *RecordRepository) ListBySession(ctx context.Context, sessionID string) ([]*StoredRecord, error) {
	query := `
		SELECT id, session_id, question, answer, source_chunk_id, dialogue_type, topics, confidence, is_demo, created_at
		FROM dialogue_records
		WHERE session_id = $1
		ORDER BY source_chunk_id, id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*StoredRecord
	for rows.Next() {
		rec := &StoredRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Question, &rec.Answer, &rec.SourceChunkID,
			&rec.DialogueType, &rec.Topics, &rec.Confidence, &rec.IsDemo, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
