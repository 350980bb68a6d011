package storage

import "time"

// Session is a persisted conversion run: one uploaded document, its
// extraction outcome, and run-level statistics.
type Session struct {
	ID          string
	Filename    string
	Format      string
	ChunkCount  int
	RecordCount int
	DemoChunks  int
	Model       string
	Style       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoredRecord is a persisted dialogue record, addressable by session.
type StoredRecord struct {
	ID            string
	SessionID     string
	Question      string
	Answer        string
	SourceChunkID int
	DialogueType  string
	Topics        string // comma-joined
	Confidence    float64
	IsDemo        bool
	CreatedAt     time.Time
}
