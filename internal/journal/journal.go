// Package journal keeps a local history of publish attempts. Offers
// themselves are never stored here; the LMS owns them. The journal records
// what the operator did and what the LMS answered.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Outcome labels for a publish attempt.
const (
	OutcomePublished = "published"
	OutcomeRejected  = "rejected"
	OutcomeAuthError = "auth_error"
	OutcomeTransport = "transport_error"
)

// Entry is one publish attempt.
type Entry struct {
	ID         string    `json:"id"`
	OfferName  string    `json:"offer_name"`
	OfferType  string    `json:"offer_type"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`  // error text for failures
	Receipt    string    `json:"receipt,omitempty"` // opaque LMS response on success
	RecordedAt time.Time `json:"recorded_at"`
}

// Journal wraps the sqlite connection.
type Journal struct {
	conn *sql.DB
}

// New opens (or creates) the journal database and initializes the schema.
func New(path string) (*Journal, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	j := &Journal{conn: conn}

	if err := j.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS publish_attempts (
			id TEXT PRIMARY KEY,
			offer_name TEXT NOT NULL,
			offer_type TEXT NOT NULL,
			outcome TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			receipt TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recorded_at ON publish_attempts(recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_outcome ON publish_attempts(outcome)`,
	}

	for _, query := range queries {
		if _, err := j.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// Record inserts one attempt. The id and timestamp are assigned here; the
// stored entry is returned.
func (j *Journal) Record(entry Entry) (Entry, error) {
	entry.ID = uuid.New().String()
	entry.RecordedAt = time.Now().UTC()

	_, err := j.conn.Exec(
		`INSERT INTO publish_attempts (id, offer_name, offer_type, outcome, detail, receipt, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OfferName,
		entry.OfferType,
		entry.Outcome,
		entry.Detail,
		entry.Receipt,
		entry.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record publish attempt: %w", err)
	}

	return entry, nil
}

// List returns the most recent attempts, newest first.
func (j *Journal) List(limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := j.conn.Query(
		`SELECT id, offer_name, offer_type, outcome, detail, receipt, recorded_at
		FROM publish_attempts
		ORDER BY recorded_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query publish attempts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var recordedAt string

		err := rows.Scan(
			&entry.ID,
			&entry.OfferName,
			&entry.OfferType,
			&entry.Outcome,
			&entry.Detail,
			&entry.Receipt,
			&recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publish attempt: %w", err)
		}

		entry.RecordedAt, err = time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating publish attempts: %w", err)
	}

	return entries, nil
}
