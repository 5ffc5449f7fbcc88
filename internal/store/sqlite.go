package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ananyev/adkchat/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS session_slot (
		slot INTEGER PRIMARY KEY CHECK (slot = 0),
		session_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		speaker TEXT NOT NULL,
		content TEXT NOT NULL,
		chart_id TEXT,
		is_error INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSessionID reads the single-slot session identifier.
func (s *SQLiteStore) GetSessionID(ctx context.Context) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT session_id FROM session_slot WHERE slot = 0`)

	var id string
	err := row.Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan session slot: %w", err)
	}
	return id, nil
}

// PutSessionID overwrites the session slot whole.
func (s *SQLiteStore) PutSessionID(ctx context.Context, id string) error {
	query := `
	INSERT INTO session_slot (slot, session_id, updated_at)
	VALUES (0, ?, ?)
	ON CONFLICT(slot) DO UPDATE SET
		session_id = excluded.session_id,
		updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, id, time.Now().Unix()); err != nil {
		return fmt.Errorf("put session id: %w", err)
	}
	return nil
}

// AppendTranscript records one chat turn.
func (s *SQLiteStore) AppendTranscript(ctx context.Context, turn *domain.ChatTurn) error {
	query := `
	INSERT INTO transcripts (id, speaker, content, chart_id, is_error, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	var chartID interface{}
	if turn.ChartID != "" {
		chartID = turn.ChartID
	}

	isError := 0
	if turn.Error {
		isError = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		turn.ID, string(turn.Speaker), turn.Content, chartID, isError, turn.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// RecentTranscript returns up to limit most recent turns, oldest first.
func (s *SQLiteStore) RecentTranscript(ctx context.Context, limit int) ([]*domain.ChatTurn, error) {
	query := `
	SELECT id, speaker, content, chart_id, is_error, created_at
	FROM transcripts ORDER BY created_at DESC, id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var turns []*domain.ChatTurn
	for rows.Next() {
		var turn domain.ChatTurn
		var speaker string
		var chartID sql.NullString
		var isError int
		var createdAt int64

		if err := rows.Scan(&turn.ID, &speaker, &turn.Content, &chartID, &isError, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		turn.Speaker = domain.Speaker(speaker)
		turn.ChartID = chartID.String
		turn.Error = isError != 0
		turn.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript rows: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
