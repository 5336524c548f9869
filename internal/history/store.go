// Package history persists completed analyses in a local SQLite file.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("history record not found")

// listLimit caps how many records a listing returns.
const listLimit = 50

// Record is one saved analysis. The store owns id and creation-time
// assignment; records are never mutated after insert.
type Record struct {
	ID        int64     `json:"id"`
	StockCode string    `json:"stock_code"`
	StockName string    `json:"stock_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	stock_code TEXT NOT NULL,
	stock_name TEXT,
	content TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// The driver is in-process; a single writer avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Append inserts a completed analysis and returns its assigned id.
func (s *Store) Append(ctx context.Context, stockCode, stockName, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_history (stock_code, stock_name, content) VALUES (?, ?, ?)`,
		stockCode, stockName, content)
	if err != nil {
		return 0, fmt.Errorf("insert history: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent records, newest first, capped at 50.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stock_code, stock_name, content, created_at
		 FROM analysis_history ORDER BY created_at DESC, id DESC LIMIT ?`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StockCode, &rec.StockName, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx,
		`SELECT id, stock_code, stock_name, content, created_at
		 FROM analysis_history WHERE id = ?`, id).
		Scan(&rec.ID, &rec.StockCode, &rec.StockName, &rec.Content, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return &rec, nil
}

// Delete removes one record by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every record.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
