package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidContent is returned when content is not a JSON value.
	ErrInvalidContent = errors.New("document content must be valid JSON")
)

const emptyContent = `{"type":"doc","content":[]}`

// timeLayout is fixed width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Document is one saved editor document. Content is the editor's JSON tree, stored verbatim.
type Document struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Summary is a list entry without content.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists documents in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every document, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, updated_at FROM documents ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			updated string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if sum.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	var (
		doc              Document
		content          string
		created, updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, created_at, updated_at FROM documents WHERE id=?`, id,
	).Scan(&doc.ID, &doc.Title, &content, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.Content = json.RawMessage(content)
	if doc.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create stores a new document under a fresh id. Empty content becomes an empty editor tree.
func (s *Store) Create(ctx context.Context, title string, content json.RawMessage) (*Document, error) {
	return s.Save(ctx, uuid.NewString(), title, content)
}

// Save inserts or replaces the document with id and bumps its updated_at.
func (s *Store) Save(ctx context.Context, id, title string, content json.RawMessage) (*Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("document id required")
	}
	body, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents(id, title, content, created_at, updated_at) VALUES(?,?,?,?,?)
         ON CONFLICT(id) DO UPDATE SET title=excluded.title, content=excluded.content, updated_at=excluded.updated_at`,
		id, title, body, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func normalizeContent(content json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" || trimmed == "null" {
		return emptyContent, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return "", ErrInvalidContent
	}
	return trimmed, nil
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
