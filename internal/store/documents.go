package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"daycare/internal/daycare"
)

// ErrNotFound is returned when an update targets a missing document.
var ErrNotFound = errors.New("document not found")

// Documents implements daycare.Store over a single Postgres JSONB table.
// Every record is a field bag under an opaque uuid id, bucketed by
// collection name; timestamp fields are stored as RFC3339 strings inside
// the JSONB and compared with a ::timestamptz cast.
type Documents struct {
	db *sql.DB
}

// NewDocuments creates the document store.
func NewDocuments(db *sql.DB) *Documents {
	return &Documents{db: db}
}

// EnsureSchema creates the documents table and its indexes if missing.
func (s *Documents) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			fields JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
	`)
	return err
}

// QueryByDateRange returns the collection's documents whose named
// timestamp field falls within [start, end).
func (s *Documents) QueryByDateRange(ctx context.Context, collection, field string, start, end time.Time) ([]daycare.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields
		FROM documents
		WHERE collection = $1
		  AND (fields->>$2)::timestamptz >= $3
		  AND (fields->>$2)::timestamptz < $4
		ORDER BY id
	`, collection, field, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// GetDocument fetches a single document by id.
func (s *Documents) GetDocument(ctx context.Context, collection, id string) (daycare.Document, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fields FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return daycare.Document{}, false, nil
		}
		return daycare.Document{}, false, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return daycare.Document{}, false, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return daycare.Document{ID: id, Fields: fields}, true, nil
}

// CreateDocument inserts a new field bag and returns its generated id.
func (s *Documents) CreateDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, collection, fields)
		VALUES ($1, $2, $3)
	`, id, collection, raw)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateDocument merges partial fields into an existing document.
// Dotted keys update a nested path with jsonb_set so sibling entries
// survive; two sessions marking different children within the same
// attendance aggregate do not clobber each other. Plain keys merge at
// the top level.
func (s *Documents) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	flat := make(map[string]any)
	for key, val := range fields {
		if !strings.Contains(key, ".") {
			flat[key] = val
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", key, err)
		}
		res, err := s.db.ExecContext(ctx, `
			UPDATE documents
			SET fields = jsonb_set(fields, $3, $4::jsonb, true), updated_at = NOW()
			WHERE collection = $1 AND id = $2
		`, collection, id, textArray(strings.Split(key, ".")), raw)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
	}

	if len(flat) == 0 {
		return nil
	}
	raw, err := json.Marshal(flat)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET fields = fields || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, collection, id, raw)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every document in a collection.
func (s *Documents) ListAll(ctx context.Context, collection string) ([]daycare.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields FROM documents WHERE collection = $1 ORDER BY id
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]daycare.Document, error) {
	var docs []daycare.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields := make(map[string]any)
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		docs = append(docs, daycare.Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// textArray renders a Postgres text[] literal for a jsonb path.
func textArray(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}
