// Package store provides the SQLite storage layer for fact records.
//
// Each record is persisted twice: the full JSON document for exact
// round-trip retrieval, and denormalized facts/entities/contradictions
// rows for querying across documents. Saving a record is idempotent:
// re-saving the same document replaces its rows.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/factline/internal/model"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.factline/factline.db"

// ListOpts controls pagination and filtering for list operations.
type ListOpts struct {
	Limit  int
	Offset int
	Status string // filter by decision status ("ok", "review")
}

// DocumentSummary is one row of the document listing.
type DocumentSummary struct {
	DocumentID     string
	Status         string
	Facts          int
	Entities       int
	Contradictions int
}

// FactRow is a queryable fact joined with its document.
type FactRow struct {
	DocumentID string
	Fact       model.Fact
}

// Stats holds counts for the info command.
type Stats struct {
	Documents   int64
	Facts       int64
	Entities    int64
	Flags       int64
	DBSizeBytes int64
}

// Store persists and queries fact records.
type Store interface {
	SaveRecord(ctx context.Context, rec *model.Record) error
	GetRecord(ctx context.Context, documentID string) (*model.Record, error)
	ListDocuments(ctx context.Context, opts ListOpts) ([]*DocumentSummary, error)
	FactsByKind(ctx context.Context, kind model.Kind, limit int) ([]*FactRow, error)
	DeleteRecord(ctx context.Context, documentID string) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) a SQLite-backed store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(dbPath string) (Store, error) {
	if dbPath == "" {
		dbPath = expandPath(DefaultDBPath)
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		document_id TEXT PRIMARY KEY,
		status      TEXT NOT NULL,
		turns       INTEGER NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS facts (
		document_id TEXT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
		fact_id     TEXT NOT NULL,
		kind        TEXT NOT NULL,
		turn_index  INTEGER NOT NULL,
		start_off   INTEGER NOT NULL,
		end_off     INTEGER NOT NULL,
		source_text TEXT NOT NULL,
		speaker_id  TEXT,
		confidence  REAL NOT NULL,
		value_json  TEXT NOT NULL,
		PRIMARY KEY (document_id, fact_id)
	);
	CREATE INDEX IF NOT EXISTS idx_facts_kind ON facts(kind);

	CREATE TABLE IF NOT EXISTS entities (
		document_id TEXT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
		entity_id   TEXT NOT NULL,
		name        TEXT NOT NULL,
		role        TEXT NOT NULL,
		aliases     TEXT NOT NULL,
		PRIMARY KEY (document_id, entity_id)
	);

	CREATE TABLE IF NOT EXISTS contradictions (
		document_id TEXT NOT NULL REFERENCES documents(document_id) ON DELETE CASCADE,
		rule        TEXT NOT NULL,
		fact_ids    TEXT NOT NULL,
		description TEXT NOT NULL,
		retried     INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveRecord persists a record, replacing any prior rows for the same
// document. The full JSON is stored alongside the relational rows so
// GetRecord returns exactly what the pipeline produced.
func (s *SQLiteStore) SaveRecord(ctx context.Context, rec *model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, rec.DocumentID); err != nil {
		return fmt.Errorf("clearing prior record: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (document_id, status, turns, record_json) VALUES (?, ?, ?, ?)`,
		rec.DocumentID, string(rec.Decision.Status), rec.Turns, string(data),
	); err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	for _, f := range rec.Facts {
		value, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("marshaling fact %s value: %w", f.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO facts (document_id, fact_id, kind, turn_index, start_off, end_off, source_text, speaker_id, confidence, value_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.DocumentID, f.ID, string(f.Kind), f.TurnIndex, f.Start, f.End,
			f.SourceText, f.SpeakerID, f.Confidence, string(value),
		); err != nil {
			return fmt.Errorf("inserting fact %s: %w", f.ID, err)
		}
	}

	for _, e := range rec.Entities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entities (document_id, entity_id, name, role, aliases) VALUES (?, ?, ?, ?, ?)`,
			rec.DocumentID, e.ID, e.Name, string(e.Role), strings.Join(e.Aliases, "\n"),
		); err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.ID, err)
		}
	}

	for _, c := range rec.Contradictions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contradictions (document_id, rule, fact_ids, description, retried) VALUES (?, ?, ?, ?, ?)`,
			rec.DocumentID, string(c.Rule), strings.Join(c.FactIDs, "\n"), c.Description, c.Retried,
		); err != nil {
			return fmt.Errorf("inserting contradiction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by document id. Returns nil when the
// document is not stored.
func (s *SQLiteStore) GetRecord(ctx context.Context, documentID string) (*model.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT record_json FROM documents WHERE document_id = ?`, documentID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record %s: %w", documentID, err)
	}

	var rec model.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling record %s: %w", documentID, err)
	}
	return &rec, nil
}

// ListDocuments returns stored documents with row counts, newest last
// by document id order.
func (s *SQLiteStore) ListDocuments(ctx context.Context, opts ListOpts) ([]*DocumentSummary, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	query := `SELECT d.document_id, d.status,
	                 (SELECT COUNT(*) FROM facts f WHERE f.document_id = d.document_id),
	                 (SELECT COUNT(*) FROM entities e WHERE e.document_id = d.document_id),
	                 (SELECT COUNT(*) FROM contradictions c WHERE c.document_id = d.document_id)
	          FROM documents d`
	args := []interface{}{}
	if opts.Status != "" {
		query += " WHERE d.status = ?"
		args = append(args, opts.Status)
	}
	query += " ORDER BY d.document_id LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []*DocumentSummary
	for rows.Next() {
		d := &DocumentSummary{}
		if err := rows.Scan(&d.DocumentID, &d.Status, &d.Facts, &d.Entities, &d.Contradictions); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FactsByKind returns facts of one kind across all stored documents,
// ordered by document then position.
func (s *SQLiteStore) FactsByKind(ctx context.Context, kind model.Kind, limit int) ([]*FactRow, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, fact_id, kind, turn_index, start_off, end_off, source_text, speaker_id, confidence, value_json
		 FROM facts WHERE kind = ?
		 ORDER BY document_id, turn_index, start_off LIMIT ?`,
		string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying facts by kind: %w", err)
	}
	defer rows.Close()

	var out []*FactRow
	for rows.Next() {
		var (
			r         FactRow
			k         string
			valueJSON string
		)
		if err := rows.Scan(&r.DocumentID, &r.Fact.ID, &k, &r.Fact.TurnIndex, &r.Fact.Start,
			&r.Fact.End, &r.Fact.SourceText, &r.Fact.SpeakerID, &r.Fact.Confidence, &valueJSON); err != nil {
			return nil, fmt.Errorf("scanning fact row: %w", err)
		}
		r.Fact.Kind = model.Kind(k)
		if err := json.Unmarshal([]byte(valueJSON), &r.Fact.Value); err != nil {
			return nil, fmt.Errorf("unmarshaling fact %s value: %w", r.Fact.ID, err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// DeleteRecord removes a document and its dependent rows.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("deleting record %s: %w", documentID, err)
	}
	return nil
}

// Stats reports row counts and database size.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	counts := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM documents", &st.Documents},
		{"SELECT COUNT(*) FROM facts", &st.Facts},
		{"SELECT COUNT(*) FROM entities", &st.Entities},
		{"SELECT COUNT(*) FROM contradictions", &st.Flags},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("counting rows: %w", err)
		}
	}

	if s.dbPath != ":memory:" {
		if info, err := os.Stat(s.dbPath); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}
	return st, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
