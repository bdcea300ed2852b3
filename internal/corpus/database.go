package corpus

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the corpus metadata database at the given path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the metadata tables. The pos column fixes the positional
// correspondence with the vector index; rows are only ever written by the
// build job, in index order.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS artifacts (
			pos INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			accession_number TEXT NOT NULL,
			rag_text TEXT NOT NULL,
			source_url TEXT,
			image_url TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS history_chunks (
			pos INTEGER PRIMARY KEY,
			source_file TEXT NOT NULL,
			text_chunk TEXT NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertArtifact writes one artifact row at the given position.
func InsertArtifact(ctx context.Context, db *sql.DB, pos int, a Artifact) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO artifacts (pos, id, name, accession_number, rag_text, source_url, image_url) VALUES (?, ?, ?, ?, ?, ?, ?)",
		pos, a.ID, a.Name, a.AccessionNumber, a.RAGText, a.SourceURL, a.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}
	return nil
}

// InsertHistoryChunk writes one history chunk row at the given position.
func InsertHistoryChunk(ctx context.Context, db *sql.DB, pos int, h HistoryChunk) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO history_chunks (pos, source_file, text_chunk) VALUES (?, ?, ?)",
		pos, h.SourceFile, h.TextChunk,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history chunk: %w", err)
	}
	return nil
}

// LoadArtifacts reads all artifact rows in positional order.
func LoadArtifacts(ctx context.Context, db *sql.DB) ([]Document, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, accession_number, rag_text, COALESCE(source_url, ''), COALESCE(image_url, '') FROM artifacts ORDER BY pos",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.ID, &a.Name, &a.AccessionNumber, &a.RAGText, &a.SourceURL, &a.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		docs = append(docs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}

// LoadHistoryChunks reads all history chunk rows in positional order.
func LoadHistoryChunks(ctx context.Context, db *sql.DB) ([]Document, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT source_file, text_chunk FROM history_chunks ORDER BY pos",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var h HistoryChunk
		if err := rows.Scan(&h.SourceFile, &h.TextChunk); err != nil {
			return nil, fmt.Errorf("failed to scan history chunk: %w", err)
		}
		docs = append(docs, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}
