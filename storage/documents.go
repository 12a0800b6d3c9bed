package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Document is one entry in the reference library the context-aware agent
// retrieves from.
type Document struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore persists the document library in a sqlite database under the
// data directory.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore opens (creating if needed) the document database.
func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	dbPath := filepath.Join(dataDir, "documents.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &DocumentStore{db: db}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (ds *DocumentStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_title ON documents(title);
	`

	_, err := ds.db.Exec(schema)
	return err
}

// Add inserts a document and returns it with its assigned ID.
func (ds *DocumentStore) Add(title, content string) (*Document, error) {
	now := time.Now()

	result, err := ds.db.Exec(
		`INSERT INTO documents (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, content, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	return &Document{ID: id, Title: title, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}

// Get returns a document by ID, or nil when it does not exist.
func (ds *DocumentStore) Get(id int64) (*Document, error) {
	var doc Document
	err := ds.db.QueryRow(
		`SELECT id, title, content, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// List returns all documents, newest first.
func (ds *DocumentStore) List() ([]Document, error) {
	rows, err := ds.db.Query(
		`SELECT id, title, content, created_at, updated_at FROM documents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Update rewrites a document's title and content.
func (ds *DocumentStore) Update(doc Document) error {
	result, err := ds.db.Exec(
		`UPDATE documents SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		doc.Title, doc.Content, time.Now(), doc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("document %d not found", doc.ID)
	}

	return nil
}

// Delete removes a document by ID.
func (ds *DocumentStore) Delete(id int64) error {
	_, err := ds.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}

// Search returns documents whose title or content contains the query,
// newest first.
func (ds *DocumentStore) Search(query string) ([]Document, error) {
	pattern := "%" + query + "%"
	rows, err := ds.db.Query(
		`SELECT id, title, content, created_at, updated_at FROM documents
		 WHERE title LIKE ? OR content LIKE ?
		 ORDER BY created_at DESC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Count returns the number of stored documents.
func (ds *DocumentStore) Count() (int, error) {
	var n int
	err := ds.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func (ds *DocumentStore) Close() error {
	if ds.db != nil {
		return ds.db.Close()
	}
	return nil
}
