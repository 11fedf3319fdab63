package vectorstore

import (
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"lectern/internal/embedder"
)

func init() {
	sqlite_vec.Auto()
}

const sqliteDDL = `
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS sections (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    section_id TEXT NOT NULL UNIQUE,
    title      TEXT NOT NULL DEFAULT '',
    document   TEXT NOT NULL,
    indexed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_sections USING vec0(
    section_rowid INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// SQLiteStore implements Store backed by SQLite + sqlite-vec.
type SQLiteStore struct {
	db  *sql.DB
	emb embedder.Embedder
}

// OpenSQLite creates or opens a SQLite database at the given path and
// initializes the schema for the given embedding dimension.
func OpenSQLite(dbPath string, dimension int, emb embedder.Embedder) (*SQLiteStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dimension)
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(sqliteDDL, dimension)); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, emb: emb}, nil
}

func (s *SQLiteStore) Upsert(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]string, len(entries))
	for i, e := range entries {
		docs[i] = e.Document
	}
	embeddings, err := s.emb.Embed(docs)
	if err != nil {
		return fmt.Errorf("embed sections: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, e := range entries {
		// Replace any previous row for this section ID.
		var existing int64
		err := tx.QueryRow("SELECT id FROM sections WHERE section_id = ?", e.ID).Scan(&existing)
		switch {
		case err == nil:
			if _, err := tx.Exec("DELETE FROM vec_sections WHERE section_rowid = ?", existing); err != nil {
				return err
			}
			if _, err := tx.Exec("DELETE FROM sections WHERE id = ?", existing); err != nil {
				return err
			}
		case err != sql.ErrNoRows:
			return err
		}

		res, err := tx.Exec(
			"INSERT INTO sections (section_id, title, document) VALUES (?, ?, ?)",
			e.ID, e.Title, e.Document,
		)
		if err != nil {
			return fmt.Errorf("insert section %s: %w", e.ID, err)
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return err
		}

		blob, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for section %s: %w", e.ID, err)
		}
		if _, err := tx.Exec("INSERT INTO vec_sections (section_rowid, embedding) VALUES (?, ?)", rowid, blob); err != nil {
			return fmt.Errorf("insert embedding for section %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Query(text string, topK int) ([]Match, error) {
	vec, err := s.emb.EmbedSingle(text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	blob, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT v.distance, sec.section_id, sec.title, sec.document
		FROM vec_sections v
		JOIN sections sec ON sec.id = v.section_rowid
		WHERE v.embedding MATCH ? AND v.k = ?
		ORDER BY v.distance
	`, blob, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var dist float64
		if err := rows.Scan(&dist, &m.SectionID, &m.Title, &m.Document); err != nil {
			return nil, err
		}
		m.Distance = &dist
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *SQLiteStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sections").Scan(&n)
	return n, err
}

func (s *SQLiteStore) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vec_sections"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sections"); err != nil {
		return err
	}
	return tx.Commit()
}

// GetMeta returns a metadata value by key, or "" if not set.
func (s *SQLiteStore) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMeta sets a metadata key-value pair.
func (s *SQLiteStore) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
