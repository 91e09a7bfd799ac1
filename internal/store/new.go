package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	PRAGMA busy_timeout       = 10000;
	PRAGMA journal_mode       = WAL;
	PRAGMA journal_size_limit = 200000000;
	PRAGMA synchronous        = NORMAL;
	PRAGMA temp_store         = MEMORY;
	PRAGMA cache_size         = -16000;

	create table if not exists documents (
		locator     TEXT PRIMARY KEY NOT NULL,
		format      TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		source      TEXT NOT NULL DEFAULT 'pipeline',
		blake3_hash TEXT NOT NULL,
		size        INTEGER NOT NULL,
		path        TEXT NOT NULL,
		created_at  INTEGER NOT NULL
	);

	create index if not exists idx_documents_hash on documents(blake3_hash);
`

type implStore struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// New opens (or creates) the sqlite index at dbPath and stores files under dir.
func New(dbPath, dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &implStore{db: db, dir: dir, now: time.Now}, nil
}

func (s *implStore) Close() error {
	return s.db.Close()
}
