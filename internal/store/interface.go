package store

import (
	"context"
	"io"
	"time"
)

// Document is the index entry of one rendered file.
type Document struct {
	Locator   string
	Format    string
	Title     string
	Source    string
	Hash      string
	Size      int64
	Path      string
	CreatedAt time.Time
}

// Meta describes a document being saved.
type Meta struct {
	Format string
	Title  string
	// Source is "pipeline" or "regenerate".
	Source string
}

// Store persists rendered documents. Files are write-once: a saved locator
// never changes content and is never deleted by the store.
type Store interface {
	Save(ctx context.Context, data []byte, meta Meta) (Document, error)
	Get(ctx context.Context, locator string) (Document, error)
	Open(ctx context.Context, locator string) (Document, io.ReadSeekCloser, error)
	Close() error
}
