package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"lukechampine.com/blake3"

	mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
)

var locatorPattern = regexp.MustCompile(`^[0-9]+-[0-9a-f]{16}$`)

// ValidLocator reports whether locator has the shape produced by Save.
func ValidLocator(locator string) bool {
	return locatorPattern.MatchString(locator)
}

func hashBytes(data []byte) (string, error) {
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("calculating blake3 hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Save writes data under a new locator "<unix-ms>-<hash prefix>".
func (s *implStore) Save(ctx context.Context, data []byte, meta Meta) (Document, error) {
	if len(data) == 0 {
		return Document{}, fmt.Errorf("save document: %w: empty document", mferrors.ErrValidation)
	}
	if meta.Format == "" {
		return Document{}, fmt.Errorf("save document: %w: missing format", mferrors.ErrValidation)
	}
	if meta.Source == "" {
		meta.Source = "pipeline"
	}

	hash, err := hashBytes(data)
	if err != nil {
		return Document{}, err
	}

	created := s.now()
	doc := Document{
		Locator:   strconv.FormatInt(created.UnixMilli(), 10) + "-" + hash[:16],
		Format:    meta.Format,
		Title:     meta.Title,
		Source:    meta.Source,
		Hash:      hash,
		Size:      int64(len(data)),
		CreatedAt: created,
	}
	doc.Path = filepath.Join(s.dir, doc.Locator+"."+doc.Format)

	if _, err := os.Stat(doc.Path); err == nil {
		return Document{}, fmt.Errorf("save document %s: already exists", doc.Locator)
	}
	if err := atomicWrite(doc.Path, data); err != nil {
		return Document{}, err
	}

	_, err = s.db.ExecContext(
		ctx,
		"insert into documents (locator, format, title, source, blake3_hash, size, path, created_at) values ($1, $2, $3, $4, $5, $6, $7, $8)",
		doc.Locator, doc.Format, doc.Title, doc.Source, doc.Hash, doc.Size, doc.Path, created.UnixMilli(),
	)
	if err != nil {
		os.Remove(doc.Path)
		return Document{}, fmt.Errorf("persisting document into sqlite: %w", err)
	}

	return doc, nil
}

func (s *implStore) Get(ctx context.Context, locator string) (Document, error) {
	if !ValidLocator(locator) {
		return Document{}, fmt.Errorf("document %q: %w", locator, mferrors.ErrNotFound)
	}

	var (
		doc     Document
		created int64
	)
	err := s.db.
		QueryRowContext(
			ctx,
			"select locator, format, title, source, blake3_hash, size, path, created_at from documents where locator = $1",
			locator,
		).
		Scan(&doc.Locator, &doc.Format, &doc.Title, &doc.Source, &doc.Hash, &doc.Size, &doc.Path, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %q: %w", locator, mferrors.ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document by locator: %w", err)
	}
	doc.CreatedAt = time.UnixMilli(created)
	return doc, nil
}

// Open returns the index entry and a reader over the stored file.
func (s *implStore) Open(ctx context.Context, locator string) (Document, io.ReadSeekCloser, error) {
	doc, err := s.Get(ctx, locator)
	if err != nil {
		return Document{}, nil, err
	}

	f, err := os.Open(doc.Path)
	if os.IsNotExist(err) {
		return Document{}, nil, fmt.Errorf("document %q file: %w", locator, mferrors.ErrNotFound)
	}
	if err != nil {
		return Document{}, nil, fmt.Errorf("open document: %w", err)
	}
	return doc, f, nil
}

// atomicWrite writes data to path using a temp file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "document-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing document: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing document: %w", err)
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming document: %w", err)
	}
	return os.Chmod(path, 0444)
}
