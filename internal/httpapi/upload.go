package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename keeps the base name and replaces anything outside a
// conservative character set.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "audio"
	}
	return name
}

// receiveUpload stores the multipart "audio" field under the uploads
// directory as "<unix-ms>-<name>". Oversized or missing files are rejected
// before anything reaches the pipeline.
func (s *implServer) receiveUpload(w http.ResponseWriter, r *http.Request) (processor.Upload, error) {
	if r.ContentLength > s.maxUpload {
		return processor.Upload{}, fmt.Errorf("%w: audio exceeds %d bytes", mferrors.ErrTooLarge, s.maxUpload)
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return processor.Upload{}, fmt.Errorf("%w: audio exceeds %d bytes", mferrors.ErrTooLarge, s.maxUpload)
		}
		return processor.Upload{}, fmt.Errorf("%w: %v", mferrors.ErrValidation, err)
	}
	defer r.MultipartForm.RemoveAll()

	language := r.FormValue("language")
	if language != "" && !config.IsSupportedLanguage(language) {
		return processor.Upload{}, fmt.Errorf("%w: unsupported language %q", mferrors.ErrValidation, language)
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return processor.Upload{}, fmt.Errorf("%w: no audio file supplied", mferrors.ErrValidation)
	}
	defer file.Close()

	if err := os.MkdirAll(s.uploadsDir, 0755); err != nil {
		return processor.Upload{}, fmt.Errorf("create uploads dir: %w", err)
	}

	name := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + sanitizeFilename(header.Filename)
	path := filepath.Join(s.uploadsDir, name)
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(s.uploadsDir, uuid.NewString()+"-"+name)
	}

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return processor.Upload{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return processor.Upload{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return processor.Upload{}, fmt.Errorf("close upload file: %w", err)
	}

	return processor.Upload{
		Path:     path,
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Language: language,
	}, nil
}

func (s *implServer) rejectUpload(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn(r.Context(), "Upload rejected: %v", err)
	status := statusFor(err)
	msg := "The upload could not be stored"
	switch status {
	case http.StatusBadRequest:
		msg = "Invalid upload"
	case http.StatusRequestEntityTooLarge:
		msg = "The audio file is too large"
	}
	writeError(w, status, msg, err)
}

// park keeps an upload until a websocket client claims it, dropping
// unclaimed uploads older than pendingTTL.
func (s *implServer) park(u processor.Upload) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepExpiredLocked()

	id := uuid.NewString()
	s.pending[id] = pendingUpload{upload: u, created: s.now()}
	return id
}

// sweepExpiredLocked deletes parked uploads older than pendingTTL. s.mu must
// be held.
func (s *implServer) sweepExpiredLocked() int {
	now := s.now()
	n := 0
	for id, p := range s.pending {
		if now.Sub(p.created) > pendingTTL {
			removeFile(p.upload.Path)
			delete(s.pending, id)
			n++
		}
	}
	return n
}

func (s *implServer) claim(id string) (processor.Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepExpiredLocked()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return p.upload, ok
}
