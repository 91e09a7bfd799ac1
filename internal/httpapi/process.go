package httpapi

import (
	"context"
	"net/http"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/events"
)

// handleProcess runs the pipeline for one upload, streaming progress as
// server-sent events. Client disconnects cancel in-flight provider calls.
func (s *implServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	upload, err := s.receiveUpload(w, r)
	if err != nil {
		s.rejectUpload(w, r, err)
		return
	}

	em, err := events.NewSSE(w)
	if err != nil {
		s.logger.Error(r.Context(), "Streaming unsupported: %v", err)
		_ = removeFile(upload.Path)
		writeError(w, http.StatusInternalServerError, "Streaming is not supported", err)
		return
	}

	_, _ = s.processor.Process(r.Context(), upload, em)
}

type uploadResponse struct {
	UploadID string `json:"upload_id"`
}

func (s *implServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := s.receiveUpload(w, r)
	if err != nil {
		s.rejectUpload(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{UploadID: s.park(upload)})
}

// handleProcessWS runs a previously uploaded file, streaming the same
// events as JSON websocket frames.
func (s *implServer) handleProcessWS(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	if language != "" && !config.IsSupportedLanguage(language) {
		writeError(w, http.StatusBadRequest, "Invalid language", nil)
		return
	}

	upload, ok := s.claim(r.URL.Query().Get("upload"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown upload", nil)
		return
	}
	if language != "" {
		upload.Language = language
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "Websocket upgrade failed: %v", err)
		_ = removeFile(upload.Path)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reading is needed to observe close frames; a closed client cancels the run.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_, _ = s.processor.Process(ctx, upload, events.NewWebSocket(conn))
}
