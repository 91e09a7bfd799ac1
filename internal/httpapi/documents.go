package httpapi

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
	"github.com/nguyentantai21042004/minutes-flow/internal/render"
)

type regenerateRequest struct {
	Markdown string `json:"markdown"`
	Title    string `json:"title"`
}

type regenerateResponse struct {
	DocumentURL string `json:"document_url"`
	Locator     string `json:"locator"`
}

func (s *implServer) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := s.processor.Regenerate(r.Context(), req.Markdown, req.Title)
	if err != nil {
		s.logger.Error(r.Context(), "Regenerate failed: %v", err)
		writeError(w, statusFor(err), "The document could not be regenerated", err)
		return
	}

	writeJSON(w, http.StatusOK, regenerateResponse{
		DocumentURL: processor.DocumentURL(doc.Locator),
		Locator:     doc.Locator,
	})
}

func (s *implServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	locator := r.PathValue("locator")

	doc, rc, err := s.store.Open(r.Context(), locator)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			writeError(w, status, "Document not found", nil)
			return
		}
		s.logger.Error(r.Context(), "Open document %s: %v", locator, err)
		writeError(w, status, "The document could not be read", nil)
		return
	}
	defer rc.Close()

	name := "minutes-" + doc.Locator + "." + doc.Format
	w.Header().Set("Content-Type", render.ContentType(doc.Format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, doc.CreatedAt, rc)
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

func (s *implServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Model: s.processor.Model()})
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
