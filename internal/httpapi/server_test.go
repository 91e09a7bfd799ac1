package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
	"github.com/nguyentantai21042004/minutes-flow/internal/events"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

type fakeProcessor struct {
	mu            sync.Mutex
	uploads       []processor.Upload
	uploadExisted bool
	regenDoc      store.Document
	regenErr      error
	regenCalls    int
}

func (f *fakeProcessor) Process(ctx context.Context, upload processor.Upload, em events.Emitter) (*processor.Result, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, upload)
	_, err := os.Stat(upload.Path)
	f.uploadExisted = err == nil
	f.mu.Unlock()
	defer os.Remove(upload.Path)

	result := &processor.Result{Model: "gemini-2.5-flash", Locator: "1700000000000-0123456789abcdef"}
	_ = em.Emit(ctx, events.Progress("transcribing", "Transcribing audio"))
	_ = em.Emit(ctx, events.Complete(result))
	return result, nil
}

func (f *fakeProcessor) Regenerate(ctx context.Context, markdown, title string) (store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regenCalls++
	if f.regenErr != nil {
		return store.Document{}, f.regenErr
	}
	return f.regenDoc, nil
}

func (f *fakeProcessor) Model() string { return "gemini-2.5-flash" }

type testEnv struct {
	handler Server
	proc    *fakeProcessor
	store   store.Store
	uploads string
}

func newTestEnv(t *testing.T, maxUpload int64) *testEnv {
	t.Helper()
	dir := t.TempDir()

	st, err := store.New(filepath.Join(dir, "minutes.db"), filepath.Join(dir, "output"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{}
	cfg.Paths.Uploads = filepath.Join(dir, "uploads")
	cfg.Limits.MaxUploadBytes = maxUpload

	reg := prometheus.NewRegistry()
	reg.MustRegister(processor.NewMetrics(nil).RenderTimeouts)

	proc := &fakeProcessor{}
	srv := New(cfg, proc, st, reg, logger.New("error"))
	t.Cleanup(func() { srv.Close() })
	return &testEnv{
		handler: srv,
		proc:    proc,
		store:   st,
		uploads: cfg.Paths.Uploads,
	}
}

func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("audio", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProcess_StreamsSSE(t *testing.T) {
	env := newTestEnv(t, 0)
	body, ct := multipartBody(t, "Reunión semanal.m4a", []byte("audio"), map[string]string{"language": "en"})

	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	out := w.Body.String()
	assert.Contains(t, out, "event: progress\n")
	assert.Contains(t, out, "event: complete\n")
	assert.Less(t, strings.Index(out, "event: progress"), strings.Index(out, "event: complete"))

	require.Len(t, env.proc.uploads, 1)
	up := env.proc.uploads[0]
	assert.True(t, env.proc.uploadExisted)
	assert.Equal(t, "en", up.Language)
	assert.Equal(t, "Reunión semanal.m4a", up.Filename)
	assert.True(t, strings.HasSuffix(up.Path, "-Reuni_n_semanal.m4a"), up.Path)
	assert.Equal(t, env.uploads, filepath.Dir(up.Path))
}

func TestProcess_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		data      []byte
		fields    map[string]string
		maxUpload int64
		want      int
	}{
		{name: "no file", want: http.StatusBadRequest},
		{name: "unsupported language", filename: "a.mp3", data: []byte("x"), fields: map[string]string{"language": "ja"}, want: http.StatusBadRequest},
		{name: "too large", filename: "a.mp3", data: bytes.Repeat([]byte("x"), 8192), maxUpload: 1024, want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.maxUpload)
			body, ct := multipartBody(t, tt.filename, tt.data, tt.fields)

			req := httptest.NewRequest(http.MethodPost, "/api/process", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Empty(t, env.proc.uploads, "pipeline must not start")

			entries, _ := os.ReadDir(env.uploads)
			assert.Empty(t, entries)
		})
	}
}

func TestRegenerate(t *testing.T) {
	env := newTestEnv(t, 0)
	env.proc.regenDoc = store.Document{Locator: "1700000000001-aaaaaaaaaaaaaaaa"}

	req := httptest.NewRequest(http.MethodPost, "/api/regenerate", strings.NewReader(`{"markdown": "# Editado"}`))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp regenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/api/documents/1700000000001-aaaaaaaaaaaaaaaa", resp.DocumentURL)
	assert.Equal(t, "1700000000001-aaaaaaaaaaaaaaaa", resp.Locator)
}

func TestRegenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad json", `{"markdown":`, nil, http.StatusBadRequest},
		{"empty markdown", `{"markdown": ""}`, fmt.Errorf("regenerate: %w", mferrors.ErrValidation), http.StatusBadRequest},
		{"render timeout", `{"markdown": "# x"}`, mferrors.NewRenderTimeout(0), http.StatusGatewayTimeout},
		{"render failure", `{"markdown": "# x"}`, mferrors.Classify(fmt.Errorf("boom"), mferrors.StageRendering), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 0)
			env.proc.regenErr = tt.err

			req := httptest.NewRequest(http.MethodPost, "/api/regenerate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestDocument(t *testing.T) {
	env := newTestEnv(t, 0)
	doc, err := env.store.Save(context.Background(), []byte("%PDF-1.3 minutes"), store.Meta{Format: "pdf"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/"+doc.Locator, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), doc.Locator+".pdf")
	assert.Equal(t, "%PDF-1.3 minutes", w.Body.String())
}

func TestDocument_NotFound(t *testing.T) {
	env := newTestEnv(t, 0)

	for _, locator := range []string{"1700000000000-0123456789abcdef", "nope"} {
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/"+locator, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, locator)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 0)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "model": "gemini-2.5-flash"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t, 0)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "minutes_render_timeouts_total")
}

func TestRequestIDPropagated(t *testing.T) {
	env := newTestEnv(t, 0)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "3f1c2f6e-1d2b-4c1a-9a39-5a2b7f0d9e11")

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, "3f1c2f6e-1d2b-4c1a-9a39-5a2b7f0d9e11", w.Header().Get(requestIDHeader))
}

func TestUploadThenWebSocket(t *testing.T) {
	env := newTestEnv(t, 0)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	body, ct := multipartBody(t, "standup.webm", []byte("audio"), nil)
	resp, err := http.Post(ts.URL+"/api/uploads", ct, body)
	require.NoError(t, err)
	var up uploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, up.UploadID)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/process/ws?upload=" + up.UploadID + "&language=pt"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var kinds []string
	for {
		var ev struct {
			Kind string `json:"kind"`
		}
		if err := conn.ReadJSON(&ev); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
			break
		}
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []string{"progress", "complete"}, kinds)

	env.proc.mu.Lock()
	defer env.proc.mu.Unlock()
	require.Len(t, env.proc.uploads, 1)
	assert.Equal(t, "pt", env.proc.uploads[0].Language)
	assert.True(t, env.proc.uploadExisted)
}

func TestWebSocket_UnknownUpload(t *testing.T) {
	env := newTestEnv(t, 0)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/process/ws?upload=missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"meeting.m4a":           "meeting.m4a",
		"../../etc/passwd":      "passwd",
		`C:\Users\ana\call.mp3`: "call.mp3",
		"Reunión semanal.m4a":   "Reuni_n_semanal.m4a",
		"...":                   "audio",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func parkedFile(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(env.uploads, 0755))
	path := filepath.Join(env.uploads, name)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0600))
	return path
}

func TestParkedUploadsExpireOnClaim(t *testing.T) {
	env := newTestEnv(t, 0)
	srv := env.handler.(*implServer)

	start := time.Now()
	srv.now = func() time.Time { return start }
	path := parkedFile(t, env, "standup.m4a")
	id := srv.park(processor.Upload{Path: path, Filename: "standup.m4a"})

	srv.now = func() time.Time { return start.Add(pendingTTL + time.Second) }
	_, ok := srv.claim(id)

	assert.False(t, ok)
	assert.NoFileExists(t, path)
}

func TestCloseDiscardsParkedUploads(t *testing.T) {
	env := newTestEnv(t, 0)
	srv := env.handler.(*implServer)

	path := parkedFile(t, env, "retro.wav")
	id := srv.park(processor.Upload{Path: path, Filename: "retro.wav"})

	require.NoError(t, srv.Close())
	require.NoError(t, srv.Close())

	assert.NoFileExists(t, path)
	_, ok := srv.claim(id)
	assert.False(t, ok)
}

func TestSweepLoopRemovesExpiredUploads(t *testing.T) {
	env := newTestEnv(t, 0)
	srv := env.handler.(*implServer)

	start := time.Now()
	srv.mu.Lock()
	srv.now = func() time.Time { return start.Add(pendingTTL + time.Second) }
	srv.mu.Unlock()
	path := parkedFile(t, env, "allhands.mp3")
	srv.mu.Lock()
	srv.pending["stale"] = pendingUpload{upload: processor.Upload{Path: path}, created: start}
	srv.mu.Unlock()

	go srv.sweepLoop(time.Millisecond)

	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.pending) == 0
	}, time.Second, 5*time.Millisecond)
	assert.NoFileExists(t, path)
}
