// Package httpapi exposes the meeting pipeline over HTTP: SSE and websocket
// progress streams, regenerate, document retrieval, health and metrics.
package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

const (
	multipartMemory = 32 << 20
	pendingTTL      = 15 * time.Minute
	sweepInterval   = time.Minute
)

type implServer struct {
	processor  processor.Processor
	store      store.Store
	logger     logger.Logger
	uploadsDir string
	maxUpload  int64
	upgrader   websocket.Upgrader

	handler http.Handler

	mu      sync.Mutex
	pending map[string]pendingUpload
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

type pendingUpload struct {
	upload  processor.Upload
	created time.Time
}

// New builds the HTTP server. gatherer backs GET /metrics; nil disables it.
// Callers must Close the server when done with it.
func New(cfg *config.Config, proc processor.Processor, st store.Store, gatherer prometheus.Gatherer, log logger.Logger) Server {
	maxUpload := cfg.Limits.MaxUploadBytes
	if maxUpload <= 0 || maxUpload > config.MaxUploadBytes {
		maxUpload = config.MaxUploadBytes
	}

	s := &implServer{
		processor:  proc,
		store:      st,
		logger:     log,
		uploadsDir: cfg.Paths.Uploads,
		maxUpload:  maxUpload,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pending: make(map[string]pendingUpload),
		now:     time.Now,
		done:    make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("POST /api/uploads", s.handleUpload)
	mux.HandleFunc("GET /api/process/ws", s.handleProcessWS)
	mux.HandleFunc("POST /api/regenerate", s.handleRegenerate)
	mux.HandleFunc("GET /api/documents/{locator}", s.handleDocument)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.handler = s.withRequestID(mux)
	go s.sweepLoop(sweepInterval)
	return s
}

func (s *implServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops the sweeper and removes every parked upload.
func (s *implServer) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()
		for id, p := range s.pending {
			removeFile(p.upload.Path)
			delete(s.pending, id)
		}
	})
	return nil
}

func (s *implServer) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			n := s.sweepExpiredLocked()
			s.mu.Unlock()
			if n > 0 {
				s.logger.Info(context.Background(), "Discarded %d unclaimed upload(s)", n)
			}
		}
	}
}
