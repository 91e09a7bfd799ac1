package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// withRequestID tags the request context with an id for log correlation. The
// writer is passed through untouched so streaming handlers keep Flush/Hijack.
func (s *implServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := logger.WithRequestID(r.Context(), id)
		start := time.Now()
		s.logger.Debug(ctx, "%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Debug(ctx, "%s %s done in %s", r.Method, r.URL.Path, time.Since(start))
	})
}
