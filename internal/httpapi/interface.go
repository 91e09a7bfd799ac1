package httpapi

import "net/http"

// Server is the HTTP surface of the pipeline. Close stops background upkeep
// and discards uploads no websocket client claimed.
type Server interface {
	http.Handler
	Close() error
}
