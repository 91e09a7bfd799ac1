package watcher

import "context"

// Watcher feeds recordings dropped into an inbox folder to an EventHandler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one recording that finished landing in the inbox.
type EventHandler func(ctx context.Context, filePath string) error
