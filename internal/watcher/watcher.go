package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

var audioExtensions = []string{".mp3", ".m4a", ".wav", ".ogg", ".opus", ".webm", ".flac", ".aac", ".mp4"}

// maxSettleChecks caps how long a recording that keeps growing is waited on.
const maxSettleChecks = 120

type implWatcher struct {
	inboxDir string
	handler  EventHandler
	logger   logger.Logger
	fsw      *fsnotify.Watcher
	slots    chan struct{}
	settle   time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// Start dispatches every recording that lands in the inbox until ctx is done.
// In-flight recordings are waited for before it returns.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching %s for recordings (%s), %d at a time",
		w.inboxDir, strings.Join(audioExtensions, " "), cap(w.slots))

	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Inbox watcher stopping, %d recording(s) in flight", w.pending())
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("inbox events channel closed")
			}
			if !event.Has(fsnotify.Create) || !isAudioFile(event.Name) {
				continue
			}
			if !w.claim(event.Name) {
				w.logger.Debug(ctx, "Already handling %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New recording: %s", filepath.Base(event.Name))
			select {
			case w.slots <- struct{}{}:
			case <-ctx.Done():
				w.release(event.Name)
				return ctx.Err()
			}

			w.wg.Add(1)
			go w.dispatch(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("inbox errors channel closed")
			}
			w.logger.Error(ctx, "Inbox watcher error: %v", err)
		}
	}
}

func (w *implWatcher) dispatch(ctx context.Context, path string) {
	defer w.wg.Done()
	defer func() { <-w.slots }()
	defer w.release(path)

	if err := waitUntilWritten(ctx, path, w.settle); err != nil {
		w.logger.Warn(ctx, "Skipping %s: %v", filepath.Base(path), err)
		return
	}
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(ctx, "Recording %s failed: %v", filepath.Base(path), err)
	}
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inFlight[path]; busy {
		return false
	}
	w.inFlight[path] = struct{}{}
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	delete(w.inFlight, path)
	w.mu.Unlock()
}

func (w *implWatcher) pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.inFlight)
}

// Stop closes the underlying fsnotify watcher.
func (w *implWatcher) Stop() error {
	return w.fsw.Close()
}

// waitUntilWritten returns once the file size has held still for one settle
// interval, so copies into the inbox are not picked up half written.
func waitUntilWritten(ctx context.Context, path string, settle time.Duration) error {
	var last int64 = -1
	for i := 0; i < maxSettleChecks; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == last && last > 0 {
			return nil
		}
		last = info.Size()

		select {
		case <-time.After(settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("still growing after %d checks", maxSettleChecks)
}

// isAudioFile reports whether path has a recording extension. Hidden files
// and partial downloads are skipped.
func isAudioFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range audioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
