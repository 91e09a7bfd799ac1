package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/events"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
)

// NewInboxHandler runs the pipeline for each inbox recording and writes the
// complete payload as <name>.json into paths.Output.
//
// The processor deletes the upload it is given, so it gets a staged copy in
// paths.Uploads. The original moves to paths.Archived on success and stays in
// the inbox on failure.
func NewInboxHandler(proc processor.Processor, paths config.PathsConfig, language string, log logger.Logger) EventHandler {
	return func(ctx context.Context, filePath string) error {
		name := filepath.Base(filePath)
		em := events.NewLog(log, name)

		staged, err := stageRecording(filePath, paths.Uploads)
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		defer os.Remove(staged)

		result, err := proc.Process(ctx, processor.Upload{
			Path:     staged,
			Filename: name,
			Language: language,
		}, em)
		if err != nil {
			log.Warn(ctx, "Leaving %s in the inbox after a failed run", name)
			return err
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

		out := filepath.Join(paths.Output, strings.TrimSuffix(name, filepath.Ext(name))+".json")
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("write result %s: %w", out, err)
		}

		if archived, err := moveToArchived(filePath, paths.Archived); err != nil {
			log.Warn(ctx, "Failed to move original to archived folder: %v", err)
		} else {
			log.Debug(ctx, "Archived %s as %s", name, archived)
		}

		log.Info(ctx, "Minutes ready: %s (document %s)", out, result.DocumentURL)
		return nil
	}
}

// stageRecording links (or copies, across filesystems) src into dir under a
// unique name and returns the new path.
func stageRecording(src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, fmt.Sprintf("%d-inbox-%s", time.Now().UnixNano(), filepath.Base(src)))

	if err := os.Link(src, dst); err == nil {
		return dst, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

// moveToArchived moves a processed recording out of the inbox. An existing
// archive entry with the same name is never overwritten.
func moveToArchived(src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		dst = filepath.Join(dir, fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), filepath.Base(src)))
	}
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}
