package processor

import (
	"context"
	"os"
)

// cleanupTempFile removes the uploaded artifact. Failures are logged and
// never change the outcome of the run.
func (p *implProcessor) cleanupTempFile(ctx context.Context, filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
		}
		return
	}
	p.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
}
