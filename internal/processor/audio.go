package processor

import (
	"context"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".webm": "audio/webm",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

// audioMIMEType picks the content type sent to the transcription provider.
func audioMIMEType(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// probeDuration asks ffprobe for the container duration in seconds. It is best
// effort: without ffprobe the end of the last utterance is used.
func (p *implProcessor) probeDuration(ctx context.Context, audioPath string, t transcript.Transcript) float64 {
	if p.executor != nil {
		args := []string{
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			audioPath,
		}
		out, err := p.executor.Execute(ctx, "ffprobe", args...)
		if err == nil {
			if d, perr := strconv.ParseFloat(strings.TrimSpace(out), 64); perr == nil && d > 0 {
				return d
			}
		} else {
			p.logger.Debug(ctx, "ffprobe unavailable for %s: %v", audioPath, err)
		}
	}

	var end float64
	for _, u := range t.Utterances {
		if u.End > end {
			end = u.End
		}
	}
	return end
}
