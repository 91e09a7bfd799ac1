package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
	"github.com/nguyentantai21042004/minutes-flow/internal/prompt"
	"github.com/nguyentantai21042004/minutes-flow/internal/render"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
	"github.com/nguyentantai21042004/minutes-flow/internal/summarizer"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

type silentTranscriber struct{}

func (silentTranscriber) Name() string { return "silent" }

func (silentTranscriber) Transcribe(ctx context.Context, audio transcriber.Audio, opts transcriber.Options) (transcript.Response, error) {
	return transcript.Empty{Reason: "no speech"}, nil
}

type stubSummarizer struct {
	recordErr error
}

func (s *stubSummarizer) Model() string { return "stub-model" }

func (s *stubSummarizer) GenerateRecord(ctx context.Context, p prompt.Prompts) (summarizer.Record, error) {
	if s.recordErr != nil {
		return summarizer.Record{}, s.recordErr
	}
	return summarizer.Record{Raw: "sin acta"}, nil
}

func (s *stubSummarizer) GenerateSummary(ctx context.Context, p prompt.Prompts) (string, error) {
	return "# Resumen\n\n- Sin temas", nil
}

func newRealProcessor(t *testing.T, paths config.PathsConfig, sum summarizer.Summarizer) processor.Processor {
	t.Helper()

	st, err := store.New(paths.Database, paths.Output)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	r, err := render.New(render.Options{Format: render.FormatPDF})
	require.NoError(t, err)

	cfg := &config.Config{}
	require.NoError(t, cfg.Validate())

	return processor.New(cfg, processor.Deps{
		Transcriber: silentTranscriber{},
		Summarizer:  sum,
		Renderer:    r,
		Store:       st,
	}, logger.New("error"))
}

func TestInboxHandler_FailedRunKeepsRecording(t *testing.T) {
	paths := testPaths(t)
	recording := dropRecording(t, paths, "board-meeting.m4a")
	proc := newRealProcessor(t, paths, &stubSummarizer{recordErr: errors.New("429 quota exceeded")})
	h := NewInboxHandler(proc, paths, "es", logger.New("error"))

	err := h(context.Background(), recording)

	var pe *mferrors.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, mferrors.ErrCodeGenerationFailed, pe.Code)

	data, err := os.ReadFile(recording)
	require.NoError(t, err)
	assert.Equal(t, "recording-bytes", string(data))

	staged, _ := os.ReadDir(paths.Uploads)
	assert.Empty(t, staged)
	assert.NoDirExists(t, paths.Archived)
}

func TestInboxHandler_SuccessfulRunArchivesRecording(t *testing.T) {
	paths := testPaths(t)
	recording := dropRecording(t, paths, "retro.wav")
	proc := newRealProcessor(t, paths, &stubSummarizer{})
	h := NewInboxHandler(proc, paths, "es", logger.New("error"))

	require.NoError(t, h(context.Background(), recording))

	assert.NoFileExists(t, recording)
	assert.FileExists(t, filepath.Join(paths.Archived, "retro.wav"))
	assert.FileExists(t, filepath.Join(paths.Output, "retro.json"))

	staged, _ := os.ReadDir(paths.Uploads)
	assert.Empty(t, staged)
}

func TestMoveToArchived_KeepsExistingEntry(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.MkdirAll(paths.Archived, 0755))
	existing := filepath.Join(paths.Archived, "sync.mp3")
	require.NoError(t, os.WriteFile(existing, []byte("older"), 0644))

	dst, err := moveToArchived(dropRecording(t, paths, "sync.mp3"), paths.Archived)
	require.NoError(t, err)

	assert.NotEqual(t, existing, dst)
	older, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "older", string(older))
	assert.FileExists(t, dst)
}

func TestStageRecording_LeavesSourceInPlace(t *testing.T) {
	paths := testPaths(t)
	recording := dropRecording(t, paths, "call.ogg")

	staged, err := stageRecording(recording, paths.Uploads)
	require.NoError(t, err)
	require.NoError(t, os.Remove(staged))

	assert.FileExists(t, recording)
}
