package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
	"github.com/nguyentantai21042004/minutes-flow/internal/events"
	"github.com/nguyentantai21042004/minutes-flow/internal/prompt"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

// DocumentURLPrefix is the retrieval path documents are served under.
const DocumentURLPrefix = "/api/documents/"

// DocumentURL returns the download URL of a stored document.
func DocumentURL(locator string) string {
	return DocumentURLPrefix + locator
}

// Process orchestrates the entire meeting pipeline
func (p *implProcessor) Process(ctx context.Context, upload Upload, em events.Emitter) (*Result, error) {
	defer p.cleanupTempFile(ctx, upload.Path)

	em = events.Guard(em)
	startTime := time.Now()
	lang := prompt.ResolveLanguage(upload.Language)
	if upload.Language == "" {
		lang = prompt.ResolveLanguage(p.language)
	}

	p.logger.Info(ctx, "Starting meeting processing: %s (language %s)", upload.Filename, lang)
	p.transition(ctx, StateReceived)

	if !p.gate.tryEnter() {
		p.progress(ctx, em, StateQueued, fmt.Sprintf("%s (%d running, %d ahead)",
			progressMessages[StateQueued], p.gate.running(), p.gate.queued()))
		if err := p.gate.wait(ctx); err != nil {
			return p.fail(ctx, em, mferrors.Classify(err, string(StateQueued)))
		}
	}
	defer p.gate.leave()

	// Transcribing: provider failures degrade to an empty transcript.
	p.progress(ctx, em, StateTranscribing, progressMessages[StateTranscribing])
	stageStart := time.Now()
	t := p.transcribe(ctx, upload, lang)
	duration := p.probeDuration(ctx, upload.Path, t)
	p.observe(StateTranscribing, stageStart)
	p.progress(ctx, em, StateTranscribing, fmt.Sprintf("Transcription finished: %d utterances, %d speakers",
		t.UtteranceCount(), len(t.SpeakerLabels())))

	prompts := prompt.Build(t, lang)

	p.progress(ctx, em, StateGeneratingRecord, progressMessages[StateGeneratingRecord])
	stageStart = time.Now()
	genCtx, cancel := context.WithTimeout(ctx, p.limits.GenerationTimeout)
	record, err := p.summarizer.GenerateRecord(genCtx, prompts)
	cancel()
	p.observe(StateGeneratingRecord, stageStart)
	if err != nil {
		return p.fail(ctx, em, mferrors.Classify(err, mferrors.StageGeneratingRecord))
	}
	if record.Fallback() {
		p.metrics.RecordFallbacks.Inc()
	}

	p.progress(ctx, em, StateGeneratingSummary, progressMessages[StateGeneratingSummary])
	stageStart = time.Now()
	genCtx, cancel = context.WithTimeout(ctx, p.limits.GenerationTimeout)
	summary, err := p.summarizer.GenerateSummary(genCtx, prompts)
	cancel()
	p.observe(StateGeneratingSummary, stageStart)
	if err != nil {
		return p.fail(ctx, em, mferrors.Classify(err, mferrors.StageGeneratingSum))
	}

	p.progress(ctx, em, StateRendering, progressMessages[StateRendering])
	stageStart = time.Now()
	doc, err := p.renderDocument(ctx, summary, prompt.DocumentTitle(lang), "pipeline")
	p.observe(StateRendering, stageStart)
	if err != nil {
		return p.fail(ctx, em, mferrors.Classify(err, mferrors.StageRendering))
	}

	speakers := t.SpeakerLabels()
	result := &Result{
		Model:           p.summarizer.Model(),
		Minutes:         record,
		SummaryMarkdown: summary,
		DocumentURL:     DocumentURL(doc.Locator),
		Locator:         doc.Locator,
		Speakers:        speakers,
		Stats: Stats{
			Utterances: t.UtteranceCount(),
			Speakers:   len(speakers),
		},
		Diarization: Diarization{
			Utterances:      t.Utterances,
			FullText:        t.FullText,
			Language:        lang,
			DurationSeconds: duration,
			PerSpeaker:      t.PerSpeaker(),
		},
	}

	p.transition(ctx, StateComplete)
	p.metrics.RunsTotal.WithLabelValues(string(StateComplete)).Inc()
	p.emit(ctx, em, events.Complete(result))

	p.logger.Info(ctx, "Processing completed: %s -> %s in %s", upload.Filename, doc.Path, time.Since(startTime))
	return result, nil
}

func (p *implProcessor) transcribe(ctx context.Context, upload Upload, lang string) transcript.Transcript {
	data, err := os.ReadFile(upload.Path)
	if err != nil {
		p.logger.Warn(ctx, "Failed to read upload %s, continuing without transcript: %v", upload.Path, err)
		return transcript.Normalize(transcript.Empty{Reason: err.Error()})
	}

	filename := upload.Filename
	if filename == "" {
		filename = filepath.Base(upload.Path)
	}
	audio := transcriber.Audio{
		Data:     data,
		MIMEType: audioMIMEType(upload.MIMEType, filename),
		Filename: filename,
	}

	tctx, cancel := context.WithTimeout(ctx, p.limits.TranscriptionTimeout)
	defer cancel()

	resp, err := p.transcriber.Transcribe(tctx, audio, transcriber.DefaultOptions(lang))
	if err != nil {
		p.logger.Warn(ctx, "Transcription with %s failed, continuing with empty transcript: %v", p.transcriber.Name(), err)
	}

	t := transcript.Normalize(resp)
	if t.IsEmpty() {
		p.logger.Warn(ctx, "Transcript for %s is empty", filename)
	}
	return t
}

func (p *implProcessor) transition(ctx context.Context, s State) {
	p.logger.Debug(ctx, "Pipeline state: %s", s)
}

func (p *implProcessor) progress(ctx context.Context, em events.Emitter, s State, msg string) {
	p.transition(ctx, s)
	p.emit(ctx, em, events.Progress(string(s), msg))
}

// emit never fails the run: a caller that went away stops receiving events.
func (p *implProcessor) emit(ctx context.Context, em events.Emitter, e events.Event) {
	if err := em.Emit(ctx, e); err != nil {
		p.logger.Debug(ctx, "Failed to deliver %s event: %v", e.Kind, err)
	}
}

func (p *implProcessor) observe(s State, start time.Time) {
	p.metrics.StageSeconds.WithLabelValues(string(s)).Observe(time.Since(start).Seconds())
}

func (p *implProcessor) fail(ctx context.Context, em events.Emitter, pe *mferrors.PipelineError) (*Result, error) {
	p.logger.Error(ctx, "Pipeline failed at %s: %v", pe.Stage, pe)
	p.transition(ctx, StateFailed)
	p.metrics.RunsTotal.WithLabelValues(string(StateFailed)).Inc()
	p.emit(ctx, em, events.Error(events.ErrorPayload{
		Message: pe.UserMessage(),
		Detail:  pe.Error(),
		Code:    string(pe.Code),
		Stage:   pe.Stage,
	}))
	return nil, pe
}
