package processor

import (
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/render"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
	"github.com/nguyentantai21042004/minutes-flow/internal/summarizer"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// Deps are the collaborators of the pipeline. Executor and Metrics are optional.
type Deps struct {
	Transcriber transcriber.Transcriber
	Summarizer  summarizer.Summarizer
	Renderer    render.Renderer
	Store       store.Store
	Executor    executor.Executor
	Metrics     *Metrics
}

type implProcessor struct {
	limits      config.LimitsConfig
	language    string
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	renderer    render.Renderer
	store       store.Store
	executor    executor.Executor
	metrics     *Metrics
	logger      logger.Logger
	gate        *admission
	now         func() time.Time
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Processor {
	limits := cfg.Limits
	if limits.RenderTimeout <= 0 {
		limits.RenderTimeout = config.RenderTimeout
	}
	if limits.TranscriptionTimeout <= 0 {
		limits.TranscriptionTimeout = 10 * time.Minute
	}
	if limits.GenerationTimeout <= 0 {
		limits.GenerationTimeout = 5 * time.Minute
	}
	if limits.MaxConcurrent <= 0 {
		limits.MaxConcurrent = 1
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &implProcessor{
		limits:      limits,
		language:    cfg.Transcription.Language,
		transcriber: deps.Transcriber,
		summarizer:  deps.Summarizer,
		renderer:    deps.Renderer,
		store:       deps.Store,
		executor:    deps.Executor,
		metrics:     metrics,
		logger:      log,
		gate:        newAdmission(limits.MaxConcurrent),
		now:         time.Now,
	}
}

func (p *implProcessor) Model() string {
	return p.summarizer.Model()
}
