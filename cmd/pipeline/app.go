package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm/gemini"
	"github.com/nguyentantai21042004/minutes-flow/internal/llm/openai"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
	"github.com/nguyentantai21042004/minutes-flow/internal/render"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
	"github.com/nguyentantai21042004/minutes-flow/internal/summarizer"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber/deepgram"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber/voxtral"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// app holds everything built once at process start.
type app struct {
	processor processor.Processor
	store     store.Store
	registry  *prometheus.Registry
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	stt, err := newTranscriber(cfg)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	r, err := render.New(render.Options{Format: cfg.Render.Format, Margin: cfg.Render.Margin})
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Paths.Database, cfg.Paths.Output)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	proc := processor.New(cfg, processor.Deps{
		Transcriber: stt,
		Summarizer:  summarizer.New(gen, cfg.Generation.Model, log),
		Renderer:    r,
		Store:       st,
		Executor:    executor.New(),
		Metrics:     processor.NewMetrics(registry),
	}, log)

	return &app{processor: proc, store: st, registry: registry}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func newTranscriber(cfg *config.Config) (transcriber.Transcriber, error) {
	if cfg.Transcription.APIKey == "" {
		return nil, fmt.Errorf("transcription.api_key is required for %s", cfg.Transcription.Provider)
	}

	switch cfg.Transcription.Provider {
	case "voxtral":
		return voxtral.NewClient(voxtral.Config{
			APIKey:  cfg.Transcription.APIKey,
			BaseURL: cfg.Transcription.BaseURL,
			Model:   cfg.Transcription.Model,
			Retries: 2,
		}), nil
	default:
		return deepgram.NewClient(deepgram.Config{
			APIKey:  cfg.Transcription.APIKey,
			BaseURL: cfg.Transcription.BaseURL,
			Model:   cfg.Transcription.Model,
			Retries: 2,
		}), nil
	}
}

func newGenerator(ctx context.Context, cfg *config.Config, log logger.Logger) (llm.Generator, error) {
	if cfg.Generation.APIKey == "" {
		return nil, fmt.Errorf("generation.api_key is required for %s", cfg.Generation.Provider)
	}

	switch cfg.Generation.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:  cfg.Generation.APIKey,
			BaseURL: cfg.Generation.BaseURL,
		}), nil
	default:
		// Several comma-separated keys are rotated when one hits its quota.
		var keys []string
		for _, k := range strings.Split(cfg.Generation.APIKey, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		return gemini.New(ctx, keys, log)
	}
}
