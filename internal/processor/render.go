package processor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"
	"github.com/nguyentantai21042004/minutes-flow/internal/prompt"
	"github.com/nguyentantai21042004/minutes-flow/internal/render"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
)

type renderOutcome struct {
	data []byte
	err  error
}

// renderDocument races the renderer against the render budget. The document
// is rendered into memory and only saved once rendering finished in time, so
// an abandoned render never yields a locator.
func (p *implProcessor) renderDocument(ctx context.Context, markdown, title, source string) (store.Document, error) {
	limit := p.limits.RenderTimeout

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan renderOutcome, 1)
	go func() {
		var buf bytes.Buffer
		err := p.renderer.Render(rctx, render.Document{
			Title:       title,
			GeneratedAt: p.now(),
			Markdown:    markdown,
		}, &buf)
		done <- renderOutcome{data: buf.Bytes(), err: err}
	}()

	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			return store.Document{}, fmt.Errorf("render %s: %w", p.renderer.Format(), out.err)
		}
		doc, err := p.store.Save(ctx, out.data, store.Meta{
			Format: p.renderer.Format(),
			Title:  title,
			Source: source,
		})
		if err != nil {
			return store.Document{}, fmt.Errorf("store document: %w", err)
		}
		return doc, nil
	case <-timer.C:
		p.metrics.RenderTimeouts.Inc()
		p.logger.Warn(ctx, "Render exceeded %s, abandoning document", limit)
		return store.Document{}, mferrors.NewRenderTimeout(limit)
	case <-ctx.Done():
		return store.Document{}, ctx.Err()
	}
}

// Regenerate renders edited markup into a new, distinct document.
func (p *implProcessor) Regenerate(ctx context.Context, markdown, title string) (store.Document, error) {
	if strings.TrimSpace(markdown) == "" {
		return store.Document{}, fmt.Errorf("regenerate: %w: markdown is required", mferrors.ErrValidation)
	}
	if title == "" {
		title = prompt.DocumentTitle(p.language)
	}

	doc, err := p.renderDocument(ctx, markdown, title, "regenerate")
	if err != nil {
		return store.Document{}, mferrors.Classify(err, mferrors.StageRendering)
	}
	p.logger.Info(ctx, "Regenerated document %s", doc.Locator)
	return doc, nil
}
