package render

import (
	"context"
	"fmt"
	"io"
)

func (r *implRenderer) Format() string {
	return r.format
}

// Render lays doc out into a fresh sink and writes the finished file to w.
// Nothing is written to w when layout fails or ctx is done.
func (r *implRenderer) Render(ctx context.Context, doc Document, w io.Writer) error {
	sink, err := r.newSink()
	if err != nil {
		return fmt.Errorf("create %s sink: %w", r.format, err)
	}
	if err := Layout(ctx, doc, sink); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sink.Finish(w); err != nil {
		return fmt.Errorf("write %s: %w", r.format, err)
	}
	return nil
}
