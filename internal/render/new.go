package render

import "fmt"

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

type Options struct {
	Format string
	Margin float64
}

type implRenderer struct {
	format  string
	newSink func() (Sink, error)
}

// New creates a Renderer for the configured format.
func New(opts Options) (Renderer, error) {
	if opts.Margin <= 0 {
		opts.Margin = 50
	}

	r := &implRenderer{format: opts.Format}
	switch opts.Format {
	case "", FormatPDF:
		r.format = FormatPDF
		r.newSink = func() (Sink, error) { return newPDFSink(opts.Margin), nil }
	case FormatDOCX:
		r.newSink = newDocxSink
	default:
		return nil, fmt.Errorf("unsupported document format %q", opts.Format)
	}
	return r, nil
}

// ContentType returns the MIME type for a document extension.
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
