package render

import (
	"context"
	"io"
	"time"
)

// Document is the input of one render: a fixed header plus the narrative markup.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Markdown    string
}

// Renderer lays out a Document as a paginated file written to w.
type Renderer interface {
	Render(ctx context.Context, doc Document, w io.Writer) error
	// Format returns the file extension of the produced documents ("pdf", "docx").
	Format() string
}

// Family selects between the proportional body face and the fixed-width face.
type Family int

const (
	Body Family = iota
	Mono
)

type Font struct {
	Family Family
	Bold   bool
	Size   float64
}

// Sink receives layout commands and persists the resulting document.
// Sizes and offsets are in points.
type Sink interface {
	SetFont(f Font)
	WriteText(text string, indent float64)
	MoveDown(gap float64)
	DrawRule()
	Finish(w io.Writer) error
}
