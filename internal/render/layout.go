package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	BodySize  = 11.0
	TitleSize = 20.0
	CodeSize  = 9.0
	StampSize = 9.0

	ListIndent = 18.0
	CodeIndent = 18.0

	HeadingGap   = 6.0
	ParagraphGap = 8.0
	ListGap      = 12.0
	RuleGap      = 8.0
	HeaderGap    = 14.0

	Bullet = "•"

	stampLayout = "2006-01-02 15:04"
)

var headingSizes = map[int]float64{1: 18, 2: 16, 3: 14, 4: 13, 5: 12, 6: 11}

// HeadingSize returns the point size used for a heading of the given level.
func HeadingSize(level int) float64 {
	if s, ok := headingSizes[level]; ok {
		return s
	}
	return BodySize
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Layout parses doc.Markdown and issues the layout commands for the whole
// document, header included, to sink. It stops early when ctx is done.
func Layout(ctx context.Context, doc Document, sink Sink) error {
	src := []byte(doc.Markdown)
	root := markdown.Parser().Parse(text.NewReader(src))

	sink.SetFont(Font{Family: Body, Bold: true, Size: TitleSize})
	sink.WriteText(doc.Title, 0)
	sink.SetFont(Font{Family: Body, Size: StampSize})
	sink.WriteText(doc.GeneratedAt.Format(stampLayout), 0)
	sink.MoveDown(HeaderGap)
	sink.SetFont(bodyFont())

	w := &walker{sink: sink, src: src}
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if err := ctx.Err(); err != nil {
			return ast.WalkStop, err
		}
		if entering {
			return w.enter(n), nil
		}
		w.exit(n)
		return ast.WalkContinue, nil
	})
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}

func bodyFont() Font {
	return Font{Family: Body, Size: BodySize}
}

// walker is the renderer state updated once per token. Block nodes act as
// open/close tokens; Heading, Paragraph, TextBlock and TableCell delimit the
// inline runs.
type walker struct {
	sink Sink
	src  []byte

	listDepth int
	inTable   bool
	heading   int

	inRun   bool
	run     strings.Builder
	bold    bool
	anyBold bool
}

func (w *walker) inList() bool {
	return w.listDepth > 0
}

func (w *walker) enter(n ast.Node) ast.WalkStatus {
	switch n := n.(type) {
	case *ast.Heading:
		w.heading = n.Level
		w.sink.SetFont(Font{Family: Body, Bold: true, Size: HeadingSize(n.Level)})
		w.startRun()
	case *ast.List:
		w.listDepth++
	case *ast.Paragraph, *ast.TextBlock, *extast.TableCell:
		w.startRun()
	case *extast.Table:
		w.inTable = true
	case *ast.ThematicBreak:
		w.sink.MoveDown(RuleGap)
		w.sink.DrawRule()
		w.sink.MoveDown(RuleGap)
	case *ast.FencedCodeBlock:
		w.code(n.Lines())
		return ast.WalkSkipChildren
	case *ast.CodeBlock:
		w.code(n.Lines())
		return ast.WalkSkipChildren
	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren
	case *ast.Text:
		w.write(n.Segment.Value(w.src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.write([]byte(" "))
		}
	case *ast.String:
		w.write(n.Value)
	case *ast.AutoLink:
		w.write(n.Label(w.src))
	case *ast.Emphasis:
		if n.Level == 2 {
			w.bold = true
			w.anyBold = true
		}
	}
	return ast.WalkContinue
}

func (w *walker) exit(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		w.flush()
		w.heading = 0
		w.sink.MoveDown(HeadingGap)
		w.sink.SetFont(bodyFont())
	case *ast.Paragraph:
		w.flush()
		if !w.inList() && !w.inTable {
			w.sink.MoveDown(ParagraphGap)
		}
	case *ast.TextBlock, *extast.TableCell:
		w.flush()
	case *ast.List:
		w.listDepth--
		if !w.inList() {
			w.sink.MoveDown(ListGap)
		}
	case *extast.Table:
		w.inTable = false
		w.sink.MoveDown(ParagraphGap)
	case *ast.Emphasis:
		if n.Level == 2 {
			w.bold = false
		}
	}
}

func (w *walker) startRun() {
	w.inRun = true
	w.run.Reset()
	w.bold = false
	w.anyBold = false
}

func (w *walker) write(b []byte) {
	if w.inRun {
		w.run.Write(b)
	}
}

// flush emits the pending run as a single text block. A run containing any
// bold piece is rendered entirely in bold.
func (w *walker) flush() {
	if !w.inRun {
		return
	}
	w.inRun = false

	text := strings.TrimSpace(w.run.String())
	w.run.Reset()
	if text == "" {
		return
	}

	font := bodyFont()
	font.Bold = w.anyBold
	if w.heading > 0 {
		font = Font{Family: Body, Bold: true, Size: HeadingSize(w.heading)}
	}

	indent := 0.0
	if w.inList() && w.heading == 0 {
		text = Bullet + " " + text
		indent = ListIndent
	}

	w.sink.SetFont(font)
	w.sink.WriteText(text, indent)
}

func (w *walker) code(lines *text.Segments) {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.src))
	}

	w.sink.SetFont(Font{Family: Mono, Size: CodeSize})
	if content := strings.TrimRight(b.String(), "\n"); content != "" {
		w.sink.WriteText(content, CodeIndent)
	}
	w.sink.MoveDown(ParagraphGap)
	w.sink.SetFont(bodyFont())
}
