package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	docxBodyFont = "Times New Roman"
	docxMonoFont = "Courier New"
)

// docxSink maps layout commands onto Word paragraphs. Word paginates on
// open, so vertical gaps become empty paragraphs.
type docxSink struct {
	doc  *docx.RootDoc
	font Font
}

func newDocxSink() (Sink, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	return &docxSink{doc: doc, font: bodyFont()}, nil
}

func (s *docxSink) SetFont(f Font) {
	s.font = f
}

func (s *docxSink) WriteText(text string, indent float64) {
	name := docxBodyFont
	if s.font.Family == Mono {
		name = docxMonoFont
	}
	pad := strings.Repeat(" ", int(indent/4))

	for _, line := range strings.Split(text, "\n") {
		p := s.doc.AddParagraph("")
		run := p.AddText(pad + line).Font(name).Size(uint64(s.font.Size)).Color("000000")
		if s.font.Bold {
			run.Bold(true)
		}
	}
}

func (s *docxSink) MoveDown(gap float64) {
	if gap < ParagraphGap {
		return
	}
	s.doc.AddParagraph("")
}

func (s *docxSink) DrawRule() {
	p := s.doc.AddParagraph("")
	p.AddText(strings.Repeat("_", 64)).Font(docxBodyFont).Size(uint64(StampSize)).Color("808080")
}

// Finish saves through a scratch file since the document API writes to paths.
func (s *docxSink) Finish(w io.Writer) error {
	dir, err := os.MkdirTemp("", "minutes-docx-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "document.docx")
	if err := s.doc.SaveTo(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
