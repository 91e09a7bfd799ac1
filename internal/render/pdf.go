package render

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const lineSpacing = 1.35

// pdfSink writes through fpdf's internal cursor; page breaks are automatic.
type pdfSink struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	margin    float64
	size      float64
}

func newPDFSink(margin float64) *pdfSink {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	s := &pdfSink{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		margin:    margin,
	}
	s.SetFont(bodyFont())
	return s
}

func (s *pdfSink) SetFont(f Font) {
	family := "Helvetica"
	if f.Family == Mono {
		family = "Courier"
	}
	style := ""
	if f.Bold {
		style = "B"
	}
	s.pdf.SetFont(family, style, f.Size)
	s.size = f.Size
}

func (s *pdfSink) WriteText(text string, indent float64) {
	s.pdf.SetLeftMargin(s.margin + indent)
	s.pdf.SetX(s.margin + indent)
	s.pdf.MultiCell(0, s.size*lineSpacing, s.translate(text), "", "L", false)
	s.pdf.SetLeftMargin(s.margin)
}

func (s *pdfSink) MoveDown(gap float64) {
	s.pdf.Ln(gap)
}

func (s *pdfSink) DrawRule() {
	width, _ := s.pdf.GetPageSize()
	y := s.pdf.GetY()
	s.pdf.SetLineWidth(0.5)
	s.pdf.Line(s.margin, y, width-s.margin, y)
}

func (s *pdfSink) Finish(w io.Writer) error {
	if err := s.pdf.Error(); err != nil {
		return err
	}
	return s.pdf.Output(w)
}
