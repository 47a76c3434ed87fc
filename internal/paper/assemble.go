package paper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/stemsi/exstem-paper/internal/model"
)

// ErrFontUnavailable is returned when a font cannot be read or parsed.
var ErrFontUnavailable = errors.New("font unavailable")

const (
	familyRegular = "regular"
	familyBold    = "bold"
)

// Fonts holds the TrueType data used to draw the paper.
type Fonts struct {
	Regular []byte
	Bold    []byte
}

// DefaultFonts returns the embedded Go fonts.
func DefaultFonts() Fonts {
	return Fonts{Regular: goregular.TTF, Bold: gobold.TTF}
}

// LoadFonts reads TTF files from disk. An empty path falls back to the
// embedded face for that slot.
func LoadFonts(regularPath, boldPath string) (Fonts, error) {
	fonts := DefaultFonts()
	if regularPath != "" {
		data, err := os.ReadFile(regularPath)
		if err != nil {
			return Fonts{}, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
		}
		fonts.Regular = data
	}
	if boldPath != "" {
		data, err := os.ReadFile(boldPath)
		if err != nil {
			return Fonts{}, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
		}
		fonts.Bold = data
	}
	return fonts, nil
}

// Renderer assembles PDFs from documents.
type Renderer struct {
	fonts Fonts
	spec  PageSpec
	now   func() time.Time
}

// NewRenderer returns a renderer drawing A4 pages with fonts.
func NewRenderer(fonts Fonts) *Renderer {
	return &Renderer{fonts: fonts, spec: A4(), now: time.Now}
}

// WithWatermark sets the footer drawn for watermark blocks without text.
func (r *Renderer) WithWatermark(text string) *Renderer {
	if text = strings.TrimSpace(text); text != "" {
		r.spec.Watermark = text
	}
	return r
}

var defaultRenderer = NewRenderer(DefaultFonts())

// Render lays out doc with the embedded fonts and writes the PDF to w.
func Render(ctx context.Context, doc model.Document, w io.Writer) error {
	return defaultRenderer.Render(ctx, doc, w)
}

// Render lays out doc and writes the PDF to w. Font failures come back
// wrapped in ErrFontUnavailable; a cancelled ctx stops between pages.
func (r *Renderer) Render(ctx context.Context, doc model.Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4, Unit: gopdf.UnitPT})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        doc.Title,
		Creator:      "exstem-paper",
		Producer:     "exstem-paper",
		CreationDate: r.now(),
	})
	if err := pdf.AddTTFFontData(familyRegular, r.fonts.Regular); err != nil {
		return fmt.Errorf("%w: regular: %v", ErrFontUnavailable, err)
	}
	if err := pdf.AddTTFFontData(familyBold, r.fonts.Bold); err != nil {
		return fmt.Errorf("%w: bold: %v", ErrFontUnavailable, err)
	}

	m := &pdfMeasurer{pdf: pdf, spec: r.spec}
	res, err := Layout(doc, m, r.spec)
	if err != nil {
		return err
	}

	for _, page := range res.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		pdf.AddPage()
		for _, e := range page.Elements {
			if err := m.draw(e); err != nil {
				return fmt.Errorf("draw page %d: %w", page.Number, err)
			}
		}
		if err := m.footer(page.Footer); err != nil {
			return fmt.Errorf("draw footer %d: %w", page.Number, err)
		}
	}

	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// pdfMeasurer measures and draws with the same gopdf instance so widths
// match the glyphs that end up on the page.
type pdfMeasurer struct {
	pdf  *gopdf.GoPdf
	spec PageSpec
}

func (m *pdfMeasurer) use(style Style) error {
	family := familyRegular
	if style == StyleBold {
		family = familyBold
	}
	return m.pdf.SetFont(family, "", m.spec.FontSize(style))
}

func (m *pdfMeasurer) Width(style Style, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	if err := m.use(style); err != nil {
		return 0, err
	}
	return m.pdf.MeasureTextWidth(text)
}

func (m *pdfMeasurer) draw(e Element) error {
	switch e.Kind {
	case ElementText:
		if e.Text == "" {
			return nil
		}
		if err := m.use(e.Style); err != nil {
			return err
		}
		m.pdf.SetTextColor(17, 17, 17)
		m.pdf.SetXY(e.X, e.Y)
		return m.pdf.Cell(nil, e.Text)
	case ElementRule:
		m.pdf.SetStrokeColor(150, 150, 150)
		m.pdf.SetLineWidth(0.5)
		m.pdf.Line(e.X, e.Y, e.X+e.W, e.Y)
	case ElementBox:
		m.pdf.SetStrokeColor(40, 40, 40)
		m.pdf.SetLineWidth(0.8)
		m.pdf.RectFromUpperLeftWithStyle(e.X, e.Y, e.W, e.H, "D")
	case ElementShade:
		m.pdf.SetFillColor(242, 242, 242)
		m.pdf.RectFromUpperLeftWithStyle(e.X, e.Y, e.W, e.H, "F")
	}
	return nil
}

func (m *pdfMeasurer) footer(text string) error {
	if text == "" {
		return nil
	}
	w, err := m.Width(StyleSmall, text)
	if err != nil {
		return err
	}
	m.pdf.SetTextColor(120, 120, 120)
	m.pdf.SetXY((m.spec.Width-w)/2, m.spec.FooterY)
	return m.pdf.Cell(nil, text)
}

// Filename turns an exam title into a download file name.
func Filename(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(sb.String(), "-")
	if name == "" {
		name = "prova"
	}
	return name + ".pdf"
}
