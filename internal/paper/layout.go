// Package paper lays exams out onto fixed-size pages and assembles the
// printable PDF.
//
// Layout is pure: given a document, a text measurer and a page geometry it
// always produces the same pages. Render adds the only side effects, loading
// fonts and writing the PDF bytes.
package paper

import (
	"fmt"
	"strings"

	"github.com/stemsi/exstem-paper/internal/format"
	"github.com/stemsi/exstem-paper/internal/model"
)

// Style selects the face and size of a text element.
type Style int

const (
	StyleBody Style = iota
	StyleBold
	StyleSmall
)

// Measurer reports the rendered width of text, in points.
type Measurer interface {
	Width(style Style, text string) (float64, error)
}

// PageSpec is the page geometry, in points.
type PageSpec struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
	MarginX      float64
	FooterY      float64

	BodySize  float64
	SmallSize float64
	Leading   float64

	RuleGap  float64
	BlockGap float64
	Indent   float64

	// Watermark is the footer used when the watermark block has no text.
	Watermark string
}

// DefaultWatermark is the footer of watermarked documents unless configured.
const DefaultWatermark = "Feito com ExStem"

// A4 is the default page.
func A4() PageSpec {
	return PageSpec{
		Width:        595.28,
		Height:       841.89,
		MarginTop:    48,
		MarginBottom: 64,
		MarginX:      48,
		FooterY:      841.89 - 40,
		BodySize:     11,
		SmallSize:    9,
		Leading:      1.4,
		RuleGap:      22,
		BlockGap:     16,
		Indent:       14,
		Watermark:    DefaultWatermark,
	}
}

// FontSize returns the point size used for style.
func (p PageSpec) FontSize(s Style) float64 {
	if s == StyleSmall {
		return p.SmallSize
	}
	return p.BodySize
}

// LineHeight returns the vertical advance of one line of style.
func (p PageSpec) LineHeight(s Style) float64 {
	return p.FontSize(s) * p.Leading
}

// ContentWidth is the usable width between the side margins.
func (p PageSpec) ContentWidth() float64 {
	return p.Width - 2*p.MarginX
}

// ContentHeight is the usable height of one page, footer excluded.
func (p PageSpec) ContentHeight() float64 {
	return p.Height - p.MarginBottom - p.MarginTop
}

// Ruled writing lines per question type.
const (
	RedactionLines = 30
	EssayLines     = 5
	EssayLinesHard = 10
)

// WritingLines returns how many ruled lines an essay or open question gets.
func WritingLines(difficulty string) int {
	if difficulty == "hard" {
		return EssayLinesHard
	}
	return EssayLines
}

// ElementKind says how an element is drawn.
type ElementKind int

const (
	// ElementText is a single line of text with its top-left at X,Y.
	ElementText ElementKind = iota
	// ElementRule is a horizontal line from X to X+W at Y.
	ElementRule
	// ElementBox is a stroked rectangle.
	ElementBox
	// ElementShade is a filled rectangle drawn behind text.
	ElementShade
)

// Element is one positioned drawing primitive.
type Element struct {
	Kind  ElementKind
	X     float64
	Y     float64
	W     float64
	H     float64
	Style Style
	Text  string
}

// Page is one laid-out page.
type Page struct {
	Number   int
	Elements []Element
	Footer   string
}

// Texts returns the text of every text element on the page, in draw order.
func (p Page) Texts() []string {
	var out []string
	for _, e := range p.Elements {
		if e.Kind == ElementText {
			out = append(out, e.Text)
		}
	}
	return out
}

// Count returns how many elements of kind the page holds.
func (p Page) Count(kind ElementKind) int {
	n := 0
	for _, e := range p.Elements {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Result is a paginated document.
type Result struct {
	Title     string
	Pages     []Page
	Watermark string
	// HasWatermark replaces the page-number footer with Watermark.
	HasWatermark bool
}

// Layout paginates doc. The watermark block leaves the flow and becomes the
// footer of every page; without one, pages are footed "Página X de Y".
func Layout(doc model.Document, m Measurer, spec PageSpec) (*Result, error) {
	res := &Result{Title: doc.Title}
	if wm, ok := doc.Watermark(); ok {
		res.HasWatermark = true
		if t, ok := format.Resolve(wm).Body.(format.Text); ok {
			res.Watermark = strings.TrimSpace(t.Text)
		}
		if res.Watermark == "" {
			res.Watermark = spec.Watermark
		}
	}

	numbers := format.Number(doc.Blocks)
	b := &builder{m: m, spec: spec}
	p := &paginator{spec: spec}
	p.newPage()
	for _, blk := range doc.Blocks {
		if blk.IsWatermark() {
			continue
		}
		c := b.chunk(blk, numbers[blk.ID])
		if b.err != nil {
			return nil, fmt.Errorf("measure block %s: %w", blk.ID, b.err)
		}
		p.place(c)
	}

	res.Pages = p.pages
	for i := range res.Pages {
		if res.HasWatermark {
			res.Pages[i].Footer = res.Watermark
		} else {
			res.Pages[i].Footer = fmt.Sprintf("Página %d de %d", i+1, len(res.Pages))
		}
	}
	return res, nil
}

// ─── Pagination ─────────────────────────────────────────────────────────────

// row is the unit of page breaking. Element Y values are relative to the
// top of the row.
type row struct {
	h     float64
	elems []Element
}

// chunk is the laid-out form of one block.
type chunk struct {
	rows        []row
	keep        bool
	breakBefore bool
}

func (c chunk) height() float64 {
	h := 0.0
	for _, r := range c.rows {
		h += r.h
	}
	return h
}

type paginator struct {
	spec  PageSpec
	pages []Page
	y     float64
}

func (p *paginator) newPage() {
	p.pages = append(p.pages, Page{Number: len(p.pages) + 1})
	p.y = p.spec.MarginTop
}

func (p *paginator) atTop() bool {
	return p.y <= p.spec.MarginTop
}

func (p *paginator) remaining() float64 {
	return p.spec.Height - p.spec.MarginBottom - p.y
}

// place puts a chunk on the pages. A kept chunk that does not fit moves
// whole to the next page; it is split by rows only when taller than a page.
func (p *paginator) place(c chunk) {
	if len(c.rows) == 0 {
		return
	}
	if c.breakBefore && !p.atTop() {
		p.newPage()
	}
	gap := 0.0
	if !p.atTop() {
		gap = p.spec.BlockGap
	}
	h := c.height()
	if c.keep && !p.atTop() && h > p.remaining()-gap && h <= p.spec.ContentHeight() {
		p.newPage()
		gap = 0
	}
	p.y += gap
	for _, r := range c.rows {
		if r.h > p.remaining() && !p.atTop() {
			p.newPage()
		}
		page := &p.pages[len(p.pages)-1]
		for _, e := range r.elems {
			e.Y += p.y
			page.Elements = append(page.Elements, e)
		}
		p.y += r.h
	}
}

// ─── Block layout ───────────────────────────────────────────────────────────

type builder struct {
	m    Measurer
	spec PageSpec
	err  error
}

func (b *builder) width(style Style, text string) float64 {
	if b.err != nil {
		return 0
	}
	w, err := b.m.Width(style, text)
	if err != nil {
		b.err = err
		return 0
	}
	return w
}

// wrap breaks text into lines no wider than limit. Explicit newlines start new
// lines; words longer than a line are broken between runes.
func (b *builder) wrap(style Style, text string, limit float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if b.width(style, candidate) <= limit {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			if b.width(style, word) <= limit {
				line = word
				continue
			}
			piece := ""
			for _, r := range word {
				if piece != "" && b.width(style, piece+string(r)) > limit {
					lines = append(lines, piece)
					piece = ""
				}
				piece += string(r)
			}
			line = piece
		}
		lines = append(lines, line)
	}
	return lines
}

func (b *builder) textRows(style Style, text string, x, limit float64) []row {
	lh := b.spec.LineHeight(style)
	lines := b.wrap(style, text, limit)
	rows := make([]row, len(lines))
	for i, l := range lines {
		rows[i] = row{h: lh, elems: []Element{{Kind: ElementText, X: x, Style: style, Text: l}}}
	}
	return rows
}

// labeledRows lays out text with a hanging label: continuation lines align
// with the first line of text, not with the label.
func (b *builder) labeledRows(style Style, label, text string, x, limit float64) []row {
	lw := b.width(style, label+" ")
	rows := b.textRows(style, text, x+lw, limit-lw)
	rows[0].elems = append([]Element{{Kind: ElementText, X: x, Style: style, Text: label}}, rows[0].elems...)
	return rows
}

func spacer(h float64) row {
	return row{h: h}
}

func (b *builder) rules(n int) []row {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{h: b.spec.RuleGap, elems: []Element{{
			Kind: ElementRule,
			X:    b.spec.MarginX,
			Y:    b.spec.RuleGap - 4,
			W:    b.spec.ContentWidth(),
		}}}
	}
	return rows
}

func (b *builder) chunk(blk model.Block, number int) chunk {
	d := format.Resolve(blk)
	x, cw := b.spec.MarginX, b.spec.ContentWidth()

	switch body := d.Body.(type) {
	case format.Header:
		return chunk{rows: []row{b.header(body)}, keep: true}
	case format.Text:
		return chunk{rows: b.textRows(StyleBody, body.Text, x, cw)}
	}

	c := chunk{keep: true, breakBefore: d.Type == model.BlockTypeRedaction}
	if r, ok := d.Body.(format.Redaction); ok {
		c.rows = append(c.rows, b.supportTexts(r.SupportTexts)...)
	}
	if number > 0 {
		c.rows = append(c.rows, b.labeledRows(StyleBold, fmt.Sprintf("%d.", number), d.Stem, x, cw)...)
	} else {
		c.rows = append(c.rows, b.textRows(StyleBold, d.Stem, x, cw)...)
	}
	c.rows = append(c.rows, spacer(4))

	ox, ow := x+b.spec.Indent, cw-b.spec.Indent
	switch body := d.Body.(type) {
	case format.Choice:
		for _, opt := range body.Options {
			c.rows = append(c.rows, b.labeledRows(StyleBody, format.Letter(opt.Index, format.Upper), opt.Text, ox, ow)...)
		}
	case format.TrueFalse:
		for _, opt := range body.Options {
			c.rows = append(c.rows, b.labeledRows(StyleBody, format.Checkbox, format.StripCheckbox(opt.Text), ox, ow)...)
		}
	case format.Sum:
		for _, opt := range body.Options {
			rows := b.labeledRows(StyleBody, opt.Badge, opt.Text, ox+3, ow-3)
			rows[0].elems = append(rows[0].elems, Element{
				Kind: ElementBox,
				X:    ox,
				Y:    -1,
				W:    b.width(StyleBody, opt.Badge) + 6,
				H:    b.spec.LineHeight(StyleBody) - 1,
			})
			c.rows = append(c.rows, rows...)
		}
	case format.Association:
		c.rows = append(c.rows, b.association(body, ox, ow)...)
	case format.Redaction:
		if body.Genre != "" {
			c.rows = append(c.rows, b.textRows(StyleBody, "Gênero: "+body.Genre, x, cw)...)
		}
		c.rows = append(c.rows, b.rules(RedactionLines)...)
	case format.Writing:
		c.rows = append(c.rows, b.rules(WritingLines(body.Difficulty))...)
	}
	return c
}

func (b *builder) header(h format.Header) row {
	const pad = 8
	x, cw := b.spec.MarginX, b.spec.ContentWidth()
	lh := b.spec.LineHeight(StyleBody)

	var elems []Element
	y := float64(pad)
	sw := b.width(StyleBold, h.School)
	elems = append(elems, Element{Kind: ElementText, X: x + (cw-sw)/2, Y: y, Style: StyleBold, Text: h.School})
	y += lh + 4

	var meta []string
	for _, f := range [][2]string{
		{"Professor(a): ", h.Teacher},
		{"Disciplina: ", h.Discipline},
		{"Turma: ", h.Grade},
		{"Data: ", h.Date},
	} {
		if f[1] != "" {
			meta = append(meta, f[0]+f[1])
		}
	}
	half := (cw - 2*pad) / 2
	for i := 0; i < len(meta); i += 2 {
		elems = append(elems, Element{Kind: ElementText, X: x + pad, Y: y, Style: StyleBody, Text: meta[i]})
		if i+1 < len(meta) {
			elems = append(elems, Element{Kind: ElementText, X: x + pad + half, Y: y, Style: StyleBody, Text: meta[i+1]})
		}
		y += lh
	}

	if h.ShowStudentName {
		y += 4
		label := "Aluno(a):"
		lw := b.width(StyleBody, label+" ")
		elems = append(elems,
			Element{Kind: ElementText, X: x + pad, Y: y, Style: StyleBody, Text: label},
			Element{Kind: ElementRule, X: x + pad + lw, Y: y + b.spec.BodySize, W: cw - 2*pad - lw},
		)
		y += lh
	}
	y += pad

	elems = append(elems, Element{Kind: ElementBox, X: x, Y: 0, W: cw, H: y})
	return row{h: y, elems: elems}
}

func (b *builder) supportTexts(texts []model.SupportText) []row {
	const pad = 8
	x, cw := b.spec.MarginX, b.spec.ContentWidth()
	var rows []row
	for _, st := range texts {
		var block []row
		if st.Title != "" {
			block = append(block, b.textRows(StyleBold, st.Title, x+pad, cw-2*pad)...)
		}
		block = append(block, b.textRows(StyleBody, st.Content, x+pad, cw-2*pad)...)
		if st.Source != "" {
			block = append(block, b.textRows(StyleSmall, st.Source, x+pad, cw-2*pad)...)
		}
		for i := range block {
			shade := Element{Kind: ElementShade, X: x, W: cw, H: block[i].h}
			block[i].elems = append([]Element{shade}, block[i].elems...)
		}
		rows = append(rows, block...)
		rows = append(rows, spacer(8))
	}
	return rows
}

// association lays the two columns side by side. Column A keeps its
// checkbox, column B keeps its letter.
func (b *builder) association(a format.Association, x, limit float64) []row {
	const gap = 16
	colW := (limit - gap) / 2
	bx := x + colW + gap
	lh := b.spec.LineHeight(StyleBody)

	n := len(a.ColumnA)
	if len(a.ColumnB) > n {
		n = len(a.ColumnB)
	}
	rows := make([]row, 0, n)
	for i := 0; i < n; i++ {
		var left, right []row
		if i < len(a.ColumnA) {
			left = b.labeledRows(StyleBody, format.Checkbox, format.StripCheckbox(a.ColumnA[i]), x, colW)
		}
		if i < len(a.ColumnB) {
			right = b.labeledRows(StyleBody, a.ColumnB[i].Label, a.ColumnB[i].Text, bx, colW)
		}
		lines := len(left)
		if len(right) > lines {
			lines = len(right)
		}
		r := row{h: float64(lines) * lh}
		for j, sub := range append(left, right...) {
			offset := j
			if j >= len(left) {
				offset = j - len(left)
			}
			for _, e := range sub.elems {
				e.Y += float64(offset) * lh
				r.elems = append(r.elems, e)
			}
		}
		rows = append(rows, r)
	}
	return rows
}
