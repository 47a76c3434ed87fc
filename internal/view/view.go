// Package view holds the HTML partials shared by the editor surface and the
// static read view, so both draw question bodies identically.
package view

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/stemsi/exstem-paper/internal/format"
	"github.com/stemsi/exstem-paper/internal/model"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Kinds of item bodies understood by the partials.
const (
	KindHeader      = "header"
	KindText        = "text"
	KindChoice      = "choice"
	KindTrueFalse   = "true_false"
	KindSum         = "sum"
	KindAssociation = "association"
	KindRedaction   = "redaction"
	KindWriting     = "writing"
	KindUnknown     = "unknown"
)

// Item is the template-ready form of one block.
type Item struct {
	ID          string
	Type        model.BlockType
	Number      int
	Kind        string
	Stem        string
	Watermark   bool
	ShowAnswers bool

	Header      *format.Header
	Text        string
	Choice      []Option
	TrueFalse   []string
	Sum         *SumView
	Association *format.Association
	Redaction   *format.Redaction
}

// Option is a lettered alternative.
type Option struct {
	Label   string
	Text    string
	Correct bool
}

// SumView is the summation body with its answer line.
type SumView struct {
	Options      []format.SumOption
	HasAnswer    bool
	CorrectBadge string
}

// Build turns a block sequence into template items. Options are lettered in
// lower case on screen.
func Build(blocks []model.Block, showAnswers bool) []Item {
	numbers := format.Number(blocks)
	items := make([]Item, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, buildItem(b, numbers[b.ID], showAnswers))
	}
	return items
}

func buildItem(b model.Block, number int, showAnswers bool) Item {
	d := format.Resolve(b)
	it := Item{
		ID:          b.ID,
		Type:        d.Type,
		Number:      number,
		Stem:        d.Stem,
		Watermark:   b.IsWatermark(),
		ShowAnswers: showAnswers,
	}

	switch body := d.Body.(type) {
	case format.Header:
		it.Kind = KindHeader
		it.Header = &body
	case format.Text:
		it.Kind = KindText
		it.Text = body.Text
	case format.Choice:
		it.Kind = KindChoice
		for _, opt := range body.Options {
			it.Choice = append(it.Choice, Option{
				Label:   format.Letter(opt.Index, format.Lower),
				Text:    opt.Text,
				Correct: opt.Correct,
			})
		}
	case format.TrueFalse:
		it.Kind = KindTrueFalse
		for _, opt := range body.Options {
			it.TrueFalse = append(it.TrueFalse, opt.Label)
		}
	case format.Sum:
		it.Kind = KindSum
		it.Sum = &SumView{Options: body.Options, HasAnswer: body.HasAnswer, CorrectBadge: body.CorrectBadge}
	case format.Association:
		it.Kind = KindAssociation
		it.Association = &body
	case format.Redaction:
		it.Kind = KindRedaction
		it.Redaction = &body
	case format.Writing:
		it.Kind = KindWriting
	default:
		it.Kind = KindUnknown
	}
	return it
}

// Parse returns a template set holding the shared partials plus the page
// template stored at name in page. Executing the set renders the page.
func Parse(page fs.FS, name string) (*template.Template, error) {
	t, err := template.New(name).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}
	return t.ParseFS(page, name)
}

// MustParse is Parse for package-level template variables.
func MustParse(page fs.FS, name string) *template.Template {
	return template.Must(Parse(page, name))
}
