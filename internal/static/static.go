// Package static renders the read-only HTML view of an exam, used once an
// exam is published or shared.
package static

import (
	"embed"
	"io"

	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/view"
)

//go:embed static.gohtml
var pageFS embed.FS

var page = view.MustParse(pageFS, "static.gohtml")

// Options controls the read view.
type Options struct {
	// ShowAnswers highlights correct alternatives and prints the sum answer.
	ShowAnswers bool
}

type pageData struct {
	Title string
	Items []view.Item
}

// Render writes doc as non-interactive HTML. The question bodies come from
// the same partials as the editor so both read identically.
func Render(w io.Writer, doc model.Document, opts Options) error {
	return page.Execute(w, pageData{
		Title: doc.Title,
		Items: view.Build(doc.Blocks, opts.ShowAnswers),
	})
}
