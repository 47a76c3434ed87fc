package editor

import (
	"embed"
	"io"

	"github.com/stemsi/exstem-paper/internal/view"
)

//go:embed editor.gohtml
var pageFS embed.FS

var page = view.MustParse(pageFS, "editor.gohtml")

type pageData struct {
	Title         string
	Items         []view.Item
	SelectedID    string
	Published     bool
	Toolbox       []ToolboxEntry
	Panel         Panel
	QuestionCount int
	MaxQuestions  int
}

// Render writes the interactive editor markup: drag handles, delete buttons,
// the toolbox and the properties panel around the shared question bodies.
// A published surface renders without any of the editing chrome.
func (s *Surface) Render(w io.Writer, title string) error {
	return page.Execute(w, pageData{
		Title:         title,
		Items:         view.Build(s.blocks, true),
		SelectedID:    s.selectedID,
		Published:     s.published,
		Toolbox:       s.Toolbox(),
		Panel:         s.Panel(),
		QuestionCount: s.QuestionCount(),
		MaxQuestions:  MaxQuestions,
	})
}
