// Package format resolves exam blocks into renderer-agnostic display records.
//
// It is the only place that decides what a block of a given type looks like.
// The editor, the static view and the printed paper all consume the records
// produced here and only map them onto their own presentation primitives.
package format

import "github.com/stemsi/exstem-paper/internal/model"

// Fallback texts used when authored data is missing.
const (
	NoStem   = "Sem enunciado"
	NoSchool = "Nome da Escola"
)

// Display is the resolved, renderer-agnostic view of one block.
type Display struct {
	ID            string
	Type          model.BlockType
	Stem          string
	Options       []string
	ColumnB       []string
	SupportTexts  []model.SupportText
	Genre         string
	Difficulty    string
	CorrectAnswer model.Answer
	Body          Body
}

// Body is the variant-specific part of a display record. The set of
// implementations is closed; renderers type-switch over it.
type Body interface {
	body()
}

// Choice is the body of a multiple_choice question. Letters are chosen by
// each renderer from the option index.
type Choice struct {
	Options []ChoiceOption
}

// ChoiceOption is one lettered alternative.
type ChoiceOption struct {
	Index   int
	Text    string
	Correct bool
}

// TrueFalse is the body of a true_false question.
type TrueFalse struct {
	Options []TrueFalseOption
}

// TrueFalseOption is one statement prefixed with an empty checkbox.
type TrueFalseOption struct {
	Text  string
	Label string
}

// Sum is the body of a summation question.
type Sum struct {
	Options      []SumOption
	HasAnswer    bool
	CorrectSum   int
	CorrectBadge string
}

// SumOption is one power-of-two alternative.
type SumOption struct {
	Value   int
	Badge   string
	Text    string
	Correct bool
}

// Association is the body of a two-column matching question.
type Association struct {
	ColumnA []string
	ColumnB []Labeled
}

// Labeled pairs a fixed label with its text.
type Labeled struct {
	Label string
	Text  string
}

// Redaction is the body of a long-form writing prompt.
type Redaction struct {
	Genre        string
	SupportTexts []model.SupportText
}

// Writing is the body of essay and open_ended questions.
type Writing struct {
	Difficulty string
}

// Header is the exam heading.
type Header struct {
	School          string
	Teacher         string
	Date            string
	Discipline      string
	Grade           string
	ShowStudentName bool
}

// Text is freeform instructional text.
type Text struct {
	Text string
}

// Unknown marks an effective type this package does not know how to draw.
type Unknown struct {
	Type model.BlockType
}

func (Choice) body()      {}
func (TrueFalse) body()   {}
func (Sum) body()         {}
func (Association) body() {}
func (Redaction) body()   {}
func (Writing) body()     {}
func (Header) body()      {}
func (Text) body()        {}
func (Unknown) body()     {}
