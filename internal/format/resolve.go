package format

import (
	"github.com/rs/zerolog/log"
	"github.com/stemsi/exstem-paper/internal/model"
)

// Resolve builds the display record of b. QuestionData, when present, takes
// precedence over the authoring content. Missing lists degrade to empty
// slices; Resolve never fails.
func Resolve(b model.Block) Display {
	d := Display{
		ID:   b.ID,
		Type: b.EffectiveType(),
	}

	if qd := b.QuestionData; qd != nil {
		d.Stem = qd.Content.Stem
		d.Options = nonNil(qd.Options)
		d.ColumnB = nonNil(qd.ColumnB)
		d.SupportTexts = qd.SupportTexts
		d.Genre = qd.Genre
		d.Difficulty = qd.Difficulty
		d.CorrectAnswer = qd.CorrectAnswer
	} else {
		d.Stem = firstNonEmpty(b.Content.String("stem"), b.Content.String("question"))
		d.Options = b.Content.Strings("options")
		d.ColumnB = b.Content.Strings("column_b")
		d.SupportTexts = b.Content.SupportTexts("support_texts")
		d.Genre = b.Content.String("genre")
		d.Difficulty = b.Content.String("difficulty")
		d.CorrectAnswer = model.Answer(b.Content.String("correct_answer"))
	}
	if d.SupportTexts == nil {
		d.SupportTexts = []model.SupportText{}
	}

	switch d.Type {
	case model.BlockTypeHeader:
		d.Stem = ""
		d.Body = resolveHeader(b.Content)
		return d
	case model.BlockTypeText:
		d.Stem = ""
		d.Body = Text{Text: b.Content.String("text")}
		return d
	}

	if d.Stem == "" {
		d.Stem = NoStem
	}

	switch d.Type {
	case model.BlockTypeMultipleChoice:
		d.Body = resolveChoice(d.Options, d.CorrectAnswer)
	case model.BlockTypeTrueFalse:
		d.Body = resolveTrueFalse(d.Options)
	case model.BlockTypeSum:
		d.Body = resolveSum(d.Options, d.CorrectAnswer)
	case model.BlockTypeAssociation:
		d.Body = resolveAssociation(d.Options, d.ColumnB)
	case model.BlockTypeRedaction:
		d.Body = Redaction{Genre: d.Genre, SupportTexts: d.SupportTexts}
	case model.BlockTypeEssay, model.BlockTypeOpenEnded:
		d.Body = Writing{Difficulty: d.Difficulty}
	default:
		log.Debug().
			Str("block_id", b.ID).
			Str("type", string(d.Type)).
			Msg("No formatting rule for block type, rendering stem only")
		d.Body = Unknown{Type: d.Type}
	}
	return d
}

// ResolveAll resolves every block of a sequence in order.
func ResolveAll(blocks []model.Block) []Display {
	out := make([]Display, len(blocks))
	for i := range blocks {
		out[i] = Resolve(blocks[i])
	}
	return out
}

func resolveHeader(c model.Content) Header {
	return Header{
		School:          firstNonEmpty(c.String("school_name"), NoSchool),
		Teacher:         c.String("teacher_name"),
		Date:            c.String("date"),
		Discipline:      c.String("discipline"),
		Grade:           c.String("grade"),
		ShowStudentName: c.Bool("show_student_name", true),
	}
}

func resolveChoice(options []string, answer model.Answer) Choice {
	correct, ok := answer.Int()
	out := Choice{Options: make([]ChoiceOption, len(options))}
	for i, text := range options {
		out.Options[i] = ChoiceOption{
			Index:   i,
			Text:    text,
			Correct: ok && correct == i,
		}
	}
	return out
}

func resolveTrueFalse(options []string) TrueFalse {
	out := TrueFalse{Options: make([]TrueFalseOption, len(options))}
	for i, text := range options {
		out.Options[i] = TrueFalseOption{Text: text, Label: WithCheckbox(text)}
	}
	return out
}

func resolveSum(options []string, answer model.Answer) Sum {
	mask, ok := answer.Int()
	ok = ok && mask >= 0
	out := Sum{Options: make([]SumOption, len(options)), HasAnswer: ok}
	for i, text := range options {
		v := SumValue(i)
		out.Options[i] = SumOption{
			Value:   v,
			Badge:   SumBadge(v),
			Text:    text,
			Correct: ok && mask&v != 0,
		}
	}
	if ok {
		out.CorrectSum = mask
		out.CorrectBadge = SumBadge(mask)
	}
	return out
}

func resolveAssociation(columnA, columnB []string) Association {
	out := Association{
		ColumnA: make([]string, len(columnA)),
		ColumnB: make([]Labeled, len(columnB)),
	}
	for i, text := range columnA {
		out.ColumnA[i] = WithCheckbox(text)
	}
	for i, text := range columnB {
		out.ColumnB[i] = Labeled{Label: Letter(i, Lower), Text: text}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
