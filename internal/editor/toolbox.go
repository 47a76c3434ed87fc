package editor

import "github.com/stemsi/exstem-paper/internal/model"

// ToolboxEntry is one button of the block toolbox.
type ToolboxEntry struct {
	Type     model.BlockType `json:"type"`
	Label    string          `json:"label"`
	Disabled bool            `json:"disabled"`
	Reason   string          `json:"reason,omitempty"`
}

var toolboxLabels = map[model.BlockType]string{
	model.BlockTypeHeader:         "Cabeçalho",
	model.BlockTypeText:           "Texto",
	model.BlockTypeMultipleChoice: "Múltipla escolha",
	model.BlockTypeTrueFalse:      "Verdadeiro ou falso",
	model.BlockTypeSum:            "Somatória",
	model.BlockTypeAssociation:    "Associação",
	model.BlockTypeRedaction:      "Redação",
	model.BlockTypeOpenEnded:      "Questão aberta",
	model.BlockTypeEssay:          "Dissertativa",
}

// Toolbox lists every block type with whether adding it is currently allowed.
func (s *Surface) Toolbox() []ToolboxEntry {
	question := s.CanAddQuestion()
	entries := make([]ToolboxEntry, 0, len(model.BlockTypes))
	for _, t := range model.BlockTypes {
		e := ToolboxEntry{Type: t, Label: toolboxLabels[t]}
		var res Result
		switch {
		case s.published:
			res = rejected(CodeExamLocked)
		case t == model.BlockTypeHeader:
			if s.HasHeader() {
				res = rejected(CodeHeaderExists)
			}
		case t == model.BlockTypeText:
		default:
			if !question.Applied {
				res = question
			}
		}
		if res.Code != "" {
			e.Disabled = true
			e.Reason = res.Reason
		}
		entries = append(entries, e)
	}
	return entries
}

// Panel describes the properties panel shown for the selected block.
type Panel struct {
	BlockID string          `json:"block_id,omitempty"`
	Type    model.BlockType `json:"type,omitempty"`
	Fields  []string        `json:"fields"`
}

var panelFields = map[model.BlockType][]string{
	model.BlockTypeHeader:         {"school_name", "teacher_name", "discipline", "grade", "date", "show_student_name"},
	model.BlockTypeText:           {"text"},
	model.BlockTypeMultipleChoice: {"stem", "options", "correct_answer"},
	model.BlockTypeTrueFalse:      {"stem", "options"},
	model.BlockTypeSum:            {"stem", "options", "correct_answer"},
	model.BlockTypeAssociation:    {"stem", "options", "column_b"},
	model.BlockTypeRedaction:      {"stem", "genre", "support_texts"},
	model.BlockTypeOpenEnded:      {"stem", "difficulty"},
	model.BlockTypeEssay:          {"stem", "difficulty"},
}

// Panel returns the properties panel keyed off the selected block's
// effective type. With nothing selected, or the watermark selected, the
// panel has no fields.
func (s *Surface) Panel() Panel {
	b, ok := s.Selected()
	if !ok || b.IsWatermark() {
		return Panel{Fields: []string{}}
	}
	t := b.EffectiveType()
	fields := panelFields[t]
	if fields == nil {
		fields = []string{"stem"}
	}
	return Panel{BlockID: b.ID, Type: t, Fields: fields}
}

func defaultContent(t model.BlockType) model.Content {
	switch t {
	case model.BlockTypeHeader:
		return model.Content{
			"school_name":       "",
			"teacher_name":      "",
			"discipline":        "",
			"grade":             "",
			"date":              "",
			"show_student_name": true,
		}
	case model.BlockTypeText:
		return model.Content{"text": ""}
	case model.BlockTypeMultipleChoice, model.BlockTypeSum:
		return model.Content{"stem": "", "options": []any{"", "", "", ""}, "correct_answer": ""}
	case model.BlockTypeTrueFalse:
		return model.Content{"stem": "", "options": []any{"", "", "", ""}}
	case model.BlockTypeAssociation:
		return model.Content{"stem": "", "options": []any{"", "", ""}, "column_b": []any{"", "", ""}}
	case model.BlockTypeRedaction:
		return model.Content{"stem": "", "genre": "", "support_texts": []any{}}
	default:
		return model.Content{"stem": "", "difficulty": "medium"}
	}
}
