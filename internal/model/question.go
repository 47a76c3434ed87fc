package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// QuestionRecord is a ready-made question supplied by the question bank or
// the generation service. It is wrapped into a Block on insertion.
type QuestionRecord struct {
	ID            string          `json:"id,omitempty"`
	Type          BlockType       `json:"type"`
	Content       QuestionContent `json:"content"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer Answer          `json:"correct_answer,omitempty"`
	ColumnB       []string        `json:"column_b,omitempty"`
	SupportTexts  []SupportText   `json:"support_texts,omitempty"`
	Genre         string          `json:"genre,omitempty"`
	Difficulty    string          `json:"difficulty,omitempty"`
}

// QuestionContent holds the textual body of a question record.
type QuestionContent struct {
	Stem string `json:"stem"`
}

// Clone deep-copies the record.
func (q QuestionRecord) Clone() QuestionRecord {
	out := q
	out.Options = append([]string(nil), q.Options...)
	out.ColumnB = append([]string(nil), q.ColumnB...)
	out.SupportTexts = append([]SupportText(nil), q.SupportTexts...)
	return out
}

// Answer is a correct-answer value. Stored records carry it either as a
// JSON string ("0", "5") or as a bare number (5).
type Answer string

// UnmarshalJSON accepts strings, numbers and null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Answer(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Answer(n.String())
	return nil
}

// Int parses the answer as an integer (an option index or a sum bitmask).
func (a Answer) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(a)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// SupportText is a motivational passage shown before a redaction stem.
type SupportText struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// UnmarshalJSON accepts either a bare string or an object.
func (s *SupportText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = SupportText{Content: text}
		return nil
	}
	type plain SupportText
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = SupportText(p)
	return nil
}
