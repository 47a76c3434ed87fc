// Package editor implements the editable exam surface: an ordered, mutable
// block sequence with a selection pointer and authoring policy.
//
// The surface is not safe for concurrent use. Each editing session owns one
// surface and applies mutations one at a time.
package editor

import (
	"github.com/google/uuid"

	"github.com/stemsi/exstem-paper/internal/format"
	"github.com/stemsi/exstem-paper/internal/model"
)

// MaxQuestions is the most questions a single exam may hold.
const MaxQuestions = 10

// Surface is the editable view of an exam.
type Surface struct {
	blocks     []model.Block
	selectedID string
	published  bool
	newID      func() string
}

// Option configures a Surface at initialisation.
type Option func(*Surface)

// WithWatermark makes sure the document ends with a watermark block carrying
// text. Callers decide this once, from the account tier.
func WithWatermark(text string) Option {
	return func(s *Surface) {
		if s.indexOf(model.WatermarkBlockID) >= 0 {
			return
		}
		s.blocks = append(s.blocks, model.NewWatermarkBlock(text))
	}
}

// WithPublished locks the surface when the exam is already published.
func WithPublished(published bool) Option {
	return func(s *Surface) {
		s.published = published
	}
}

// WithIDGenerator replaces the uuid generator used for new blocks.
func WithIDGenerator(fn func() string) Option {
	return func(s *Surface) {
		s.newID = fn
	}
}

// NewSurface hydrates a surface from a stored block sequence. A stored
// watermark that is not last is moved to the end.
func NewSurface(blocks []model.Block, opts ...Option) *Surface {
	s := &Surface{
		blocks: normalizeWatermark(model.CloneBlocks(blocks)),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeWatermark(blocks []model.Block) []model.Block {
	out := make([]model.Block, 0, len(blocks))
	var wm *model.Block
	for i := range blocks {
		if blocks[i].IsWatermark() {
			if wm == nil {
				b := blocks[i]
				wm = &b
			}
			continue
		}
		out = append(out, blocks[i])
	}
	if wm != nil {
		out = append(out, *wm)
	}
	return out
}

// SetPublished is called by the owner when the exam status changes.
func (s *Surface) SetPublished(published bool) {
	s.published = published
}

// Published reports whether mutations are disabled.
func (s *Surface) Published() bool {
	return s.published
}

// Blocks returns a snapshot of the current sequence.
func (s *Surface) Blocks() []model.Block {
	return model.CloneBlocks(s.blocks)
}

// Len returns the number of blocks, watermark included.
func (s *Surface) Len() int {
	return len(s.blocks)
}

// QuestionCount returns how many blocks count as questions.
func (s *Surface) QuestionCount() int {
	return format.CountQuestions(s.blocks)
}

// HasHeader reports whether the document already has a header block.
func (s *Surface) HasHeader() bool {
	for i := range s.blocks {
		if s.blocks[i].EffectiveType() == model.BlockTypeHeader {
			return true
		}
	}
	return false
}

// CanAddQuestion reports whether the question policy allows one more.
func (s *Surface) CanAddQuestion() Result {
	switch {
	case s.published:
		return rejected(CodeExamLocked)
	case format.HasRedaction(s.blocks):
		return rejected(CodeRedactionLock)
	case s.QuestionCount() >= MaxQuestions:
		return rejected(CodeQuestionLimit)
	}
	return Result{Applied: true}
}

// AddFromToolbox appends a fresh block of type t. Headers go first; every
// other block goes right before the watermark.
func (s *Surface) AddFromToolbox(t model.BlockType) Result {
	if s.published {
		return rejected(CodeExamLocked)
	}
	if !t.Valid() {
		return rejected(CodeInvalidType)
	}

	b := model.Block{ID: s.newID(), Type: t, Content: defaultContent(t)}
	switch t {
	case model.BlockTypeHeader:
		if s.HasHeader() {
			return rejected(CodeHeaderExists)
		}
		s.blocks = append([]model.Block{b}, s.blocks...)
		return applied(b.ID)
	case model.BlockTypeText:
	default:
		if res := s.CanAddQuestion(); !res.Applied {
			return res
		}
	}
	s.insertBeforeWatermark(b)
	return applied(b.ID)
}

// AddQuestion wraps a ready-made question record into a new block, placed
// the same way AddFromToolbox places a block of that type.
func (s *Surface) AddQuestion(rec model.QuestionRecord) Result {
	if s.published {
		return rejected(CodeExamLocked)
	}
	if !rec.Type.Valid() {
		return rejected(CodeInvalidType)
	}
	b := model.Block{
		ID:      s.newID(),
		Type:    rec.Type,
		Content: model.Content{"stem": rec.Content.Stem},
	}
	qd := rec.Clone()
	b.QuestionData = &qd

	switch b.EffectiveType() {
	case model.BlockTypeHeader:
		if s.HasHeader() {
			return rejected(CodeHeaderExists)
		}
		s.blocks = append([]model.Block{b}, s.blocks...)
		return applied(b.ID)
	case model.BlockTypeText:
	default:
		if res := s.CanAddQuestion(); !res.Applied {
			return res
		}
	}
	s.insertBeforeWatermark(b)
	return applied(b.ID)
}

// Delete removes the block with id. The watermark cannot be deleted.
func (s *Surface) Delete(id string) Result {
	if s.published {
		return rejected(CodeExamLocked)
	}
	if id == model.WatermarkBlockID {
		return rejected(CodeWatermarkLocked)
	}
	i := s.indexOf(id)
	if i < 0 {
		return rejected(CodeBlockNotFound)
	}
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	return applied(id)
}

// Move drags activeID onto the position of overID. Neither may be the
// watermark. The moved block itself is never modified.
func (s *Surface) Move(activeID, overID string) Result {
	if s.published {
		return rejected(CodeExamLocked)
	}
	if activeID == model.WatermarkBlockID || overID == model.WatermarkBlockID {
		return rejected(CodeWatermarkLocked)
	}
	from, to := s.indexOf(activeID), s.indexOf(overID)
	if from < 0 || to < 0 {
		return rejected(CodeBlockNotFound)
	}
	if from == to {
		return applied(activeID)
	}
	moved := s.blocks[from]
	rest := append(append([]model.Block{}, s.blocks[:from]...), s.blocks[from+1:]...)
	out := make([]model.Block, 0, len(s.blocks))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	s.blocks = out
	return applied(activeID)
}

// UpdateContent shallow-merges patch into the block's content.
func (s *Surface) UpdateContent(id string, patch model.Content) Result {
	if s.published {
		return rejected(CodeExamLocked)
	}
	if id == model.WatermarkBlockID {
		return rejected(CodeWatermarkLocked)
	}
	i := s.indexOf(id)
	if i < 0 {
		return rejected(CodeBlockNotFound)
	}
	s.blocks[i].Content = s.blocks[i].Content.Merge(patch)
	return applied(id)
}

// Select points the selection at id. An empty id clears it.
func (s *Surface) Select(id string) Result {
	if id == "" {
		s.selectedID = ""
		return applied("")
	}
	if s.indexOf(id) < 0 {
		return rejected(CodeBlockNotFound)
	}
	s.selectedID = id
	return applied(id)
}

// Selected returns a copy of the selected block with its latest content.
func (s *Surface) Selected() (model.Block, bool) {
	i := s.indexOf(s.selectedID)
	if i < 0 {
		return model.Block{}, false
	}
	return s.blocks[i].Clone(), true
}

// SelectedID returns the id the selection points at, if any.
func (s *Surface) SelectedID() string {
	return s.selectedID
}

func (s *Surface) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.blocks {
		if s.blocks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Surface) insertBeforeWatermark(b model.Block) {
	n := len(s.blocks)
	if n > 0 && s.blocks[n-1].IsWatermark() {
		wm := s.blocks[n-1]
		s.blocks = append(s.blocks[:n-1], b, wm)
		return
	}
	s.blocks = append(s.blocks, b)
}
