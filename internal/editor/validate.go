package editor

import (
	"github.com/stemsi/exstem-paper/internal/format"
	"github.com/stemsi/exstem-paper/internal/model"
)

// Validate checks a whole block sequence against the authoring policy, for
// documents that arrive in one piece instead of edit by edit.
func Validate(blocks []model.Block) Result {
	seen := make(map[string]bool, len(blocks))
	headers := 0
	for i := range blocks {
		b := &blocks[i]
		if seen[b.ID] {
			return rejected(CodeDuplicateBlock)
		}
		seen[b.ID] = true
		if !b.IsWatermark() && !b.EffectiveType().Valid() {
			return rejected(CodeInvalidType)
		}
		if b.EffectiveType() == model.BlockTypeHeader {
			headers++
		}
	}
	if headers > 1 {
		return rejected(CodeHeaderExists)
	}
	s := Surface{blocks: blocks}
	switch n := s.QuestionCount(); {
	case n > MaxQuestions:
		return rejected(CodeQuestionLimit)
	case n > 1 && format.HasRedaction(blocks):
		return rejected(CodeRedactionLock)
	}
	return Result{Applied: true}
}

// StripWatermark returns blocks without any watermark block. Clients never
// author the watermark; it is decided when the exam is created.
func StripWatermark(blocks []model.Block) []model.Block {
	out := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		if !b.IsWatermark() {
			out = append(out, b)
		}
	}
	return out
}
