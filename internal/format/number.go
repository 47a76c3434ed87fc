package format

import "github.com/stemsi/exstem-paper/internal/model"

// Number assigns 1-based question numbers by position, skipping headers,
// text blocks and the watermark. Numbers are never stored on blocks.
func Number(blocks []model.Block) map[string]int {
	numbers := make(map[string]int, len(blocks))
	n := 0
	for i := range blocks {
		if !blocks[i].IsQuestion() {
			continue
		}
		n++
		numbers[blocks[i].ID] = n
	}
	return numbers
}

// CountQuestions returns how many blocks of the sequence are questions.
func CountQuestions(blocks []model.Block) int {
	n := 0
	for i := range blocks {
		if blocks[i].IsQuestion() {
			n++
		}
	}
	return n
}

// HasRedaction reports whether any block resolves to a redaction.
func HasRedaction(blocks []model.Block) bool {
	for i := range blocks {
		if blocks[i].EffectiveType() == model.BlockTypeRedaction {
			return true
		}
	}
	return false
}
