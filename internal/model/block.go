package model

// BlockType enumerates the kinds of content a block can hold.
type BlockType string

const (
	BlockTypeHeader         BlockType = "header"
	BlockTypeText           BlockType = "text"
	BlockTypeMultipleChoice BlockType = "multiple_choice"
	BlockTypeTrueFalse      BlockType = "true_false"
	BlockTypeSum            BlockType = "sum"
	BlockTypeAssociation    BlockType = "association"
	BlockTypeRedaction      BlockType = "redaction"
	BlockTypeOpenEnded      BlockType = "open_ended"
	BlockTypeEssay          BlockType = "essay"
)

// WatermarkBlockID is the reserved id of the trailing watermark block.
const WatermarkBlockID = "watermark"

// BlockTypes lists every known block type in toolbox order.
var BlockTypes = []BlockType{
	BlockTypeHeader,
	BlockTypeText,
	BlockTypeMultipleChoice,
	BlockTypeTrueFalse,
	BlockTypeSum,
	BlockTypeAssociation,
	BlockTypeRedaction,
	BlockTypeOpenEnded,
	BlockTypeEssay,
}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	for _, known := range BlockTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Block is one atomic unit of exam content.
//
// Content is the authoring buffer edited by the teacher. QuestionData, when
// present, is the record the block was created from and wins for rendering.
type Block struct {
	ID           string          `json:"id" binding:"required,max=64"`
	Type         BlockType       `json:"type" binding:"required,blocktype"`
	Content      Content         `json:"content"`
	QuestionData *QuestionRecord `json:"question_data,omitempty"`
}

// EffectiveType returns the type used for rendering decisions.
func (b *Block) EffectiveType() BlockType {
	if b.QuestionData != nil && b.QuestionData.Type != "" {
		return b.QuestionData.Type
	}
	return b.Type
}

// IsWatermark reports whether b is the reserved watermark block.
func (b *Block) IsWatermark() bool {
	return b.ID == WatermarkBlockID
}

// IsQuestion reports whether b counts as a numbered question.
func (b *Block) IsQuestion() bool {
	if b.IsWatermark() {
		return false
	}
	switch b.EffectiveType() {
	case BlockTypeHeader, BlockTypeText:
		return false
	}
	return true
}

// Clone returns a deep copy of b so snapshots never share mutable state.
func (b Block) Clone() Block {
	out := b
	out.Content = b.Content.Clone()
	if b.QuestionData != nil {
		qd := b.QuestionData.Clone()
		out.QuestionData = &qd
	}
	return out
}

// CloneBlocks deep-copies a block sequence.
func CloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Clone()
	}
	return out
}

// NewWatermarkBlock builds the trailing watermark block carrying text.
func NewWatermarkBlock(text string) Block {
	return Block{
		ID:      WatermarkBlockID,
		Type:    BlockTypeText,
		Content: Content{"text": text},
	}
}
