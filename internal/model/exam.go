package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusPublished ExamStatus = "published"
)

// Exam is a stored exam document.
type Exam struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Status    ExamStatus `json:"status"`
	Blocks    []Block    `json:"blocks"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Published reports whether editing is locked.
func (e *Exam) Published() bool {
	return e.Status == ExamStatusPublished
}

// Document returns an immutable rendering snapshot of the exam.
func (e *Exam) Document() Document {
	return Document{
		Title:  e.Title,
		Status: e.Status,
		Blocks: CloneBlocks(e.Blocks),
	}
}

// Document is the ordered block sequence handed to renderers.
type Document struct {
	Title  string     `json:"title"`
	Status ExamStatus `json:"status"`
	Blocks []Block    `json:"blocks"`
}

// Watermark returns the watermark block if the document carries one.
func (d *Document) Watermark() (Block, bool) {
	for _, b := range d.Blocks {
		if b.IsWatermark() {
			return b, true
		}
	}
	return Block{}, false
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title  string  `json:"title" binding:"required,min=3,max=255"`
	Blocks []Block `json:"blocks" binding:"omitempty,dive"`
}

// SaveBlocksRequest replaces the stored sequence of a draft exam.
type SaveBlocksRequest struct {
	Title  string  `json:"title" binding:"omitempty,min=3,max=255"`
	Blocks []Block `json:"blocks" binding:"required,dive"`
}

// AddBlockRequest adds a fresh block of the given type from the toolbox.
type AddBlockRequest struct {
	Type BlockType `json:"type" binding:"required,blocktype"`
}

// AddFromBankRequest inserts a stored question into the exam.
type AddFromBankRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
}

// MoveBlockRequest reorders a block onto the position of another.
type MoveBlockRequest struct {
	ActiveID string `json:"active_id" binding:"required"`
	OverID   string `json:"over_id" binding:"required"`
}

// UpdateContentRequest shallow-merges a patch into a block's content.
type UpdateContentRequest struct {
	Content Content `json:"content" binding:"required"`
}
