package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBank represents a collection of stored questions.
type QuestionBank struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BankQuestion is a question stored in a bank, as returned to the client.
type BankQuestion struct {
	ID        uuid.UUID      `json:"id"`
	QBankID   uuid.UUID      `json:"qbank_id"`
	Record    QuestionRecord `json:"record"`
	CreatedAt time.Time      `json:"created_at"`
}
