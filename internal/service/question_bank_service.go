package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/repository"
)

var (
	ErrBankNotFound     = errors.New("question bank not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNotBankOwner     = errors.New("not the owner of this question bank")
)

// QuestionStore reads stored questions.
type QuestionStore interface {
	GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error)
	ListQuestions(ctx context.Context, bankID uuid.UUID) ([]model.BankQuestion, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*model.BankQuestion, uuid.UUID, error)
}

// QuestionBankService handles question bank reads.
type QuestionBankService struct {
	questions QuestionStore
}

// NewQuestionBankService creates a new QuestionBankService.
func NewQuestionBankService(questions QuestionStore) *QuestionBankService {
	return &QuestionBankService{questions: questions}
}

// ListQuestions returns the questions of a bank owned by the caller.
func (s *QuestionBankService) ListQuestions(ctx context.Context, bankID uuid.UUID, claims *Claims) ([]model.BankQuestion, error) {
	bank, err := s.questions.GetBank(ctx, bankID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bank: %w", err)
	}
	if bank.AuthorID != claims.UserID {
		return nil, ErrNotBankOwner
	}

	questions, err := s.questions.ListQuestions(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []model.BankQuestion{}
	}
	return questions, nil
}

// Record fetches a stored question ready to be wrapped into a block. The
// record id is the bank question's id.
func (s *QuestionBankService) Record(ctx context.Context, questionID uuid.UUID, claims *Claims) (model.QuestionRecord, error) {
	q, owner, err := s.questions.GetQuestion(ctx, questionID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.QuestionRecord{}, ErrQuestionNotFound
	}
	if err != nil {
		return model.QuestionRecord{}, fmt.Errorf("get question: %w", err)
	}
	if owner != claims.UserID {
		return model.QuestionRecord{}, ErrNotBankOwner
	}

	rec := q.Record.Clone()
	rec.ID = q.ID.String()
	return rec, nil
}
