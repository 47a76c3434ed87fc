package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-paper/internal/model"
)

// QuestionBankRepository handles question bank data access.
type QuestionBankRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionBankRepository creates a new QuestionBankRepository.
func NewQuestionBankRepository(pool *pgxpool.Pool) *QuestionBankRepository {
	return &QuestionBankRepository{pool: pool}
}

// GetBank retrieves a bank by its UUID.
func (r *QuestionBankRepository) GetBank(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b := &model.QuestionBank{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, author_id, name, description, created_at, updated_at
		 FROM question_banks WHERE id = $1`, id,
	).Scan(&b.ID, &b.AuthorID, &b.Name, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListQuestions retrieves every question of a bank, oldest first.
func (r *QuestionBankRepository) ListQuestions(ctx context.Context, bankID uuid.UUID) ([]model.BankQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, qbank_id, record, created_at
		 FROM bank_questions WHERE qbank_id = $1
		 ORDER BY created_at`, bankID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.BankQuestion
	for rows.Next() {
		var q model.BankQuestion
		if err := rows.Scan(&q.ID, &q.QBankID, &q.Record, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestion retrieves a single bank question together with its bank owner.
func (r *QuestionBankRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*model.BankQuestion, uuid.UUID, error) {
	q := &model.BankQuestion{}
	var owner uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT q.id, q.qbank_id, q.record, q.created_at, b.author_id
		 FROM bank_questions q JOIN question_banks b ON b.id = q.qbank_id
		 WHERE q.id = $1`, id,
	).Scan(&q.ID, &q.QBankID, &q.Record, &q.CreatedAt, &owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, uuid.Nil, ErrNotFound
	}
	if err != nil {
		return nil, uuid.Nil, err
	}
	return q, owner, nil
}
