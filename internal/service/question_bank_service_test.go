package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-paper/internal/model"
)

func bankFixture(owner uuid.UUID) (*fakeQuestions, uuid.UUID, uuid.UUID) {
	bankID, qID := uuid.New(), uuid.New()
	f := &fakeQuestions{
		banks: map[uuid.UUID]*model.QuestionBank{
			bankID: {ID: bankID, AuthorID: owner, Name: "Geografia"},
		},
		questions: map[uuid.UUID]model.BankQuestion{
			qID: {ID: qID, QBankID: bankID, Record: model.QuestionRecord{
				ID:      "stale",
				Type:    model.BlockTypeMultipleChoice,
				Content: model.QuestionContent{Stem: "Capital da França?"},
				Options: []string{"Paris", "Londres"},
			}},
		},
	}
	return f, bankID, qID
}

func TestListQuestions(t *testing.T) {
	claims := freeClaims()
	store, bankID, _ := bankFixture(claims.UserID)
	svc := NewQuestionBankService(store)

	qs, err := svc.ListQuestions(context.Background(), bankID, claims)
	require.NoError(t, err)
	assert.Len(t, qs, 1)

	_, err = svc.ListQuestions(context.Background(), bankID, freeClaims())
	assert.ErrorIs(t, err, ErrNotBankOwner)

	_, err = svc.ListQuestions(context.Background(), uuid.New(), claims)
	assert.ErrorIs(t, err, ErrBankNotFound)
}

func TestListQuestionsEmptyBank(t *testing.T) {
	claims := freeClaims()
	store, _, _ := bankFixture(claims.UserID)
	empty := uuid.New()
	store.banks[empty] = &model.QuestionBank{ID: empty, AuthorID: claims.UserID}

	qs, err := NewQuestionBankService(store).ListQuestions(context.Background(), empty, claims)

	require.NoError(t, err)
	assert.NotNil(t, qs)
	assert.Empty(t, qs)
}

func TestRecord(t *testing.T) {
	claims := freeClaims()
	store, _, qID := bankFixture(claims.UserID)
	svc := NewQuestionBankService(store)

	rec, err := svc.Record(context.Background(), qID, claims)
	require.NoError(t, err)
	assert.Equal(t, qID.String(), rec.ID)
	assert.Equal(t, "Capital da França?", rec.Content.Stem)

	_, err = svc.Record(context.Background(), qID, freeClaims())
	assert.ErrorIs(t, err, ErrNotBankOwner)

	_, err = svc.Record(context.Background(), uuid.New(), claims)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}
