package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/model"
)

func choiceBlock() model.Block {
	return model.Block{ID: "q1", Type: model.BlockTypeMultipleChoice, Content: model.Content{
		"stem":           "Capital da França?",
		"options":        []any{"Paris", "Londres"},
		"correct_answer": "0",
	}}
}

func newRenderService(exams *fakeExams, cache *fakeCache, pdf *stubPDF) *RenderService {
	return NewRenderService(exams, cache, pdf, time.Hour, nopLog)
}

func TestPDFDraftIsNotCached(t *testing.T) {
	claims := freeClaims()
	exam := draftExam(claims.UserID, choiceBlock())
	cache := newFakeCache()
	pdf := &stubPDF{}
	svc := newRenderService(newFakeExams(exam), cache, pdf)

	out, err := svc.PDF(context.Background(), exam.ID, claims)
	require.NoError(t, err)
	assert.Equal(t, "prova-de-geografia.pdf", out.Filename)
	assert.Equal(t, "%PDF-Prova de Geografia", string(out.Data))

	_, err = svc.PDF(context.Background(), exam.ID, claims)
	require.NoError(t, err)
	assert.Equal(t, 2, pdf.calls)
	assert.Zero(t, cache.sets)
}

func TestPDFPublishedIsCached(t *testing.T) {
	exam := draftExam(uuid.New(), choiceBlock())
	exam.Status = model.ExamStatusPublished
	cache := newFakeCache()
	pdf := &stubPDF{}
	svc := newRenderService(newFakeExams(exam), cache, pdf)

	first, err := svc.PDF(context.Background(), exam.ID, freeClaims())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.PDF(context.Background(), exam.ID, freeClaims())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, pdf.calls)
	assert.Contains(t, cache.data, config.CacheKey.ExamPDFKey(exam.ID.String()))
}

func TestPDFDraftHiddenFromOthers(t *testing.T) {
	exam := draftExam(uuid.New(), choiceBlock())
	svc := newRenderService(newFakeExams(exam), newFakeCache(), &stubPDF{})

	_, err := svc.PDF(context.Background(), exam.ID, freeClaims())
	assert.ErrorIs(t, err, ErrExamNotPublished)

	_, err = svc.PDF(context.Background(), uuid.New(), freeClaims())
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestPDFRenderFailure(t *testing.T) {
	claims := freeClaims()
	exam := draftExam(claims.UserID, choiceBlock())
	boom := errors.New("font unavailable")
	svc := newRenderService(newFakeExams(exam), newFakeCache(), &stubPDF{err: boom})

	_, err := svc.PDF(context.Background(), exam.ID, claims)
	assert.ErrorIs(t, err, boom)
}

func TestStaticAnswersOnlyForAuthor(t *testing.T) {
	claims := freeClaims()
	exam := draftExam(claims.UserID, choiceBlock())
	exam.Status = model.ExamStatusPublished
	cache := newFakeCache()
	svc := newRenderService(newFakeExams(exam), cache, &stubPDF{})

	own, err := svc.Static(context.Background(), exam.ID, claims, true)
	require.NoError(t, err)
	assert.Contains(t, string(own), `class="correct"`)

	other, err := svc.Static(context.Background(), exam.ID, freeClaims(), true)
	require.NoError(t, err)
	assert.NotContains(t, string(other), `class="correct"`)
	assert.Contains(t, string(other), "Paris")

	assert.Contains(t, cache.data, config.CacheKey.ExamStaticKey(exam.ID.String(), true))
	assert.Contains(t, cache.data, config.CacheKey.ExamStaticKey(exam.ID.String(), false))
}

func TestEditorOnlyForAuthor(t *testing.T) {
	claims := freeClaims()
	exam := draftExam(claims.UserID, choiceBlock())
	svc := newRenderService(newFakeExams(exam), newFakeCache(), &stubPDF{})

	html, err := svc.Editor(context.Background(), exam.ID, claims)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), `data-action="delete"`))

	_, err = svc.Editor(context.Background(), exam.ID, freeClaims())
	assert.ErrorIs(t, err, ErrNotExamAuthor)
}

func TestPrerender(t *testing.T) {
	exam := draftExam(uuid.New(), choiceBlock())
	cache := newFakeCache()
	exams := newFakeExams(exam)
	svc := newRenderService(exams, cache, &stubPDF{})

	assert.ErrorIs(t, svc.Prerender(context.Background(), exam.ID), ErrExamNotPublished)

	require.NoError(t, exams.UpdateStatus(context.Background(), exam.ID, model.ExamStatusPublished))
	require.NoError(t, svc.Prerender(context.Background(), exam.ID))
	assert.Equal(t, "%PDF-Prova de Geografia", string(cache.data[config.CacheKey.ExamPDFKey(exam.ID.String())]))
}
