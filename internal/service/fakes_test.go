package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/repository"
)

var nopLog = zerolog.Nop()

type fakeExams struct {
	mu    sync.Mutex
	exams map[uuid.UUID]*model.Exam
	saves int
	err   error
}

func newFakeExams(exams ...*model.Exam) *fakeExams {
	f := &fakeExams{exams: make(map[uuid.UUID]*model.Exam)}
	for _, e := range exams {
		f.exams[e.ID] = e
	}
	return f
}

func (f *fakeExams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	cp.Blocks = model.CloneBlocks(e.Blocks)
	return &cp, nil
}

func (f *fakeExams) Create(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	cp.Blocks = model.CloneBlocks(e.Blocks)
	f.exams[e.ID] = &cp
	return nil
}

func (f *fakeExams) SaveBlocks(_ context.Context, id uuid.UUID, title string, blocks []model.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok || e.Status != model.ExamStatusDraft {
		return repository.ErrNotFound
	}
	e.Title = title
	e.Blocks = model.CloneBlocks(blocks)
	f.saves++
	return nil
}

func (f *fakeExams) UpdateStatus(_ context.Context, id uuid.UUID, status model.ExamStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeExams) stored(id uuid.UUID) *model.Exam {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exams[id]
}

type fakeNotifier struct {
	mu       sync.Mutex
	queued   []uuid.UUID
	changes  []string
	queueErr error
}

func (f *fakeNotifier) EnqueueRender(_ context.Context, examID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queueErr != nil {
		return f.queueErr
	}
	f.queued = append(f.queued, examID)
	return nil
}

func (f *fakeNotifier) PublishChange(_ context.Context, examID uuid.UUID, origin string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, examID.String()+"|"+origin)
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.data[key]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return d, nil
}

func (f *fakeCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = append([]byte(nil), data...)
	f.sets++
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

// stubPDF writes the title instead of a real paper and counts calls.
type stubPDF struct {
	calls int
	err   error
}

func (s *stubPDF) Render(_ context.Context, doc model.Document, w io.Writer) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "%PDF-"+doc.Title)
	return err
}

type fakeQuestions struct {
	banks     map[uuid.UUID]*model.QuestionBank
	questions map[uuid.UUID]model.BankQuestion
}

func (f *fakeQuestions) GetBank(_ context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b, ok := f.banks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (f *fakeQuestions) ListQuestions(_ context.Context, bankID uuid.UUID) ([]model.BankQuestion, error) {
	var out []model.BankQuestion
	for _, q := range f.questions {
		if q.QBankID == bankID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) GetQuestion(_ context.Context, id uuid.UUID) (*model.BankQuestion, uuid.UUID, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, uuid.Nil, repository.ErrNotFound
	}
	b, ok := f.banks[q.QBankID]
	if !ok {
		return nil, uuid.Nil, errors.New("orphan question")
	}
	return &q, b.AuthorID, nil
}

func freeClaims() *Claims {
	return &Claims{UserID: uuid.New(), Plan: PlanFree}
}

func proClaims() *Claims {
	return &Claims{UserID: uuid.New(), Plan: PlanPro}
}

func draftExam(author uuid.UUID, blocks ...model.Block) *model.Exam {
	return &model.Exam{
		ID:       uuid.New(),
		Title:    "Prova de Geografia",
		AuthorID: author,
		Status:   model.ExamStatusDraft,
		Blocks:   blocks,
	}
}
