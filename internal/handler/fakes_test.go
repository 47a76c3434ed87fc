package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type memExams struct {
	mu    sync.Mutex
	exams map[uuid.UUID]*model.Exam
}

func (m *memExams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	cp.Blocks = model.CloneBlocks(e.Blocks)
	return &cp, nil
}

func (m *memExams) Create(_ context.Context, e *model.Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	cp.Blocks = model.CloneBlocks(e.Blocks)
	m.exams[e.ID] = &cp
	return nil
}

func (m *memExams) SaveBlocks(_ context.Context, id uuid.UUID, title string, blocks []model.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[id]
	if !ok || e.Status != model.ExamStatusDraft {
		return repository.ErrNotFound
	}
	e.Title = title
	e.Blocks = model.CloneBlocks(blocks)
	return nil
}

func (m *memExams) UpdateStatus(_ context.Context, id uuid.UUID, status model.ExamStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Status = status
	return nil
}

func (m *memExams) put(e *model.Exam) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exams[e.ID] = e
}

// chanFeed hands every session the same channel of change origins.
type chanFeed struct {
	ch chan string
}

func (f *chanFeed) Changes(context.Context, uuid.UUID) (<-chan string, error) {
	return f.ch, nil
}

type nopNotifier struct{}

func (nopNotifier) EnqueueRender(context.Context, uuid.UUID) error         { return nil }
func (nopNotifier) PublishChange(context.Context, uuid.UUID, string) error { return nil }

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return d, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type stubPDF struct{}

func (stubPDF) Render(_ context.Context, doc model.Document, w io.Writer) error {
	_, err := io.WriteString(w, "%PDF-"+doc.Title)
	return err
}

type memQuestions struct {
	banks     map[uuid.UUID]*model.QuestionBank
	questions map[uuid.UUID]model.BankQuestion
}

func (m *memQuestions) GetBank(_ context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	b, ok := m.banks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (m *memQuestions) ListQuestions(_ context.Context, bankID uuid.UUID) ([]model.BankQuestion, error) {
	var out []model.BankQuestion
	for _, q := range m.questions {
		if q.QBankID == bankID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuestions) GetQuestion(_ context.Context, id uuid.UUID) (*model.BankQuestion, uuid.UUID, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, uuid.Nil, repository.ErrNotFound
	}
	return &q, m.banks[q.QBankID].AuthorID, nil
}

// testServer wires real services over in-memory stores behind the JWT
// middleware, with the same routes as the API.
type testServer struct {
	engine    *gin.Engine
	verifier  *service.TokenVerifier
	exams     *memExams
	questions *memQuestions
	feed      *chanFeed
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	ts := &testServer{
		verifier: service.NewTokenVerifier("test-secret"),
		exams:    &memExams{exams: make(map[uuid.UUID]*model.Exam)},
		questions: &memQuestions{
			banks:     make(map[uuid.UUID]*model.QuestionBank),
			questions: make(map[uuid.UUID]model.BankQuestion),
		},
		feed: &chanFeed{ch: make(chan string, 1)},
	}

	examSvc := service.NewExamService(ts.exams, nopNotifier{}, "Feito com ExStem", log)
	renderSvc := service.NewRenderService(ts.exams, &memCache{data: make(map[string][]byte)}, stubPDF{}, time.Hour, log)
	qbankSvc := service.NewQuestionBankService(ts.questions)

	exam := NewExamHandler(examSvc, qbankSvc, log)
	render := NewRenderHandler(renderSvc, log)
	qbank := NewQBankHandler(qbankSvc, log)
	editorWS := NewEditorWSHandler(examSvc, qbankSvc, ts.feed, log, nil)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	api := r.Group("/api/v1", middleware.RequireTeacherJWT(ts.verifier))
	api.POST("/exams", exam.CreateExam)
	api.GET("/exams/:exam_id", exam.GetExam)
	api.PUT("/exams/:exam_id/blocks", exam.SaveBlocks)
	api.POST("/exams/:exam_id/blocks", exam.AddBlock)
	api.POST("/exams/:exam_id/blocks/from-bank", exam.AddFromBank)
	api.POST("/exams/:exam_id/blocks/move", exam.MoveBlock)
	api.PATCH("/exams/:exam_id/blocks/:block_id", exam.UpdateBlock)
	api.DELETE("/exams/:exam_id/blocks/:block_id", exam.DeleteBlock)
	api.POST("/exams/:exam_id/publish", exam.PublishExam)
	api.GET("/exams/:exam_id/editor", render.EditorPage)
	api.GET("/exams/:exam_id/view", render.ViewPage)
	api.GET("/exams/:exam_id/download", render.Download)
	api.GET("/qbanks/:qbank_id/questions", qbank.ListQuestions)
	r.GET("/ws/v1/exams/:exam_id/editor", middleware.RequireTeacherWSAuth(ts.verifier), editorWS.EditorStream)
	ts.engine = r
	return ts
}

func (ts *testServer) token(t *testing.T, userID uuid.UUID, plan service.Plan) string {
	t.Helper()
	token, err := ts.verifier.IssueToken(userID, plan, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

// seed stores a draft exam owned by author.
func (ts *testServer) seed(author uuid.UUID, blocks ...model.Block) *model.Exam {
	e := &model.Exam{
		ID:       uuid.New(),
		Title:    "Prova de Geografia",
		AuthorID: author,
		Status:   model.ExamStatusDraft,
		Blocks:   blocks,
	}
	ts.exams.put(e)
	return e
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type examData struct {
	Exam    model.Exam `json:"exam"`
	BlockID string     `json:"block_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeExam(t *testing.T, w *httptest.ResponseRecorder) examData {
	t.Helper()
	env := decode(t, w)
	var d examData
	require.NoError(t, json.Unmarshal(env.Data, &d))
	return d
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func questionBlock(id string) model.Block {
	return model.Block{
		ID:      id,
		Type:    model.BlockTypeMultipleChoice,
		Content: model.Content{"stem": "Qual é a capital do Brasil?", "options": []any{"Rio", "Brasília"}},
	}
}
