package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/service"
)

func blockIDs(blocks []model.Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

func TestCreateExam(t *testing.T) {
	ts := newTestServer(t)

	t.Run("free plan gets the watermark", func(t *testing.T) {
		w := ts.do(t, ts.token(t, uuid.New(), service.PlanFree), http.MethodPost, "/api/v1/exams",
			map[string]any{"title": "Prova de História"})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		got := decodeExam(t, w)
		require.Len(t, got.Exam.Blocks, 1)
		assert.Equal(t, model.WatermarkBlockID, got.Exam.Blocks[0].ID)
		assert.Equal(t, model.ExamStatusDraft, got.Exam.Status)
	})

	t.Run("paid plan has no watermark", func(t *testing.T) {
		w := ts.do(t, ts.token(t, uuid.New(), service.PlanPro), http.MethodPost, "/api/v1/exams",
			map[string]any{"title": "Prova de História"})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Empty(t, decodeExam(t, w).Exam.Blocks)
	})

	t.Run("short title", func(t *testing.T) {
		w := ts.do(t, ts.token(t, uuid.New(), service.PlanPro), http.MethodPost, "/api/v1/exams",
			map[string]any{"title": "ab"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errCode(t, w))
	})

	t.Run("no token", func(t *testing.T) {
		w := ts.do(t, "", http.MethodPost, "/api/v1/exams", map[string]any{"title": "Prova"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetExam(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	exam := ts.seed(author, questionBlock("q1"))

	tests := []struct {
		name   string
		user   uuid.UUID
		path   string
		status int
		code   string
	}{
		{"author", author, "/api/v1/exams/" + exam.ID.String(), http.StatusOK, ""},
		{"someone else", uuid.New(), "/api/v1/exams/" + exam.ID.String(), http.StatusForbidden, "NOT_EXAM_AUTHOR"},
		{"bad id", author, "/api/v1/exams/nope", http.StatusBadRequest, "INVALID_ID"},
		{"unknown", author, "/api/v1/exams/" + uuid.NewString(), http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, ts.token(t, tt.user, service.PlanPro), http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errCode(t, w))
				return
			}
			assert.Equal(t, []string{"q1"}, blockIDs(decodeExam(t, w).Exam.Blocks))
		})
	}
}

func TestAddBlock(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	token := ts.token(t, author, service.PlanFree)
	exam := ts.seed(author, questionBlock("q1"), model.NewWatermarkBlock("Feito com ExStem"))
	path := "/api/v1/exams/" + exam.ID.String() + "/blocks"

	w := ts.do(t, token, http.MethodPost, path, map[string]any{"type": "essay"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decodeExam(t, w)
	require.NotEmpty(t, got.BlockID)
	assert.Equal(t, []string{"q1", got.BlockID, model.WatermarkBlockID}, blockIDs(got.Exam.Blocks))

	w = ts.do(t, token, http.MethodPost, path, map[string]any{"type": "header"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got = decodeExam(t, w)
	assert.Equal(t, got.BlockID, got.Exam.Blocks[0].ID)

	w = ts.do(t, token, http.MethodPost, path, map[string]any{"type": "header"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "HEADER_EXISTS", errCode(t, w))

	w = ts.do(t, token, http.MethodPost, path, map[string]any{"type": "video"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errCode(t, w))
}

func TestAddBlockQuestionLimit(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	blocks := make([]model.Block, 0, 10)
	for i := 0; i < 10; i++ {
		blocks = append(blocks, questionBlock(fmt.Sprintf("q%d", i)))
	}
	exam := ts.seed(author, blocks...)

	w := ts.do(t, ts.token(t, author, service.PlanPro), http.MethodPost,
		"/api/v1/exams/"+exam.ID.String()+"/blocks", map[string]any{"type": "essay"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "QUESTION_LIMIT", env.Error.Code)
	assert.NotEmpty(t, env.Error.Message)

	stored, err := ts.exams.GetByID(t.Context(), exam.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Blocks, 10)
}

func TestDeleteBlock(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	token := ts.token(t, author, service.PlanFree)
	exam := ts.seed(author, questionBlock("q1"), questionBlock("q2"), model.NewWatermarkBlock("Feito com ExStem"))
	base := "/api/v1/exams/" + exam.ID.String() + "/blocks/"

	w := ts.do(t, token, http.MethodDelete, base+"q1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"q2", model.WatermarkBlockID}, blockIDs(decodeExam(t, w).Exam.Blocks))

	w = ts.do(t, token, http.MethodDelete, base+model.WatermarkBlockID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "WATERMARK_LOCKED", errCode(t, w))

	w = ts.do(t, token, http.MethodDelete, base+"missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BLOCK_NOT_FOUND", errCode(t, w))
}

func TestMoveBlock(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	token := ts.token(t, author, service.PlanFree)
	exam := ts.seed(author, questionBlock("q1"), questionBlock("q2"), questionBlock("q3"),
		model.NewWatermarkBlock("Feito com ExStem"))
	path := "/api/v1/exams/" + exam.ID.String() + "/blocks/move"

	w := ts.do(t, token, http.MethodPost, path, map[string]any{"active_id": "q3", "over_id": "q1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"q3", "q1", "q2", model.WatermarkBlockID}, blockIDs(decodeExam(t, w).Exam.Blocks))

	w = ts.do(t, token, http.MethodPost, path, map[string]any{"active_id": "q1", "over_id": model.WatermarkBlockID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "WATERMARK_LOCKED", errCode(t, w))
}

func TestUpdateBlock(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	exam := ts.seed(author, questionBlock("q1"))

	w := ts.do(t, ts.token(t, author, service.PlanPro), http.MethodPatch,
		"/api/v1/exams/"+exam.ID.String()+"/blocks/q1",
		map[string]any{"content": map[string]any{"stem": "Qual é o maior rio do Brasil?"}})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	content := decodeExam(t, w).Exam.Blocks[0].Content
	assert.Equal(t, "Qual é o maior rio do Brasil?", content.String("stem"))
	assert.Len(t, content.Strings("options"), 2)
}

func TestSaveBlocksKeepsStoredWatermark(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	exam := ts.seed(author, model.NewWatermarkBlock("Feito com ExStem"))

	w := ts.do(t, ts.token(t, author, service.PlanFree), http.MethodPut,
		"/api/v1/exams/"+exam.ID.String()+"/blocks",
		map[string]any{"blocks": []model.Block{
			{ID: model.WatermarkBlockID, Type: model.BlockTypeText, Content: model.Content{"text": "sem marca"}},
			questionBlock("q1"),
		}})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	blocks := decodeExam(t, w).Exam.Blocks
	assert.Equal(t, []string{"q1", model.WatermarkBlockID}, blockIDs(blocks))
	assert.Equal(t, "Feito com ExStem", blocks[1].Content.String("text"))
}

func TestSaveBlocksDuplicateID(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	exam := ts.seed(author)

	w := ts.do(t, ts.token(t, author, service.PlanPro), http.MethodPut,
		"/api/v1/exams/"+exam.ID.String()+"/blocks",
		map[string]any{"blocks": []model.Block{questionBlock("q1"), questionBlock("q1")}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DUPLICATE_BLOCK_ID", errCode(t, w))
}

func TestPublishLocksExam(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	token := ts.token(t, author, service.PlanPro)
	exam := ts.seed(author, questionBlock("q1"))
	base := "/api/v1/exams/" + exam.ID.String()

	w := ts.do(t, ts.token(t, uuid.New(), service.PlanPro), http.MethodPost, base+"/publish", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, token, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.ExamStatusPublished, decodeExam(t, w).Exam.Status)

	w = ts.do(t, token, http.MethodPost, base+"/blocks", map[string]any{"type": "text"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EXAM_LOCKED", errCode(t, w))

	w = ts.do(t, token, http.MethodPut, base+"/blocks", map[string]any{"blocks": []model.Block{}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, token, http.MethodPost, base+"/publish", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EXAM_LOCKED", errCode(t, w))
}

func TestAddFromBank(t *testing.T) {
	ts := newTestServer(t)
	author := uuid.New()
	token := ts.token(t, author, service.PlanPro)
	exam := ts.seed(author)

	own := &model.QuestionBank{ID: uuid.New(), AuthorID: author, Name: "Geografia"}
	other := &model.QuestionBank{ID: uuid.New(), AuthorID: uuid.New(), Name: "Alheio"}
	ts.questions.banks[own.ID] = own
	ts.questions.banks[other.ID] = other

	mine := model.BankQuestion{ID: uuid.New(), QBankID: own.ID, Record: model.QuestionRecord{
		Type:          model.BlockTypeTrueFalse,
		Content:       model.QuestionContent{Stem: "O Brasil fica na América do Sul."},
		CorrectAnswer: "V",
	}}
	theirs := model.BankQuestion{ID: uuid.New(), QBankID: other.ID, Record: model.QuestionRecord{
		Type:    model.BlockTypeEssay,
		Content: model.QuestionContent{Stem: "Disserte."},
	}}
	ts.questions.questions[mine.ID] = mine
	ts.questions.questions[theirs.ID] = theirs

	path := "/api/v1/exams/" + exam.ID.String() + "/blocks/from-bank"

	w := ts.do(t, token, http.MethodPost, path, map[string]any{"question_id": mine.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decodeExam(t, w)
	require.Len(t, got.Exam.Blocks, 1)
	qd := got.Exam.Blocks[0].QuestionData
	require.NotNil(t, qd)
	assert.Equal(t, mine.ID.String(), qd.ID)
	assert.Equal(t, model.BlockTypeTrueFalse, got.Exam.Blocks[0].EffectiveType())

	w = ts.do(t, token, http.MethodPost, path, map[string]any{"question_id": theirs.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errCode(t, w))

	w = ts.do(t, token, http.MethodPost, path, map[string]any{"question_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
