package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
)

// ExamHandler handles exam authoring endpoints.
type ExamHandler struct {
	examService  *service.ExamService
	qbankService *service.QuestionBankService
	log          zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, qbankService *service.QuestionBankService, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService:  examService,
		qbankService: qbankService,
		log:          log.With().Str("component", "exam_handler").Logger(),
	}
}

// CreateExam godoc
// POST /api/v1/exams
// Creates a new draft exam. Free-plan accounts get the watermark block.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), claims, req)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// GetExam godoc
// GET /api/v1/exams/:exam_id
func (h *ExamHandler) GetExam(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID, claims)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// SaveBlocks godoc
// PUT /api/v1/exams/:exam_id/blocks
// Replaces the block sequence of a draft. The watermark is kept as stored.
func (h *ExamHandler) SaveBlocks(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	var req model.SaveBlocksRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.SaveBlocks(c.Request.Context(), examID, claims, req)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// AddBlock godoc
// POST /api/v1/exams/:exam_id/blocks
// Adds a fresh block from the toolbox.
func (h *ExamHandler) AddBlock(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	var req model.AddBlockRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.edit(c, examID, claims, "add", http.StatusCreated, func(s *editor.Surface) editor.Result {
		return s.AddFromToolbox(req.Type)
	})
}

// AddFromBank godoc
// POST /api/v1/exams/:exam_id/blocks/from-bank
// Inserts a stored question from one of the caller's banks.
func (h *ExamHandler) AddFromBank(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	var req model.AddFromBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.qbankService.Record(c.Request.Context(), req.QuestionID, claims)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	h.edit(c, examID, claims, "add_from_bank", http.StatusCreated, func(s *editor.Surface) editor.Result {
		return s.AddQuestion(rec)
	})
}

// DeleteBlock godoc
// DELETE /api/v1/exams/:exam_id/blocks/:block_id
func (h *ExamHandler) DeleteBlock(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	blockID := c.Param("block_id")
	h.edit(c, examID, claims, "delete", http.StatusOK, func(s *editor.Surface) editor.Result {
		return s.Delete(blockID)
	})
}

// MoveBlock godoc
// POST /api/v1/exams/:exam_id/blocks/move
// Drops active_id onto the position of over_id.
func (h *ExamHandler) MoveBlock(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	var req model.MoveBlockRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.edit(c, examID, claims, "move", http.StatusOK, func(s *editor.Surface) editor.Result {
		return s.Move(req.ActiveID, req.OverID)
	})
}

// UpdateBlock godoc
// PATCH /api/v1/exams/:exam_id/blocks/:block_id
// Shallow-merges the content patch into the block.
func (h *ExamHandler) UpdateBlock(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	var req model.UpdateContentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	blockID := c.Param("block_id")
	h.edit(c, examID, claims, "update", http.StatusOK, func(s *editor.Surface) editor.Result {
		return s.UpdateContent(blockID, req.Content)
	})
}

// PublishExam godoc
// POST /api/v1/exams/:exam_id/publish
// Locks the exam for good and queues its PDF.
func (h *ExamHandler) PublishExam(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	exam, err := h.examService.Publish(c.Request.Context(), examID, claims)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

func (h *ExamHandler) edit(c *gin.Context, examID uuid.UUID, claims *service.Claims, op string, status int, fn func(*editor.Surface) editor.Result) {
	exam, res, err := h.examService.ApplyEdit(c.Request.Context(), examID, claims, op, fn)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, status, gin.H{"exam": exam, "block_id": res.BlockID})
}

// examRequest pulls the caller and the :exam_id param, writing the error
// response itself when either is missing.
func examRequest(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return claims, examID, true
}
