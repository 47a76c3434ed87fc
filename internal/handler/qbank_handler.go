package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
)

// QBankHandler handles question bank reads.
type QBankHandler struct {
	qbankService *service.QuestionBankService
	log          zerolog.Logger
}

// NewQBankHandler creates a new QBankHandler.
func NewQBankHandler(qbankService *service.QuestionBankService, log zerolog.Logger) *QBankHandler {
	return &QBankHandler{
		qbankService: qbankService,
		log:          log.With().Str("component", "qbank_handler").Logger(),
	}
}

// ListQuestions godoc
// GET /api/v1/qbanks/:qbank_id/questions
func (h *QBankHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	bankID, err := uuid.Parse(c.Param("qbank_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.qbankService.ListQuestions(c.Request.Context(), bankID, claims)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}
