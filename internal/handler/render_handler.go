package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/service"
)

const contentTypeHTML = "text/html; charset=utf-8"

// RenderHandler serves the three renditions of an exam.
type RenderHandler struct {
	renderService *service.RenderService
	log           zerolog.Logger
}

// NewRenderHandler creates a new RenderHandler.
func NewRenderHandler(renderService *service.RenderService, log zerolog.Logger) *RenderHandler {
	return &RenderHandler{
		renderService: renderService,
		log:           log.With().Str("component", "render_handler").Logger(),
	}
}

// EditorPage godoc
// GET /api/v1/exams/:exam_id/editor
// Returns the editing surface markup. Author only.
func (h *RenderHandler) EditorPage(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	html, err := h.renderService.Editor(c.Request.Context(), examID, claims)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	c.Data(http.StatusOK, contentTypeHTML, html)
}

// ViewPage godoc
// GET /api/v1/exams/:exam_id/view?answers=true
// Returns the read-only HTML. answers is honoured for the author only.
func (h *RenderHandler) ViewPage(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	showAnswers, _ := strconv.ParseBool(c.Query("answers"))
	html, err := h.renderService.Static(c.Request.Context(), examID, claims, showAnswers)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	c.Data(http.StatusOK, contentTypeHTML, html)
}

// Download godoc
// GET /api/v1/exams/:exam_id/download
// Streams the paginated PDF as an attachment.
func (h *RenderHandler) Download(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	pdf, err := h.renderService.PDF(c.Request.Context(), examID, claims)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	cache := "MISS"
	if pdf.Cached {
		cache = "HIT"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": pdf.Filename}))
	c.Header("X-Render-Cache", cache)
	c.Data(http.StatusOK, "application/pdf", pdf.Data)
}
