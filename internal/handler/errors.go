package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
)

// failService maps a service error onto the response envelope. Anything
// unknown is logged and reported as internal.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	var rejected *service.RejectedError
	switch {
	case errors.As(err, &rejected):
		failRejected(c, rejected.Result)
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrBankNotFound),
		errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotExamAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotExamAuthor)
	case errors.Is(err, service.ErrNotBankOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrExamNotPublished):
		response.Fail(c, http.StatusForbidden, response.ErrExamNotPublished)
	case errors.Is(err, service.ErrExamLocked):
		response.Fail(c, http.StatusConflict, response.ErrExamLocked)
	case errors.Is(err, context.Canceled):
		// Client disconnected.
		c.Status(499)
	default:
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", response.RequestID(c)).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func failRejected(c *gin.Context, res editor.Result) {
	status := http.StatusUnprocessableEntity
	switch res.Code {
	case editor.CodeBlockNotFound:
		status = http.StatusNotFound
	case editor.CodeExamLocked:
		status = http.StatusConflict
	}
	response.FailWithMessage(c, status, response.ErrCode(res.Code), res.Reason)
}
