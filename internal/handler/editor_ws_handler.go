package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/metrics"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/service"
	ws "github.com/stemsi/exstem-paper/internal/websocket"
)

const keepAliveInterval = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ChangeFeed streams the origin of every stored change of an exam.
type ChangeFeed interface {
	Changes(ctx context.Context, examID uuid.UUID) (<-chan string, error)
}

// EditorWSHandler runs live editing sessions over WebSocket.
type EditorWSHandler struct {
	examService  *service.ExamService
	qbankService *service.QuestionBankService
	feed         ChangeFeed
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewEditorWSHandler creates a new EditorWSHandler.
func NewEditorWSHandler(examService *service.ExamService, qbankService *service.QuestionBankService, feed ChangeFeed, log zerolog.Logger, allowedOrigins []string) *EditorWSHandler {
	return &EditorWSHandler{
		examService:  examService,
		qbankService: qbankService,
		feed:         feed,
		log:          log.With().Str("component", "editor_ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// editorSession is one connected editor. Only the session loop touches
// the surface.
type editorSession struct {
	id      string
	claims  *service.Claims
	exam    *model.Exam
	surface *editor.Surface
	conn    *websocket.Conn
	log     zerolog.Logger
}

// EditorStream godoc
// WS /ws/v1/exams/:exam_id/editor?token=...
// Every accepted mutation is persisted at once and pushed back as a full
// state; changes made by other sessions on the same exam reload the surface.
func (h *EditorWSHandler) EditorStream(c *gin.Context) {
	claims, examID, ok := examRequest(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	surface, exam, err := h.examService.OpenSurface(ctx, examID, claims)
	if err != nil {
		failService(c, h.log, err)
		return
	}

	changes, err := h.feed.Changes(ctx, examID)
	if err != nil {
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Change feed unavailable")
		failService(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	ws.Prepare(conn)

	s := &editorSession{
		id:      uuid.NewString(),
		claims:  claims,
		exam:    exam,
		surface: surface,
		conn:    conn,
		log: h.log.With().
			Str("exam_id", examID.String()).
			Str("user_id", claims.UserID.String()).
			Logger(),
	}
	s.log.Info().Str("session", s.id).Msg("Editor connected")

	requests := make(chan ws.EditorRequest)
	go func() {
		defer cancel()
		defer close(requests)
		for {
			var msg ws.EditorRequest
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case requests <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := ws.WriteState(conn, s.surface); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Editor disconnected")
			return
		case msg, ok := <-requests:
			if !ok {
				s.log.Info().Msg("Editor disconnected")
				return
			}
			err = h.handle(ctx, s, msg)
		case origin, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if origin == s.id {
				continue
			}
			err = h.reload(ctx, s)
		case <-keepAlive.C:
			err = ws.WritePing(conn)
		}
		if err != nil {
			s.log.Debug().Err(err).Msg("Write failed, closing session")
			return
		}
	}
}

// handle applies one client request and answers it. The returned error is
// a connection failure; everything else is reported to the client.
func (h *EditorWSHandler) handle(ctx context.Context, s *editorSession, msg ws.EditorRequest) error {
	var (
		res     editor.Result
		persist = true
	)
	switch msg.Action {
	case ws.ActionPing:
		return ws.WriteTyped(s.conn, ws.PongResponse{Event: ws.EventPong})
	case ws.ActionSelect:
		res, persist = s.surface.Select(msg.BlockID), false
	case ws.ActionAdd:
		res = s.surface.AddFromToolbox(msg.Type)
	case ws.ActionAddFromBank:
		qid, err := uuid.Parse(msg.QuestionID)
		if err != nil {
			return ws.WriteError(s.conn, "invalid question_id")
		}
		rec, err := h.qbankService.Record(ctx, qid, s.claims)
		if err != nil {
			return ws.WriteError(s.conn, sessionError(err))
		}
		res = s.surface.AddQuestion(rec)
	case ws.ActionDelete:
		res = s.surface.Delete(msg.BlockID)
	case ws.ActionMove:
		res = s.surface.Move(msg.ActiveID, msg.OverID)
	case ws.ActionUpdate:
		res = s.surface.UpdateContent(msg.BlockID, msg.Content)
	default:
		s.log.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		return ws.WriteError(s.conn, "unknown action: "+string(msg.Action))
	}

	if persist {
		metrics.ObserveEdit(string(msg.Action), string(res.Code))
	}
	if !res.Applied {
		return ws.WriteRejected(s.conn, res)
	}

	if persist {
		if err := h.examService.Commit(ctx, s.exam, s.surface, s.id); err != nil {
			s.log.Error().Err(err).Str("action", string(msg.Action)).Msg("Failed to save edit")
			if werr := ws.WriteError(s.conn, sessionError(err)); werr != nil {
				return werr
			}
			return h.reload(ctx, s)
		}
	}
	return ws.WriteState(s.conn, s.surface)
}

// reload replaces the surface with the stored exam, keeping the selection
// when the block still exists.
func (h *EditorWSHandler) reload(ctx context.Context, s *editorSession) error {
	surface, exam, err := h.examService.OpenSurface(ctx, s.exam.ID, s.claims)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to reload exam")
		return ws.WriteError(s.conn, sessionError(err))
	}
	surface.Select(s.surface.SelectedID())
	s.surface, s.exam = surface, exam
	return ws.WriteState(s.conn, s.surface)
}

func sessionError(err error) string {
	switch {
	case errors.Is(err, service.ErrExamLocked):
		return "exam is published"
	case errors.Is(err, service.ErrQuestionNotFound):
		return "question not found"
	case errors.Is(err, service.ErrNotBankOwner):
		return "question belongs to another bank owner"
	case errors.Is(err, service.ErrExamNotFound):
		return "exam not found"
	default:
		return "internal error"
	}
}
