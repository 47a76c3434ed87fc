package websocket

import (
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect      Action = "select"
	ActionAdd         Action = "add"
	ActionAddFromBank Action = "add_from_bank"
	ActionDelete      Action = "delete"
	ActionMove        Action = "move"
	ActionUpdate      Action = "update"
	ActionPing        Action = "ping"
)

// EditorRequest is every message an editor session sends. Which fields are
// read depends on Action.
type EditorRequest struct {
	Action     Action          `json:"action"`
	BlockID    string          `json:"block_id,omitempty"`
	Type       model.BlockType `json:"type,omitempty"`
	QuestionID string          `json:"question_id,omitempty"`
	ActiveID   string          `json:"active_id,omitempty"`
	OverID     string          `json:"over_id,omitempty"`
	Content    model.Content   `json:"content,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState    Event = "state"
	EventRejected Event = "rejected"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// StateResponse carries the whole surface after every change.
type StateResponse struct {
	Event         Event                 `json:"event"`
	Blocks        []model.Block         `json:"blocks"`
	SelectedID    string                `json:"selected_id,omitempty"`
	Published     bool                  `json:"published"`
	QuestionCount int                   `json:"question_count"`
	MaxQuestions  int                   `json:"max_questions"`
	Toolbox       []editor.ToolboxEntry `json:"toolbox"`
	Panel         editor.Panel          `json:"panel"`
}

// NewState snapshots s.
func NewState(s *editor.Surface) StateResponse {
	return StateResponse{
		Event:         EventState,
		Blocks:        s.Blocks(),
		SelectedID:    s.SelectedID(),
		Published:     s.Published(),
		QuestionCount: s.QuestionCount(),
		MaxQuestions:  editor.MaxQuestions,
		Toolbox:       s.Toolbox(),
		Panel:         s.Panel(),
	}
}

// RejectedResponse tells the client a mutation was refused by policy.
type RejectedResponse struct {
	Event  Event       `json:"event"`
	Code   editor.Code `json:"code"`
	Reason string      `json:"reason"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
