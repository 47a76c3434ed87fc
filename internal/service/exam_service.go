package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/metrics"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/repository"
)

// Domain Errors
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrNotExamAuthor    = errors.New("not the author of this exam")
	ErrExamLocked       = errors.New("exam is published and cannot be edited")
	ErrExamNotPublished = errors.New("exam status is not published")
)

// RejectedError carries an editor policy rejection to the caller.
type RejectedError struct {
	Result editor.Result
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("edit rejected: %s", e.Result.Code)
}

// ExamStore persists exams.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
	SaveBlocks(ctx context.Context, id uuid.UUID, title string, blocks []model.Block) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error
}

// ChangeNotifier enqueues renders and fans changes out to editor sessions.
type ChangeNotifier interface {
	EnqueueRender(ctx context.Context, examID uuid.UUID) error
	PublishChange(ctx context.Context, examID uuid.UUID, origin string) error
}

// ExamService handles exam authoring: creation, edits and publishing.
type ExamService struct {
	exams     ExamStore
	notifier  ChangeNotifier
	watermark string
	log       zerolog.Logger
}

// NewExamService creates a new ExamService. watermark is the text stamped on
// exams created by free-plan accounts.
func NewExamService(exams ExamStore, notifier ChangeNotifier, watermark string, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:     exams,
		notifier:  notifier,
		watermark: watermark,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// Create inserts a new exam as draft. Free-plan exams get the trailing
// watermark block here, once.
func (s *ExamService) Create(ctx context.Context, claims *Claims, req model.CreateExamRequest) (*model.Exam, error) {
	blocks := editor.StripWatermark(req.Blocks)
	if res := editor.Validate(blocks); !res.Applied {
		return nil, &RejectedError{Result: res}
	}

	var opts []editor.Option
	if !claims.Paid() {
		opts = append(opts, editor.WithWatermark(s.watermark))
	}
	surface := editor.NewSurface(blocks, opts...)

	exam := &model.Exam{
		Title:    req.Title,
		AuthorID: claims.UserID,
		Status:   model.ExamStatusDraft,
		Blocks:   surface.Blocks(),
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("plan", string(claims.Plan)).
		Int("blocks", len(exam.Blocks)).
		Msg("Exam created")
	return exam, nil
}

// Get returns an exam owned by the caller.
func (s *ExamService) Get(ctx context.Context, examID uuid.UUID, claims *Claims) (*model.Exam, error) {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != claims.UserID {
		return nil, ErrNotExamAuthor
	}
	return exam, nil
}

// SaveBlocks replaces the whole block sequence of a draft. The stored
// watermark, if any, is kept and stays last whatever the client sent.
func (s *ExamService) SaveBlocks(ctx context.Context, examID uuid.UUID, claims *Claims, req model.SaveBlocksRequest) (*model.Exam, error) {
	exam, err := s.Get(ctx, examID, claims)
	if err != nil {
		return nil, err
	}
	if exam.Published() {
		return nil, ErrExamLocked
	}

	blocks := editor.StripWatermark(req.Blocks)
	if res := editor.Validate(blocks); !res.Applied {
		return nil, &RejectedError{Result: res}
	}
	doc := exam.Document()
	if wm, ok := doc.Watermark(); ok {
		blocks = append(blocks, wm)
	}

	exam.Blocks = editor.NewSurface(blocks).Blocks()
	if req.Title != "" {
		exam.Title = req.Title
	}
	if err := s.persist(ctx, exam, ""); err != nil {
		return nil, err
	}
	return exam, nil
}

// OpenSurface hydrates an editing surface for the author of examID.
func (s *ExamService) OpenSurface(ctx context.Context, examID uuid.UUID, claims *Claims) (*editor.Surface, *model.Exam, error) {
	exam, err := s.Get(ctx, examID, claims)
	if err != nil {
		return nil, nil, err
	}
	return editor.NewSurface(exam.Blocks, editor.WithPublished(exam.Published())), exam, nil
}

// ApplyEdit hydrates a surface, applies one mutation and persists the result.
// A policy rejection comes back as *RejectedError and nothing is written.
func (s *ExamService) ApplyEdit(ctx context.Context, examID uuid.UUID, claims *Claims, op string, edit func(*editor.Surface) editor.Result) (*model.Exam, editor.Result, error) {
	surface, exam, err := s.OpenSurface(ctx, examID, claims)
	if err != nil {
		return nil, editor.Result{}, err
	}

	res := edit(surface)
	metrics.ObserveEdit(op, string(res.Code))
	if !res.Applied {
		return nil, res, &RejectedError{Result: res}
	}

	if err := s.Commit(ctx, exam, surface, ""); err != nil {
		return nil, res, err
	}
	return exam, res, nil
}

// Commit writes the surface's blocks back to exam. origin names the editor
// session that made the change so it can ignore its own notification.
func (s *ExamService) Commit(ctx context.Context, exam *model.Exam, surface *editor.Surface, origin string) error {
	if surface.Published() {
		return ErrExamLocked
	}
	exam.Blocks = surface.Blocks()
	return s.persist(ctx, exam, origin)
}

// Publish moves a draft to published. The transition is one-way; a PDF
// pre-render is queued afterwards.
func (s *ExamService) Publish(ctx context.Context, examID uuid.UUID, claims *Claims) (*model.Exam, error) {
	exam, err := s.Get(ctx, examID, claims)
	if err != nil {
		return nil, err
	}
	if exam.Published() {
		return nil, ErrExamLocked
	}

	if err := s.exams.UpdateStatus(ctx, examID, model.ExamStatusPublished); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	exam.Status = model.ExamStatusPublished

	if err := s.notifier.EnqueueRender(ctx, examID); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to queue pre-render")
	}
	if err := s.notifier.PublishChange(ctx, examID, ""); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to notify editors")
	}

	s.log.Info().Str("exam_id", examID.String()).Msg("Exam published")
	return exam, nil
}

func (s *ExamService) load(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

func (s *ExamService) persist(ctx context.Context, exam *model.Exam, origin string) error {
	err := s.exams.SaveBlocks(ctx, exam.ID, exam.Title, exam.Blocks)
	if errors.Is(err, repository.ErrNotFound) {
		// The row exists (it was just read) so the status guard failed.
		return ErrExamLocked
	}
	if err != nil {
		return fmt.Errorf("save blocks: %w", err)
	}
	if err := s.notifier.PublishChange(ctx, exam.ID, origin); err != nil {
		s.log.Warn().Err(err).Str("exam_id", exam.ID.String()).Msg("Failed to notify editors")
	}
	return nil
}
