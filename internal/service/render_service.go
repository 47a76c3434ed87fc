package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/metrics"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/static"
)

// RenderCache stores rendered output of published exams.
type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// PDFRenderer writes the paginated paper of a document.
type PDFRenderer interface {
	Render(ctx context.Context, doc model.Document, w io.Writer) error
}

// RenderedPDF is a paper ready for download.
type RenderedPDF struct {
	Filename string
	Data     []byte
	Cached   bool
}

// RenderService produces the three renditions of an exam. Output of
// published exams is cached since their blocks can no longer change.
type RenderService struct {
	exams ExamStore
	cache RenderCache
	pdf   PDFRenderer
	ttl   time.Duration
	log   zerolog.Logger
}

// NewRenderService creates a new RenderService.
func NewRenderService(exams ExamStore, cache RenderCache, pdf PDFRenderer, ttl time.Duration, log zerolog.Logger) *RenderService {
	return &RenderService{
		exams: exams,
		cache: cache,
		pdf:   pdf,
		ttl:   ttl,
		log:   log.With().Str("component", "render_service").Logger(),
	}
}

// PDF renders the paper of an exam. Authors can print drafts; anyone else
// only sees published exams.
func (s *RenderService) PDF(ctx context.Context, examID uuid.UUID, claims *Claims) (*RenderedPDF, error) {
	exam, err := s.readable(ctx, examID, claims)
	if err != nil {
		return nil, err
	}

	out := &RenderedPDF{Filename: paper.Filename(exam.Title)}
	key := config.CacheKey.ExamPDFKey(examID.String())
	if data, ok := s.cached(ctx, metrics.TargetPDF, exam, key); ok {
		out.Data, out.Cached = data, true
		return out, nil
	}

	data, err := s.renderPDF(ctx, exam)
	if err != nil {
		return nil, err
	}
	s.store(ctx, exam, key, data)
	out.Data = data
	return out, nil
}

// Static renders the read-only HTML view. Answers are only shown to the
// author.
func (s *RenderService) Static(ctx context.Context, examID uuid.UUID, claims *Claims, showAnswers bool) ([]byte, error) {
	exam, err := s.readable(ctx, examID, claims)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != claims.UserID {
		showAnswers = false
	}

	key := config.CacheKey.ExamStaticKey(examID.String(), showAnswers)
	if data, ok := s.cached(ctx, metrics.TargetStatic, exam, key); ok {
		return data, nil
	}

	start := time.Now()
	var buf bytes.Buffer
	err = static.Render(&buf, exam.Document(), static.Options{ShowAnswers: showAnswers})
	metrics.ObserveRender(metrics.TargetStatic, start, err)
	if err != nil {
		return nil, fmt.Errorf("render static: %w", err)
	}
	s.store(ctx, exam, key, buf.Bytes())
	return buf.Bytes(), nil
}

// Editor renders the editing surface of an exam for its author.
func (s *RenderService) Editor(ctx context.Context, examID uuid.UUID, claims *Claims) ([]byte, error) {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != claims.UserID {
		return nil, ErrNotExamAuthor
	}

	start := time.Now()
	var buf bytes.Buffer
	surface := editor.NewSurface(exam.Blocks, editor.WithPublished(exam.Published()))
	err = surface.Render(&buf, exam.Title)
	metrics.ObserveRender(metrics.TargetEditor, start, err)
	if err != nil {
		return nil, fmt.Errorf("render editor: %w", err)
	}
	return buf.Bytes(), nil
}

// Prerender renders and caches the paper of a published exam. Used by the
// render worker right after publishing.
func (s *RenderService) Prerender(ctx context.Context, examID uuid.UUID) error {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return err
	}
	if !exam.Published() {
		return ErrExamNotPublished
	}

	data, err := s.renderPDF(ctx, exam)
	if err != nil {
		return err
	}
	key := config.CacheKey.ExamPDFKey(examID.String())
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("cache pdf: %w", err)
	}
	return nil
}

func (s *RenderService) renderPDF(ctx context.Context, exam *model.Exam) ([]byte, error) {
	start := time.Now()
	var buf bytes.Buffer
	err := s.pdf.Render(ctx, exam.Document(), &buf)
	metrics.ObserveRender(metrics.TargetPDF, start, err)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *RenderService) readable(ctx context.Context, examID uuid.UUID, claims *Claims) (*model.Exam, error) {
	exam, err := s.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != claims.UserID && !exam.Published() {
		return nil, ErrExamNotPublished
	}
	return exam, nil
}

func (s *RenderService) load(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

func (s *RenderService) cached(ctx context.Context, target string, exam *model.Exam, key string) ([]byte, bool) {
	if !exam.Published() {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("Render cache read failed")
		}
		metrics.ObserveCache(target, false)
		return nil, false
	}
	metrics.ObserveCache(target, true)
	return data, true
}

func (s *RenderService) store(ctx context.Context, exam *model.Exam, key string, data []byte) {
	if !exam.Published() {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Render cache write failed")
	}
}
