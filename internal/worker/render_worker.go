package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/service"
)

const (
	popTimeout     = time.Second
	retryBackoff   = 5 * time.Second
	drainTimeout   = 30 * time.Second
	requeueTimeout = 5 * time.Second
)

// RenderQueue hands out exams waiting for a PDF pre-render.
type RenderQueue interface {
	NextRender(ctx context.Context, timeout time.Duration) (uuid.UUID, error)
	PopRender(ctx context.Context) (uuid.UUID, error)
	EnqueueRender(ctx context.Context, examID uuid.UUID) error
}

// Prerenderer renders and caches the paper of a published exam.
type Prerenderer interface {
	Prerender(ctx context.Context, examID uuid.UUID) error
}

// RenderWorker consumes render_pdf_queue and warms the PDF cache of
// freshly published exams.
type RenderWorker struct {
	queue   RenderQueue
	render  Prerenderer
	backoff time.Duration
	log     zerolog.Logger
}

// NewRenderWorker creates a new RenderWorker.
func NewRenderWorker(queue RenderQueue, render Prerenderer, log zerolog.Logger) *RenderWorker {
	return &RenderWorker{
		queue:   queue,
		render:  render,
		backoff: retryBackoff,
		log:     log.With().Str("component", "render_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *RenderWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			w.drain(drainCtx)
			cancel()
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *RenderWorker) processNext(ctx context.Context) {
	examID, err := w.queue.NextRender(ctx, popTimeout)
	if err != nil {
		if !errors.Is(err, repository.ErrQueueEmpty) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Dequeue error")
		}
		return
	}

	if err := w.process(ctx, examID); err != nil {
		w.log.Error().Err(err).
			Str("exam_id", examID.String()).
			Msg("Pre-render failed, retrying")
		// ctx may already be cancelled on shutdown.
		requeueCtx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
		if err := w.queue.EnqueueRender(requeueCtx, examID); err != nil {
			w.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Requeue failed")
		}
		cancel()
		select {
		case <-time.After(w.backoff):
		case <-ctx.Done():
		}
	}
}

// process renders one exam. Jobs that can never succeed are dropped and
// reported as done.
func (w *RenderWorker) process(ctx context.Context, examID uuid.UUID) error {
	err := w.render.Prerender(ctx, examID)
	switch {
	case err == nil:
		w.log.Debug().Str("exam_id", examID.String()).Msg("PDF pre-rendered")
		return nil
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrExamNotPublished):
		w.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Dropping pre-render job")
		return nil
	default:
		return err
	}
}

// drain processes all remaining items in the queue before shutdown.
func (w *RenderWorker) drain(ctx context.Context) {
	drained := 0
	for ctx.Err() == nil {
		examID, err := w.queue.PopRender(ctx)
		if err != nil {
			break
		}

		if err := w.process(ctx, examID); err != nil {
			w.log.Error().Err(err).Msg("Drain render error")
			_ = w.queue.EnqueueRender(ctx, examID)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
