package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-paper/internal/config"
)

var (
	// ErrCacheMiss is returned when a rendered document is not cached.
	ErrCacheMiss = errors.New("cache miss")
	// ErrQueueEmpty is returned when no pre-render job is waiting.
	ErrQueueEmpty = errors.New("render queue empty")
)

// RenderStore keeps rendered documents in Redis, queues pre-render jobs and
// fans editor changes out to other sessions.
type RenderStore struct {
	rdb *redis.Client
}

// NewRenderStore creates a new RenderStore.
func NewRenderStore(rdb *redis.Client) *RenderStore {
	return &RenderStore{rdb: rdb}
}

// Get returns the cached bytes under key.
func (s *RenderStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

// Set caches data under key for ttl.
func (s *RenderStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, data, ttl).Err()
}

// Delete drops cached entries.
func (s *RenderStore) Delete(ctx context.Context, keys ...string) error {
	return s.rdb.Del(ctx, keys...).Err()
}

// EnqueueRender queues a PDF pre-render of examID.
func (s *RenderStore) EnqueueRender(ctx context.Context, examID uuid.UUID) error {
	return s.rdb.RPush(ctx, config.WorkerKey.RenderPDFQueue, examID.String()).Err()
}

// NextRender blocks up to timeout for the next queued exam.
func (s *RenderStore) NextRender(ctx context.Context, timeout time.Duration) (uuid.UUID, error) {
	result, err := s.rdb.BLPop(ctx, timeout, config.WorkerKey.RenderPDFQueue).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrQueueEmpty
	}
	if err != nil {
		return uuid.Nil, err
	}
	if len(result) < 2 {
		return uuid.Nil, ErrQueueEmpty
	}
	return uuid.Parse(result[1])
}

// PopRender takes the next queued exam without waiting.
func (s *RenderStore) PopRender(ctx context.Context) (uuid.UUID, error) {
	id, err := s.rdb.LPop(ctx, config.WorkerKey.RenderPDFQueue).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrQueueEmpty
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(id)
}

// PublishChange notifies every editor session of examID that the stored
// blocks changed. origin identifies the session that made the change.
func (s *RenderStore) PublishChange(ctx context.Context, examID uuid.UUID, origin string) error {
	return s.rdb.Publish(ctx, config.CacheKey.ExamEditorChannel(examID.String()), origin).Err()
}

// Changes streams the origins of change notifications of examID until ctx
// is done.
func (s *RenderStore) Changes(ctx context.Context, examID uuid.UUID) (<-chan string, error) {
	sub := s.rdb.Subscribe(ctx, config.CacheKey.ExamEditorChannel(examID.String()))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// QueueLength returns how many pre-render jobs are waiting.
func (s *RenderStore) QueueLength(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, config.WorkerKey.RenderPDFQueue).Result()
}
