package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/response"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// QueueStat reports the pre-render backlog.
type QueueStat interface {
	QueueLength(ctx context.Context) (int64, error)
}

// SystemHandler serves health and runtime stats.
type SystemHandler struct {
	deps      map[string]Pinger
	queue     QueueStat
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler probing deps by name.
func NewSystemHandler(deps map[string]Pinger, queue QueueStat, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		deps:      deps,
		queue:     queue,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Pings every dependency; 503 when any of them is down.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	response.Success(c, status, gin.H{"status": overall, "checks": checks})
}

type systemStats struct {
	Uptime      string `json:"uptime"`
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	NumGC       uint32 `json:"num_gc"`
	GoVersion   string `json:"go_version"`
	RenderQueue int64  `json:"render_queue"`
}

// Stats godoc
// GET /api/v1/system/stats
func (h *SystemHandler) Stats(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := systemStats{
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
	}
	if h.queue != nil {
		n, err := h.queue.QueueLength(c.Request.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to read render queue length")
		}
		stats.RenderQueue = n
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
