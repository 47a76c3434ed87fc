package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/handler"
	"github.com/stemsi/exstem-paper/internal/metrics"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/response"
	"github.com/stemsi/exstem-paper/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam     *handler.ExamHandler
	Render   *handler.RenderHandler
	QBank    *handler.QBankHandler
	EditorWS *handler.EditorWSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// downloadLimiter throttles PDF downloads per teacher.
func SetupRouter(
	verifier *service.TokenVerifier,
	downloadLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "X-Render-Cache"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(metrics.Middleware())

	// PDFs are already compressed.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality: middleware.DefaultBrotliConfig.Quality,
		Skipper: middleware.SkipSuffixes("/download", "/metrics"),
	}))

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", metrics.Handler())

	// ─── 1. Teacher API (JWT) ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireTeacherJWT(verifier))
	{
		api.GET("/system/stats", handlers.System.Stats)

		exams := api.Group("/exams")
		{
			exams.POST("", handlers.Exam.CreateExam)
			exams.GET("/:exam_id", handlers.Exam.GetExam)
			exams.PUT("/:exam_id/blocks", handlers.Exam.SaveBlocks)
			exams.POST("/:exam_id/blocks", handlers.Exam.AddBlock)
			exams.POST("/:exam_id/blocks/from-bank", handlers.Exam.AddFromBank)
			exams.POST("/:exam_id/blocks/move", handlers.Exam.MoveBlock)
			exams.PATCH("/:exam_id/blocks/:block_id", handlers.Exam.UpdateBlock)
			exams.DELETE("/:exam_id/blocks/:block_id", handlers.Exam.DeleteBlock)
			exams.POST("/:exam_id/publish", handlers.Exam.PublishExam)

			// Renditions
			exams.GET("/:exam_id/editor", middleware.CacheControl(0), handlers.Render.EditorPage)
			exams.GET("/:exam_id/view", middleware.CacheControl(0), handlers.Render.ViewPage)
			exams.GET("/:exam_id/download",
				downloadLimiter.Middleware(),
				middleware.CacheControl(0),
				handlers.Render.Download,
			)
		}

		api.GET("/qbanks/:qbank_id/questions", handlers.QBank.ListQuestions)
	}

	// ─── 2. WebSocket Group (Teacher WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireTeacherWSAuth(verifier))
	{
		ws.GET("/exams/:exam_id/editor", handlers.EditorWS.EditorStream)
	}

	return router
}
