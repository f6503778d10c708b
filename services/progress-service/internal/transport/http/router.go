package handlers

import (
	"context"
	"net/http"
	"time"

	"kursus/services/progress-service/internal/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	ServiceName     string
	AllowedOrigins  []string
	VerifyRateLimit int
	// Health reports whether the service can reach its store.
	Health  func(ctx context.Context) error
	Metrics http.Handler
}

func NewRouter(cfg RouterConfig, progress *ProgressHandler, certs *CertificateHandler, tokens TokenValidator, limiter *RateLimiter, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(cfg.ServiceName), RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/public/certificates/verify",
			limiter.Limit("verify_certificate", cfg.VerifyRateLimit, time.Minute),
			certs.Verify)

		authed := api.Group("")
		authed.Use(AuthMiddleware(tokens))
		{
			authed.GET("/progress", progress.List)
			authed.GET("/certificates/:id", certs.GetByID)

			course := authed.Group("/courses/:courseId")
			{
				course.GET("/progress", progress.GetCourse)
				course.DELETE("/progress", progress.ResetCourse)
				course.GET("/lessons/:lessonId/progress", progress.GetLesson)
				course.POST("/lessons/:lessonId/complete", progress.CompleteLesson)
				course.GET("/certificate/eligibility", certs.Eligibility)
				course.POST("/certificate", certs.Claim)
				course.GET("/certificate", certs.GetForCourse)
			}
		}
	}

	return r
}
