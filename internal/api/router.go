package api

import (
	"net/http"
	"time"

	"github.com/civicworks/infra-report/internal/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter assembles the HTTP surface: health check, rate limiting, request
// logging, and the authenticated report/workflow endpoints.
func NewRouter(cfg *config.Config, handler *ReportHandler, logger *zap.Logger) *gin.Engine {
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthRequired(cfg.Auth.JWTSecret, logger))
	{
		v1.POST("/reports", handler.CreateReport)
		v1.GET("/reports", handler.ListReports)
		v1.GET("/reports/stats", StaffRequired(), handler.Stats)
		v1.GET("/reports/export", StaffRequired(), handler.Export)
		v1.GET("/reports/:id", handler.GetReport)
		v1.GET("/reports/:id/history", handler.GetHistory)
		v1.POST("/reports/:id/transition", handler.Transition)
		v1.POST("/reports/:id/close", handler.CloseReport)
	}

	return router
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
