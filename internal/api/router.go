// Package api exposes the prediction service over HTTP.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"truthai/internal/analysis"
	"truthai/internal/pipeline"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "classifier-api"

// NewRouter builds the classifier service router. analyzer may be nil, in
// which case /analyze is not registered.
func NewRouter(svc *pipeline.Service, analyzer *analysis.Analyzer, logger *zap.SugaredLogger, allowOrigins []string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.Use(CORS(allowOrigins))

	h := &handler{svc: svc, analyzer: analyzer, logger: logger}
	router.GET("/health", Health(ServiceName))
	router.POST("/predict", h.predict)
	router.GET("/models", h.listModels)
	if analyzer != nil {
		router.POST("/analyze", h.analyze)
		router.GET("/analyze/status", h.analyzerStatus)
	}
	return router
}

// CORS returns the cross-origin middleware shared by the services.
func CORS(allowOrigins []string) gin.HandlerFunc {
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}

func requestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
