package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.StockHandler, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	binding.EnableDecoderDisallowUnknownFields = true

	if err := handlers.RegisterValidations(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	stocks := r.Group("/api/stocks")
	stocks.POST("", handler.Create)
	stocks.POST("/bulk", handler.CreateBulk)
	stocks.GET("", handler.List)
	stocks.GET("/stats/summary", handler.Stats)
	stocks.GET("/:id", handler.Get)
	stocks.PUT("/:id", handler.UpdateDetails)
	stocks.DELETE("/:id", handler.Delete)
	stocks.PATCH("/:id/stock", handler.ApplyMovement)
	stocks.GET("/:id/history", handler.History)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r, nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
