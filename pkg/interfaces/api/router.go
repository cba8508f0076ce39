package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine with every planning route under /api/v1
func NewRouter(handler *PlanningHandler, logger logrus.FieldLogger, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		Success(c, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/rollups", handler.Rollups)
		v1.GET("/exceptions", handler.Exceptions)
		v1.PATCH("/exceptions/:id", handler.ResolveException)
		v1.GET("/purchase-orders", handler.PurchaseOrders)
		v1.GET("/forecasts/:product/:location", handler.ForecastGrid)
		v1.PUT("/forecasts/:product/:location/:month/customers/:customer", handler.UpdateForecast)
		v1.GET("/events", handler.Events)
	}

	r.NoRoute(func(c *gin.Context) {
		NotFound(c, "route not found")
	})
	return r
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request served")
			return
		}
		entry.Debug("request served")
	}
}
