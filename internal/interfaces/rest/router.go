package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SkylarKelty/Rapid/internal/infrastructure/persistence"
)

// RequestLogger logs one line per request through slog
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

// NewRouter wires the JSON API over store
func NewRouter(store *persistence.Store, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"session": store.Connection().Session(),
		})
	})

	data := NewDataHandler(store, logger)
	widgets := NewWidgetHandler(store, logger)

	api := router.Group("/api")
	{
		d := api.Group("/data")
		d.GET("/:table", data.List)
		d.GET("/:table/count", data.Count)
		d.GET("/:table/:id", data.Get)
		d.POST("/:table", data.Create)
		d.PUT("/:table/:id", data.Update)
		d.DELETE("/:table/:id", data.Delete)

		w := api.Group("/widgets")
		w.GET("", widgets.List)
		w.GET("/:id", widgets.Get)
		w.POST("", widgets.Create)
	}

	return router
}
