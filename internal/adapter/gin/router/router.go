package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"user-table-service/internal/adapter/gin/handler"
	"user-table-service/internal/adapter/gin/middleware"
	"user-table-service/internal/observability"
)

// Options carries the optional pieces of the router.
type Options struct {
	ServiceName string
	Tracing     bool                   // wrap requests in OpenTelemetry spans
	Metrics     *observability.Metrics // nil disables request metrics
	Gatherer    prometheus.Gatherer    // served on /metrics when set
	RateLimiter *middleware.TokenBucket
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	records *handler.RecordHandler,
	web *handler.WebHandler,
	system *handler.SystemHandler,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	if opts.Tracing {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Metrics != nil {
		router.Use(opts.Metrics.GinMiddleware())
	}
	router.Use(middleware.Logger(log))
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", system.Health)
	router.GET("/version", system.Version)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	limited := router.Group("")
	limited.Use(opts.RateLimiter.Middleware())

	// HTML table
	limited.GET("/", web.Index)
	limited.GET("/records/new", web.NewRecord)
	limited.POST("/records", web.SaveRecord)
	limited.GET("/records/:index/edit", web.EditRecord)
	limited.GET("/records/:index/delete", web.ConfirmDelete)
	limited.POST("/records/:index/delete", web.DeleteRecord)
	limited.POST("/modal/close", web.CloseModal)
	limited.POST("/sync", web.Sync)

	// API v1 routes
	v1 := limited.Group("/v1")
	{
		rec := v1.Group("/records")
		{
			rec.POST("", records.CreateRecord)
			rec.GET("", records.ListRecords)
			rec.GET("/:index", records.GetRecord)
			rec.PUT("/:index", records.UpdateRecord)
			rec.DELETE("/:index", records.DeleteRecord)
		}
		v1.POST("/sync", records.SyncRecords)
	}

	return router
}
