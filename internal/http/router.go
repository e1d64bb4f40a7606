package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/situacio-backend/internal/http/handlers"
	httpMW "github.com/yungbote/situacio-backend/internal/http/middleware"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	SessionAuth *httpMW.SessionAuth

	HealthHandler   *httpH.HealthHandler
	SessionHandler  *httpH.SessionHandler
	DocumentHandler *httpH.DocumentHandler
	PreviewHandler  *httpH.PreviewHandler
	ExportHandler   *httpH.ExportHandler
	RealtimeHandler *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Sessions (public)
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Create)
		}
	}

	protected := api.Group("/session")
	{
		// Middleware
		if cfg.SessionAuth != nil {
			protected.Use(cfg.SessionAuth.RequireSession())
		}

		if cfg.SessionHandler != nil {
			protected.GET("", cfg.SessionHandler.Get)
			protected.PUT("/unit", cfg.SessionHandler.PutUnit)
			protected.DELETE("/unit", cfg.SessionHandler.DeleteUnit)
		}

		// Ingestion + extraction
		if cfg.DocumentHandler != nil {
			protected.POST("/ingest", cfg.DocumentHandler.Ingest)
			protected.POST("/extract", cfg.DocumentHandler.Extract)
		}

		// Views
		if cfg.PreviewHandler != nil {
			protected.GET("/preview", cfg.PreviewHandler.Preview)
			protected.GET("/preview/pages/:page", cfg.PreviewHandler.Page)
			protected.GET("/markup", cfg.PreviewHandler.Markup)
		}

		// Exports
		if cfg.ExportHandler != nil {
			protected.POST("/exports/:target", cfg.ExportHandler.Export)
			protected.GET("/exports", cfg.ExportHandler.List)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/events", cfg.RealtimeHandler.Events)
		}
	}

	return r
}
