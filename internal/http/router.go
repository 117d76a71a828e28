package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/meumosaico/backend/internal/http/handlers"
	httpMW "github.com/meumosaico/backend/internal/http/middleware"
	"github.com/meumosaico/backend/internal/platform/logger"
)

const serviceName = "meumosaico-backend"

type RouterConfig struct {
	Log *logger.Logger

	AllowedOrigins []string
	// PreviewDir, when set, is served under PreviewRoute so clients can
	// fetch the ephemeral preview images the engine hands out.
	PreviewDir   string
	PreviewRoute string

	CustomizationHandler *httpH.CustomizationHandler
	SessionHandler       *httpH.SessionHandler
	CartHandler          *httpH.CartHandler
	ConstraintHandler    *httpH.ConstraintHandler
	HealthHandler        *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	if cfg.PreviewDir != "" && cfg.PreviewRoute != "" {
		r.Static(cfg.PreviewRoute, cfg.PreviewDir)
	}

	api := r.Group("/api")
	{
		if cfg.CustomizationHandler != nil {
			api.GET("/customizations/:itemType/:itemId", cfg.CustomizationHandler.GetConfig)
			api.POST("/customization/preview", cfg.CustomizationHandler.Preview)
			api.POST("/customization/validate", cfg.CustomizationHandler.ValidateV1)
			api.POST("/customizations/validate", cfg.CustomizationHandler.ValidateV2)
		}

		if cfg.SessionHandler != nil {
			api.POST("/customizations/sessions", cfg.SessionHandler.Create)
			api.GET("/customizations/sessions/:id", cfg.SessionHandler.Get)
			api.DELETE("/customizations/sessions/:id", cfg.SessionHandler.Clear)
			api.PUT("/customizations/sessions/:id/answers/:ruleId", cfg.SessionHandler.PutAnswer)
			api.DELETE("/customizations/sessions/:id/answers/:ruleId", cfg.SessionHandler.RemoveAnswer)
			api.POST("/customizations/sessions/:id/photos/:ruleId", cfg.SessionHandler.UploadPhotos)
			api.DELETE("/customizations/sessions/:id/photos/:ruleId/:position", cfg.SessionHandler.RemovePhoto)
			api.POST("/customizations/sessions/:id/complete", cfg.SessionHandler.Complete)
		}

		if cfg.CartHandler != nil {
			api.POST("/cart/:cartId/items", cfg.CartHandler.AddItem)
			api.PATCH("/cart/:cartId/items/:fingerprint/quantity", cfg.CartHandler.UpdateQuantity)
			api.DELETE("/cart/:cartId/items", cfg.CartHandler.RemoveItem)
			api.GET("/cart/:cartId", cfg.CartHandler.GetCart)
		}

		if cfg.ConstraintHandler != nil {
			admin := api.Group("/admin")
			admin.GET("/constraints", cfg.ConstraintHandler.List)
			admin.GET("/constraints/item/:type/:id", cfg.ConstraintHandler.ListForItem)
			admin.GET("/constraints/search", cfg.ConstraintHandler.Search)
			admin.POST("/constraints", cfg.ConstraintHandler.Create)
			admin.DELETE("/constraints/:id", cfg.ConstraintHandler.Delete)
		}
	}

	return r
}
