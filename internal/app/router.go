package app

import (
	httpServer "github.com/meumosaico/backend/internal/http"
	"github.com/meumosaico/backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers) (*httpServer.Server, error) {
	return httpServer.NewServer(httpServer.RouterConfig{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		PreviewDir:     cfg.PreviewDir,
		PreviewRoute:   cfg.PreviewRoute,

		CustomizationHandler: handlers.Customization,
		SessionHandler:       handlers.Session,
		CartHandler:          handlers.Cart,
		ConstraintHandler:    handlers.Constraint,
		HealthHandler:        handlers.Health,
	})
}
