package app

import (
	httpH "github.com/meumosaico/backend/internal/http/handlers"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type Handlers struct {
	Customization *httpH.CustomizationHandler
	Session       *httpH.SessionHandler
	Cart          *httpH.CartHandler
	Constraint    *httpH.ConstraintHandler
	Health        *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Customization: httpH.NewCustomizationHandler(services.Catalog, services.Validation, services.Preview),
		Session:       httpH.NewSessionHandler(log, services.Session, services.Artifact, services.Wizard),
		Cart:          httpH.NewCartHandler(services.Cart),
		Constraint:    httpH.NewConstraintHandler(services.Constraint),
		Health:        httpH.NewHealthHandler(),
	}
}
