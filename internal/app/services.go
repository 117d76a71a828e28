package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/clients/redis"
	"github.com/meumosaico/backend/internal/platform/localmedia"
	"github.com/meumosaico/backend/internal/platform/logger"
	"github.com/meumosaico/backend/internal/services"
)

type Services struct {
	Catalog    services.CatalogService
	Session    services.SessionService
	Artifact   services.ArtifactService
	Validation services.ValidationService
	Constraint services.ConstraintService
	Cart       services.CartService
	Preview    services.PreviewService
	Wizard     services.WizardService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	previews, err := localmedia.NewPreviewStore(log)
	if err != nil {
		return Services{}, fmt.Errorf("init preview store: %w", err)
	}

	snapshots, err := redis.NewSessionStore(log)
	if err != nil {
		// Snapshots are a recovery convenience, not a dependency the
		// wizard cannot run without.
		log.Warn("Session snapshot store unavailable, continuing without persistence", "error", err)
		snapshots = nil
	}

	validation := services.NewValidationService(log, repos.Rule, repos.LegacyRule, repos.Layout, cfg.Denylist)
	constraint := services.NewConstraintService(log, repos.Constraint, repos.Item)

	return Services{
		Catalog:    services.NewCatalogService(log, repos.Item, repos.Rule, repos.LegacyRule, repos.Layout),
		Session:    services.NewSessionService(log, repos.Rule, repos.LegacyRule, previews, snapshots),
		Artifact:   services.NewArtifactService(log, previews, cfg.MaxUploadBytes),
		Validation: validation,
		Constraint: constraint,
		Cart:       services.NewCartService(db, log, repos.CartLine, repos.Item, constraint),
		Preview:    services.NewPreviewService(log, repos.Item, services.NewGridRenderer(log), previews),
		Wizard:     services.NewWizardService(log, validation),
	}, nil
}
