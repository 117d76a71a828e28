package app

import (
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/data/repos/cart"
	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/data/repos/constraints"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type Repos struct {
	Item       catalog.ItemRepo
	Rule       catalog.RuleRepo
	LegacyRule catalog.LegacyRuleRepo
	Layout     catalog.LayoutRepo
	Constraint constraints.ConstraintRepo
	CartLine   cart.CartLineRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Item:       catalog.NewItemRepo(db, log),
		Rule:       catalog.NewRuleRepo(db, log),
		LegacyRule: catalog.NewLegacyRuleRepo(db, log),
		Layout:     catalog.NewLayoutRepo(db, log),
		Constraint: constraints.NewConstraintRepo(db, log),
		CartLine:   cart.NewCartLineRepo(db, log),
	}
}
