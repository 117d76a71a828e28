package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/apierr"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// WizardService gates wizard completion: local required check first,
// then the authoritative remote validation, then assembly of the
// order-time snapshot. A failure at either gate blocks completion and
// leaves the session intact.
type WizardService interface {
	Complete(ctx context.Context, session *Session) ([]domain.SaveOrderItemCustomizationPayload, error)
}

type wizardService struct {
	log        *logger.Logger
	validation ValidationService
}

func NewWizardService(log *logger.Logger, validation ValidationService) WizardService {
	return &wizardService{
		log:        log.With("service", "WizardService"),
		validation: validation,
	}
}

func (ws *wizardService) Complete(ctx context.Context, session *Session) ([]domain.SaveOrderItemCustomizationPayload, error) {
	rules := session.Rules()
	answers := session.Answers()

	required := ws.validation.ValidateRequired(rules, answers)
	if !required.Valid {
		return nil, apierr.New(http.StatusUnprocessableEntity, "incomplete_configuration", fmt.Errorf("%s", required.Message()))
	}

	remote, err := ws.validation.ValidateRemote(ctx, session.ItemType(), session.ItemID(), answers)
	if err != nil {
		return nil, fmt.Errorf("remote validation: %w", err)
	}
	if !remote.Valid {
		return nil, apierr.New(http.StatusUnprocessableEntity, "validation_rejected", fmt.Errorf("%v", remote.Errors))
	}

	titles := make(map[string]string, len(rules))
	for _, rule := range rules {
		titles[rule.ID] = rule.Title
	}

	session.mu.Lock()
	finalArtwork := session.finalArtwork
	finalArtworks := session.finalArtworks
	session.mu.Unlock()

	payloads := make([]domain.SaveOrderItemCustomizationPayload, 0, len(answers))
	for _, input := range answers {
		payload := domain.SaveOrderItemCustomizationPayload{
			CustomizationRuleID: input.RuleID,
			CustomizationType:   input.Type,
			Title:               titles[input.RuleID],
			SelectedLayoutID:    input.SelectedLayoutID,
			Data:                input.Data,
		}
		// Rendered output from the layout editor rides on the layout
		// answer it belongs to.
		if _, isLayout := input.Data.(domain.LayoutAnswer); isLayout {
			payload.FinalArtwork = finalArtwork
			payload.FinalArtworks = finalArtworks
		}
		payloads = append(payloads, payload)
	}

	ws.log.Info("Wizard completed", "session_id", session.ID(), "payloads", len(payloads))
	return payloads, nil
}
