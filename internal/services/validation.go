package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// RequiredValidationResult reports local required-rule completeness.
// MissingTitles lists rule titles (not ids) in catalog order so the
// user corrects every gap in one pass.
type RequiredValidationResult struct {
	Valid         bool     `json:"valid"`
	MissingTitles []string `json:"missingTitles,omitempty"`
}

// Message renders the single aggregated blocking message.
func (r RequiredValidationResult) Message() string {
	if r.Valid {
		return ""
	}
	return "Preencha os campos obrigatórios: " + strings.Join(r.MissingTitles, ", ")
}

// RemoteValidationResult is the authoritative server-side verdict. A
// local pass never implies a remote pass.
type RemoteValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type ValidationService interface {
	// ValidateRequired walks the merged catalog and checks answer
	// presence for every required rule.
	ValidateRequired(rules []domain.RuleView, answers []domain.CustomizationInput) RequiredValidationResult
	// ValidateRemote re-validates business rules not expressible
	// client-side: content policy, option availability, per-rule
	// limits, layout existence.
	ValidateRemote(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID, inputs []domain.CustomizationInput) (RemoteValidationResult, error)
}

type validationService struct {
	log        *logger.Logger
	ruleRepo   catalog.RuleRepo
	legacyRepo catalog.LegacyRuleRepo
	layoutRepo catalog.LayoutRepo
	denylist   []string
}

func NewValidationService(log *logger.Logger, ruleRepo catalog.RuleRepo, legacyRepo catalog.LegacyRuleRepo, layoutRepo catalog.LayoutRepo, denylist []string) ValidationService {
	return &validationService{
		log:        log.With("service", "ValidationService"),
		ruleRepo:   ruleRepo,
		legacyRepo: legacyRepo,
		layoutRepo: layoutRepo,
		denylist:   denylist,
	}
}

func (vs *validationService) ValidateRequired(rules []domain.RuleView, answers []domain.CustomizationInput) RequiredValidationResult {
	answered := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		answered[a.RuleID] = struct{}{}
	}

	var missing []string
	for _, rule := range rules {
		if !rule.Required {
			continue
		}
		if _, ok := answered[rule.ID]; !ok {
			missing = append(missing, rule.Title)
		}
	}

	return RequiredValidationResult{Valid: len(missing) == 0, MissingTitles: missing}
}

func (vs *validationService) ValidateRemote(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID, inputs []domain.CustomizationInput) (RemoteValidationResult, error) {
	result := RemoteValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}}

	rules, err := vs.ruleRepo.GetByItem(ctx, nil, itemID, itemType)
	if err != nil {
		return result, fmt.Errorf("load rules: %w", err)
	}
	legacy, err := vs.legacyRepo.GetByItem(ctx, nil, itemID, itemType)
	if err != nil {
		return result, fmt.Errorf("load legacy rules: %w", err)
	}
	merged := domain.MergeCatalog(rules, legacy)

	byID := make(map[string]domain.RuleView, len(merged))
	for _, rule := range merged {
		byID[rule.ID] = rule
	}

	layouts, err := vs.layoutRepo.GetAll(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("load layouts: %w", err)
	}
	layoutIDs := make(map[string]struct{}, len(layouts))
	for _, l := range layouts {
		layoutIDs[l.ID.String()] = struct{}{}
	}

	for _, input := range inputs {
		rule, known := byID[input.RuleID]
		if !known {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Resposta para regra desconhecida %s será ignorada", input.RuleID))
			continue
		}
		vs.validateInput(rule, input, layoutIDs, &result)
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

func (vs *validationService) validateInput(rule domain.RuleView, input domain.CustomizationInput, layoutIDs map[string]struct{}, result *RemoteValidationResult) {
	switch data := input.Data.(type) {
	case domain.TextAnswer:
		text := strings.TrimSpace(data.Text)
		if text == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: texto vazio", rule.Title))
		}
		if rule.MaxItems > 0 && utf8.RuneCountInString(text) > rule.MaxItems {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: texto excede o limite de %d caracteres", rule.Title, rule.MaxItems))
		}
		if blocked := vs.blockedTerm(text); blocked != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: conteúdo não permitido (%s)", rule.Title, blocked))
		}

	case domain.PhotoAnswer:
		if rule.MaxItems > 0 && len(data.Photos) > rule.MaxItems {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: máximo de %d fotos", rule.Title, rule.MaxItems))
		}

	case domain.OptionAnswer:
		valid := make(map[string]struct{}, len(rule.Options))
		for _, opt := range rule.Options {
			valid[opt.ID] = struct{}{}
		}
		for _, sel := range data.Selected {
			if _, ok := valid[sel.ID]; !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: opção %s indisponível", rule.Title, sel.ID))
			}
		}
		if rule.MaxItems > 0 && len(data.Selected) > rule.MaxItems {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: máximo de %d opções", rule.Title, rule.MaxItems))
		}

	case domain.LayoutAnswer:
		layoutID := data.LayoutID
		if layoutID == "" {
			layoutID = input.SelectedLayoutID
		}
		if layoutID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: layout não selecionado", rule.Title))
			return
		}
		if _, ok := layoutIDs[layoutID]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: layout %s não existe", rule.Title, layoutID))
		}
	}
}

func (vs *validationService) blockedTerm(text string) string {
	lower := strings.ToLower(text)
	for _, term := range vs.denylist {
		term = strings.TrimSpace(strings.ToLower(term))
		if term != "" && strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}
