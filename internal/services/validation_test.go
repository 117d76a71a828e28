package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meumosaico/backend/internal/domain"
)

func catalogRules() []domain.RuleView {
	return []domain.RuleView{
		{ID: "rule-a", Title: "Fotos do mosaico", RuleType: domain.RuleTypePhotoUpload, Required: true, DisplayOrder: 1},
		{ID: "rule-b", Title: "Texto da dedicatória", RuleType: domain.RuleTypeTextInput, Required: true, DisplayOrder: 2},
		{ID: "rule-c", Title: "Acabamento", RuleType: domain.RuleTypeOptionSelect, Required: false, DisplayOrder: 3},
	}
}

func TestValidateRequiredCollectsAllMissingInCatalogOrder(t *testing.T) {
	vs := &validationService{}

	result := vs.ValidateRequired(catalogRules(), []domain.CustomizationInput{
		{RuleID: "rule-c", Type: domain.RuleTypeOptionSelect, Data: domain.OptionAnswer{}},
	})

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Fotos do mosaico", "Texto da dedicatória"}, result.MissingTitles)
	assert.Equal(t, "Preencha os campos obrigatórios: Fotos do mosaico, Texto da dedicatória", result.Message())
}

func TestValidateRequiredPassesWhenAllAnswered(t *testing.T) {
	vs := &validationService{}

	result := vs.ValidateRequired(catalogRules(), []domain.CustomizationInput{
		{RuleID: "rule-a", Type: domain.RuleTypePhotoUpload, Data: domain.PhotoAnswer{}},
		{RuleID: "rule-b", Type: domain.RuleTypeTextInput, Data: domain.TextAnswer{Text: "Parabéns!"}},
	})

	assert.True(t, result.Valid)
	assert.Empty(t, result.MissingTitles)
	assert.Equal(t, "", result.Message())
}

func TestValidateRequiredMixedGenerations(t *testing.T) {
	rules := []domain.RuleView{
		{ID: "legacy-1", Title: "Layout base", RuleType: domain.LegacyRuleTypeBaseLayout, Legacy: true, Required: true, DisplayOrder: 0},
		{ID: "rule-a", Title: "Fotos", RuleType: domain.RuleTypePhotoUpload, Required: true, DisplayOrder: 1},
	}
	vs := &validationService{}

	result := vs.ValidateRequired(rules, nil)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Layout base", "Fotos"}, result.MissingTitles)
}

func TestBlockedTerm(t *testing.T) {
	vs := &validationService{denylist: []string{"palavrão", "ofensa"}}

	assert.Equal(t, "palavrão", vs.blockedTerm("um PALAVRÃO no meio"))
	assert.Equal(t, "", vs.blockedTerm("texto inofensivo"))
}
