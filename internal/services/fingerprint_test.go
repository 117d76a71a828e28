package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meumosaico/backend/internal/domain"
)

func textInput(ruleID, text string) domain.CustomizationInput {
	return domain.CustomizationInput{
		RuleID: ruleID,
		Type:   domain.RuleTypeTextInput,
		Data:   domain.TextAnswer{Text: text},
	}
}

func photoInput(ruleID string, previews ...string) domain.CustomizationInput {
	photos := make([]domain.Artifact, len(previews))
	for i, p := range previews {
		photos[i] = domain.Artifact{
			FileName:   "foto.jpg",
			MimeType:   "image/jpeg",
			Base64Data: "aGVsbG8=",
			Position:   i,
			PreviewURL: p,
		}
	}
	return domain.CustomizationInput{
		RuleID: ruleID,
		Type:   domain.RuleTypePhotoUpload,
		Data:   domain.PhotoAnswer{Photos: photos},
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	customizations := []domain.CustomizationInput{
		textInput("rule-b", "feliz aniversário"),
		textInput("rule-a", "olá"),
	}

	first := Fingerprint("prod-1", []string{"add-2", "add-1"}, customizations)
	second := Fingerprint("prod-1", []string{"add-2", "add-1"}, customizations)
	require.Equal(t, first, second)

	// Input ordering must not matter: additionals are sorted and
	// customizations are normalized by rule id.
	reordered := Fingerprint("prod-1", []string{"add-1", "add-2"}, []domain.CustomizationInput{
		textInput("rule-a", "olá"),
		textInput("rule-b", "feliz aniversário"),
	})
	assert.Equal(t, first, reordered)
}

func TestFingerprintIgnoresEphemeralFields(t *testing.T) {
	withPreview := Fingerprint("prod-1", nil, []domain.CustomizationInput{
		photoInput("rule-p", "/media/previews/aaa.jpg"),
	})
	otherPreview := Fingerprint("prod-1", nil, []domain.CustomizationInput{
		photoInput("rule-p", "/media/previews/bbb.jpg"),
	})
	noPreview := Fingerprint("prod-1", nil, []domain.CustomizationInput{
		photoInput("rule-p", ""),
	})

	assert.Equal(t, withPreview, otherPreview)
	assert.Equal(t, withPreview, noPreview)
}

func TestFingerprintSeparatesDistinctConfigurations(t *testing.T) {
	base := Fingerprint("prod-1", []string{"add-1"}, []domain.CustomizationInput{
		textInput("rule-a", "olá"),
	})

	differentText := Fingerprint("prod-1", []string{"add-1"}, []domain.CustomizationInput{
		textInput("rule-a", "tchau"),
	})
	differentAdditional := Fingerprint("prod-1", []string{"add-2"}, []domain.CustomizationInput{
		textInput("rule-a", "olá"),
	})
	differentProduct := Fingerprint("prod-2", []string{"add-1"}, []domain.CustomizationInput{
		textInput("rule-a", "olá"),
	})

	assert.NotEqual(t, base, differentText)
	assert.NotEqual(t, base, differentAdditional)
	assert.NotEqual(t, base, differentProduct)
}

func TestFingerprintBaseConfiguration(t *testing.T) {
	// Omitting additionals and customizations targets the
	// base-configuration identity.
	bare := Fingerprint("prod-1", nil, nil)
	again := Fingerprint("prod-1", []string{}, []domain.CustomizationInput{})
	assert.Equal(t, bare, again)
}
