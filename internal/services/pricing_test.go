package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveUnitPrice(t *testing.T) {
	cases := []struct {
		name            string
		basePrice       float64
		discountPercent float64
		want            float64
	}{
		{name: "no_discount", basePrice: 100, discountPercent: 0, want: 100},
		{name: "ten_percent", basePrice: 100, discountPercent: 10, want: 90},
		{name: "full_discount", basePrice: 50, discountPercent: 100, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectiveUnitPrice(tc.basePrice, tc.discountPercent)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCustomizationMatchesAdditional(t *testing.T) {
	cases := []struct {
		name            string
		customizationID string
		additionalID    string
		want            bool
	}{
		{name: "suffix_convention", customizationID: "gravura_add-7", additionalID: "add-7", want: true},
		{name: "containment", customizationID: "add-7-gravura", additionalID: "add-7", want: true},
		{name: "no_match", customizationID: "gravura_add-9", additionalID: "add-7", want: false},
		{name: "empty_customization", customizationID: "", additionalID: "add-7", want: false},
		{name: "empty_additional", customizationID: "gravura", additionalID: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := customizationMatchesAdditional(tc.customizationID, tc.additionalID)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Product base price 100 with 10% discount, one additional at 20 with
// a matched adjustment of 5, quantity 2: (90 + 25) * 2 = 230.
func TestComposePriceExample(t *testing.T) {
	additionals := []PricedAdditional{{ID: "add-1", Name: "Moldura", Price: 20}}
	customizations := []PricedCustomization{
		{ID: "acabamento_add-1", PriceAdjustment: 5},
		{ID: "texto_livre", PriceAdjustment: 99}, // no match, no effect
	}

	breakdown := ComposePrice(100, 10, additionals, customizations, 2)

	assert.InDelta(t, 90.0, breakdown.EffectiveUnitPrice, 1e-9)
	assert.Len(t, breakdown.Additionals, 1)
	assert.InDelta(t, 25.0, breakdown.Additionals[0].Total, 1e-9)
	assert.InDelta(t, 230.0, breakdown.LineTotal, 1e-9)
}

func TestComposePriceNoMatchFallsBackToBase(t *testing.T) {
	additionals := []PricedAdditional{{ID: "add-1", Price: 20}}
	breakdown := ComposePrice(100, 0, additionals, nil, 1)

	assert.InDelta(t, 20.0, breakdown.Additionals[0].Total, 1e-9)
	assert.InDelta(t, 120.0, breakdown.LineTotal, 1e-9)
}

// Rounding happens only at the formatting boundary, so repeated
// additives never compound a rounding error.
func TestRoundingOnlyAtFormatting(t *testing.T) {
	additionals := []PricedAdditional{
		{ID: "a", Price: 0.005},
		{ID: "b", Price: 0.005},
		{ID: "c", Price: 0.005},
	}
	breakdown := ComposePrice(0, 0, additionals, nil, 1)

	// Unrounded intermediate: 0.015; rounding each additive first
	// would have produced 0.03 or 0.00 depending on direction.
	assert.InDelta(t, 0.015, breakdown.LineTotal, 1e-9)
	assert.InDelta(t, 0.02, Round2(breakdown.LineTotal), 1e-9)
}

func TestInstallments(t *testing.T) {
	parts := Installments(230, 3)
	assert.Len(t, parts, 3)
	for _, p := range parts {
		assert.InDelta(t, 76.67, p, 1e-9)
	}
	assert.Nil(t, Installments(100, 0))
}
