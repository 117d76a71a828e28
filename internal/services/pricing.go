package services

import (
	"math"
	"strings"
)

// PricedAdditional is the pricing-relevant slice of an additional.
type PricedAdditional struct {
	ID    string
	Name  string
	Price float64
}

// PricedCustomization is one customization entry carrying a price
// adjustment. Its ID follows the catalog convention: an entry answered
// for a specific additional embeds that additional's id.
type PricedCustomization struct {
	ID              string
	PriceAdjustment float64
}

// AdditionalContribution breaks down what one additional adds to the
// effective unit price.
type AdditionalContribution struct {
	AdditionalID string  `json:"additional_id"`
	Name         string  `json:"name,omitempty"`
	Base         float64 `json:"base"`
	Adjustments  float64 `json:"adjustments"`
	Total        float64 `json:"total"`
}

// PriceBreakdown is the full price composition for one cart line.
// Values stay unrounded; rounding happens only when formatting.
type PriceBreakdown struct {
	UnitPrice          float64                  `json:"unit_price"`
	EffectiveUnitPrice float64                  `json:"effective_unit_price"`
	Additionals        []AdditionalContribution `json:"additionals,omitempty"`
	Quantity           int                      `json:"quantity"`
	LineTotal          float64                  `json:"line_total"`
}

// EffectiveUnitPrice applies the product discount. A zero discount is
// the default.
func EffectiveUnitPrice(basePrice, discountPercent float64) float64 {
	return basePrice * (1 - discountPercent/100)
}

// customizationMatchesAdditional attributes a price delta on a shared
// customization rule back to the additional it was answered for. The
// id convention is load-bearing: a match is a substring hit or the
// "_<additionalID>" suffix. No match means no adjustment.
func customizationMatchesAdditional(customizationID, additionalID string) bool {
	if customizationID == "" || additionalID == "" {
		return false
	}
	return strings.Contains(customizationID, additionalID) ||
		strings.HasSuffix(customizationID, "_"+additionalID)
}

// ContributionOf computes one additional's contribution: its own price
// plus every matching customization adjustment.
func ContributionOf(additional PricedAdditional, customizations []PricedCustomization) AdditionalContribution {
	contribution := AdditionalContribution{
		AdditionalID: additional.ID,
		Name:         additional.Name,
		Base:         additional.Price,
	}
	for _, c := range customizations {
		if customizationMatchesAdditional(c.ID, additional.ID) {
			contribution.Adjustments += c.PriceAdjustment
		}
	}
	contribution.Total = contribution.Base + contribution.Adjustments
	return contribution
}

// ComposePrice derives the complete breakdown for a line.
func ComposePrice(basePrice, discountPercent float64, additionals []PricedAdditional, customizations []PricedCustomization, quantity int) PriceBreakdown {
	breakdown := PriceBreakdown{
		UnitPrice:          basePrice,
		EffectiveUnitPrice: EffectiveUnitPrice(basePrice, discountPercent),
		Quantity:           quantity,
	}

	perUnit := breakdown.EffectiveUnitPrice
	for _, a := range additionals {
		contribution := ContributionOf(a, customizations)
		breakdown.Additionals = append(breakdown.Additionals, contribution)
		perUnit += contribution.Total
	}

	breakdown.LineTotal = perUnit * float64(quantity)
	return breakdown
}

// Round2 rounds to 2 decimal places. Only formatting code calls this;
// intermediate math stays unrounded so rounding error never compounds
// across additives.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Installments splits a total into n equal parts, each rounded at
// formatting time.
func Installments(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	per := total / float64(n)
	for i := range out {
		out[i] = Round2(per)
	}
	return out
}
