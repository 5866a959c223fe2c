package margin

import "strings"

// PriceWithoutMargin derives the cost-basis price from a price that already
// includes the markup. A non-positive percentage means no markup was applied,
// so the price comes back unchanged (this also covers categories stored with
// a 0% margin, which the legacy system treats the same as "no category").
func PriceWithoutMargin(priceWithMargin, marginPercentage float64) float64 {
	if marginPercentage <= 0 {
		return priceWithMargin
	}
	return priceWithMargin / (1 + marginPercentage/100)
}

// PriceWithMargin is the exact inverse of PriceWithoutMargin for positive
// percentages.
func PriceWithMargin(priceWithoutMargin, marginPercentage float64) float64 {
	if marginPercentage <= 0 {
		return priceWithoutMargin
	}
	return priceWithoutMargin * (1 + marginPercentage/100)
}

// NormalizeCategoryName lowercases the raw name and strips every character
// outside [a-z0-9_-]. Applied wherever a category name crosses a UI boundary
// (settings save, category assignment); stored names are already normalized.
func NormalizeCategoryName(raw string) string {
	lowered := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
