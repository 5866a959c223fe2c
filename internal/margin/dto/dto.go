package dto

// MarginInfoPayload is the wire shape served to the admin UI. Kept stable for
// compatibility with the legacy AJAX consumers: has_margin plus zeroed fields
// when the product has no resolvable margin.
type MarginInfoPayload struct {
	HasMargin          bool    `json:"has_margin"`
	MarginPercentage   float64 `json:"margin_percentage"`
	PriceWithMargin    float64 `json:"price_with_margin"`
	PriceWithoutMargin float64 `json:"price_without_margin"`
	MarginAmount       float64 `json:"margin_amount"`
	Category           string  `json:"category"`
}
