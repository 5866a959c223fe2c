package model

// MarginInfo is the resolved margin record for a single product or variation.
// A nil *MarginInfo means "no margin": no category assigned, category unknown,
// or the resolved percentage is not positive.
type MarginInfo struct {
	Category           string  `json:"category"`
	MarginPercentage   float64 `json:"margin_percentage"`
	PriceWithMargin    float64 `json:"price_with_margin"`
	PriceWithoutMargin float64 `json:"price_without_margin"`
	MarginAmount       float64 `json:"margin_amount"`
}

// OrderItemMargin carries the per-line resolution plus quantity-scaled totals.
type OrderItemMargin struct {
	ProductID   int64      `json:"product_id"`
	VariationID int64      `json:"variation_id"`
	ProductName string     `json:"product_name"`
	Quantity    float64    `json:"quantity"`
	MarginInfo  MarginInfo `json:"margin_info"`
	TotalMargin float64    `json:"total_margin"`
	TotalBase   float64    `json:"total_base"`
}

// OrderMarginDetails is the aggregate over an order's line items.
//
// AverageMarginPercentage = TotalMargin / TotalMarginBase * 100 when the base
// is positive, 0 otherwise. MarginCoverage = ProductsWithMargin / TotalProducts
// * 100 when the order has line items, 0 otherwise.
type OrderMarginDetails struct {
	TotalMargin             float64           `json:"total_margin"`
	TotalMarginBase         float64           `json:"total_margin_base"`
	AverageMarginPercentage float64           `json:"average_margin_percentage"`
	ProductsWithMargin      int               `json:"products_with_margin"`
	TotalProducts           int               `json:"total_products"`
	MarginCoverage          float64           `json:"margin_coverage"`
	Details                 []OrderItemMargin `json:"details"`
}
