package dto

type LinkedProducts struct {
	CrosssellIDs []int64 `json:"crosssell_ids"`
	UpsellIDs    []int64 `json:"upsell_ids"`
}

type SaveLinkedProductsInput struct {
	CrosssellIDs []int64 `json:"crosssell_ids"`
	UpsellIDs    []int64 `json:"upsell_ids"`
}

// Candidate is one row of the linked-products checkbox list.
type Candidate struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Crosssell bool   `json:"crosssell"`
	Upsell    bool   `json:"upsell"`
}
