package model

import "time"

type Order struct {
	ID         int64     `db:"id" json:"id"`
	MerchantID string    `db:"merchant_id" json:"merchant_id"`
	Status     string    `db:"status" json:"status"`
	Total      float64   `db:"total" json:"total"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// OrderLineItem is one purchased line of an order. VariationID is 0 when the
// line was not a variation purchase.
type OrderLineItem struct {
	ID          int64   `db:"id" json:"id"`
	OrderID     int64   `db:"order_id" json:"order_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	VariationID int64   `db:"variation_id" json:"variation_id"`
	Name        string  `db:"name" json:"name"`
	Quantity    float64 `db:"quantity" json:"quantity"`
}

// ResolutionID returns the identifier whose margin category governs this line:
// the variation when one was ordered, otherwise the parent product.
func (i *OrderLineItem) ResolutionID() int64 {
	if i.VariationID > 0 {
		return i.VariationID
	}
	return i.ProductID
}
