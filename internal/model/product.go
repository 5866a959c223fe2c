package model

import "time"

// Product mirrors the commerce platform's product rows this service reads.
// Variations live in the same table with ParentID pointing at the parent
// product, which is why a single numeric ID space covers both.
type Product struct {
	ID         int64     `db:"id" json:"id"`
	MerchantID string    `db:"merchant_id" json:"merchant_id"`
	ParentID   *int64    `db:"parent_id" json:"parent_id"` // Nullable, set for variations
	SKU        string    `db:"sku" json:"sku"`
	Name       string    `db:"name" json:"name"`
	Price      float64   `db:"price" json:"price"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IsVariation reports whether the row is a variation of another product.
func (p *Product) IsVariation() bool {
	return p.ParentID != nil && *p.ParentID > 0
}
