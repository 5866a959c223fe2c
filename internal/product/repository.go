package product

import (
	"context"

	"github.com/fekuna/omnipos-margin-service/internal/model"
)

// Repository is the read-only accessor over the commerce platform's product
// rows. This service never writes products.
type Repository interface {
	FindByID(ctx context.Context, merchantID string, id int64) (*model.Product, error)

	// GetPrice returns the current price and whether the product exists.
	GetPrice(ctx context.Context, merchantID string, id int64) (float64, bool, error)

	// FindActive lists active non-variation products, used to build the
	// linked-products candidate list.
	FindActive(ctx context.Context, merchantID string) ([]model.Product, error)

	// Exists reports whether the ids are present for the merchant.
	Exists(ctx context.Context, merchantID string, ids []int64) (map[int64]bool, error)
}
