package order

import (
	"context"

	"github.com/fekuna/omnipos-margin-service/internal/model"
)

// Repository is the read-only accessor over the commerce platform's orders.
type Repository interface {
	// FindByID returns (nil, nil) when the order does not exist.
	FindByID(ctx context.Context, merchantID string, id int64) (*model.Order, error)

	GetLineItems(ctx context.Context, merchantID string, orderID int64) ([]model.OrderLineItem, error)
}
