package margin

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-margin-service/internal/margin/dto"
	"github.com/fekuna/omnipos-margin-service/internal/model"
)

// ErrUnknownCategory is returned when assigning a category name that is not
// in the merchant's registry.
var ErrUnknownCategory = errors.New("unknown margin category")

// ErrProductNotFound distinguishes a missing assignment target from a
// successful clear (both would otherwise return an empty category).
var ErrProductNotFound = errors.New("product not found")

// UseCase is the margin engine. Resolution methods return (nil, nil) for
// "no margin" - missing product, no category assigned, category unknown, or
// a non-positive percentage. They never abort a listing pass over one bad
// record.
type UseCase interface {
	GetProductMarginInfo(ctx context.Context, merchantID string, productID int64) (*model.MarginInfo, error)

	// GetMarginInfoPayload wraps GetProductMarginInfo into the stable JSON
	// contract (has_margin + zeroed fields when absent).
	GetMarginInfoPayload(ctx context.Context, merchantID string, productID int64) (*dto.MarginInfoPayload, error)

	// BulkMarginInfo resolves several products independently; one result per
	// requested ID, absent margins included with has_margin=false.
	BulkMarginInfo(ctx context.Context, merchantID string, productIDs []int64) (map[int64]*dto.MarginInfoPayload, error)

	// FormatProductMargin renders the product's margin for an admin list
	// cell. Empty string when the product has no margin.
	FormatProductMargin(ctx context.Context, merchantID string, productID int64, style FormatStyle) (string, error)

	GetOrderMarginDetails(ctx context.Context, merchantID string, orderID int64) (*model.OrderMarginDetails, error)

	// GetOrderTotalMargin returns only the quantity-scaled margin sum; 0 for
	// a missing order.
	GetOrderTotalMargin(ctx context.Context, merchantID string, orderID int64) (float64, error)

	// AssignCategory tags a product or variation with a margin category via
	// the configured meta key. The name is normalized first; empty clears
	// the assignment; an unknown category is rejected.
	AssignCategory(ctx context.Context, merchantID string, entityID int64, category string) (string, error)

	GetAssignedCategory(ctx context.Context, merchantID string, entityID int64) (string, error)
}
