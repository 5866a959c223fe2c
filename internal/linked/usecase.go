package linked

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-margin-service/internal/linked/dto"
)

// Meta keys holding the linked-product ID lists, JSON int64 arrays.
const (
	MetaKeyCrosssell = "_crosssell_ids"
	MetaKeyUpsell    = "_upsell_ids"
)

var ErrProductNotFound = errors.New("product not found")

// UseCase manages cross-sell/up-sell links stored as product meta. Saving
// sanitizes the lists: self-references and IDs of nonexistent products are
// dropped, duplicates collapsed, order preserved.
type UseCase interface {
	Get(ctx context.Context, merchantID string, productID int64) (*dto.LinkedProducts, error)
	Save(ctx context.Context, merchantID string, productID int64, input *dto.SaveLinkedProductsInput) (*dto.LinkedProducts, error)

	// Candidates lists active products for the selection checkboxes, with
	// the current link state flagged per product.
	Candidates(ctx context.Context, merchantID string, productID int64) ([]dto.Candidate, error)
}
