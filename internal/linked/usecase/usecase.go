package usecase

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-margin-service/internal/linked"
	"github.com/fekuna/omnipos-margin-service/internal/linked/dto"
	"github.com/fekuna/omnipos-margin-service/internal/meta"
	"github.com/fekuna/omnipos-margin-service/internal/product"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"go.uber.org/zap"
)

type linkedUseCase struct {
	products product.Repository
	meta     meta.Repository
	logger   logger.ZapLogger
}

func NewLinkedUseCase(products product.Repository, metaRepo meta.Repository, log logger.ZapLogger) linked.UseCase {
	return &linkedUseCase{
		products: products,
		meta:     metaRepo,
		logger:   log,
	}
}

func (uc *linkedUseCase) Get(ctx context.Context, merchantID string, productID int64) (*dto.LinkedProducts, error) {
	prod, err := uc.products.FindByID(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, linked.ErrProductNotFound
	}

	crosssell, err := uc.loadIDs(ctx, productID, linked.MetaKeyCrosssell)
	if err != nil {
		return nil, err
	}
	upsell, err := uc.loadIDs(ctx, productID, linked.MetaKeyUpsell)
	if err != nil {
		return nil, err
	}

	return &dto.LinkedProducts{
		CrosssellIDs: crosssell,
		UpsellIDs:    upsell,
	}, nil
}

func (uc *linkedUseCase) Save(ctx context.Context, merchantID string, productID int64, input *dto.SaveLinkedProductsInput) (*dto.LinkedProducts, error) {
	prod, err := uc.products.FindByID(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, linked.ErrProductNotFound
	}

	crosssell, err := uc.sanitize(ctx, merchantID, productID, input.CrosssellIDs)
	if err != nil {
		return nil, err
	}
	upsell, err := uc.sanitize(ctx, merchantID, productID, input.UpsellIDs)
	if err != nil {
		return nil, err
	}

	if err := uc.storeIDs(ctx, productID, linked.MetaKeyCrosssell, crosssell); err != nil {
		return nil, err
	}
	if err := uc.storeIDs(ctx, productID, linked.MetaKeyUpsell, upsell); err != nil {
		return nil, err
	}

	uc.logger.Info("linked products saved",
		zap.String("merchant_id", merchantID),
		zap.Int64("product_id", productID),
		zap.Int("crosssell", len(crosssell)),
		zap.Int("upsell", len(upsell)),
	)

	return &dto.LinkedProducts{
		CrosssellIDs: crosssell,
		UpsellIDs:    upsell,
	}, nil
}

func (uc *linkedUseCase) Candidates(ctx context.Context, merchantID string, productID int64) ([]dto.Candidate, error) {
	prod, err := uc.products.FindByID(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, linked.ErrProductNotFound
	}

	links, err := uc.Get(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	crosssell := toSet(links.CrosssellIDs)
	upsell := toSet(links.UpsellIDs)

	active, err := uc.products.FindActive(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	candidates := make([]dto.Candidate, 0, len(active))
	for _, p := range active {
		if p.ID == productID {
			continue
		}
		candidates = append(candidates, dto.Candidate{
			ID:        p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Crosssell: crosssell[p.ID],
			Upsell:    upsell[p.ID],
		})
	}
	return candidates, nil
}

// sanitize drops the product's own ID, duplicates, and IDs that do not
// belong to the merchant. First occurrence keeps its position.
func (uc *linkedUseCase) sanitize(ctx context.Context, merchantID string, productID int64, ids []int64) ([]int64, error) {
	cleaned := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id <= 0 || id == productID || seen[id] {
			continue
		}
		seen[id] = true
		cleaned = append(cleaned, id)
	}
	if len(cleaned) == 0 {
		return cleaned, nil
	}

	exists, err := uc.products.Exists(ctx, merchantID, cleaned)
	if err != nil {
		return nil, err
	}

	final := cleaned[:0]
	for _, id := range cleaned {
		if exists[id] {
			final = append(final, id)
		}
	}
	return final, nil
}

func (uc *linkedUseCase) loadIDs(ctx context.Context, productID int64, key string) ([]int64, error) {
	raw, err := uc.meta.Get(ctx, productID, key)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []int64{}, nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		uc.logger.Warn("dropping corrupt linked-product meta",
			zap.Int64("product_id", productID),
			zap.String("meta_key", key),
			zap.Error(err),
		)
		return []int64{}, nil
	}
	return ids, nil
}

func (uc *linkedUseCase) storeIDs(ctx context.Context, productID int64, key string, ids []int64) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return uc.meta.Set(ctx, productID, key, string(raw))
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
