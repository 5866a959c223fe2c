package usecase

import (
	"context"

	"github.com/fekuna/omnipos-margin-service/internal/margin"
	margindto "github.com/fekuna/omnipos-margin-service/internal/margin/dto"
	"github.com/fekuna/omnipos-margin-service/internal/meta"
	"github.com/fekuna/omnipos-margin-service/internal/model"
	"github.com/fekuna/omnipos-margin-service/internal/order"
	"github.com/fekuna/omnipos-margin-service/internal/product"
	"github.com/fekuna/omnipos-margin-service/internal/settings"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"go.uber.org/zap"
)

type marginUseCase struct {
	products product.Repository
	orders   order.Repository
	meta     meta.Repository
	settings settings.UseCase
	logger   logger.ZapLogger
}

func NewMarginUseCase(
	products product.Repository,
	orders order.Repository,
	metaRepo meta.Repository,
	settingsUC settings.UseCase,
	log logger.ZapLogger,
) margin.UseCase {
	return &marginUseCase{
		products: products,
		orders:   orders,
		meta:     metaRepo,
		settings: settingsUC,
		logger:   log,
	}
}

func (uc *marginUseCase) GetProductMarginInfo(ctx context.Context, merchantID string, productID int64) (*model.MarginInfo, error) {
	cfg, err := uc.settings.GetMarginSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return uc.resolveMarginInfo(ctx, merchantID, productID, cfg)
}

// resolveMarginInfo is the single-product resolution path; callers that loop
// (bulk, order aggregation) load the settings once and pass them in.
func (uc *marginUseCase) resolveMarginInfo(ctx context.Context, merchantID string, productID int64, cfg *model.MarginSettings) (*model.MarginInfo, error) {
	price, found, err := uc.products.GetPrice(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	category, err := uc.meta.Get(ctx, productID, cfg.MetaKey)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return nil, nil
	}

	pct := cfg.ResolvePercentage(category)
	if pct <= 0 {
		return nil, nil
	}

	priceWithout := margin.PriceWithoutMargin(price, pct)

	return &model.MarginInfo{
		Category:           category,
		MarginPercentage:   pct,
		PriceWithMargin:    price,
		PriceWithoutMargin: priceWithout,
		MarginAmount:       price - priceWithout,
	}, nil
}

func (uc *marginUseCase) GetMarginInfoPayload(ctx context.Context, merchantID string, productID int64) (*margindto.MarginInfoPayload, error) {
	info, err := uc.GetProductMarginInfo(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	return toPayload(info), nil
}

func (uc *marginUseCase) BulkMarginInfo(ctx context.Context, merchantID string, productIDs []int64) (map[int64]*margindto.MarginInfoPayload, error) {
	cfg, err := uc.settings.GetMarginSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	results := make(map[int64]*margindto.MarginInfoPayload, len(productIDs))
	for _, id := range productIDs {
		info, err := uc.resolveMarginInfo(ctx, merchantID, id, cfg)
		if err != nil {
			// One broken row must not sink a bulk listing pass.
			uc.logger.Warn("failed to resolve margin in bulk request",
				zap.String("merchant_id", merchantID),
				zap.Int64("product_id", id),
				zap.Error(err),
			)
			info = nil
		}
		results[id] = toPayload(info)
	}
	return results, nil
}

func (uc *marginUseCase) FormatProductMargin(ctx context.Context, merchantID string, productID int64, style margin.FormatStyle) (string, error) {
	info, err := uc.GetProductMarginInfo(ctx, merchantID, productID)
	if err != nil {
		return "", err
	}
	if info == nil {
		return "", nil
	}

	opts, err := uc.settings.GetDisplayOptions(ctx, merchantID)
	if err != nil {
		return "", err
	}
	return margin.FormatMarginInfo(info, style, opts), nil
}

func (uc *marginUseCase) GetOrderMarginDetails(ctx context.Context, merchantID string, orderID int64) (*model.OrderMarginDetails, error) {
	ord, err := uc.orders.FindByID(ctx, merchantID, orderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, nil
	}

	items, err := uc.orders.GetLineItems(ctx, merchantID, orderID)
	if err != nil {
		return nil, err
	}

	cfg, err := uc.settings.GetMarginSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	details := &model.OrderMarginDetails{
		Details: []model.OrderItemMargin{},
	}

	for _, item := range items {
		details.TotalProducts++

		// Variation assignment wins over the parent product's.
		info, err := uc.resolveMarginInfo(ctx, merchantID, item.ResolutionID(), cfg)
		if err != nil {
			uc.logger.Warn("skipping line item in margin aggregation",
				zap.String("merchant_id", merchantID),
				zap.Int64("order_id", orderID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			continue
		}
		if info == nil {
			continue
		}

		itemMargin := info.MarginAmount * item.Quantity
		itemBase := info.PriceWithoutMargin * item.Quantity

		details.TotalMargin += itemMargin
		details.TotalMarginBase += itemBase
		details.ProductsWithMargin++

		details.Details = append(details.Details, model.OrderItemMargin{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			MarginInfo:  *info,
			TotalMargin: itemMargin,
			TotalBase:   itemBase,
		})
	}

	if details.TotalMarginBase > 0 {
		details.AverageMarginPercentage = details.TotalMargin / details.TotalMarginBase * 100
	}
	if details.TotalProducts > 0 {
		details.MarginCoverage = float64(details.ProductsWithMargin) / float64(details.TotalProducts) * 100
	}

	return details, nil
}

func (uc *marginUseCase) GetOrderTotalMargin(ctx context.Context, merchantID string, orderID int64) (float64, error) {
	details, err := uc.GetOrderMarginDetails(ctx, merchantID, orderID)
	if err != nil {
		return 0, err
	}
	if details == nil {
		return 0, nil
	}
	return details.TotalMargin, nil
}

func (uc *marginUseCase) AssignCategory(ctx context.Context, merchantID string, entityID int64, category string) (string, error) {
	prod, err := uc.products.FindByID(ctx, merchantID, entityID)
	if err != nil {
		return "", err
	}
	if prod == nil {
		return "", margin.ErrProductNotFound
	}

	cfg, err := uc.settings.GetMarginSettings(ctx, merchantID)
	if err != nil {
		return "", err
	}

	normalized := margin.NormalizeCategoryName(category)
	if normalized != "" && !cfg.HasCategory(normalized) {
		return "", margin.ErrUnknownCategory
	}

	if err := uc.meta.Set(ctx, entityID, cfg.MetaKey, normalized); err != nil {
		return "", err
	}

	uc.logger.Info("margin category assigned",
		zap.String("merchant_id", merchantID),
		zap.Int64("entity_id", entityID),
		zap.String("category", normalized),
	)

	return normalized, nil
}

func (uc *marginUseCase) GetAssignedCategory(ctx context.Context, merchantID string, entityID int64) (string, error) {
	cfg, err := uc.settings.GetMarginSettings(ctx, merchantID)
	if err != nil {
		return "", err
	}
	return uc.meta.Get(ctx, entityID, cfg.MetaKey)
}

func toPayload(info *model.MarginInfo) *margindto.MarginInfoPayload {
	if info == nil {
		return &margindto.MarginInfoPayload{HasMargin: false}
	}
	return &margindto.MarginInfoPayload{
		HasMargin:          true,
		MarginPercentage:   info.MarginPercentage,
		PriceWithMargin:    info.PriceWithMargin,
		PriceWithoutMargin: info.PriceWithoutMargin,
		MarginAmount:       info.MarginAmount,
		Category:           info.Category,
	}
}
