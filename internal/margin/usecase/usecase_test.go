package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/fekuna/omnipos-margin-service/internal/margin"
	"github.com/fekuna/omnipos-margin-service/internal/model"
	settingsdto "github.com/fekuna/omnipos-margin-service/internal/settings/dto"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
)

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

type fakeProductRepo struct {
	products map[int64]*model.Product
	priceErr map[int64]error
}

func (f *fakeProductRepo) FindByID(_ context.Context, _ string, id int64) (*model.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) GetPrice(_ context.Context, _ string, id int64) (float64, bool, error) {
	if err := f.priceErr[id]; err != nil {
		return 0, false, err
	}
	p, ok := f.products[id]
	if !ok {
		return 0, false, nil
	}
	return p.Price, true, nil
}

func (f *fakeProductRepo) FindActive(_ context.Context, _ string) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range f.products {
		if p.IsActive && p.ParentID == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Exists(_ context.Context, _ string, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := f.products[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	orders map[int64]*model.Order
	items  map[int64][]model.OrderLineItem
}

func (f *fakeOrderRepo) FindByID(_ context.Context, _ string, id int64) (*model.Order, error) {
	return f.orders[id], nil
}

func (f *fakeOrderRepo) GetLineItems(_ context.Context, _ string, orderID int64) ([]model.OrderLineItem, error) {
	return f.items[orderID], nil
}

type fakeMetaRepo struct {
	values map[int64]map[string]string
}

func (f *fakeMetaRepo) Get(_ context.Context, entityID int64, key string) (string, error) {
	return f.values[entityID][key], nil
}

func (f *fakeMetaRepo) Set(_ context.Context, entityID int64, key, value string) error {
	if f.values == nil {
		f.values = map[int64]map[string]string{}
	}
	if f.values[entityID] == nil {
		f.values[entityID] = map[string]string{}
	}
	f.values[entityID][key] = value
	return nil
}

type fakeSettings struct {
	cfg  *model.MarginSettings
	opts model.DisplayOptions
}

func (f *fakeSettings) GetMarginSettings(context.Context, string) (*model.MarginSettings, error) {
	return f.cfg, nil
}

func (f *fakeSettings) SaveMarginSettings(context.Context, string, *settingsdto.SaveMarginSettingsInput) (*model.MarginSettings, error) {
	return f.cfg, nil
}

func (f *fakeSettings) GetDisplayOptions(context.Context, string) (model.DisplayOptions, error) {
	return f.opts, nil
}

func (f *fakeSettings) SaveDisplayOptions(_ context.Context, _ string, opts model.DisplayOptions) (model.DisplayOptions, error) {
	return opts, nil
}

func (f *fakeSettings) GetFunctionalityOptions(context.Context, string) (model.FunctionalityOptions, error) {
	return model.DefaultFunctionalityOptions(), nil
}

func (f *fakeSettings) SaveFunctionalityOptions(_ context.Context, _ string, opts model.FunctionalityOptions) (model.FunctionalityOptions, error) {
	return opts, nil
}

func (f *fakeSettings) InvalidateCache(context.Context, string) {}

const merchantID = "merchant-1"

func newFixture() (*fakeProductRepo, *fakeOrderRepo, *fakeMetaRepo, *fakeSettings, margin.UseCase) {
	parent := int64(5)
	products := &fakeProductRepo{
		products: map[int64]*model.Product{
			5:  {ID: 5, Price: 110, Name: "Parent", IsActive: true},
			42: {ID: 42, ParentID: &parent, Price: 130, Name: "Variation", IsActive: true},
			7:  {ID: 7, Price: 50, Name: "Plain", IsActive: true},
		},
		priceErr: map[int64]error{},
	}
	orders := &fakeOrderRepo{
		orders: map[int64]*model.Order{},
		items:  map[int64][]model.OrderLineItem{},
	}
	metaRepo := &fakeMetaRepo{values: map[int64]map[string]string{
		5:  {"margin_category": "basic"},
		42: {"margin_category": "premium"},
	}}
	settingsUC := &fakeSettings{
		cfg: &model.MarginSettings{
			MetaKey: "margin_category",
			Categories: []model.MarginCategory{
				{Name: "basic", Percentage: 10},
				{Name: "premium", Percentage: 30},
			},
		},
		opts: model.DefaultDisplayOptions(),
	}

	uc := NewMarginUseCase(products, orders, metaRepo, settingsUC, logger.NewNop())
	return products, orders, metaRepo, settingsUC, uc
}

func TestGetProductMarginInfo(t *testing.T) {
	_, _, _, _, uc := newFixture()

	info, err := uc.GetProductMarginInfo(context.Background(), merchantID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil {
		t.Fatal("expected margin info")
	}
	if info.Category != "basic" {
		t.Errorf("category = %q", info.Category)
	}
	if !nearlyEqual(info.PriceWithoutMargin, 100) {
		t.Errorf("price without margin = %v", info.PriceWithoutMargin)
	}
	if !nearlyEqual(info.MarginAmount, 10) {
		t.Errorf("margin amount = %v", info.MarginAmount)
	}
}

func TestGetProductMarginInfoNoMargin(t *testing.T) {
	_, _, _, _, uc := newFixture()

	tests := []struct {
		name string
		id   int64
	}{
		{"missing product", 999},
		{"product without category", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := uc.GetProductMarginInfo(context.Background(), merchantID, tt.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info != nil {
				t.Errorf("expected nil margin info, got %+v", info)
			}
		})
	}
}

func TestGetProductMarginInfoZeroPercentCategory(t *testing.T) {
	_, _, metaRepo, settingsUC, uc := newFixture()

	settingsUC.cfg.Categories = append(settingsUC.cfg.Categories, model.MarginCategory{Name: "atcost", Percentage: 0})
	metaRepo.values[7] = map[string]string{"margin_category": "atcost"}

	info, err := uc.GetProductMarginInfo(context.Background(), merchantID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != nil {
		t.Errorf("a 0%% category should resolve to no margin, got %+v", info)
	}
}

func TestGetMarginInfoPayloadContract(t *testing.T) {
	_, _, _, _, uc := newFixture()

	payload, err := uc.GetMarginInfoPayload(context.Background(), merchantID, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload == nil || payload.HasMargin {
		t.Fatalf("missing product must yield has_margin=false payload, got %+v", payload)
	}
	if payload.MarginPercentage != 0 || payload.PriceWithMargin != 0 || payload.Category != "" {
		t.Errorf("no-margin payload must be zeroed, got %+v", payload)
	}

	payload, err = uc.GetMarginInfoPayload(context.Background(), merchantID, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payload.HasMargin || payload.Category != "premium" {
		t.Errorf("payload = %+v", payload)
	}
	if !nearlyEqual(payload.PriceWithoutMargin, 100) {
		t.Errorf("price without margin = %v", payload.PriceWithoutMargin)
	}
}

func TestBulkMarginInfoSurvivesBrokenRow(t *testing.T) {
	products, _, _, _, uc := newFixture()
	products.priceErr[42] = errors.New("row scan failed")

	results, err := uc.BulkMarginInfo(context.Background(), merchantID, []int64{5, 42, 999})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[5].HasMargin {
		t.Error("product 5 should have a margin")
	}
	if results[42].HasMargin {
		t.Error("broken row must degrade to has_margin=false")
	}
	if results[999].HasMargin {
		t.Error("missing product must have has_margin=false")
	}
}

func TestGetOrderMarginDetails(t *testing.T) {
	_, orders, _, _, uc := newFixture()

	orders.orders[1] = &model.Order{ID: 1, MerchantID: merchantID}
	orders.items[1] = []model.OrderLineItem{
		// Variation ID wins over product ID: premium 30% on the 130 price.
		{ID: 1, OrderID: 1, ProductID: 5, VariationID: 42, Name: "Variation", Quantity: 2},
		{ID: 2, OrderID: 1, ProductID: 7, Name: "Plain", Quantity: 1},
	}

	details, err := uc.GetOrderMarginDetails(context.Background(), merchantID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details == nil {
		t.Fatal("expected details")
	}

	if details.TotalProducts != 2 {
		t.Errorf("total products = %d", details.TotalProducts)
	}
	if details.ProductsWithMargin != 1 {
		t.Errorf("products with margin = %d", details.ProductsWithMargin)
	}
	if !nearlyEqual(details.MarginCoverage, 50) {
		t.Errorf("coverage = %v", details.MarginCoverage)
	}

	// 130 at 30%: base 100, margin 30, times quantity 2.
	if !nearlyEqual(details.TotalMargin, 60) {
		t.Errorf("total margin = %v", details.TotalMargin)
	}
	if !nearlyEqual(details.TotalMarginBase, 200) {
		t.Errorf("total base = %v", details.TotalMarginBase)
	}
	if !nearlyEqual(details.AverageMarginPercentage, 30) {
		t.Errorf("average pct = %v", details.AverageMarginPercentage)
	}

	if len(details.Details) != 1 {
		t.Fatalf("expected 1 detail line, got %d", len(details.Details))
	}
	line := details.Details[0]
	if line.ProductID != 5 || line.VariationID != 42 {
		t.Errorf("detail line ids = %d/%d", line.ProductID, line.VariationID)
	}
	if !nearlyEqual(line.TotalMargin, 60) || !nearlyEqual(line.TotalBase, 200) {
		t.Errorf("detail totals = %v/%v", line.TotalMargin, line.TotalBase)
	}
}

func TestGetOrderMarginDetailsAdditivity(t *testing.T) {
	_, orders, _, _, uc := newFixture()

	orders.orders[2] = &model.Order{ID: 2, MerchantID: merchantID}
	orders.items[2] = []model.OrderLineItem{
		{ID: 1, OrderID: 2, ProductID: 5, Name: "Parent", Quantity: 3},
		{ID: 2, OrderID: 2, ProductID: 42, Name: "Variation", Quantity: 2},
	}

	details, err := uc.GetOrderMarginDetails(context.Background(), merchantID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// basic: 110 at 10% -> margin 10 each, qty 3. premium: 130 at 30% ->
	// margin 30 each, qty 2.
	if !nearlyEqual(details.TotalMargin, 3*10+2*30) {
		t.Errorf("total margin = %v", details.TotalMargin)
	}
	if !nearlyEqual(details.TotalMarginBase, 3*100+2*100) {
		t.Errorf("total base = %v", details.TotalMarginBase)
	}
	if !nearlyEqual(details.MarginCoverage, 100) {
		t.Errorf("coverage = %v", details.MarginCoverage)
	}
}

func TestGetOrderMarginDetailsEmptyOrder(t *testing.T) {
	_, orders, _, _, uc := newFixture()
	orders.orders[3] = &model.Order{ID: 3, MerchantID: merchantID}

	details, err := uc.GetOrderMarginDetails(context.Background(), merchantID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details == nil {
		t.Fatal("an existing empty order still gets a details object")
	}
	if details.TotalProducts != 0 || details.TotalMargin != 0 || details.MarginCoverage != 0 || details.AverageMarginPercentage != 0 {
		t.Errorf("empty order should be all zeros, got %+v", details)
	}
}

func TestGetOrderMarginDetailsMissingOrder(t *testing.T) {
	_, _, _, _, uc := newFixture()

	details, err := uc.GetOrderMarginDetails(context.Background(), merchantID, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details != nil {
		t.Errorf("missing order must yield nil details, got %+v", details)
	}
}

func TestGetOrderMarginDetailsSkipsBrokenLine(t *testing.T) {
	products, orders, _, _, uc := newFixture()
	products.priceErr[5] = errors.New("connection reset")

	orders.orders[4] = &model.Order{ID: 4, MerchantID: merchantID}
	orders.items[4] = []model.OrderLineItem{
		{ID: 1, OrderID: 4, ProductID: 5, Name: "Parent", Quantity: 1},
		{ID: 2, OrderID: 4, ProductID: 42, Name: "Variation", Quantity: 1},
	}

	details, err := uc.GetOrderMarginDetails(context.Background(), merchantID, 4)
	if err != nil {
		t.Fatalf("a broken line must not fail the aggregation: %v", err)
	}
	if details.TotalProducts != 2 {
		t.Errorf("broken line still counts toward total products, got %d", details.TotalProducts)
	}
	if details.ProductsWithMargin != 1 {
		t.Errorf("products with margin = %d", details.ProductsWithMargin)
	}
	if !nearlyEqual(details.TotalMargin, 30) {
		t.Errorf("total margin = %v", details.TotalMargin)
	}
}

func TestGetOrderTotalMargin(t *testing.T) {
	_, orders, _, _, uc := newFixture()

	orders.orders[1] = &model.Order{ID: 1, MerchantID: merchantID}
	orders.items[1] = []model.OrderLineItem{
		{ID: 1, OrderID: 1, ProductID: 42, Name: "Variation", Quantity: 2},
	}

	total, err := uc.GetOrderTotalMargin(context.Background(), merchantID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nearlyEqual(total, 60) {
		t.Errorf("total = %v", total)
	}

	total, err = uc.GetOrderTotalMargin(context.Background(), merchantID, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("missing order total = %v", total)
	}
}

func TestAssignCategory(t *testing.T) {
	_, _, metaRepo, _, uc := newFixture()

	normalized, err := uc.AssignCategory(context.Background(), merchantID, 7, "Premium")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if normalized != "premium" {
		t.Errorf("normalized = %q", normalized)
	}
	if metaRepo.values[7]["margin_category"] != "premium" {
		t.Errorf("stored = %q", metaRepo.values[7]["margin_category"])
	}
}

func TestAssignCategoryClear(t *testing.T) {
	_, _, metaRepo, _, uc := newFixture()

	normalized, err := uc.AssignCategory(context.Background(), merchantID, 5, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if normalized != "" {
		t.Errorf("normalized = %q", normalized)
	}
	if metaRepo.values[5]["margin_category"] != "" {
		t.Errorf("assignment should be cleared, stored %q", metaRepo.values[5]["margin_category"])
	}
}

func TestAssignCategoryErrors(t *testing.T) {
	_, _, _, _, uc := newFixture()

	if _, err := uc.AssignCategory(context.Background(), merchantID, 999, "basic"); !errors.Is(err, margin.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := uc.AssignCategory(context.Background(), merchantID, 7, "nonexistent"); !errors.Is(err, margin.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestGetAssignedCategory(t *testing.T) {
	_, _, _, _, uc := newFixture()

	category, err := uc.GetAssignedCategory(context.Background(), merchantID, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != "premium" {
		t.Errorf("category = %q", category)
	}

	category, err = uc.GetAssignedCategory(context.Background(), merchantID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != "" {
		t.Errorf("unassigned product category = %q", category)
	}
}

func TestFormatProductMargin(t *testing.T) {
	_, _, _, _, uc := newFixture()

	html, err := uc.FormatProductMargin(context.Background(), merchantID, 42, margin.FormatInline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "Margin: 30.0% | Price without margin: 100.00" {
		t.Errorf("html = %q", html)
	}

	html, err = uc.FormatProductMargin(context.Background(), merchantID, 999, margin.FormatInline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "" {
		t.Errorf("missing product should format to empty string, got %q", html)
	}
}
