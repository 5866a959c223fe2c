package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fekuna/omnipos-margin-service/internal/model"
	"github.com/fekuna/omnipos-margin-service/internal/settings"
	"github.com/fekuna/omnipos-margin-service/internal/settings/dto"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
)

type fakeRepo struct {
	options map[string]map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{options: map[string]map[string]string{}}
}

func (f *fakeRepo) Get(_ context.Context, merchantID, key string) (string, bool, error) {
	value, ok := f.options[merchantID][key]
	return value, ok, nil
}

func (f *fakeRepo) Set(_ context.Context, merchantID, key, value string) error {
	if f.options[merchantID] == nil {
		f.options[merchantID] = map[string]string{}
	}
	f.options[merchantID][key] = value
	return nil
}

const merchantID = "merchant-1"

func newUC(repo settings.Repository) settings.UseCase {
	// Nil cache: unit tests exercise the store path, not redis.
	return NewSettingsUseCase(repo, nil, logger.NewNop(), "margin_category", 5*time.Minute)
}

func TestGetMarginSettingsDefaults(t *testing.T) {
	uc := newUC(newFakeRepo())

	cfg, err := uc.GetMarginSettings(context.Background(), merchantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MetaKey != "margin_category" {
		t.Errorf("meta key = %q", cfg.MetaKey)
	}
	if len(cfg.Categories) != 0 {
		t.Errorf("expected empty registry, got %d categories", len(cfg.Categories))
	}
}

func TestSaveMarginSettingsRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	uc := newUC(repo)

	saved, err := uc.SaveMarginSettings(context.Background(), merchantID, &dto.SaveMarginSettingsInput{
		MetaKey: "custom_key",
		Categories: []dto.CategoryInput{
			{Name: "basic", Percentage: 10},
			{Name: "premium", Percentage: 30},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.MetaKey != "custom_key" {
		t.Errorf("meta key = %q", saved.MetaKey)
	}

	loaded, err := uc.GetMarginSettings(context.Background(), merchantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.MetaKey != "custom_key" {
		t.Errorf("loaded meta key = %q", loaded.MetaKey)
	}
	if len(loaded.Categories) != 2 {
		t.Fatalf("loaded %d categories", len(loaded.Categories))
	}
	if loaded.Categories[0].Name != "basic" || loaded.Categories[0].Percentage != 10 {
		t.Errorf("first category = %+v", loaded.Categories[0])
	}
	if loaded.Categories[1].Name != "premium" || loaded.Categories[1].Percentage != 30 {
		t.Errorf("second category = %+v", loaded.Categories[1])
	}
}

func TestSaveMarginSettingsNormalization(t *testing.T) {
	uc := newUC(newFakeRepo())

	saved, err := uc.SaveMarginSettings(context.Background(), merchantID, &dto.SaveMarginSettingsInput{
		Categories: []dto.CategoryInput{
			{Name: "  Premium Tier! ", Percentage: 30},
			{Name: "!!!", Percentage: 50},
			{Name: "", Percentage: 20},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved.Categories) != 1 {
		t.Fatalf("expected 1 category after dropping empties, got %d", len(saved.Categories))
	}
	if saved.Categories[0].Name != "premiumtier" {
		t.Errorf("normalized name = %q", saved.Categories[0].Name)
	}
	if saved.MetaKey != "margin_category" {
		t.Errorf("blank meta key should fall back to default, got %q", saved.MetaKey)
	}
}

func TestSaveMarginSettingsDuplicatesLastWriteWins(t *testing.T) {
	uc := newUC(newFakeRepo())

	saved, err := uc.SaveMarginSettings(context.Background(), merchantID, &dto.SaveMarginSettingsInput{
		Categories: []dto.CategoryInput{
			{Name: "basic", Percentage: 10},
			{Name: "premium", Percentage: 30},
			{Name: "Basic", Percentage: 15},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(saved.Categories))
	}
	// Duplicate keeps its first position but takes the last percentage.
	if saved.Categories[0].Name != "basic" || saved.Categories[0].Percentage != 15 {
		t.Errorf("first category = %+v", saved.Categories[0])
	}
	if saved.Categories[1].Name != "premium" {
		t.Errorf("second category = %+v", saved.Categories[1])
	}
}

func TestSaveMarginSettingsClampsPercentage(t *testing.T) {
	uc := newUC(newFakeRepo())

	saved, err := uc.SaveMarginSettings(context.Background(), merchantID, &dto.SaveMarginSettingsInput{
		Categories: []dto.CategoryInput{
			{Name: "low", Percentage: -5},
			{Name: "high", Percentage: 250},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Categories[0].Percentage != 0 {
		t.Errorf("negative percentage should clamp to 0, got %v", saved.Categories[0].Percentage)
	}
	if saved.Categories[1].Percentage != 100 {
		t.Errorf("oversized percentage should clamp to 100, got %v", saved.Categories[1].Percentage)
	}
}

func TestGetMarginSettingsCorruptRegistry(t *testing.T) {
	repo := newFakeRepo()
	_ = repo.Set(context.Background(), merchantID, settings.KeyMarginCategories, "{not json")
	uc := newUC(repo)

	cfg, err := uc.GetMarginSettings(context.Background(), merchantID)
	if err != nil {
		t.Fatalf("corrupt registry must not error: %v", err)
	}
	if len(cfg.Categories) != 0 {
		t.Errorf("corrupt registry should read as empty, got %d", len(cfg.Categories))
	}
}

func TestDisplayOptionsDefaultsAndClamp(t *testing.T) {
	repo := newFakeRepo()
	uc := newUC(repo)

	opts, err := uc.GetDisplayOptions(context.Background(), merchantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts != model.DefaultDisplayOptions() {
		t.Errorf("expected defaults, got %+v", opts)
	}

	opts.DecimalPlaces = 9
	saved, err := uc.SaveDisplayOptions(context.Background(), merchantID, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.DecimalPlaces != 4 {
		t.Errorf("decimal places should clamp to 4, got %d", saved.DecimalPlaces)
	}

	var stored model.DisplayOptions
	raw := repo.options[merchantID][settings.KeyDisplayOptions]
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored options not valid JSON: %v", err)
	}
	if stored.DecimalPlaces != 4 {
		t.Errorf("stored decimal places = %d", stored.DecimalPlaces)
	}
}

func TestFunctionalityOptionsRoundTrip(t *testing.T) {
	uc := newUC(newFakeRepo())

	opts, err := uc.GetFunctionalityOptions(context.Background(), merchantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts != model.DefaultFunctionalityOptions() {
		t.Errorf("expected defaults, got %+v", opts)
	}

	opts.EnableLinkedProducts = false
	if _, err := uc.SaveFunctionalityOptions(context.Background(), merchantID, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := uc.GetFunctionalityOptions(context.Background(), merchantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.EnableLinkedProducts {
		t.Error("saved toggle did not survive the round trip")
	}
	if !loaded.EnableMarginManagement {
		t.Error("unrelated toggle flipped")
	}
}
