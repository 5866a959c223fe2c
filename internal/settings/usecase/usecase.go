package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-margin-service/internal/margin"
	"github.com/fekuna/omnipos-margin-service/internal/model"
	"github.com/fekuna/omnipos-margin-service/internal/settings"
	"github.com/fekuna/omnipos-margin-service/internal/settings/dto"
	"github.com/fekuna/omnipos-margin-service/pkg/cache"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type settingsUseCase struct {
	repo           settings.Repository
	cache          *cache.RedisClient
	logger         logger.ZapLogger
	defaultMetaKey string
	cacheTTL       time.Duration
}

func NewSettingsUseCase(repo settings.Repository, redis *cache.RedisClient, log logger.ZapLogger, defaultMetaKey string, cacheTTL time.Duration) settings.UseCase {
	if defaultMetaKey == "" {
		defaultMetaKey = "margin_category"
	}
	return &settingsUseCase{
		repo:           repo,
		cache:          redis,
		logger:         log,
		defaultMetaKey: defaultMetaKey,
		cacheTTL:       cacheTTL,
	}
}

func (uc *settingsUseCase) GetMarginSettings(ctx context.Context, merchantID string) (*model.MarginSettings, error) {
	cacheKey := marginSettingsCacheKey(merchantID)
	if uc.cache != nil {
		var cached model.MarginSettings
		if err := uc.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	result := &model.MarginSettings{
		MetaKey:    uc.defaultMetaKey,
		Categories: []model.MarginCategory{},
	}

	raw, found, err := uc.repo.Get(ctx, merchantID, settings.KeyMarginMetaKey)
	if err != nil {
		return nil, err
	}
	if found && raw != "" {
		var metaKey string
		if err := json.Unmarshal([]byte(raw), &metaKey); err == nil && metaKey != "" {
			result.MetaKey = metaKey
		}
	}

	raw, found, err = uc.repo.Get(ctx, merchantID, settings.KeyMarginCategories)
	if err != nil {
		return nil, err
	}
	if found {
		var categories []model.MarginCategory
		if err := json.Unmarshal([]byte(raw), &categories); err != nil {
			// A corrupt registry must not take the whole admin down; behave
			// as if no categories were configured and let a re-save repair it.
			uc.logger.Warn("corrupt margin category registry, treating as empty",
				zap.String("merchant_id", merchantID), zap.Error(err))
		} else {
			result.Categories = categories
		}
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, cacheKey, result, uc.cacheTTL); err != nil {
			uc.logger.Warn("failed to cache margin settings", zap.Error(err))
		}
	}

	return result, nil
}

// SaveMarginSettings replaces the registry wholesale. Names are normalized,
// empties dropped, duplicates resolved last-write-wins (keeping the position
// of the first occurrence), percentages clamped to [0,100].
func (uc *settingsUseCase) SaveMarginSettings(ctx context.Context, merchantID string, input *dto.SaveMarginSettingsInput) (*model.MarginSettings, error) {
	unlock, err := uc.lockSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	categories := make([]model.MarginCategory, 0, len(input.Categories))
	position := make(map[string]int, len(input.Categories))

	for _, in := range input.Categories {
		name := margin.NormalizeCategoryName(in.Name)
		if name == "" {
			continue
		}

		pct := in.Percentage
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}

		if idx, ok := position[name]; ok {
			categories[idx].Percentage = pct
			continue
		}
		position[name] = len(categories)
		categories = append(categories, model.MarginCategory{Name: name, Percentage: pct})
	}

	metaKey := margin.NormalizeCategoryName(input.MetaKey)
	if metaKey == "" {
		metaKey = uc.defaultMetaKey
	}

	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}
	metaKeyJSON, err := json.Marshal(metaKey)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Set(ctx, merchantID, settings.KeyMarginCategories, string(categoriesJSON)); err != nil {
		return nil, err
	}
	if err := uc.repo.Set(ctx, merchantID, settings.KeyMarginMetaKey, string(metaKeyJSON)); err != nil {
		return nil, err
	}

	uc.InvalidateCache(ctx, merchantID)

	uc.logger.Info("margin settings saved",
		zap.String("merchant_id", merchantID),
		zap.Int("categories", len(categories)),
		zap.String("meta_key", metaKey),
	)

	return &model.MarginSettings{MetaKey: metaKey, Categories: categories}, nil
}

func (uc *settingsUseCase) GetDisplayOptions(ctx context.Context, merchantID string) (model.DisplayOptions, error) {
	opts := model.DefaultDisplayOptions()

	raw, found, err := uc.repo.Get(ctx, merchantID, settings.KeyDisplayOptions)
	if err != nil {
		return opts, err
	}
	if found {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			uc.logger.Warn("corrupt display options, using defaults",
				zap.String("merchant_id", merchantID), zap.Error(err))
			return model.DefaultDisplayOptions(), nil
		}
	}
	return opts, nil
}

func (uc *settingsUseCase) SaveDisplayOptions(ctx context.Context, merchantID string, opts model.DisplayOptions) (model.DisplayOptions, error) {
	if opts.DecimalPlaces < 0 {
		opts.DecimalPlaces = 0
	}
	if opts.DecimalPlaces > 4 {
		opts.DecimalPlaces = 4
	}

	data, err := json.Marshal(opts)
	if err != nil {
		return opts, err
	}
	if err := uc.repo.Set(ctx, merchantID, settings.KeyDisplayOptions, string(data)); err != nil {
		return opts, err
	}
	return opts, nil
}

func (uc *settingsUseCase) GetFunctionalityOptions(ctx context.Context, merchantID string) (model.FunctionalityOptions, error) {
	opts := model.DefaultFunctionalityOptions()

	raw, found, err := uc.repo.Get(ctx, merchantID, settings.KeyFunctionalityOptions)
	if err != nil {
		return opts, err
	}
	if found {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			uc.logger.Warn("corrupt functionality options, using defaults",
				zap.String("merchant_id", merchantID), zap.Error(err))
			return model.DefaultFunctionalityOptions(), nil
		}
	}
	return opts, nil
}

func (uc *settingsUseCase) SaveFunctionalityOptions(ctx context.Context, merchantID string, opts model.FunctionalityOptions) (model.FunctionalityOptions, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return opts, err
	}
	if err := uc.repo.Set(ctx, merchantID, settings.KeyFunctionalityOptions, string(data)); err != nil {
		return opts, err
	}
	return opts, nil
}

func (uc *settingsUseCase) InvalidateCache(ctx context.Context, merchantID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, marginSettingsCacheKey(merchantID)); err != nil {
		uc.logger.Warn("failed to invalidate settings cache",
			zap.String("merchant_id", merchantID), zap.Error(err))
	}
}

// lockSettings serializes concurrent wholesale saves for a merchant. Without
// it two admins saving at once could interleave the two option writes.
func (uc *settingsUseCase) lockSettings(ctx context.Context, merchantID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:settings:%s", merchantID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire settings lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	if !acquired {
		return nil, errors.New("settings busy, please try again later (lock)")
	}

	return func() {
		if err := uc.cache.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release settings lock", zap.Error(err))
		}
	}, nil
}

func marginSettingsCacheKey(merchantID string) string {
	return fmt.Sprintf("margin:settings:%s", merchantID)
}
