package settings

import (
	"context"

	"github.com/fekuna/omnipos-margin-service/internal/model"
	"github.com/fekuna/omnipos-margin-service/internal/settings/dto"
)

// UseCase owns the settings-write boundary: everything is validated and
// normalized on save, reads hand back stored values as-is.
type UseCase interface {
	GetMarginSettings(ctx context.Context, merchantID string) (*model.MarginSettings, error)
	SaveMarginSettings(ctx context.Context, merchantID string, input *dto.SaveMarginSettingsInput) (*model.MarginSettings, error)

	GetDisplayOptions(ctx context.Context, merchantID string) (model.DisplayOptions, error)
	SaveDisplayOptions(ctx context.Context, merchantID string, opts model.DisplayOptions) (model.DisplayOptions, error)

	GetFunctionalityOptions(ctx context.Context, merchantID string) (model.FunctionalityOptions, error)
	SaveFunctionalityOptions(ctx context.Context, merchantID string, opts model.FunctionalityOptions) (model.FunctionalityOptions, error)

	// InvalidateCache drops the merchant's cached settings. Called by the
	// event listener when another service edited the options.
	InvalidateCache(ctx context.Context, merchantID string)
}
