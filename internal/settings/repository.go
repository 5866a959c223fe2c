package settings

import "context"

// Option keys. One row per merchant per key, value is a JSON document.
const (
	KeyMarginCategories     = "margin_categories"
	KeyMarginMetaKey        = "margin_meta_key"
	KeyDisplayOptions       = "display_options"
	KeyFunctionalityOptions = "functionality_options"
)

// Repository is the merchant-scoped key/value options store.
type Repository interface {
	// Get returns the raw stored value and whether the key exists.
	Get(ctx context.Context, merchantID, key string) (string, bool, error)

	Set(ctx context.Context, merchantID, key, value string) error
}
