package meta

import "context"

// Repository is the per-entity key/value metadata store. Entities are products
// or variations; both share the same numeric ID space.
type Repository interface {
	// Get returns the stored value, or "" when the entity has no value for the key.
	Get(ctx context.Context, entityID int64, key string) (string, error)

	// Set upserts the value. An empty value clears the assignment but keeps the row.
	Set(ctx context.Context, entityID int64, key, value string) error
}
