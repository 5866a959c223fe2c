package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Get(ctx context.Context, entityID int64, key string) (string, error) {
	var value string
	query := `SELECT meta_value FROM product_meta WHERE entity_id = $1 AND meta_key = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &value, query, entityID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (r *PGRepository) Set(ctx context.Context, entityID int64, key, value string) error {
	query := `
        INSERT INTO product_meta (entity_id, meta_key, meta_value, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (entity_id, meta_key)
        DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = now()
    `
	_, err := r.DB.ExecContext(ctx, query, entityID, key, value)
	return err
}
