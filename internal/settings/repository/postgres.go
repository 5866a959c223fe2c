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

func (r *PGRepository) Get(ctx context.Context, merchantID, key string) (string, bool, error) {
	var value string
	query := `SELECT option_value FROM settings WHERE merchant_id = $1 AND option_key = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &value, query, merchantID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *PGRepository) Set(ctx context.Context, merchantID, key, value string) error {
	query := `
        INSERT INTO settings (merchant_id, option_key, option_value, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (merchant_id, option_key)
        DO UPDATE SET option_value = EXCLUDED.option_value, updated_at = now()
    `
	_, err := r.DB.ExecContext(ctx, query, merchantID, key, value)
	return err
}
