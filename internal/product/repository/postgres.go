package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-margin-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID string, id int64) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 AND merchant_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) GetPrice(ctx context.Context, merchantID string, id int64) (float64, bool, error) {
	var price float64
	query := `SELECT price FROM products WHERE id = $1 AND merchant_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &price, query, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return price, true, nil
}

func (r *PGRepository) FindActive(ctx context.Context, merchantID string) ([]model.Product, error) {
	products := []model.Product{}
	query := `
        SELECT * FROM products
        WHERE merchant_id = $1 AND is_active = true AND parent_id IS NULL
        ORDER BY name ASC
    `
	err := r.DB.SelectContext(ctx, &products, query, merchantID)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) Exists(ctx context.Context, merchantID string, ids []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var found []int64
	query := `SELECT id FROM products WHERE merchant_id = $1 AND id = ANY($2)`
	err := r.DB.SelectContext(ctx, &found, query, merchantID, pq.Array(ids))
	if err != nil {
		return nil, err
	}

	for _, id := range found {
		result[id] = true
	}
	return result, nil
}
