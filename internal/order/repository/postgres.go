package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-margin-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID string, id int64) (*model.Order, error) {
	var order model.Order
	query := `SELECT * FROM orders WHERE id = $1 AND merchant_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &order, query, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *PGRepository) GetLineItems(ctx context.Context, merchantID string, orderID int64) ([]model.OrderLineItem, error) {
	items := []model.OrderLineItem{}
	query := `
        SELECT i.id, i.order_id, i.product_id, i.variation_id, i.name, i.quantity
        FROM order_items i
        JOIN orders o ON o.id = i.order_id
        WHERE i.order_id = $1 AND o.merchant_id = $2
        ORDER BY i.id ASC
    `
	err := r.DB.SelectContext(ctx, &items, query, orderID, merchantID)
	if err != nil {
		return nil, err
	}
	return items, nil
}
