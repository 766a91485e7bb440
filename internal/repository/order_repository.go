package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marketbay/marketbay-backend/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create сохраняет новый заказ.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO orders (customer_id, seller_id, product_id, title, total_amount, status, escrow_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, o.CustomerID, o.SellerID, o.ProductID, o.Title, o.TotalAmount, o.Status, o.EscrowStatus).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("order repository: create %w", err)
	}
	return nil
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}
	return &o, nil
}

// ListByUser возвращает заказы, где пользователь покупатель или продавец.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders WHERE customer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by user %w", err)
	}
	return orders, nil
}

// UpdateStatus меняет статус заказа и записывает аудит одной транзакцией.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actorID uuid.UUID, note string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("order repository: begin update status %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("order repository: update status %w", err)
	}
	if err := requireAffected(res, ErrOrderNotFound); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_updates (order_id, status, actor_id, note)
		VALUES ($1, $2, $3, NULLIF($4, ''))
	`, orderID, status, actorID, note)
	if err != nil {
		return fmt.Errorf("order repository: audit %w", err)
	}

	return tx.Commit()
}

// SetEscrowStatus фиксирует состояние эскроу по заказу.
func (r *OrderRepository) SetEscrowStatus(ctx context.Context, orderID uuid.UUID, escrowStatus string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET escrow_status = $2, updated_at = NOW() WHERE id = $1
	`, orderID, escrowStatus)
	if err != nil {
		return fmt.Errorf("order repository: set escrow status %w", err)
	}
	return requireAffected(res, ErrOrderNotFound)
}

// ListStatusUpdates возвращает историю смены статусов заказа.
func (r *OrderRepository) ListStatusUpdates(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusUpdate, error) {
	var updates []models.OrderStatusUpdate
	err := r.db.SelectContext(ctx, &updates, `
		SELECT * FROM order_status_updates WHERE order_id = $1 ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order repository: list status updates %w", err)
	}
	return updates, nil
}
