package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
)

type SQL struct {
	conn *sqlx.DB
}

type OrderRepository interface {
	GetOrderBySessionID(ctx context.Context, sessionID string) (*model.OrderEntity, error)
	GetOrderByID(ctx context.Context, orderID string) (*model.OrderEntity, error)
	GetOrderItems(ctx context.Context, orderID string) ([]model.OrderItemEntity, error)
	InsertOrderTx(ctx context.Context, tx *sqlx.Tx, order *model.OrderEntity) error
	InsertOrderItemsTx(ctx context.Context, tx *sqlx.Tx, items []model.OrderItemEntity) error
	UpdateOrderStatus(ctx context.Context, orderID string, from, to constant.OrderStatus) (bool, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]model.OrderEntity, error)
	ListOrders(ctx context.Context, page, perPage int) ([]model.OrderEntity, int64, error)
}

func NewOrderRepository(conn *sqlx.DB) OrderRepository {
	return &SQL{conn: conn}
}

const (
	orderColumns = `id, user_id, status, total_amount, shipping_fee, stripe_session_id, stripe_payment_intent_id,
shipping_address_line1, shipping_address_line2, shipping_city, shipping_postal_code, shipping_country,
customer_email, customer_name, customer_phone, created_at, updated_at`

	insertOrderQuery = `INSERT INTO orders (id, user_id, status, total_amount, shipping_fee, stripe_session_id, stripe_payment_intent_id,
shipping_address_line1, shipping_address_line2, shipping_city, shipping_postal_code, shipping_country,
customer_email, customer_name, customer_phone)
VALUES (:id, :user_id, :status, :total_amount, :shipping_fee, :stripe_session_id, :stripe_payment_intent_id,
:shipping_address_line1, :shipping_address_line2, :shipping_city, :shipping_postal_code, :shipping_country,
:customer_email, :customer_name, :customer_phone)`

	insertOrderItemQuery = `INSERT INTO order_items (order_id, product_id, name, quantity, unit_price, total_price)
VALUES (:order_id, :product_id, :name, :quantity, :unit_price, :total_price)`
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The unique index on stripe_session_id is the authoritative
// idempotency guard for webhook re-delivery.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *SQL) GetOrderBySessionID(ctx context.Context, sessionID string) (*model.OrderEntity, error) {
	var entity model.OrderEntity
	q := "SELECT " + orderColumns + " FROM orders WHERE stripe_session_id = $1"
	if err := r.conn.QueryRowxContext(ctx, q, sessionID).StructScan(&entity); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *SQL) GetOrderByID(ctx context.Context, orderID string) (*model.OrderEntity, error) {
	var entity model.OrderEntity
	q := "SELECT " + orderColumns + " FROM orders WHERE id = $1"
	if err := r.conn.QueryRowxContext(ctx, q, orderID).StructScan(&entity); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *SQL) GetOrderItems(ctx context.Context, orderID string) ([]model.OrderItemEntity, error) {
	rows, err := r.conn.QueryxContext(ctx, "SELECT id, order_id, product_id, name, quantity, unit_price, total_price FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItemEntity, 0)
	for rows.Next() {
		var it model.OrderItemEntity
		if err := rows.StructScan(&it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *SQL) InsertOrderTx(ctx context.Context, tx *sqlx.Tx, order *model.OrderEntity) error {
	_, err := tx.NamedExecContext(ctx, insertOrderQuery, order)
	return err
}

func (r *SQL) InsertOrderItemsTx(ctx context.Context, tx *sqlx.Tx, items []model.OrderItemEntity) error {
	for _, it := range items {
		if _, err := tx.NamedExecContext(ctx, insertOrderItemQuery, it); err != nil {
			return err
		}
	}
	return nil
}

// UpdateOrderStatus performs a conditional write so a concurrent transition
// on the same order is detectable instead of silently lost.
func (r *SQL) UpdateOrderStatus(ctx context.Context, orderID string, from, to constant.OrderStatus) (bool, error) {
	res, err := r.conn.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, orderID, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQL) ListOrdersByUser(ctx context.Context, userID string) ([]model.OrderEntity, error) {
	rows, err := r.conn.QueryxContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.OrderEntity, 0)
	for rows.Next() {
		var o model.OrderEntity
		if err := rows.StructScan(&o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *SQL) ListOrders(ctx context.Context, page, perPage int) ([]model.OrderEntity, int64, error) {
	offset := (page - 1) * perPage

	rows, err := r.conn.QueryxContext(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2", perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]model.OrderEntity, 0)
	for rows.Next() {
		var o model.OrderEntity
		if err := rows.StructScan(&o); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}

	var total int64
	if err := r.conn.GetContext(ctx, &total, "SELECT COUNT(*) FROM orders"); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
