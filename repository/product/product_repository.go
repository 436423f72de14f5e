package product

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/roastline/storefront/model"
)

type SQL struct {
	conn *sqlx.DB
}

type ProductRepository interface {
	List(ctx context.Context, page, perPage int) ([]model.ProductEntity, int64, error)
	GetByID(ctx context.Context, id uint64) (*model.ProductEntity, error)
	Create(ctx context.Context, req *model.ProductRequest) (uint64, error)
	Update(ctx context.Context, id uint64, req *model.ProductRequest) (bool, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	DecrementStock(ctx context.Context, id uint64, quantity int64) (bool, error)
}

func NewProductRepository(conn *sqlx.DB) ProductRepository {
	return &SQL{conn: conn}
}

const (
	productColumns = `id, name, description, price, image_url, origin, stock`

	insertProductQuery = `INSERT INTO products (name, description, price, image_url, origin, stock)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	updateProductQuery = `UPDATE products SET name = $1, description = $2, price = $3, image_url = $4, origin = $5, stock = $6
WHERE id = $7`

	// decrementStockQuery is a single atomic subtract-if-sufficient update.
	// Concurrent reconciliations for the same product cannot produce a lost
	// update or negative stock.
	decrementStockQuery = `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`
)

func (r *SQL) List(ctx context.Context, page, perPage int) ([]model.ProductEntity, int64, error) {
	offset := (page - 1) * perPage

	rows, err := r.conn.QueryxContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id LIMIT $1 OFFSET $2", perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]model.ProductEntity, 0)
	for rows.Next() {
		var it model.ProductEntity
		if err := rows.StructScan(&it); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}

	var total int64
	if err := r.conn.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *SQL) GetByID(ctx context.Context, id uint64) (*model.ProductEntity, error) {
	var entity model.ProductEntity
	if err := r.conn.QueryRowxContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id).StructScan(&entity); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r *SQL) Create(ctx context.Context, req *model.ProductRequest) (uint64, error) {
	var id uint64
	err := r.conn.QueryRowxContext(ctx, insertProductQuery,
		req.Name, req.Description, req.Price, req.ImageURL, req.Origin, req.Stock).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQL) Update(ctx context.Context, id uint64, req *model.ProductRequest) (bool, error) {
	res, err := r.conn.ExecContext(ctx, updateProductQuery,
		req.Name, req.Description, req.Price, req.ImageURL, req.Origin, req.Stock, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQL) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.conn.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DecrementStock returns false when stock was insufficient; the row is left
// untouched in that case.
func (r *SQL) DecrementStock(ctx context.Context, id uint64, quantity int64) (bool, error) {
	res, err := r.conn.ExecContext(ctx, decrementStockQuery, quantity, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
