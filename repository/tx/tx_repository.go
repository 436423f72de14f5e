package tx

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// TxRepository hands out transactions for multi-statement writes, the order
// plus order-items insert being the main consumer. Rollback of an already
// committed tx is harmless, so callers can always defer it.
type TxRepository interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	CommitTx(tx *sqlx.Tx) error
	RollbackTx(tx *sqlx.Tx) error
}

type txRepository struct {
	conn *sqlx.DB
}

func NewTxRepository(conn *sqlx.DB) TxRepository {
	return &txRepository{conn: conn}
}

func (r *txRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	// Default isolation; the conditional UPDATEs guard concurrency themselves.
	return r.conn.BeginTxx(ctx, nil)
}

func (r *txRepository) CommitTx(tx *sqlx.Tx) error {
	return tx.Commit()
}

func (r *txRepository) RollbackTx(tx *sqlx.Tx) error {
	return tx.Rollback()
}
