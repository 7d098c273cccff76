package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"smartpharma/internal/domain"
)

// InventoryRepo moves stock and writes the matching transaction row atomically.
type InventoryRepo struct{ db TxStarter }

func NewInventoryRepo(db TxStarter) *InventoryRepo { return &InventoryRepo{db: db} }

// ApplySale subtracts -t.QuantityChange units only if enough stock exists,
// then records the sale. Stock is left untouched on any error.
func (r *InventoryRepo) ApplySale(ctx context.Context, t domain.Transaction) (int64, error) {
	qty := -t.QuantityChange
	if qty <= 0 {
		return 0, domain.NewError(domain.CodeValidation, "sale quantity must be positive")
	}
	return r.inTx(ctx, func(tx *sqlx.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - ?, updated_on = ?
			WHERE id = ? AND stock_quantity >= ?
		`, qty, t.Timestamp, t.ProductID, qty)
		if err != nil {
			return 0, err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return 0, domain.NewError(domain.CodeInsufficientStock, "insufficient stock for product %d", t.ProductID)
		}
		return insertTransaction(ctx, tx, t)
	})
}

// ApplyRestock adds t.QuantityChange units and records the restock.
func (r *InventoryRepo) ApplyRestock(ctx context.Context, t domain.Transaction) (int64, error) {
	if t.QuantityChange <= 0 {
		return 0, domain.NewError(domain.CodeValidation, "restock quantity must be positive")
	}
	return r.inTx(ctx, func(tx *sqlx.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity + ?, updated_on = ?
			WHERE id = ?
		`, t.QuantityChange, t.Timestamp, t.ProductID)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, domain.NewError(domain.CodeNotFound, "product not found")
		}
		return insertTransaction(ctx, tx, t)
	})
}

func (r *InventoryRepo) inTx(ctx context.Context, fn func(tx *sqlx.Tx) (int64, error)) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := fn(tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit stock change: %w", err)
	}
	return id, nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, t domain.Transaction) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions(product_id, quantity_change, transaction_type, amount, barcode, reference, timestamp, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?,''))
	`, t.ProductID, t.QuantityChange, t.Type, t.Amount, t.Barcode, t.Reference, t.Timestamp, t.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
