package repos

import (
	"context"

	"smartpharma/internal/domain"
)

type SalesRepo struct{ db DBTX }

func NewSalesRepo(db DBTX) *SalesRepo { return &SalesRepo{db: db} }

// StatsSince aggregates sales recorded at or after since (TimestampLayout).
func (r *SalesRepo) StatsSince(ctx context.Context, since string) (domain.SalesStats, error) {
	var s domain.SalesStats
	err := r.db.GetContext(ctx, &s, `
	  SELECT
	    COUNT(*)                          AS total_transactions,
	    COALESCE(SUM(amount), 0)          AS total_revenue,
	    COALESCE(SUM(-quantity_change),0) AS total_units
	  FROM transactions
	  WHERE transaction_type = 'sale' AND timestamp >= ?
	`, since)
	return s, err
}

// SalesSince lists individual sales for the daily report, oldest first.
func (r *SalesRepo) SalesSince(ctx context.Context, since string) ([]domain.SaleLine, error) {
	out := []domain.SaleLine{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT
	    SUBSTR(t.timestamp, 12, 8)                    AS time,
	    p.name                                        AS product_name,
	    COALESCE(NULLIF(t.barcode,''), p.barcode)     AS barcode,
	    -t.quantity_change                            AS quantity,
	    CAST(t.amount AS REAL) / (-t.quantity_change) AS unit_price,
	    CAST(t.amount AS REAL)                        AS amount
	  FROM transactions t
	  JOIN products p ON p.id = t.product_id
	  WHERE t.transaction_type = 'sale' AND t.timestamp >= ?
	  ORDER BY t.timestamp ASC, t.id ASC
	`, since)
	return out, err
}

// History returns the most recent transactions for one product.
func (r *SalesRepo) History(ctx context.Context, productID int64, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []domain.Transaction{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, product_id, quantity_change, transaction_type, CAST(amount AS REAL) AS amount,
	         COALESCE(barcode,'') AS barcode, reference, timestamp, COALESCE(notes,'') AS notes
	  FROM transactions
	  WHERE product_id = ?
	  ORDER BY timestamp DESC, id DESC
	  LIMIT ?
	`, productID, limit)
	return out, err
}
