package services

import (
	"context"

	"smartpharma/internal/domain"
)

// ProductStore is the read side of the product table.
type ProductStore interface {
	All(ctx context.Context) ([]domain.Product, error)
	ExpiringBy(ctx context.Context, cutoff string) ([]domain.Product, error)
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
	ByID(ctx context.Context, id int64) (domain.Product, error)
	ByBarcode(ctx context.Context, barcode string) (domain.Product, error)
	Search(ctx context.Context, q string, limit int) ([]domain.Product, error)
}

type ProductWriter interface {
	ProductStore
	Create(ctx context.Context, p domain.NewProduct) (int64, error)
}

type StockLedger interface {
	ApplySale(ctx context.Context, t domain.Transaction) (int64, error)
	ApplyRestock(ctx context.Context, t domain.Transaction) (int64, error)
}

type SalesReader interface {
	StatsSince(ctx context.Context, since string) (domain.SalesStats, error)
	SalesSince(ctx context.Context, since string) ([]domain.SaleLine, error)
	History(ctx context.Context, productID int64, limit int) ([]domain.Transaction, error)
}
