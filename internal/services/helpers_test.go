package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"smartpharma/internal/domain"
	"smartpharma/internal/repos"
)

var today = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:", repos.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type productOpt func(*domain.NewProduct)

func withStock(n int) productOpt { return func(p *domain.NewProduct) { p.StockQuantity = n } }

func withExpiry(days int) productOpt {
	return func(p *domain.NewProduct) { p.ExpiryDate = today.AddDate(0, 0, days).Format(domain.DateLayout) }
}

func withRawExpiry(s string) productOpt { return func(p *domain.NewProduct) { p.ExpiryDate = s } }

func withCategory(c string) productOpt { return func(p *domain.NewProduct) { p.Category = c } }

func withPackaging(pkg string, eco float64) productOpt {
	return func(p *domain.NewProduct) { p.PackagingType, p.EcoScore = pkg, eco }
}

func insert(t *testing.T, db *sqlx.DB, name, barcode string, opts ...productOpt) int64 {
	t.Helper()
	np := domain.NewProduct{
		Name:          name,
		Category:      "Analgesics",
		Barcode:       barcode,
		ExpiryDate:    today.AddDate(0, 0, 200).Format(domain.DateLayout),
		PackagingType: "Paper",
		EcoScore:      8,
		StockQuantity: 100,
		Price:         2.5,
	}
	for _, o := range opts {
		o(&np)
	}
	id, err := repos.NewProductRepo(db).Create(context.Background(), np)
	require.NoError(t, err)
	return id
}
