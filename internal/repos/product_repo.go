package repos

import (
	"context"
	"strings"
	"time"

	"smartpharma/internal/domain"
)

type ProductRepo struct{ db DBTX }

func NewProductRepo(db DBTX) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `
    id, name, COALESCE(category,'') AS category, barcode,
    COALESCE(expiry_date,'') AS expiry_date, COALESCE(mfg_date,'') AS mfg_date,
    COALESCE(packaging_type,'') AS packaging_type, COALESCE(eco_score,5.0) AS eco_score,
    stock_quantity, COALESCE(price,0) AS price,
    COALESCE(added_on,'') AS added_on, COALESCE(updated_on,'') AS updated_on`

// All returns in-stock products, newest first.
func (r *ProductRepo) All(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productColumns+`
  FROM products
  WHERE stock_quantity > 0
  ORDER BY added_on DESC, id DESC
`)
	return out, err
}

// ExpiringBy returns in-stock products whose expiry_date sorts on or before cutoff
// (YYYY-MM-DD), including already-expired ones. Rows with unparsable dates may
// slip through; classification drops them.
func (r *ProductRepo) ExpiringBy(ctx context.Context, cutoff string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productColumns+`
  FROM products
  WHERE stock_quantity > 0 AND COALESCE(expiry_date,'') <= ?
  ORDER BY expiry_date ASC, id ASC
`, cutoff)
	return out, err
}

// LowStock returns in-stock products below threshold, lowest stock first.
func (r *ProductRepo) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productColumns+`
  FROM products
  WHERE stock_quantity < ? AND stock_quantity > 0
  ORDER BY stock_quantity ASC, id ASC
`, threshold)
	return out, err
}

func (r *ProductRepo) ByID(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT`+productColumns+` FROM products WHERE id = ?`, id)
	return p, notFound(err, "product")
}

func (r *ProductRepo) ByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT`+productColumns+` FROM products WHERE barcode = ?`, barcode)
	return p, notFound(err, "product")
}

// Search matches q as a substring of name, barcode or category, case-insensitively.
func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + strings.ToLower(q) + "%"
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+productColumns+`
  FROM products
  WHERE stock_quantity > 0
    AND (LOWER(name) LIKE ? OR LOWER(barcode) LIKE ? OR LOWER(COALESCE(category,'')) LIKE ?)
  ORDER BY name ASC
  LIMIT ?
`, like, like, like, limit)
	return out, err
}

// Create inserts a product and returns its id. A duplicate barcode yields a conflict error.
func (r *ProductRepo) Create(ctx context.Context, p domain.NewProduct) (int64, error) {
	if p.AddedOn == "" {
		p.AddedOn = time.Now().Format(domain.TimestampLayout)
	}
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO products
    (name, category, barcode, expiry_date, mfg_date, packaging_type, eco_score, stock_quantity, price, added_on)
  VALUES
    (?,    ?,        ?,       ?,           NULLIF(?,''), ?,          ?,         ?,              ?,     ?)
`, p.Name, p.Category, p.Barcode, p.ExpiryDate, p.MfgDate, p.PackagingType, p.EcoScore, p.StockQuantity, p.Price, p.AddedOn)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.NewError(domain.CodeConflict, "product with barcode %s already exists", p.Barcode)
		}
		return 0, err
	}
	return res.LastInsertId()
}
