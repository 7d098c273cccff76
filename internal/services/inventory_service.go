package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"smartpharma/internal/domain"
	"smartpharma/internal/validate"
)

// RequiredProductFields must all be present in an add-product body.
var RequiredProductFields = []string{"name", "category", "barcode", "expiry_date", "packaging_type", "stock_quantity", "price"}

type InventoryService struct {
	Products ProductWriter
	Ledger   StockLedger
	Sales    SalesReader
	Now      func() time.Time
	NewRef   func() string
}

func (s *InventoryService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *InventoryService) ref() string {
	if s.NewRef != nil {
		return s.NewRef()
	}
	return uuid.NewString()
}

func present(raw map[string]any, key string) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return false
	}
	if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
		return false
	}
	return true
}

func str(raw map[string]any, key string) string {
	return strings.TrimSpace(cast.ToString(raw[key]))
}

var errNotWhole = fmt.Errorf("not a whole number")

// wholeNumber accepts base-10 integers only: bools, fractions and
// non-decimal strings are rejected rather than truncated.
func wholeNumber(v any) (int64, error) {
	switch n := v.(type) {
	case bool:
		return 0, errNotWhole
	case float64, float32:
		f := cast.ToFloat64(n)
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, errNotWhole
		}
		return int64(f), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return cast.ToInt64E(v)
}

// ParseNewProduct checks presence, coerces loose JSON types and validates the result.
func ParseNewProduct(raw map[string]any) (domain.NewProduct, error) {
	var missing []string
	for _, k := range RequiredProductFields {
		if !present(raw, k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return domain.NewProduct{}, domain.NewError(domain.CodeValidation, "Missing required fields: %s", strings.Join(missing, ", "))
	}

	stock, err := wholeNumber(raw["stock_quantity"])
	if err != nil || stock > math.MaxInt32 {
		return domain.NewProduct{}, domain.NewError(domain.CodeValidation, "stock_quantity must be an integer")
	}
	price, err := cast.ToFloat64E(raw["price"])
	if err != nil {
		return domain.NewProduct{}, domain.NewError(domain.CodeValidation, "price must be a number")
	}
	expiry, err := ParseExpiry(str(raw, "expiry_date"))
	if err != nil {
		return domain.NewProduct{}, domain.NewError(domain.CodeValidation, "expiry_date is not a valid date")
	}
	mfg := ""
	if present(raw, "mfg_date") {
		t, err := ParseExpiry(str(raw, "mfg_date"))
		if err != nil {
			return domain.NewProduct{}, domain.NewError(domain.CodeValidation, "mfg_date is not a valid date")
		}
		mfg = t.Format(domain.DateLayout)
	}

	packaging := str(raw, "packaging_type")
	np := domain.NewProduct{
		Name:          str(raw, "name"),
		Category:      str(raw, "category"),
		Barcode:       str(raw, "barcode"),
		ExpiryDate:    expiry.Format(domain.DateLayout),
		MfgDate:       mfg,
		PackagingType: packaging,
		EcoScore:      EcoScoreForPackaging(packaging),
		StockQuantity: int(stock),
		Price:         price,
	}
	if err := validate.Struct(np); err != nil {
		return domain.NewProduct{}, domain.Wrap(domain.CodeValidation, err, "invalid product")
	}
	return np, nil
}

func (s *InventoryService) AddProduct(ctx context.Context, raw map[string]any) (domain.Product, error) {
	np, err := ParseNewProduct(raw)
	if err != nil {
		return domain.Product{}, err
	}
	np.AddedOn = s.now().Format(domain.TimestampLayout)
	id, err := s.Products.Create(ctx, np)
	if err != nil {
		return domain.Product{}, err
	}
	return s.Products.ByID(ctx, id)
}

type SaleRequest struct {
	ProductID int64
	Barcode   string
	Quantity  int
	// Amount is nil when the caller left it to price*quantity.
	Amount *float64
}

func ParseSaleRequest(raw map[string]any) (SaleRequest, error) {
	var req SaleRequest
	if present(raw, "product_id") {
		id, err := wholeNumber(raw["product_id"])
		if err != nil || id < 1 {
			return req, domain.NewError(domain.CodeValidation, "product_id must be a positive integer")
		}
		req.ProductID = id
	}
	req.Barcode = str(raw, "barcode")
	if req.ProductID == 0 && req.Barcode == "" {
		return req, domain.NewError(domain.CodeValidation, "barcode or product_id is required")
	}
	if !present(raw, "quantity") {
		return req, domain.NewError(domain.CodeValidation, "quantity is required")
	}
	qty, err := wholeNumber(raw["quantity"])
	if err != nil || qty > math.MaxInt32 || !validate.Quantity(int(qty)) {
		return req, domain.NewError(domain.CodeValidation, "quantity must be a positive integer")
	}
	req.Quantity = int(qty)
	if present(raw, "amount") {
		amt, err := cast.ToFloat64E(raw["amount"])
		if err != nil || amt < 0 {
			return req, domain.NewError(domain.CodeValidation, "amount must be a non-negative number")
		}
		req.Amount = &amt
	}
	return req, nil
}

type SaleReceipt struct {
	TransactionID  int64   `json:"transaction_id"`
	Reference      string  `json:"reference"`
	ProductID      int64   `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Quantity       int     `json:"quantity"`
	Amount         float64 `json:"amount"`
	RemainingStock int     `json:"remaining_stock"`
}

func (s *InventoryService) resolve(ctx context.Context, id int64, barcode string) (domain.Product, error) {
	if id > 0 {
		return s.Products.ByID(ctx, id)
	}
	return s.Products.ByBarcode(ctx, barcode)
}

// RecordSale decrements stock and logs the sale; stock is unchanged on failure.
func (s *InventoryService) RecordSale(ctx context.Context, req SaleRequest) (SaleReceipt, error) {
	if !validate.Quantity(req.Quantity) {
		return SaleReceipt{}, domain.NewError(domain.CodeValidation, "quantity must be a positive integer")
	}
	p, err := s.resolve(ctx, req.ProductID, req.Barcode)
	if err != nil {
		return SaleReceipt{}, err
	}
	if req.Quantity > p.StockQuantity {
		return SaleReceipt{}, domain.NewError(domain.CodeInsufficientStock, "Insufficient stock. Available: %d", p.StockQuantity)
	}

	amount := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(req.Quantity)))
	if req.Amount != nil {
		amount = decimal.NewFromFloat(*req.Amount)
	}
	amt, _ := amount.Round(2).Float64()

	t := domain.Transaction{
		ProductID:      p.ID,
		QuantityChange: -req.Quantity,
		Type:           domain.TxSale,
		Amount:         amt,
		Barcode:        p.Barcode,
		Reference:      s.ref(),
		Timestamp:      s.now().Format(domain.TimestampLayout),
	}
	txID, err := s.Ledger.ApplySale(ctx, t)
	if err != nil {
		return SaleReceipt{}, err
	}
	return SaleReceipt{
		TransactionID:  txID,
		Reference:      t.Reference,
		ProductID:      p.ID,
		ProductName:    p.Name,
		Quantity:       req.Quantity,
		Amount:         amt,
		RemainingStock: p.StockQuantity - req.Quantity,
	}, nil
}

func (s *InventoryService) Restock(ctx context.Context, productID int64, qty int, notes string) (domain.Product, error) {
	if !validate.Quantity(qty) {
		return domain.Product{}, domain.NewError(domain.CodeValidation, "quantity must be a positive integer")
	}
	p, err := s.Products.ByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	_, err = s.Ledger.ApplyRestock(ctx, domain.Transaction{
		ProductID:      p.ID,
		QuantityChange: qty,
		Type:           domain.TxRestock,
		Barcode:        p.Barcode,
		Reference:      s.ref(),
		Timestamp:      s.now().Format(domain.TimestampLayout),
		Notes:          strings.TrimSpace(notes),
	})
	if err != nil {
		return domain.Product{}, err
	}
	return s.Products.ByID(ctx, p.ID)
}

func (s *InventoryService) Product(ctx context.Context, id int64) (domain.Product, error) {
	return s.Products.ByID(ctx, id)
}

func (s *InventoryService) ProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	code, ok := validate.Barcode(barcode)
	if !ok {
		return domain.Product{}, domain.NewError(domain.CodeValidation, "invalid barcode")
	}
	return s.Products.ByBarcode(ctx, code)
}

func (s *InventoryService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	q, ok := validate.Q(q)
	if !ok {
		return nil, domain.NewError(domain.CodeValidation, "invalid search query")
	}
	return s.Products.Search(ctx, q, 20)
}

func (s *InventoryService) startOfDay() string {
	return s.now().Format(domain.DateLayout) + " 00:00:00"
}

func (s *InventoryService) SalesStats(ctx context.Context) (domain.SalesStats, error) {
	st, err := s.Sales.StatsSince(ctx, s.startOfDay())
	if err != nil {
		return st, err
	}
	st.TotalRevenue, _ = decimal.NewFromFloat(st.TotalRevenue).Round(2).Float64()
	return st, nil
}

// SalesReport is today's sales and their totals, as exported.
type SalesReport struct {
	GeneratedAt time.Time
	Lines       []domain.SaleLine
	Stats       domain.SalesStats
}

func (s *InventoryService) TodaySales(ctx context.Context) (SalesReport, error) {
	lines, err := s.Sales.SalesSince(ctx, s.startOfDay())
	if err != nil {
		return SalesReport{}, fmt.Errorf("loading sales: %w", err)
	}
	st, err := s.SalesStats(ctx)
	if err != nil {
		return SalesReport{}, err
	}
	return SalesReport{GeneratedAt: s.now(), Lines: lines, Stats: st}, nil
}

func (s *InventoryService) History(ctx context.Context, productID int64) ([]domain.Transaction, error) {
	if _, err := s.Products.ByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.Sales.History(ctx, productID, 50)
}
