package domain

import "time"

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

type Product struct {
	ID            int64   `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Category      string  `db:"category" json:"category"`
	Barcode       string  `db:"barcode" json:"barcode"`
	ExpiryDate    string  `db:"expiry_date" json:"expiry_date"` // YYYY-MM-DD
	MfgDate       string  `db:"mfg_date" json:"mfg_date,omitempty"`
	PackagingType string  `db:"packaging_type" json:"packaging_type"`
	EcoScore      float64 `db:"eco_score" json:"eco_score"`
	StockQuantity int     `db:"stock_quantity" json:"stock_quantity"`
	Price         float64 `db:"price" json:"price"`
	AddedOn       string  `db:"added_on" json:"added_on"`
	UpdatedOn     string  `db:"updated_on" json:"updated_on,omitempty"`
}

// NewProduct is the validated input for creating a product row.
type NewProduct struct {
	Name          string  `validate:"required,max=255"`
	Category      string  `validate:"required,max=100"`
	Barcode       string  `validate:"required,max=100,barcode"`
	ExpiryDate    string  `validate:"required"`
	MfgDate       string  `validate:"omitempty"`
	PackagingType string  `validate:"required,max=50"`
	EcoScore      float64 `validate:"gte=0,lte=10"`
	StockQuantity int     `validate:"gte=0"`
	Price         float64 `validate:"gte=0"`
	// AddedOn defaults to the insert time when empty.
	AddedOn string `validate:"omitempty"`
}

const (
	TxSale    = "sale"
	TxRestock = "restock"
)

// Transaction is one stock movement. QuantityChange is negative for sales.
type Transaction struct {
	ID             int64   `db:"id" json:"id"`
	ProductID      int64   `db:"product_id" json:"product_id"`
	QuantityChange int     `db:"quantity_change" json:"quantity_change"`
	Type           string  `db:"transaction_type" json:"transaction_type"`
	Amount         float64 `db:"amount" json:"amount"`
	Barcode        string  `db:"barcode" json:"barcode"`
	Reference      string  `db:"reference" json:"reference"`
	Timestamp      string  `db:"timestamp" json:"timestamp"`
	Notes          string  `db:"notes" json:"notes,omitempty"`
}

type SalesStats struct {
	TotalTransactions int     `db:"total_transactions" json:"total_transactions"`
	TotalRevenue      float64 `db:"total_revenue" json:"total_revenue"`
	TotalUnits        int     `db:"total_units" json:"total_units"`
}

// SaleLine is one row of the daily sales report.
type SaleLine struct {
	Time        string  `db:"time" csv:"time"`
	ProductName string  `db:"product_name" csv:"product_name"`
	Barcode     string  `db:"barcode" csv:"barcode"`
	Quantity    int     `db:"quantity" csv:"quantity"`
	UnitPrice   float64 `db:"unit_price" csv:"unit_price"`
	Amount      float64 `db:"amount" csv:"amount"`
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities for sorting; lower is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh, SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

type AlertType string

const (
	AlertExpiry AlertType = "expiry"
	AlertStock  AlertType = "stock"
)

type AlertDetails struct {
	Barcode      string `json:"barcode"`
	Category     string `json:"category"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	CurrentStock int    `json:"current_stock"`
	Price        string `json:"price,omitempty"`
	Packaging    string `json:"packaging,omitempty"`
}

// Alert is computed per request; ID is only meaningful within the same data state.
type Alert struct {
	ID             int          `json:"alert_id"`
	Type           AlertType    `json:"type"`
	Severity       Severity     `json:"severity"`
	Product        string       `json:"product"`
	ProductID      int64        `json:"product_id"`
	Message        string       `json:"message"`
	Details        AlertDetails `json:"details"`
	Timestamp      time.Time    `json:"timestamp"`
	ActionRequired bool         `json:"action_required"`
}
