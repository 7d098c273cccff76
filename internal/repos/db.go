package repos

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"smartpharma/internal/domain"
	applog "smartpharma/internal/log"
)

type Options struct {
	MaxOpenConns int
	SeedSample   bool
	// Now anchors seeded expiry dates; defaults to time.Now.
	Now func() time.Time
}

func OpenDB(dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if isMemoryDSN(dsn) {
		// every pooled connection to :memory: would otherwise be a separate, empty database
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if opts.SeedSample {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		if err := seedIfEmpty(db, now()); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category TEXT,
  barcode TEXT NOT NULL UNIQUE,
  expiry_date TEXT,              -- YYYY-MM-DD
  mfg_date TEXT,
  packaging_type TEXT,
  eco_score REAL DEFAULT 5.0 CHECK (eco_score >= 0 AND eco_score <= 10),
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  price NUMERIC NOT NULL DEFAULT 0 CHECK (price >= 0),
  added_on TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_on TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_expiry   ON products(expiry_date);
CREATE INDEX IF NOT EXISTS idx_products_stock    ON products(stock_quantity);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Alerts (reserved for persisted alerts; computed alerts never touch it)
CREATE TABLE IF NOT EXISTS alerts(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER REFERENCES products(id),
  alert_type TEXT,
  severity TEXT,
  message TEXT,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Transactions
CREATE TABLE IF NOT EXISTS transactions(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity_change INTEGER NOT NULL,
  transaction_type TEXT NOT NULL,  -- sale|restock
  amount NUMERIC NOT NULL DEFAULT 0,
  barcode TEXT,
  reference TEXT NOT NULL,
  timestamp TEXT NOT NULL,
  notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_transactions_ts      ON transactions(timestamp);
CREATE INDEX IF NOT EXISTS idx_transactions_product ON transactions(product_id);
`
	_, err := db.Exec(schema)
	return err
}

type seedRow struct {
	name, category, barcode string
	expiresIn, madeAgo      int
	packaging               string
	eco                     float64
	stock                   int
	price                   float64
}

// seedIfEmpty inserts a demo catalogue with expiry dates relative to now.
func seedIfEmpty(db *sqlx.DB, now time.Time) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info().Str("action", "db.seed").Msg("inserting sample products")

	rows := []seedRow{
		{"Aspirin 500mg", "Analgesics", "ASP001", 2, 300, "Cardboard", 8.5, 150, 5.99},
		{"Amoxicillin 250mg", "Antibiotics", "AMX001", 1, 365, "Plastic", 3.5, 10, 12.50},
		{"Vitamin D3", "Supplements", "VIT001", 90, 200, "Glass", 7.5, 300, 9.99},
		{"Ibuprofen 400mg", "Analgesics", "IBU001", 5, 250, "Paper", 8.0, 180, 7.50},
		{"Metformin 500mg", "Diabetes", "MET001", 3, 180, "Plastic", 3.5, 5, 8.75},
		{"Omeprazole 20mg", "Gastric", "OMP001", 60, 150, "Cardboard", 8.5, 220, 14.99},
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for _, r := range rows {
		if _, err := tx.Exec(`
			INSERT INTO products(name, category, barcode, expiry_date, mfg_date, packaging_type, eco_score, stock_quantity, price, added_on)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(barcode) DO NOTHING
		`, r.name, r.category, r.barcode,
			now.AddDate(0, 0, r.expiresIn).Format(domain.DateLayout),
			now.AddDate(0, 0, -r.madeAgo).Format(domain.DateLayout),
			r.packaging, r.eco, r.stock, r.price, now.Format(domain.TimestampLayout)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
