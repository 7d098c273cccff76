// Package export renders sales and inventory data as spreadsheet downloads.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"smartpharma/internal/domain"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType  = "text/csv; charset=utf-8"

	defaultSheet = "Sheet1"
)

const (
	titleStyle  = `{"font":{"bold":true,"size":16,"color":"#1F4E78"},"alignment":{"horizontal":"center"}}`
	headerStyle = `{"font":{"bold":true,"color":"#FFFFFF"},"fill":{"type":"pattern","color":["#4472C4"],"pattern":1},"alignment":{"horizontal":"center"}}`
	boldStyle   = `{"font":{"bold":true}}`
	moneyStyle  = `{"number_format":2}`
)

func SalesReportFilename(at time.Time) string {
	return at.Format("Sales_Report_20060102_150405") + ".xlsx"
}

func InventoryXLSXFilename(at time.Time) string {
	return at.Format("Inventory_20060102") + ".xlsx"
}

func InventoryCSVFilename(at time.Time) string {
	return at.Format("Inventory_20060102") + ".csv"
}

// cell converts a 1-based column and row into an A1 reference.
func cell(col, row int) string {
	return fmt.Sprintf("%s%d", excelize.ToAlphaString(col-1), row)
}

type styles struct {
	title, header, bold, money int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	for _, def := range []struct {
		dst   *int
		style string
	}{{&s.title, titleStyle}, {&s.header, headerStyle}, {&s.bold, boldStyle}, {&s.money, moneyStyle}} {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return s, fmt.Errorf("excel style: %w", err)
		}
		*def.dst = id
	}
	return s, nil
}

func writeHeader(f *excelize.File, sheet string, row int, st styles, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(i+1, row), h)
	}
	f.SetCellStyle(sheet, cell(1, row), cell(len(headers), row), st.header)
}

// SalesXLSX writes the daily sales workbook: title, header row, one row per sale
// and a summary block.
func SalesXLSX(w io.Writer, generated time.Time, lines []domain.SaleLine, stats domain.SalesStats) error {
	f := excelize.NewFile()
	sheet := "Sales Report"
	f.SetSheetName(defaultSheet, sheet)
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	headers := []string{"Time", "Product", "Barcode", "Quantity", "Unit Price", "Amount"}
	f.SetCellValue(sheet, "A1", "SmartPharma Daily Sales Report")
	f.MergeCell(sheet, "A1", cell(len(headers), 1))
	f.SetCellStyle(sheet, "A1", "A1", st.title)
	f.SetCellValue(sheet, "A2", "Generated: "+generated.Format(domain.TimestampLayout))

	writeHeader(f, sheet, 4, st, headers)
	row := 5
	for _, l := range lines {
		f.SetCellValue(sheet, cell(1, row), l.Time)
		f.SetCellValue(sheet, cell(2, row), l.ProductName)
		f.SetCellValue(sheet, cell(3, row), l.Barcode)
		f.SetCellValue(sheet, cell(4, row), l.Quantity)
		f.SetCellValue(sheet, cell(5, row), money(l.UnitPrice))
		f.SetCellValue(sheet, cell(6, row), money(l.Amount))
		row++
	}
	if len(lines) > 0 {
		f.SetCellStyle(sheet, cell(5, 5), cell(6, row-1), st.money)
	}

	row++
	summary := []struct {
		label string
		value any
	}{
		{"Total Transactions", stats.TotalTransactions},
		{"Total Units Sold", stats.TotalUnits},
		{"Total Revenue", money(stats.TotalRevenue)},
	}
	f.SetCellValue(sheet, cell(1, row), "Summary")
	f.SetCellStyle(sheet, cell(1, row), cell(1, row), st.bold)
	for _, s := range summary {
		row++
		f.SetCellValue(sheet, cell(1, row), s.label)
		f.SetCellValue(sheet, cell(2, row), s.value)
	}
	f.SetCellStyle(sheet, cell(2, row), cell(2, row), st.money)

	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "C", "F", 14)
	return f.Write(w)
}

// InventoryRow is one product as exported to CSV and xlsx.
type InventoryRow struct {
	ID            int64   `csv:"id"`
	Name          string  `csv:"name"`
	Category      string  `csv:"category"`
	Barcode       string  `csv:"barcode"`
	ExpiryDate    string  `csv:"expiry_date"`
	PackagingType string  `csv:"packaging_type"`
	EcoScore      float64 `csv:"eco_score"`
	StockQuantity int     `csv:"stock_quantity"`
	Price         float64 `csv:"price"`
}

func InventoryRows(products []domain.Product) []*InventoryRow {
	rows := make([]*InventoryRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &InventoryRow{
			ID:            p.ID,
			Name:          p.Name,
			Category:      p.Category,
			Barcode:       p.Barcode,
			ExpiryDate:    p.ExpiryDate,
			PackagingType: p.PackagingType,
			EcoScore:      p.EcoScore,
			StockQuantity: p.StockQuantity,
			Price:         money(p.Price),
		})
	}
	return rows
}

func InventoryCSV(w io.Writer, products []domain.Product) error {
	return gocsv.Marshal(InventoryRows(products), w)
}

func InventoryXLSX(w io.Writer, generated time.Time, products []domain.Product) error {
	f := excelize.NewFile()
	sheet := "Inventory"
	f.SetSheetName(defaultSheet, sheet)
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	headers := []string{"ID", "Name", "Category", "Barcode", "Expiry Date", "Packaging", "Eco Score", "Stock", "Price"}
	f.SetCellValue(sheet, "A1", "SmartPharma Inventory "+generated.Format(domain.DateLayout))
	f.MergeCell(sheet, "A1", cell(len(headers), 1))
	f.SetCellStyle(sheet, "A1", "A1", st.title)

	writeHeader(f, sheet, 3, st, headers)
	row := 4
	for _, r := range InventoryRows(products) {
		for i, v := range []any{r.ID, r.Name, r.Category, r.Barcode, r.ExpiryDate, r.PackagingType, r.EcoScore, r.StockQuantity, r.Price} {
			f.SetCellValue(sheet, cell(i+1, row), v)
		}
		row++
	}
	if len(products) > 0 {
		f.SetCellStyle(sheet, cell(9, 4), cell(9, row-1), st.money)
	}
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "C", "F", 16)
	return f.Write(w)
}

func money(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
