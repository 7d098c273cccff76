package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartpharma/internal/domain"
)

var at = time.Date(2025, time.March, 10, 14, 5, 9, 0, time.UTC)

func TestFilenames(t *testing.T) {
	assert.Equal(t, "Sales_Report_20250310_140509.xlsx", SalesReportFilename(at))
	assert.Equal(t, "Inventory_20250310.csv", InventoryCSVFilename(at))
	assert.Equal(t, "Inventory_20250310.xlsx", InventoryXLSXFilename(at))
}

func TestCellNames(t *testing.T) {
	assert.Equal(t, "A1", cell(1, 1))
	assert.Equal(t, "Z3", cell(26, 3))
	assert.Equal(t, "AA10", cell(27, 10))
	assert.Equal(t, "AZ2", cell(52, 2))
}

func TestSalesXLSX(t *testing.T) {
	lines := []domain.SaleLine{
		{Time: "09:30:00", ProductName: "Aspirin", Barcode: "ASP001", Quantity: 3, UnitPrice: 2.5, Amount: 7.5},
		{Time: "10:00:00", ProductName: "Metformin", Barcode: "MET001", Quantity: 1, UnitPrice: 8.75, Amount: 8.75},
	}
	var buf bytes.Buffer
	require.NoError(t, SalesXLSX(&buf, at, lines, domain.SalesStats{TotalTransactions: 2, TotalRevenue: 16.25, TotalUnits: 4}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	sheet := "Sales Report"
	assert.Equal(t, "SmartPharma Daily Sales Report", f.GetCellValue(sheet, "A1"))
	assert.Equal(t, "Product", f.GetCellValue(sheet, "B4"))
	assert.Equal(t, "Aspirin", f.GetCellValue(sheet, "B5"))
	assert.Equal(t, "MET001", f.GetCellValue(sheet, "C6"))
	assert.Equal(t, "Summary", f.GetCellValue(sheet, "A8"))
	assert.Equal(t, "Total Transactions", f.GetCellValue(sheet, "A9"))
	assert.Equal(t, "4", f.GetCellValue(sheet, "B10"))
}

func TestSalesXLSXEmptyDay(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SalesXLSX(&buf, at, nil, domain.SalesStats{}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Summary", f.GetCellValue("Sales Report", "A6"))
}

func TestInventoryCSVOneRowPerProduct(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Aspirin, 500mg", Barcode: "ASP001", StockQuantity: 150, Price: 5.99},
		{ID: 2, Name: "Vitamin D3", Barcode: "VIT001", StockQuantity: 300, Price: 9.99},
	}
	var buf bytes.Buffer
	require.NoError(t, InventoryCSV(&buf, products))

	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "id,name,category,barcode"))

	var rows []*InventoryRow
	require.NoError(t, gocsv.UnmarshalString(text, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Aspirin, 500mg", rows[0].Name)
	assert.Equal(t, 300, rows[1].StockQuantity)
}

func TestInventoryXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InventoryXLSX(&buf, at, []domain.Product{{ID: 7, Name: "Omeprazole", StockQuantity: 220}}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Omeprazole", f.GetCellValue("Inventory", "B4"))
	assert.Equal(t, "220", f.GetCellValue("Inventory", "H4"))
}
