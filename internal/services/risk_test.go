package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartpharma/internal/domain"
	"smartpharma/internal/services"
)

func TestExpirySeverity(t *testing.T) {
	cases := []struct {
		days int
		want domain.Severity
	}{
		{-30, domain.SeverityCritical},
		{-1, domain.SeverityCritical},
		{0, domain.SeverityCritical},
		{1, domain.SeverityCritical},
		{2, domain.SeverityWarning},
		{7, domain.SeverityWarning},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, services.ExpirySeverity(tc.days), "days=%d", tc.days)
	}
}

func TestUrgencyScoreClamped(t *testing.T) {
	assert.Equal(t, 0, services.UrgencyScore(10))
	assert.Equal(t, 0, services.UrgencyScore(45))
	assert.Equal(t, 9, services.UrgencyScore(1))
	assert.Equal(t, 12, services.UrgencyScore(-2))
	for d := -5; d < 30; d++ {
		assert.Equal(t, max(0, 10-d), services.UrgencyScore(d))
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	exp := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, services.DaysUntil(exp, now))
	assert.Equal(t, -1, services.DaysUntil(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), now))
}

func TestParseExpiryFormats(t *testing.T) {
	for _, raw := range []string{"2025-03-12", "2025/03/12", "03/12/2025", "March 12, 2025"} {
		got, err := services.ParseExpiry(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "2025-03-12", got.Format(domain.DateLayout), raw)
	}
	_, err := services.ParseExpiry("")
	assert.Error(t, err)
	_, err = services.ParseExpiry("not a date")
	assert.Error(t, err)
}

func TestClassifyAllSkipsBadDates(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "ok", ExpiryDate: "2025-03-11"},
		{ID: 2, Name: "bad", ExpiryDate: "soon"},
		{ID: 3, Name: "expired", ExpiryDate: "2025-03-01"},
		{ID: 4, Name: "missing"},
	}
	risks, skipped := services.ClassifyAll(products, today)

	require.Len(t, risks, 2)
	assert.Equal(t, int64(1), risks[0].Product.ID)
	assert.Equal(t, 1, risks[0].DaysLeft)
	assert.Equal(t, domain.SeverityCritical, risks[1].Severity)
	assert.Equal(t, -9, risks[1].DaysLeft)

	require.Len(t, skipped, 2)
	assert.Equal(t, int64(2), skipped[0].ProductID)
	assert.Equal(t, "missing", skipped[1].Name)
}

func TestStockSeverity(t *testing.T) {
	assert.True(t, services.IsLowStock(19, 20))
	assert.False(t, services.IsLowStock(20, 20))
	assert.Equal(t, domain.SeverityCritical, services.StockSeverity(9))
	assert.Equal(t, domain.SeverityWarning, services.StockSeverity(10))
}
