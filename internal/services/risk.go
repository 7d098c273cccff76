package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"smartpharma/internal/domain"
)

var errMissingExpiry = errors.New("missing expiry date")

// ExpiryRisk classifies one product against a reference day.
type ExpiryRisk struct {
	Product  domain.Product
	Expiry   time.Time
	DaysLeft int
	Severity domain.Severity
	Urgency  int
}

// Skipped records a product left out of a batch computation.
type Skipped struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseExpiry accepts any common date spelling and returns the calendar day.
func ParseExpiry(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errMissingExpiry
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry date %q: %w", raw, err)
	}
	return day(t), nil
}

// DaysUntil counts whole calendar days from today to expiry; negative once expired.
func DaysUntil(expiry, today time.Time) int {
	return int(day(expiry).Sub(day(today)) / (24 * time.Hour))
}

// ExpirySeverity uses the two-tier scheme everywhere: under two days is critical.
func ExpirySeverity(daysLeft int) domain.Severity {
	if daysLeft < 2 {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}

// UrgencyScore ranks expiring items; it does not drive severity.
func UrgencyScore(daysLeft int) int {
	return max(0, 10-daysLeft)
}

func IsLowStock(qty, threshold int) bool { return qty < threshold }

func StockSeverity(qty int) domain.Severity {
	if qty < 10 {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}

func ClassifyExpiry(p domain.Product, today time.Time) (ExpiryRisk, error) {
	exp, err := ParseExpiry(p.ExpiryDate)
	if err != nil {
		return ExpiryRisk{}, err
	}
	days := DaysUntil(exp, today)
	return ExpiryRisk{
		Product:  p,
		Expiry:   exp,
		DaysLeft: days,
		Severity: ExpirySeverity(days),
		Urgency:  UrgencyScore(days),
	}, nil
}

// ClassifyAll folds a batch into classified risks plus the items it had to skip.
// Order of products is preserved.
func ClassifyAll(products []domain.Product, today time.Time) ([]ExpiryRisk, []Skipped) {
	risks := make([]ExpiryRisk, 0, len(products))
	var skipped []Skipped
	for _, p := range products {
		r, err := ClassifyExpiry(p, today)
		if err != nil {
			skipped = append(skipped, Skipped{ProductID: p.ID, Name: p.Name, Reason: err.Error()})
			continue
		}
		risks = append(risks, r)
	}
	return risks, skipped
}

// cutoffDate is the last expiry day (inclusive) that falls inside window.
func cutoffDate(today time.Time, window int) string {
	return day(today).AddDate(0, 0, window).Format(domain.DateLayout)
}
