package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartpharma/internal/domain"
)

var (
	expiryActions = []string{
		"Review current stock levels",
		"Consider promotional discounts",
		"Plan disposal if necessary",
		"Update inventory records",
	}
	stockActions = []string{
		"Place order for new stock",
		"Monitor sales trends",
		"Check supplier availability",
		"Update reorder levels",
	}
)

type AlertPolicy struct {
	ExpiryWindowDays  int
	LowStockThreshold int
	// StockLimit caps stock findings in filtered output; 0 means no cap.
	StockLimit int
}

type AlertFilter struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

// Normalize lowercases both fields and maps empty to "all".
func (f AlertFilter) Normalize() (AlertFilter, error) {
	t := strings.ToLower(strings.TrimSpace(f.Type))
	s := strings.ToLower(strings.TrimSpace(f.Severity))
	if t == "" {
		t = "all"
	}
	if s == "" {
		s = "all"
	}
	switch t {
	case "all", string(domain.AlertExpiry), string(domain.AlertStock):
	default:
		return f, domain.NewError(domain.CodeValidation, "invalid alert type %q", f.Type)
	}
	switch s {
	case "all", string(domain.SeverityCritical), string(domain.SeverityWarning), string(domain.SeverityHigh):
	default:
		return f, domain.NewError(domain.CodeValidation, "invalid severity %q", f.Severity)
	}
	return AlertFilter{Type: t, Severity: s}, nil
}

func (f AlertFilter) match(a domain.Alert) bool {
	if f.Type != "all" && string(a.Type) != f.Type {
		return false
	}
	if f.Severity != "all" && string(a.Severity) != f.Severity {
		return false
	}
	return true
}

type AlertList struct {
	Alerts        []domain.Alert `json:"alerts"`
	Count         int            `json:"count"`
	CriticalCount int            `json:"critical_count"`
	WarningCount  int            `json:"warning_count"`
	Skipped       []Skipped      `json:"-"`
}

type AlertDetail struct {
	AlertID            int              `json:"alert_id"`
	Type               domain.AlertType `json:"type"`
	Severity           domain.Severity  `json:"severity"`
	ProductName        string           `json:"product_name"`
	ProductID          int64            `json:"product_id"`
	FullDetails        ProductSnapshot  `json:"full_details"`
	RecommendedActions []string         `json:"recommended_actions"`
	Timestamp          time.Time        `json:"timestamp"`
}

type ProductSnapshot struct {
	domain.Product
	DaysUntilExpiry *int `json:"days_until_expiry,omitempty"`
}

type AlertService struct {
	Products ProductStore
	Policy   AlertPolicy
	Now      func() time.Time
}

func (s *AlertService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// collect builds the unranked findings, expiry first, with 1-based ids.
func (s *AlertService) collect(ctx context.Context) ([]domain.Alert, []Skipped, error) {
	now := s.now()
	expiring, err := s.Products.ExpiringBy(ctx, cutoffDate(now, s.Policy.ExpiryWindowDays))
	if err != nil {
		return nil, nil, err
	}
	low, err := s.Products.LowStock(ctx, s.Policy.LowStockThreshold)
	if err != nil {
		return nil, nil, err
	}

	risks, skipped := ClassifyAll(expiring, now)
	alerts := make([]domain.Alert, 0, len(risks)+len(low))
	for _, r := range risks {
		alerts = append(alerts, domain.Alert{
			ID:             len(alerts) + 1,
			Type:           domain.AlertExpiry,
			Severity:       r.Severity,
			Product:        r.Product.Name,
			ProductID:      r.Product.ID,
			Message:        fmt.Sprintf("Expires in %d days (on %s)", r.DaysLeft, r.Expiry.Format(domain.DateLayout)),
			Details:        details(r.Product),
			Timestamp:      now,
			ActionRequired: true,
		})
	}
	for _, p := range low {
		if !IsLowStock(p.StockQuantity, s.Policy.LowStockThreshold) {
			continue
		}
		alerts = append(alerts, domain.Alert{
			ID:             len(alerts) + 1,
			Type:           domain.AlertStock,
			Severity:       StockSeverity(p.StockQuantity),
			Product:        p.Name,
			ProductID:      p.ID,
			Message:        fmt.Sprintf("Stock low: %d units remaining", p.StockQuantity),
			Details:        details(p),
			Timestamp:      now,
			ActionRequired: true,
		})
	}
	return alerts, skipped, nil
}

func details(p domain.Product) domain.AlertDetails {
	return domain.AlertDetails{
		Barcode:      p.Barcode,
		Category:     p.Category,
		ExpiryDate:   p.ExpiryDate,
		CurrentStock: p.StockQuantity,
		Price:        "$" + decimal.NewFromFloat(p.Price).StringFixed(2),
		Packaging:    p.PackagingType,
	}
}

// Rank sorts by severity rank, then timestamp; ties keep insertion order.
func Rank(alerts []domain.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].Timestamp.Before(alerts[j].Timestamp)
	})
}

func summarize(alerts []domain.Alert, skipped []Skipped) AlertList {
	out := AlertList{Alerts: alerts, Count: len(alerts), Skipped: skipped}
	for _, a := range alerts {
		switch a.Severity {
		case domain.SeverityCritical:
			out.CriticalCount++
		case domain.SeverityWarning:
			out.WarningCount++
		}
	}
	return out
}

func (s *AlertService) List(ctx context.Context) (AlertList, error) {
	alerts, skipped, err := s.collect(ctx)
	if err != nil {
		return AlertList{}, err
	}
	Rank(alerts)
	return summarize(alerts, skipped), nil
}

// Filter applies f before ranking and caps stock findings afterwards.
func (s *AlertService) Filter(ctx context.Context, f AlertFilter) (AlertList, error) {
	f, err := f.Normalize()
	if err != nil {
		return AlertList{}, err
	}
	alerts, skipped, err := s.collect(ctx)
	if err != nil {
		return AlertList{}, err
	}

	kept := alerts[:0]
	stock := 0
	for _, a := range alerts {
		if !f.match(a) {
			continue
		}
		if a.Type == domain.AlertStock {
			if s.Policy.StockLimit > 0 && stock >= s.Policy.StockLimit {
				continue
			}
			stock++
		}
		kept = append(kept, a)
	}
	Rank(kept)
	return summarize(kept, skipped), nil
}

func (s *AlertService) Detail(ctx context.Context, id int) (AlertDetail, error) {
	alerts, _, err := s.collect(ctx)
	if err != nil {
		return AlertDetail{}, err
	}
	for _, a := range alerts {
		if a.ID != id {
			continue
		}
		p, err := s.Products.ByID(ctx, a.ProductID)
		if err != nil {
			return AlertDetail{}, err
		}
		snap := ProductSnapshot{Product: p}
		actions := stockActions
		if a.Type == domain.AlertExpiry {
			actions = expiryActions
			if exp, err := ParseExpiry(p.ExpiryDate); err == nil {
				d := DaysUntil(exp, s.now())
				snap.DaysUntilExpiry = &d
			}
		}
		return AlertDetail{
			AlertID:            a.ID,
			Type:               a.Type,
			Severity:           a.Severity,
			ProductName:        a.Product,
			ProductID:          a.ProductID,
			FullDetails:        snap,
			RecommendedActions: append([]string(nil), actions...),
			Timestamp:          a.Timestamp,
		}, nil
	}
	return AlertDetail{}, domain.NewError(domain.CodeNotFound, "alert %d not found", id)
}

// Dismiss acknowledges an alert. Nothing is persisted, so it is idempotent for any id.
func (s *AlertService) Dismiss(_ context.Context, id int) error {
	return nil
}
