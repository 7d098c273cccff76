package services

import (
	"context"
	"time"

	"smartpharma/internal/domain"
)

const (
	dashboardExpiringLimit = 5
	dashboardDemandLimit   = 5
	dashboardProductLimit  = 10
	insightLimit           = 6
)

type DashboardMetrics struct {
	TotalProducts    int     `json:"total_products"`
	TotalStock       int     `json:"total_stock"`
	AvgEcoScore      float64 `json:"avg_eco_score"`
	ExpiringCount    int     `json:"expiring_count"`
	WastePreventedKg float64 `json:"waste_prevented_kg"`
}

type Dashboard struct {
	Metrics      DashboardMetrics   `json:"metrics"`
	ExpiringSoon []domain.Alert     `json:"expiring_soon"`
	HighDemand   []DemandPrediction `json:"high_demand"`
	Products     []domain.Product   `json:"products"`
	Skipped      []Skipped          `json:"-"`
}

type Insights struct {
	ExpiryInsights    []ExpiryInsight    `json:"expiry_insights"`
	DemandInsights    []DemandPrediction `json:"demand_insights"`
	WastePreventedKg  float64            `json:"waste_prevented_kg"`
	AvgEcoScore       float64            `json:"avg_eco_score"`
	PackagingAnalysis []PackagingScore   `json:"packaging_analysis"`
	Skipped           []Skipped          `json:"-"`
}

// DashboardService assembles the read-only summary views.
type DashboardService struct {
	Products          ProductStore
	Predictor         *Predictor
	Alerts            *AlertService
	InsightWindowDays int
	ReorderThreshold  int
	Now               func() time.Time
}

func (s *DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DashboardService) Dashboard(ctx context.Context) (Dashboard, error) {
	products, err := s.Products.All(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	list, err := s.Alerts.Filter(ctx, AlertFilter{Type: string(domain.AlertExpiry)})
	if err != nil {
		return Dashboard{}, err
	}

	total := 0
	for _, p := range products {
		total += p.StockQuantity
	}
	demand := s.Predictor.Demand(products, s.now().Month())

	return Dashboard{
		Metrics: DashboardMetrics{
			TotalProducts:    len(products),
			TotalStock:       total,
			AvgEcoScore:      AverageEcoScore(products),
			ExpiringCount:    list.Count,
			WastePreventedKg: WastePreventedKg(len(products)),
		},
		ExpiringSoon: head(list.Alerts, dashboardExpiringLimit),
		HighDemand:   head(demand, dashboardDemandLimit),
		Products:     head(products, dashboardProductLimit),
		Skipped:      list.Skipped,
	}, nil
}

func (s *DashboardService) Insights(ctx context.Context) (Insights, error) {
	products, err := s.Products.All(ctx)
	if err != nil {
		return Insights{}, err
	}
	now := s.now()
	expiring, err := s.Products.ExpiringBy(ctx, cutoffDate(now, s.InsightWindowDays))
	if err != nil {
		return Insights{}, err
	}
	expiry, skipped := ExpiryInsights(expiring, now, s.InsightWindowDays)

	return Insights{
		ExpiryInsights:    head(expiry, insightLimit),
		DemandInsights:    head(s.Predictor.Demand(products, now.Month()), insightLimit),
		WastePreventedKg:  WastePreventedKg(len(products)),
		AvgEcoScore:       AverageEcoScore(products),
		PackagingAnalysis: EcoAnalysis(products),
		Skipped:           skipped,
	}, nil
}

func (s *DashboardService) Reorder(ctx context.Context) ([]ReorderSuggestion, error) {
	low, err := s.Products.LowStock(ctx, s.ReorderThreshold)
	if err != nil {
		return nil, err
	}
	return ReorderSuggestions(low), nil
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	if items == nil {
		return []T{}
	}
	return items
}
