package services

import (
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"smartpharma/internal/domain"
)

type SeasonalPattern struct {
	PeakMonths []time.Month
	BaseDemand int
}

var defaultPattern = SeasonalPattern{BaseDemand: 100}

// DefaultSeasonalPatterns is keyed by category exactly as stored.
func DefaultSeasonalPatterns() map[string]SeasonalPattern {
	return map[string]SeasonalPattern{
		"Analgesics":  {PeakMonths: []time.Month{1, 2, 11, 12}, BaseDemand: 150},
		"Antibiotics": {PeakMonths: []time.Month{1, 3, 11}, BaseDemand: 120},
		"Supplements": {PeakMonths: []time.Month{1, 9}, BaseDemand: 200},
		"Diabetes":    {BaseDemand: 100},
		"Gastric":     {PeakMonths: []time.Month{2, 7, 8}, BaseDemand: 110},
	}
}

var packagingEcoScores = map[string]float64{
	"plastic":       3.5,
	"paper":         8.0,
	"glass":         7.5,
	"cardboard":     8.5,
	"metal":         7.0,
	"biodegradable": 9.5,
}

const defaultEcoScore = 5.0

// EcoScoreForPackaging is the score assigned to a new product.
func EcoScoreForPackaging(packaging string) float64 {
	if s, ok := packagingEcoScores[strings.ToLower(strings.TrimSpace(packaging))]; ok {
		return s
	}
	return defaultEcoScore
}

func EcoRating(score float64) string {
	switch {
	case score >= 8:
		return "Excellent"
	case score >= 6:
		return "Good"
	case score >= 4:
		return "Fair"
	default:
		return "Poor"
	}
}

type DemandPrediction struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	CurrentStock    int     `json:"current_stock"`
	PredictedDemand int     `json:"predicted_demand"`
	DemandScore     int     `json:"demand_score"`
	Confidence      float64 `json:"confidence"`
	Recommendation  string  `json:"recommendation"`
}

type PackagingScore struct {
	PackagingType string  `json:"packaging_type"`
	Count         int     `json:"count"`
	AvgEcoScore   float64 `json:"avg_eco_score"`
	Rating        string  `json:"rating"`
	mean          float64
}

type ReorderSuggestion struct {
	ProductID        int64   `json:"product_id"`
	ProductName      string  `json:"product_name"`
	CurrentStock     int     `json:"current_stock"`
	SuggestedReorder int     `json:"suggested_reorder"`
	Priority         string  `json:"priority"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

type ExpiryInsight struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	ExpiryDate   string          `json:"expiry_date"`
	DaysLeft     int             `json:"days_left"`
	Stock        int             `json:"stock"`
	UrgencyScore int             `json:"urgency_score"`
	RiskLevel    domain.Severity `json:"risk_level"`
}

// Predictor holds the static lookup tables behind the demand heuristics.
type Predictor struct {
	Patterns map[string]SeasonalPattern
}

func NewPredictor() *Predictor {
	return &Predictor{Patterns: DefaultSeasonalPatterns()}
}

func (p *Predictor) pattern(category string) SeasonalPattern {
	if pat, ok := p.Patterns[category]; ok {
		return pat
	}
	return defaultPattern
}

// PredictedDemand applies the 1.5x peak multiplier for the given month.
func (p *Predictor) PredictedDemand(category string, month time.Month) int {
	pat := p.pattern(category)
	mult := 1.0
	if slices.Contains(pat.PeakMonths, month) {
		mult = 1.5
	}
	return int(math.Floor(float64(pat.BaseDemand) * mult))
}

// Confidence grows with stock relative to predicted demand and caps at 95.
func Confidence(stock, predicted int) float64 {
	ratio := float64(stock) / float64(predicted+1)
	return round(math.Min(95, 60+ratio*10), 1)
}

func (p *Predictor) Demand(products []domain.Product, month time.Month) []DemandPrediction {
	out := make([]DemandPrediction, 0, len(products))
	for _, prod := range products {
		category := prod.Category
		if category == "" {
			category = "Other"
		}
		predicted := p.PredictedDemand(category, month)
		rec := "Maintain"
		if prod.StockQuantity < predicted {
			rec = "Reorder"
		}
		out = append(out, DemandPrediction{
			ID:              prod.ID,
			Name:            prod.Name,
			Category:        category,
			CurrentStock:    prod.StockQuantity,
			PredictedDemand: predicted,
			DemandScore:     predicted,
			Confidence:      Confidence(prod.StockQuantity, predicted),
			Recommendation:  rec,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PredictedDemand > out[j].PredictedDemand })
	return out
}

// EcoAnalysis groups by packaging type as stored and ranks groups by mean eco-score.
func EcoAnalysis(products []domain.Product) []PackagingScore {
	groups := map[string]stats.Float64Data{}
	var order []string
	for _, prod := range products {
		key := prod.PackagingType
		if key == "" {
			key = "unknown"
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], prod.EcoScore)
	}

	out := make([]PackagingScore, 0, len(groups))
	for _, key := range order {
		scores := groups[key]
		mean, err := stats.Mean(scores)
		if err != nil {
			continue
		}
		out = append(out, PackagingScore{
			PackagingType: key,
			Count:         len(scores),
			AvgEcoScore:   round(mean, 2),
			Rating:        EcoRating(mean),
			mean:          mean,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].mean != out[j].mean {
			return out[i].mean > out[j].mean
		}
		return out[i].PackagingType < out[j].PackagingType
	})
	return out
}

// AverageEcoScore returns 0 for an empty catalogue.
func AverageEcoScore(products []domain.Product) float64 {
	scores := make(stats.Float64Data, 0, len(products))
	for _, p := range products {
		scores = append(scores, p.EcoScore)
	}
	mean, err := stats.Mean(scores)
	if err != nil {
		return 0
	}
	return round(mean, 2)
}

func ReorderSuggestions(lowStock []domain.Product) []ReorderSuggestion {
	out := make([]ReorderSuggestion, 0, len(lowStock))
	for _, p := range lowStock {
		suggested := p.StockQuantity * 2
		priority := "medium"
		if p.StockQuantity < 20 {
			priority = "high"
		}
		cost, _ := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(suggested))).Round(2).Float64()
		out = append(out, ReorderSuggestion{
			ProductID:        p.ID,
			ProductName:      p.Name,
			CurrentStock:     p.StockQuantity,
			SuggestedReorder: suggested,
			Priority:         priority,
			EstimatedCost:    cost,
		})
	}
	return out
}

// ExpiryInsights classifies products expiring within window days, soonest first.
func ExpiryInsights(products []domain.Product, today time.Time, window int) ([]ExpiryInsight, []Skipped) {
	risks, skipped := ClassifyAll(products, today)
	out := make([]ExpiryInsight, 0, len(risks))
	for _, r := range risks {
		if r.DaysLeft > window {
			continue
		}
		out = append(out, ExpiryInsight{
			ID:           r.Product.ID,
			Name:         r.Product.Name,
			Category:     r.Product.Category,
			ExpiryDate:   r.Expiry.Format(domain.DateLayout),
			DaysLeft:     r.DaysLeft,
			Stock:        r.Product.StockQuantity,
			UrgencyScore: r.Urgency,
			RiskLevel:    r.Severity,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out, skipped
}

// WastePreventedKg is a flat 0.15 kg per tracked product.
func WastePreventedKg(productCount int) float64 {
	return round(float64(productCount)*0.15, 2)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
