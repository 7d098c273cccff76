package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartpharma/internal/domain"
	"smartpharma/internal/services"
)

func TestPredictedDemandPeakMonths(t *testing.T) {
	p := services.NewPredictor()
	assert.Equal(t, 225, p.PredictedDemand("Analgesics", time.January))
	assert.Equal(t, 150, p.PredictedDemand("Analgesics", time.June))
	assert.Equal(t, 100, p.PredictedDemand("Diabetes", time.January))
	assert.Equal(t, 100, p.PredictedDemand("Dermatology", time.January))
	assert.Equal(t, 165, p.PredictedDemand("Gastric", time.July))
}

func TestConfidenceMonotonicAndCapped(t *testing.T) {
	prev := 0.0
	for stock := 0; stock <= 5000; stock += 50 {
		c := services.Confidence(stock, 150)
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, 95.0)
		prev = c
	}
	assert.Equal(t, 95.0, services.Confidence(100000, 100))
	assert.Equal(t, 60.0, services.Confidence(0, 100))
	assert.Equal(t, 69.9, services.Confidence(100, 100))
}

func TestDemandSortedAndRecommendation(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Metformin", Category: "Diabetes", StockQuantity: 500},
		{ID: 2, Name: "Vitamin D", Category: "Supplements", StockQuantity: 10},
		{ID: 3, Name: "Aspirin", Category: "Analgesics", StockQuantity: 400},
	}
	out := services.NewPredictor().Demand(products, time.March)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"Vitamin D", "Aspirin", "Metformin"}, []string{out[0].Name, out[1].Name, out[2].Name})
	assert.Equal(t, "Reorder", out[0].Recommendation)
	assert.Equal(t, "Maintain", out[1].Recommendation)
}

func TestEcoRatingBoundaries(t *testing.T) {
	assert.Equal(t, "Excellent", services.EcoRating(8.0))
	assert.Equal(t, "Good", services.EcoRating(7.999))
	assert.Equal(t, "Good", services.EcoRating(6.0))
	assert.Equal(t, "Fair", services.EcoRating(4.0))
	assert.Equal(t, "Poor", services.EcoRating(3.999))
}

func TestEcoAnalysisGroupsAndRanks(t *testing.T) {
	products := []domain.Product{
		{PackagingType: "Plastic", EcoScore: 3.5},
		{PackagingType: "Cardboard", EcoScore: 8.5},
		{PackagingType: "Plastic", EcoScore: 4.5},
		{PackagingType: "", EcoScore: 5},
	}
	out := services.EcoAnalysis(products)
	require.Len(t, out, 3)
	assert.Equal(t, "Cardboard", out[0].PackagingType)
	assert.Equal(t, "Excellent", out[0].Rating)
	assert.Equal(t, "unknown", out[1].PackagingType)
	assert.Equal(t, "Plastic", out[2].PackagingType)
	assert.Equal(t, 2, out[2].Count)
	assert.Equal(t, 4.0, out[2].AvgEcoScore)

	assert.Equal(t, 0.0, services.AverageEcoScore(nil))
	assert.Empty(t, services.EcoAnalysis(nil))
}

func TestEcoScoreForPackaging(t *testing.T) {
	assert.Equal(t, 3.5, services.EcoScoreForPackaging("PLASTIC"))
	assert.Equal(t, 9.5, services.EcoScoreForPackaging(" biodegradable "))
	assert.Equal(t, 5.0, services.EcoScoreForPackaging("blister"))
}

func TestReorderSuggestions(t *testing.T) {
	out := services.ReorderSuggestions([]domain.Product{
		{ID: 1, Name: "A", StockQuantity: 5, Price: 0.1},
		{ID: 2, Name: "B", StockQuantity: 30, Price: 12.5},
	})
	require.Len(t, out, 2)
	assert.Equal(t, 10, out[0].SuggestedReorder)
	assert.Equal(t, "high", out[0].Priority)
	assert.Equal(t, 1.0, out[0].EstimatedCost)
	assert.Equal(t, "medium", out[1].Priority)
	assert.Equal(t, 750.0, out[1].EstimatedCost)
}

func TestExpiryInsightsWindow(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "late", ExpiryDate: today.AddDate(0, 0, 6).Format(domain.DateLayout)},
		{ID: 2, Name: "soon", ExpiryDate: today.AddDate(0, 0, 1).Format(domain.DateLayout)},
		{ID: 3, Name: "far", ExpiryDate: today.AddDate(0, 0, 30).Format(domain.DateLayout)},
		{ID: 4, Name: "junk", ExpiryDate: "??"},
	}
	out, skipped := services.ExpiryInsights(products, today, 7)
	require.Len(t, out, 2)
	assert.Equal(t, "soon", out[0].Name)
	assert.Equal(t, domain.SeverityCritical, out[0].RiskLevel)
	assert.Equal(t, 9, out[0].UrgencyScore)
	assert.Equal(t, domain.SeverityWarning, out[1].RiskLevel)
	require.Len(t, skipped, 1)
}

func TestWastePrevented(t *testing.T) {
	assert.Equal(t, 0.9, services.WastePreventedKg(6))
	assert.Equal(t, 0.0, services.WastePreventedKg(0))
}
