package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartpharma/internal/domain"
	"smartpharma/internal/repos"
	"smartpharma/internal/services"
)

func newChatbot(t *testing.T) (*services.Chatbot, func(string, string, ...productOpt) int64) {
	t.Helper()
	db := memdb(t)
	bot := services.NewChatbot(repos.NewProductRepo(db), services.NewPredictor(), services.ChatbotConfig{
		InsightWindowDays: 7,
		LowStockThreshold: 30,
		ReorderThreshold:  50,
	})
	bot.Now = fixedNow
	return bot, func(name, barcode string, opts ...productOpt) int64 { return insert(t, db, name, barcode, opts...) }
}

func TestChatExpiringReport(t *testing.T) {
	bot, add := newChatbot(t)
	add("Amoxicillin", "AMX001", withExpiry(1), withStock(10))
	add("Ibuprofen", "IBU001", withExpiry(5))

	r := bot.Respond(context.Background(), "  What's EXPIRING?  ")
	assert.Equal(t, services.IntentExpiring, r.Intent)
	assert.Contains(t, r.Text, "Expiry Alert")
	assert.Contains(t, r.Text, "Critical (1)")
	assert.Contains(t, r.Text, "Amoxicillin - 1 days (Stock: 10)")
	assert.Contains(t, r.Text, "Warning (1)")
}

func TestChatExpiringReportsSkipped(t *testing.T) {
	bot, add := newChatbot(t)
	add("Amoxicillin", "AMX001", withExpiry(1))
	bad := add("Mystery", "MYS001", withRawExpiry("2025-02-31"))

	r := bot.Respond(context.Background(), "expiring")
	assert.Contains(t, r.Text, "Amoxicillin")
	require.Len(t, r.Skipped, 1)
	assert.Equal(t, bad, r.Skipped[0].ProductID)

	r = bot.Respond(context.Background(), "hello")
	assert.Empty(t, r.Skipped)
}

func TestChatFallback(t *testing.T) {
	bot, _ := newChatbot(t)
	r := bot.Respond(context.Background(), "xyz nonsense")
	assert.Equal(t, services.IntentFallback, r.Intent)
	assert.Equal(t, services.FallbackText, r.Text)
}

func TestChatDispatchOrder(t *testing.T) {
	bot, add := newChatbot(t)
	add("Aspirin", "ASP001", withStock(1200), withPackaging("cardboard", 8.5))
	add("Metformin", "MET001", withStock(5), withCategory("Diabetes"))
	ctx := context.Background()

	cases := map[string]string{
		"how many products do we have": services.IntentTotal,
		"anything expired?":            services.IntentExpiring,
		"which items are running out":  services.IntentLowStock,
		"low stock inventory":          services.IntentLowStock,
		"inventory status please":      services.IntentInventory,
		"what is popular":              services.IntentDemand,
		"list categories":              services.IntentCategory,
		"what should I reorder":        services.IntentReorder,
		"packaging sustainability":     services.IntentEco,
		"do you have metformin":        services.IntentSearch,
		"hi":                           services.IntentHelp,
		"Hey, what can you do?":        services.IntentHelp,
		"this":                         services.IntentFallback,
		"ship it":                      services.IntentFallback,
	}
	for msg, want := range cases {
		assert.Equal(t, want, bot.Respond(ctx, msg).Intent, msg)
	}

	total := bot.Respond(ctx, "total products")
	assert.Contains(t, total.Text, "Total Stock: 1,205 units")

	eco := bot.Respond(ctx, "eco score")
	assert.Contains(t, eco.Text, "• Cardboard")
}

func TestChatSearch(t *testing.T) {
	bot, add := newChatbot(t)
	add("Metformin 500mg", "MET001", withCategory("Diabetes"))
	add("Aspirin", "ASP001")

	r := bot.Respond(context.Background(), "Do you have METFORMIN?")
	assert.Equal(t, services.IntentSearch, r.Intent)
	assert.Contains(t, r.Text, "Metformin 500mg [MET001]")
	assert.NotContains(t, r.Text, "Aspirin")

	r = bot.Respond(context.Background(), "find insulin")
	assert.Contains(t, r.Text, `No products match "insulin"`)

	assert.Equal(t, "met001", services.SearchTerms("where is the MET001?"))
}

type failingStore struct{ services.ProductStore }

func (failingStore) All(context.Context) ([]domain.Product, error) {
	return nil, errors.New("database is locked")
}

func TestChatStoreErrorBecomesApology(t *testing.T) {
	bot := services.NewChatbot(failingStore{}, services.NewPredictor(), services.ChatbotConfig{})
	r := bot.Respond(context.Background(), "how many products")
	require.Equal(t, services.IntentTotal, r.Intent)
	assert.Contains(t, r.Text, "Sorry")
	assert.NotContains(t, r.Text, "locked")
}
