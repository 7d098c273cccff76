package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"smartpharma/internal/domain"
)

const (
	IntentTotal     = "total"
	IntentExpiring  = "expiring"
	IntentLowStock  = "low_stock"
	IntentInventory = "inventory"
	IntentDemand    = "demand"
	IntentCategory  = "category"
	IntentReorder   = "reorder"
	IntentEco       = "eco"
	IntentSearch    = "search"
	IntentHelp      = "help"
	IntentFallback  = "fallback"
)

const (
	rule = "━━━━━━━━━━━━━━━━━━"

	FallbackText = "🤔 I didn't understand that. Try asking:\n" +
		"• How many products?\n" +
		"• What's expiring?\n" +
		"• Low stock items?\n" +
		"• Inventory status?\n" +
		"• High demand products?\n" +
		"• Category information?\n" +
		"• Reorder suggestions?\n" +
		"• Find aspirin"

	helpText = "👋 Welcome to SmartPharma Assistant\n\n" +
		"I can help you with:\n\n" +
		"📦 Inventory:\n  \"How many products?\"\n  \"What's expiring?\"\n  \"Low stock items?\"\n\n" +
		"📊 Analytics:\n  \"Inventory status?\"\n  \"Category information?\"\n  \"High demand products?\"\n\n" +
		"💰 Business:\n  \"Reorder suggestions?\"\n  \"Eco score analysis?\"\n\n" +
		"🔎 Search:\n  \"Do you have amoxicillin?\""

	apologyText = "❌ Sorry, I couldn't fetch inventory data right now. Please try again shortly."
)

var searchStopWords = map[string]bool{
	"search": true, "find": true, "look": true, "up": true, "do": true, "you": true,
	"have": true, "where": true, "is": true, "are": true, "the": true, "a": true,
	"an": true, "for": true, "any": true, "some": true, "me": true, "please": true,
	"product": true, "products": true, "in": true, "stock": true, "of": true,
}

// Reply is the chatbot's answer plus the intent that produced it.
type Reply struct {
	Intent string
	Text   string
	// Skipped lists products a report had to leave out.
	Skipped []Skipped
}

// ChatbotConfig holds the thresholds each report uses.
type ChatbotConfig struct {
	InsightWindowDays int
	LowStockThreshold int
	ReorderThreshold  int
	SearchLimit       int
}

type Chatbot struct {
	Products  ProductStore
	Predictor *Predictor
	Config    ChatbotConfig
	Now       func() time.Time

	printer *message.Printer
	title   cases.Caser
	skipped []Skipped
}

func NewChatbot(products ProductStore, predictor *Predictor, cfg ChatbotConfig) *Chatbot {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	return &Chatbot{
		Products:  products,
		Predictor: predictor,
		Config:    cfg,
		Now:       time.Now,
		printer:   message.NewPrinter(language.English),
		title:     cases.Title(language.English),
	}
}

type intent struct {
	name  string
	match func(msg string) bool
	run   func(c *Chatbot, ctx context.Context, msg string) (string, error)
}

func containsAny(words ...string) func(string) bool {
	return func(msg string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
}

func isGreeting(msg string) bool {
	if containsAny("what can you", "can you help")(msg) {
		return true
	}
	for _, w := range strings.FieldsFunc(msg, func(r rune) bool { return !unicode.IsLetter(r) }) {
		switch w {
		case "help", "hello", "hi", "hey":
			return true
		}
	}
	return false
}

// intents is evaluated in order; the first match answers.
var intents = []intent{
	{IntentTotal, containsAny("total products", "how many products", "total medicines", "products available"), (*Chatbot).totalProducts},
	{IntentExpiring, containsAny("expiring", "expire", "expired", "about to expire"), (*Chatbot).expiring},
	{IntentLowStock, containsAny("low stock", "stock low", "running out", "inventory low"), (*Chatbot).lowStock},
	{IntentInventory, containsAny("inventory", "stock status", "inventory status"), (*Chatbot).inventoryStatus},
	{IntentDemand, containsAny("demand", "high demand", "popular", "bestseller"), (*Chatbot).demand},
	{IntentCategory, containsAny("category", "categories", "types"), (*Chatbot).categories},
	{IntentReorder, containsAny("reorder", "order", "need to order"), (*Chatbot).reorder},
	{IntentEco, containsAny("eco", "sustainable", "packaging", "environmental"), (*Chatbot).eco},
	{IntentSearch, containsAny("search", "find", "look up", "do you have", "where is"), (*Chatbot).search},
	{IntentHelp, isGreeting, func(*Chatbot, context.Context, string) (string, error) { return helpText, nil }},
}

// Respond never returns an error; failed lookups turn into an apology.
func (c *Chatbot) Respond(ctx context.Context, raw string) Reply {
	msg := strings.ToLower(strings.TrimSpace(raw))
	c.skipped = nil
	for _, in := range intents {
		if !in.match(msg) {
			continue
		}
		text, err := in.run(c, ctx, msg)
		if err != nil {
			return Reply{Intent: in.name, Text: apologyText, Skipped: c.skipped}
		}
		return Reply{Intent: in.name, Text: text, Skipped: c.skipped}
	}
	return Reply{Intent: IntentFallback, Text: FallbackText}
}

func (c *Chatbot) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Chatbot) totalProducts(ctx context.Context, _ string) (string, error) {
	products, err := c.Products.All(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "📊 No products in database yet.", nil
	}
	total := 0
	for _, p := range products {
		total += p.StockQuantity
	}
	byStock := sortedByStock(products, true)

	var b strings.Builder
	b.WriteString("📦 Inventory Overview\n" + rule + "\n")
	c.printer.Fprintf(&b, "Total Products: %d\nTotal Stock: %d units\n\nTop 5 Products by Stock:\n", len(products), total)
	for _, p := range head(byStock, 5) {
		c.printer.Fprintf(&b, "• %s: %d units\n", p.Name, p.StockQuantity)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Chatbot) expiring(ctx context.Context, _ string) (string, error) {
	now := c.now()
	products, err := c.Products.ExpiringBy(ctx, cutoffDate(now, c.Config.InsightWindowDays))
	if err != nil {
		return "", err
	}
	risks, skipped := ClassifyAll(products, now)
	c.skipped = append(c.skipped, skipped...)
	if len(risks) == 0 {
		return fmt.Sprintf("✅ Expiry Status\nNo products expiring in the next %d days. Good stock health!", c.Config.InsightWindowDays), nil
	}

	var critical, warning []ExpiryRisk
	for _, r := range risks {
		if r.Severity == domain.SeverityCritical {
			critical = append(critical, r)
		} else {
			warning = append(warning, r)
		}
	}
	line := func(b *strings.Builder, r ExpiryRisk) {
		when := fmt.Sprintf("%d days", r.DaysLeft)
		if r.DaysLeft < 0 {
			when = "EXPIRED"
		}
		c.printer.Fprintf(b, "• %s - %s (Stock: %d)\n", r.Product.Name, when, r.Product.StockQuantity)
	}

	var b strings.Builder
	b.WriteString("⏰ Expiry Alert\n" + rule + "\n")
	if len(critical) > 0 {
		fmt.Fprintf(&b, "\n🔴 Critical (%d):\n", len(critical))
		for _, r := range head(critical, 5) {
			line(&b, r)
		}
	}
	if len(warning) > 0 {
		fmt.Fprintf(&b, "\n🟡 Warning (%d):\n", len(warning))
		for _, r := range head(warning, 5) {
			line(&b, r)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Chatbot) lowStock(ctx context.Context, _ string) (string, error) {
	low, err := c.Products.LowStock(ctx, c.Config.LowStockThreshold)
	if err != nil {
		return "", err
	}
	if len(low) == 0 {
		return "✅ Stock Status\nAll products have healthy stock levels!", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📉 Low Stock Alert (%d items)\n%s\n", len(low), rule)
	for _, p := range head(sortedByStock(low, false), 10) {
		status := "🟡 LOW"
		if StockSeverity(p.StockQuantity) == domain.SeverityCritical {
			status = "🔴 CRITICAL"
		}
		expiry := p.ExpiryDate
		if expiry == "" {
			expiry = "N/A"
		}
		c.printer.Fprintf(&b, "\n%s: %s\n  Stock: %d units\n  Expiry: %s\n", status, p.Name, p.StockQuantity, expiry)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Chatbot) inventoryStatus(ctx context.Context, _ string) (string, error) {
	products, err := c.Products.All(ctx)
	if err != nil {
		return "", err
	}
	expiring, err := c.Products.ExpiringBy(ctx, cutoffDate(c.now(), c.Config.InsightWindowDays))
	if err != nil {
		return "", err
	}
	low, err := c.Products.LowStock(ctx, c.Config.LowStockThreshold)
	if err != nil {
		return "", err
	}
	total := 0
	for _, p := range products {
		total += p.StockQuantity
	}

	var b strings.Builder
	b.WriteString("📊 Inventory Status Report\n" + rule + "\n")
	c.printer.Fprintf(&b, "📦 Total Products: %d\n📊 Total Stock Units: %d\n🌱 Avg Eco Score: %.1f/10\n\n",
		len(products), total, AverageEcoScore(products))
	c.printer.Fprintf(&b, "⚠️ Issues:\n🔴 Expiring (%d days): %d\n📉 Low Stock: %d\n\n", c.Config.InsightWindowDays, len(expiring), len(low))
	b.WriteString("💡 Recommendations:\n" +
		"1. Review expiring products - may need disposal\n" +
		"2. Reorder low stock items immediately\n" +
		"3. Check packaging sustainability")
	return b.String(), nil
}

func (c *Chatbot) demand(ctx context.Context, _ string) (string, error) {
	products, err := c.Products.All(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "📊 No demand data available", nil
	}
	var b strings.Builder
	b.WriteString("🔥 High Demand Products\n" + rule + "\n")
	for _, d := range head(c.Predictor.Demand(products, c.now().Month()), 5) {
		c.printer.Fprintf(&b, "\n• %s\n  Category: %s\n  Stock: %d units\n  Predicted demand: %d (%s)\n",
			d.Name, d.Category, d.CurrentStock, d.PredictedDemand, d.Recommendation)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Chatbot) categories(ctx context.Context, _ string) (string, error) {
	products, err := c.Products.All(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "📋 No products in database", nil
	}
	counts := map[string]int{}
	var names []string
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = "Other"
		}
		if counts[cat] == 0 {
			names = append(names, cat)
		}
		counts[cat]++
	}
	sort.SliceStable(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	b.WriteString("📋 Product Categories\n" + rule + "\n\n")
	for _, name := range names {
		c.printer.Fprintf(&b, "• %s: %d products\n", name, counts[name])
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Chatbot) reorder(ctx context.Context, _ string) (string, error) {
	low, err := c.Products.LowStock(ctx, c.Config.ReorderThreshold)
	if err != nil {
		return "", err
	}
	if len(low) == 0 {
		return "✅ All products have sufficient stock. No reorder needed!", nil
	}

	var b strings.Builder
	b.WriteString("📋 Reorder Suggestions\n" + rule + "\n")
	total := decimal.Zero
	for _, s := range ReorderSuggestions(head(sortedByStock(low, false), 10)) {
		cost := decimal.NewFromFloat(s.EstimatedCost)
		total = total.Add(cost)
		c.printer.Fprintf(&b, "\n• %s\n  Current: %d units\n  Order: %d units\n  Est. Cost: $%s\n",
			s.ProductName, s.CurrentStock, s.SuggestedReorder, cost.StringFixed(2))
	}
	fmt.Fprintf(&b, "\n📊 Total Estimated Cost: $%s", total.StringFixed(2))
	return b.String(), nil
}

func (c *Chatbot) eco(ctx context.Context, _ string) (string, error) {
	products, err := c.Products.All(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "📊 No eco data available", nil
	}
	var b strings.Builder
	b.WriteString("🌱 Eco-Score & Packaging Analysis\n" + rule + "\n")
	for _, g := range EcoAnalysis(products) {
		c.printer.Fprintf(&b, "\n• %s\n  Products: %d\n  Eco Score: %.1f/10 (%s)\n",
			c.title.String(g.PackagingType), g.Count, g.AvgEcoScore, g.Rating)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// SearchTerms drops stop words and punctuation from a chat message.
func SearchTerms(msg string) string {
	words := strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	kept := words[:0]
	for _, w := range words {
		if !searchStopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func (c *Chatbot) search(ctx context.Context, msg string) (string, error) {
	q := SearchTerms(msg)
	if q == "" {
		return "🔎 What should I look for? Try \"find aspirin\" or \"do you have ASP001?\"", nil
	}
	found, err := c.Products.Search(ctx, q, c.Config.SearchLimit)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return fmt.Sprintf("🔎 No products match %q.", q), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 Search results for %q (%d)\n%s\n", q, len(found), rule)
	for _, p := range found {
		c.printer.Fprintf(&b, "\n• %s [%s]\n  Category: %s\n  Stock: %d units\n  Expiry: %s\n",
			p.Name, p.Barcode, p.Category, p.StockQuantity, p.ExpiryDate)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func sortedByStock(products []domain.Product, desc bool) []domain.Product {
	out := append([]domain.Product(nil), products...)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].StockQuantity > out[j].StockQuantity
		}
		return out[i].StockQuantity < out[j].StockQuantity
	})
	return out
}
