package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"smartpharma/internal/config"
	"smartpharma/internal/metrics"
	"smartpharma/internal/repos"
	"smartpharma/internal/services"
)

const connKey = "db.conn"

// Env is the process-wide state shared by every handler.
type Env struct {
	Cfg       config.Config
	Pool      *repos.Pool
	Predictor *services.Predictor
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Now       func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// scope holds the services for one request, all bound to that request's connection.
type scope struct {
	Alerts    *services.AlertService
	Dashboard *services.DashboardService
	Inventory *services.InventoryService
	Chatbot   *services.Chatbot
	Products  *repos.ProductRepo
}

func (e *Env) scope(c *fiber.Ctx) *scope {
	conn, _ := c.Locals(connKey).(*sqlx.Conn)
	products := repos.NewProductRepo(conn)
	alerts := &services.AlertService{
		Products: products,
		Policy: services.AlertPolicy{
			ExpiryWindowDays:  e.Cfg.ExpiryWindowDays,
			LowStockThreshold: e.Cfg.LowStockThreshold,
			StockLimit:        e.Cfg.AlertStockLimit,
		},
		Now: e.now,
	}
	chat := services.NewChatbot(products, e.Predictor, services.ChatbotConfig{
		InsightWindowDays: e.Cfg.InsightWindowDays,
		LowStockThreshold: e.Cfg.ChatLowStockThreshold,
		ReorderThreshold:  e.Cfg.ReorderThreshold,
	})
	chat.Now = e.now
	return &scope{
		Alerts: alerts,
		Dashboard: &services.DashboardService{
			Products:          products,
			Predictor:         e.Predictor,
			Alerts:            alerts,
			InsightWindowDays: e.Cfg.InsightWindowDays,
			ReorderThreshold:  e.Cfg.ReorderThreshold,
			Now:               e.now,
		},
		Inventory: &services.InventoryService{
			Products: products,
			Ledger:   repos.NewInventoryRepo(conn),
			Sales:    repos.NewSalesRepo(conn),
			Now:      e.now,
		},
		Chatbot:  chat,
		Products: products,
	}
}

type Deps struct {
	Env              *Env
	DashboardHandler *DashboardHandler
	AlertHandler     *AlertHandler
	ChatHandler      *ChatHandler
	ProductHandler   *ProductHandler
	SalesHandler     *SalesHandler
	ExportHandler    *ExportHandler
	PageHandler      *PageHandler
}

func NewDeps(env *Env) *Deps {
	if env.Predictor == nil {
		env.Predictor = services.NewPredictor()
	}
	return &Deps{
		Env:              env,
		DashboardHandler: &DashboardHandler{env},
		AlertHandler:     &AlertHandler{env},
		ChatHandler:      &ChatHandler{env},
		ProductHandler:   &ProductHandler{env},
		SalesHandler:     &SalesHandler{env},
		ExportHandler:    &ExportHandler{env},
		PageHandler:      &PageHandler{env},
	}
}
