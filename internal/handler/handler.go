// Package handler exposes the aggregation, quote, and alert services over
// HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AkhilBod/portfolioAdvisor/internal/alerts"
	"github.com/AkhilBod/portfolioAdvisor/internal/cache"
	"github.com/AkhilBod/portfolioAdvisor/internal/config"
	"github.com/AkhilBod/portfolioAdvisor/internal/metrics"
	"github.com/AkhilBod/portfolioAdvisor/internal/news"
	"github.com/AkhilBod/portfolioAdvisor/internal/preview"
	"github.com/AkhilBod/portfolioAdvisor/internal/stocks"
)

// NewsProvider is what the handler needs from the aggregation service.
type NewsProvider interface {
	GetComprehensiveNews(ctx context.Context, symbols []string, limit int) []news.Item
}

// QuoteProvider is what the handler needs from the quote service.
type QuoteProvider interface {
	GetQuotes(ctx context.Context, symbols []string) []stocks.Quote
	Headlines(ctx context.Context, symbol string, limit int) ([]news.Item, error)
}

type Handler struct {
	cfg      *config.Config
	news     NewsProvider
	quotes   QuoteProvider
	alerts   *alerts.Service
	enricher *preview.Enricher
	cache    *cache.Cache
	metrics  *metrics.Metrics
}

func New(cfg *config.Config, newsProvider NewsProvider, quoteProvider QuoteProvider, alertService *alerts.Service, enricher *preview.Enricher, responseCache *cache.Cache, m *metrics.Metrics) *Handler {
	if m == nil {
		m = metrics.Global
	}
	return &Handler{
		cfg:      cfg,
		news:     newsProvider,
		quotes:   quoteProvider,
		alerts:   alertService,
		enricher: enricher,
		cache:    responseCache,
		metrics:  m,
	}
}

// Register wires all routes onto the router.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/health", h.health)
	router.GET("/metrics", h.stats)

	api := router.Group("/api")
	{
		api.GET("/news", h.getNews)
		api.GET("/stocks", h.getStocks)
		api.GET("/stocks/:symbol/news", h.getStockNews)

		api.GET("/alerts", h.listAlerts)
		api.POST("/alerts", h.createAlert)
		api.DELETE("/alerts/:id", h.deleteAlert)
		api.POST("/alerts/check", h.checkAlerts)
		api.GET("/alerts/settings", h.getSettings)
		api.PUT("/alerts/settings", h.updateSettings)
	}
}

type newsResponse struct {
	News      []news.Item     `json:"news"`
	Sources   map[string]bool `json:"sources"`
	Timestamp time.Time       `json:"timestamp"`
}

func (h *Handler) getNews(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))
	category := c.Query("category")

	limit := h.cfg.MaxNewsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	cacheKey := h.cache.GenerateKey("news", strings.Join(symbols, ","), strconv.Itoa(limit), category)
	if cached, ok := h.cache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	items := h.news.GetComprehensiveNews(c.Request.Context(), symbols, limit)
	if category != "" {
		items = filterByCategory(items, news.Category(category))
	}
	if h.cfg.PreviewEnrich && h.enricher != nil {
		items = h.enricher.Enrich(c.Request.Context(), items)
	}

	resp := newsResponse{
		News:      items,
		Sources:   h.sourceFlags(),
		Timestamp: time.Now().UTC(),
	}
	h.cache.Set(cacheKey, resp, h.cfg.CacheTTL)
	c.JSON(http.StatusOK, resp)
}

// sourceFlags reports which providers are live given the configured
// credentials, so the frontend can label degraded feeds.
func (h *Handler) sourceFlags() map[string]bool {
	return map[string]bool{
		"reddit":       true,
		"newsapi":      h.cfg.NewsAPIKey != "",
		"finnhub":      h.cfg.FinnhubAPIKey != "",
		"alphavantage": h.cfg.AlphaVantageAPIKey != "",
		"twitter":      h.cfg.TwitterBearerToken != "",
		"rsswire":      len(h.cfg.Sources.Feeds) > 0,
	}
}

func filterByCategory(items []news.Item, category news.Category) []news.Item {
	filtered := make([]news.Item, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func (h *Handler) getStocks(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))
	if len(symbols) == 0 {
		symbols = h.cfg.Sources.PrioritySymbols
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols query parameter is required"})
		return
	}

	cacheKey := h.cache.GenerateKey("stocks", strings.Join(symbols, ","))
	if cached, ok := h.cache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	quotes := h.quotes.GetQuotes(c.Request.Context(), symbols)
	resp := gin.H{"quotes": quotes, "timestamp": time.Now().UTC()}
	h.cache.Set(cacheKey, resp, h.cfg.CacheTTL)
	c.JSON(http.StatusOK, resp)
}

// getStockNews serves provider headlines for a single symbol, for detail
// views that don't need the full aggregated feed.
func (h *Handler) getStockNews(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	items, err := h.quotes.Headlines(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []news.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"news": items, "timestamp": time.Now().UTC()})
}

func (h *Handler) listAlerts(c *gin.Context) {
	if c.Query("active") == "true" {
		c.JSON(http.StatusOK, gin.H{"alerts": h.alerts.Active()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": h.alerts.All()})
}

type createAlertRequest struct {
	Symbol      string  `json:"symbol" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Condition   string  `json:"condition"`
	TargetValue float64 `json:"targetValue"`
	CostBasis   float64 `json:"costBasis"`
	Percent     float64 `json:"percent"`
	Message     string  `json:"message"`
}

func (h *Handler) createAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(req.Symbol)

	var (
		alert alerts.PriceAlert
		err   error
	)
	switch alerts.AlertType(req.Type) {
	case alerts.TypeStopLoss:
		percent := req.Percent
		if percent == 0 {
			percent = h.alerts.Settings().DefaultStopLoss
		}
		alert, err = h.alerts.CreateStopLoss(symbol, req.CostBasis, percent)
	case alerts.TypeProfitTarget:
		percent := req.Percent
		if percent == 0 {
			percent = h.alerts.Settings().DefaultProfitTarget
		}
		alert, err = h.alerts.CreateProfitTarget(symbol, req.CostBasis, percent)
	case alerts.TypePriceTarget:
		condition := alerts.Condition(req.Condition)
		if condition != alerts.ConditionAbove && condition != alerts.ConditionBelow {
			c.JSON(http.StatusBadRequest, gin.H{"error": "condition must be above or below"})
			return
		}
		alert, err = h.alerts.CreatePriceTarget(symbol, req.TargetValue, condition)
	default:
		alert, err = h.alerts.Create(symbol, alerts.AlertType(req.Type),
			alerts.Condition(req.Condition), req.TargetValue, req.Message)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"alert": alert})
}

func (h *Handler) deleteAlert(c *gin.Context) {
	if err := h.alerts.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// checkAlerts pulls fresh quotes for every symbol that has an active alert
// and reports the ones that fired.
func (h *Handler) checkAlerts(c *gin.Context) {
	active := h.alerts.Active()

	seen := make(map[string]bool)
	var symbols []string
	for _, alert := range active {
		if !seen[alert.Symbol] {
			seen[alert.Symbol] = true
			symbols = append(symbols, alert.Symbol)
		}
	}
	for _, symbol := range h.cfg.Sources.PrioritySymbols {
		if !seen[symbol] {
			seen[symbol] = true
			symbols = append(symbols, symbol)
		}
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusOK, gin.H{"triggered": []alerts.PriceAlert{}})
		return
	}

	quotes := h.quotes.GetQuotes(c.Request.Context(), symbols)
	triggered, err := h.alerts.Check(quotes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if triggered == nil {
		triggered = []alerts.PriceAlert{}
	}

	c.JSON(http.StatusOK, gin.H{"triggered": triggered})
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.alerts.Settings()})
}

func (h *Handler) updateSettings(c *gin.Context) {
	var settings alerts.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.alerts.UpdateSettings(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *Handler) health(c *gin.Context) {
	stats := h.metrics.GetStats()
	status := http.StatusOK
	body := gin.H{"status": "ok", "lastRun": stats["last_run_time"]}
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["lastError"] = stats["last_error"]
	}
	c.JSON(status, body)
}

func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetStats())
}

func splitSymbols(raw string) []string {
	if raw == "" {
		return nil
	}
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			symbols = append(symbols, part)
		}
	}
	return symbols
}
