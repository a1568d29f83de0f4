package main

import (
	"log/slog"
	"os"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/AkhilBod/portfolioAdvisor/internal/aggregator"
	"github.com/AkhilBod/portfolioAdvisor/internal/alerts"
	"github.com/AkhilBod/portfolioAdvisor/internal/cache"
	"github.com/AkhilBod/portfolioAdvisor/internal/config"
	"github.com/AkhilBod/portfolioAdvisor/internal/handler"
	"github.com/AkhilBod/portfolioAdvisor/internal/logger"
	"github.com/AkhilBod/portfolioAdvisor/internal/metrics"
	"github.com/AkhilBod/portfolioAdvisor/internal/preview"
	"github.com/AkhilBod/portfolioAdvisor/internal/quota"
	"github.com/AkhilBod/portfolioAdvisor/internal/ratelimit"
	"github.com/AkhilBod/portfolioAdvisor/internal/source"
	"github.com/AkhilBod/portfolioAdvisor/internal/stocks"
	"github.com/AkhilBod/portfolioAdvisor/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sources := buildSources(cfg)
	twitter := buildTwitter(cfg)

	// Free-tier daily caps: NewsAPI allows 100 requests/day, Alpha Vantage
	// 25/day. A margin is left for the quote fallback chain.
	limiter := ratelimit.NewLimiter(map[string]int{
		"newsapi":      90,
		"alphavantage": 20,
	})
	newsService := aggregator.New(sources, twitter, limiter, metrics.Global)

	var finnhubClient *finnhub.DefaultApiService
	if cfg.FinnhubAPIKey != "" {
		finnhubCfg := finnhub.NewConfiguration()
		finnhubCfg.AddDefaultHeader("X-Finnhub-Token", cfg.FinnhubAPIKey)
		finnhubClient = finnhub.NewAPIClient(finnhubCfg).DefaultApi
	}
	quoteService := stocks.New(finnhubClient, cfg.AlphaVantageAPIKey, cfg.UserAgent, cfg.RequestTimeout)

	store := storage.NewFileStore(cfg.AlertsFilePath)
	alertService, err := alerts.NewService(store, metrics.Global)
	if err != nil {
		slog.Error("failed to load alerts", "error", err)
		os.Exit(1)
	}

	var enricher *preview.Enricher
	if cfg.PreviewEnrich {
		enricher = preview.NewEnricher(cfg.UserAgent, cfg.RequestTimeout)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(corsMiddleware(cfg))

	h := handler.New(cfg, newsService, quoteService, alertService, enricher, cache.New(), metrics.Global)
	h.Register(router)

	slog.Info("starting server",
		"port", cfg.Port,
		"sources", len(sources),
		"twitter", twitter != nil)

	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildSources assembles every source the configured credentials allow.
// Reddit and RSS need no keys; the rest are enabled by their credential.
func buildSources(cfg *config.Config) []source.Source {
	sources := []source.Source{
		source.NewRedditSource(cfg.Sources.Subreddits, cfg.UserAgent, cfg.RequestTimeout),
	}

	if cfg.NewsAPIKey != "" {
		sources = append(sources, source.NewNewsAPISource(cfg.NewsAPIKey, cfg.UserAgent, cfg.RequestTimeout))
	}
	if cfg.FinnhubAPIKey != "" {
		sources = append(sources, source.NewFinnhubSource(cfg.FinnhubAPIKey))
	}
	if cfg.AlphaVantageAPIKey != "" {
		sources = append(sources, source.NewAlphaVantageSource(cfg.AlphaVantageAPIKey, cfg.RequestTimeout))
	}
	if len(cfg.Sources.Feeds) > 0 {
		sources = append(sources, source.NewRSSWireSource(cfg.Sources.Feeds, cfg.RequestTimeout, cfg.UserAgent))
	}
	return sources
}

func buildTwitter(cfg *config.Config) source.Source {
	if cfg.TwitterBearerToken == "" {
		return nil
	}
	gate := quota.NewGate(nil, cfg.Sources.PrioritySymbols)
	return source.NewTwitterSource(cfg.TwitterBearerToken, cfg.UserAgent, cfg.RequestTimeout, gate, cfg.Sources.CompanyNames)
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if cfg.FrontendURL != "" {
		corsCfg.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	return cors.New(corsCfg)
}
