package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds process-wide settings. Provider credentials are all optional:
// a missing key simply disables that source.
type Config struct {
	// Provider credentials
	NewsAPIKey         string
	FinnhubAPIKey      string
	AlphaVantageAPIKey string
	TwitterBearerToken string

	// HTTP API settings
	Port        string
	FrontendURL string

	// Fetch settings
	RequestTimeout time.Duration
	MaxNewsLimit   int
	UserAgent      string

	// Response cache settings
	CacheTTL time.Duration

	// Preview enrichment (og:image scraping for top items)
	PreviewEnrich bool

	// Alerts persistence
	AlertsFilePath string

	// App settings
	Debug bool

	Sources SourcesConfig
}

// SourcesConfig is the optional YAML file describing where news comes from.
// Defaults cover the dashboard's stock universe; a file at SOURCES_CONFIG
// overrides individual sections.
type SourcesConfig struct {
	Subreddits      []string          `yaml:"subreddits"`
	Feeds           []string          `yaml:"feeds"`
	PrioritySymbols []string          `yaml:"prioritySymbols"`
	CompanyNames    map[string]string `yaml:"companyNames"`
}

// Load builds the configuration from defaults, the optional sources file and
// environment overrides, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           "8080",
		RequestTimeout: 10 * time.Second,
		MaxNewsLimit:   20,
		UserAgent:      "PortfolioDashboard/1.0",
		CacheTTL:       5 * time.Minute,
		AlertsFilePath: "alerts.json",
		Sources:        defaultSources(),
	}

	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.FinnhubAPIKey = os.Getenv("FINNHUB_API_KEY")
	cfg.AlphaVantageAPIKey = os.Getenv("ALPHA_VANTAGE_API_KEY")
	cfg.TwitterBearerToken = os.Getenv("TWITTER_BEARER_TOKEN")

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.FrontendURL = os.Getenv("FRONTEND_URL")
	cfg.UserAgent = getEnvOrDefault("HTTP_USER_AGENT", cfg.UserAgent)
	cfg.AlertsFilePath = getEnvOrDefault("ALERTS_FILE_PATH", cfg.AlertsFilePath)

	cfg.MaxNewsLimit = getEnvIntOrDefault("MAX_NEWS_LIMIT", cfg.MaxNewsLimit)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.CacheTTL = time.Duration(val) * time.Second
		}
	}

	if os.Getenv("PREVIEW_ENRICH") == "true" {
		cfg.PreviewEnrich = true
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	if path := os.Getenv("SOURCES_CONFIG"); path != "" {
		if err := cfg.loadSourcesFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) loadSourcesFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file SourcesConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}

	if len(file.Subreddits) > 0 {
		c.Sources.Subreddits = file.Subreddits
	}
	if len(file.Feeds) > 0 {
		c.Sources.Feeds = file.Feeds
	}
	if len(file.PrioritySymbols) > 0 {
		c.Sources.PrioritySymbols = file.PrioritySymbols
	}
	if len(file.CompanyNames) > 0 {
		c.Sources.CompanyNames = file.CompanyNames
	}
	return nil
}

func defaultSources() SourcesConfig {
	return SourcesConfig{
		Subreddits: []string{"investing", "stocks", "SecurityAnalysis", "ValueInvesting", "StockMarket"},
		PrioritySymbols: []string{
			"AAPL", "NVDA", "PLTR", "IONQ", "SOUN",
		},
		CompanyNames: map[string]string{
			"AAPL": "Apple",
			"SOUN": "SoundHound",
			"IONQ": "IonQ",
			"PLTR": "Palantir",
			"NVDA": "NVIDIA",
			"OKLO": "Oklo",
			"TMC":  "TMC the metals company",
			"BBAI": "BigBear.ai",
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
