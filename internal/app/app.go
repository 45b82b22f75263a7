// Package app wires configuration, clients, caches, and services into the
// shared core used by cmd/stocklens-server.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/stocklens/stocklens/internal/cache"
	"github.com/stocklens/stocklens/internal/clients/yahoo"
	"github.com/stocklens/stocklens/internal/common"
	"github.com/stocklens/stocklens/internal/interfaces"
	"github.com/stocklens/stocklens/internal/services/stock"
)

// App holds all initialized clients and services.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	MarketClient interfaces.MarketClient
	StockService interfaces.StockService
	Caches       *cache.Caches
	StartupTime  time.Time
}

// NewApp loads configuration and initializes the client, caches, and the
// stock service. configPath may be empty, in which case STOCKLENS_CONFIG and
// the default config location are consulted.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("STOCKLENS_CONFIG")
	}
	if configPath == "" {
		configPath = "config/stocklens.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	client := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithPageURL(config.Clients.Yahoo.QuoteURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	caches := cache.NewCaches()
	if config.Cache.Disabled {
		// Zero-value caches never store or hit; every request goes upstream.
		caches = &cache.Caches{}
	}

	a := &App{
		Config:       config,
		Logger:       logger,
		MarketClient: client,
		StockService: stock.NewService(client, caches, logger),
		Caches:       caches,
		StartupTime:  time.Now(),
	}

	logger.Info().
		Str("environment", config.Environment).
		Bool("cache_disabled", config.Cache.Disabled).
		Msg("Application initialized")

	return a, nil
}
