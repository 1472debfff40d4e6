package config

import (
	"fmt"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Discord webhook for announcements (optional)
	AnnouncementWebhookID    string `envconfig:"ANNOUNCEMENT_WEBHOOK_ID"`
	AnnouncementWebhookToken string `envconfig:"ANNOUNCEMENT_WEBHOOK_TOKEN"`

	// Economy
	StartingBalance int64 `envconfig:"STARTING_BALANCE" default:"100"`
	AllowanceRate   int64 `envconfig:"ALLOWANCE_RATE" default:"200"`
	AllowanceDays   int   `envconfig:"ALLOWANCE_DAYS" default:"7"`
	MinBlackjackBet int64 `envconfig:"MIN_BLACKJACK_BET" default:"10"`

	// Lottery
	LotteryTicketCost  int64  `envconfig:"LOTTERY_TICKET_COST" default:"50"`
	LotteryBaseJackpot int64  `envconfig:"LOTTERY_BASE_JACKPOT" default:"500"`
	LotteryDrawCron    string `envconfig:"LOTTERY_DRAW_CRON" default:"0 14 * * FRI"`

	// Guilds served by the scheduler, comma-separated Discord IDs
	GuildIDs []int64 `envconfig:"GUILD_IDS"`

	// Environment: "development", "production" or "test"
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		cfg, err := load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		instance = cfg
	})
	return instance
}

func load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.Environment != "test" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &cfg, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		StartingBalance:    100,
		AllowanceRate:      200,
		AllowanceDays:      7,
		MinBlackjackBet:    10,
		LotteryTicketCost:  50,
		LotteryBaseJackpot: 500,
	}
}
