package stubsrv

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// UserSeed is an account the stub accepts at /auth/login.
type UserSeed struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
	Role     string `toml:"role"`
}

// ProductSeed is a catalogue entry.
type ProductSeed struct {
	ID       string  `toml:"id"`
	Name     string  `toml:"name"`
	Price    float64 `toml:"price"`
	Unit     string  `toml:"unit"`
	MarketID string  `toml:"market_id"`
}

// MarketSeed is a market directory entry.
type MarketSeed struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Address string `toml:"address"`
}

// Config holds the stub backend settings.
type Config struct {
	Port               string        `toml:"port"`
	LogLevel           string        `toml:"log_level"`
	HandleCORS         bool          `toml:"handle_cors"`
	SigningKey         string        `toml:"signing_key"`
	TokenTTL           time.Duration `toml:"-"`
	TokenTTLStr        string        `toml:"token_ttl"`
	SuggestionDelay    time.Duration `toml:"-"`
	SuggestionDelayStr string        `toml:"suggestion_delay"`
	DefaultPageSize    int           `toml:"default_page_size"`
	RequestTimeout     time.Duration `toml:"-"`

	Users    []UserSeed    `toml:"users"`
	Products []ProductSeed `toml:"products"`
	Markets  []MarketSeed  `toml:"markets"`
}

// DefaultConfig returns a config with the built-in seed catalogue.
func DefaultConfig() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		HandleCORS:      true,
		SigningKey:      "mercado-stub-signing-key",
		TokenTTL:        24 * time.Hour,
		DefaultPageSize: 10,
		RequestTimeout:  2 * time.Minute,
		Users:           seedUsers(),
		Products:        seedProducts(),
		Markets:         seedMarkets(),
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Seed sections present
// in the file replace the built-in ones.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	cfg.Users, cfg.Products, cfg.Markets = nil, nil, nil
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if cfg.Users == nil {
		cfg.Users = seedUsers()
	}
	if cfg.Products == nil {
		cfg.Products = seedProducts()
	}
	if cfg.Markets == nil {
		cfg.Markets = seedMarkets()
	}
	if err := cfg.resolve(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	if c.TokenTTLStr != "" {
		d, err := time.ParseDuration(c.TokenTTLStr)
		if err != nil {
			return fmt.Errorf("token_ttl: %w", err)
		}
		c.TokenTTL = d
	}
	if c.SuggestionDelayStr != "" {
		d, err := time.ParseDuration(c.SuggestionDelayStr)
		if err != nil {
			return fmt.Errorf("suggestion_delay: %w", err)
		}
		c.SuggestionDelay = d
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.SigningKey == "" {
		return fmt.Errorf("signing_key is required")
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 10
	}
	return nil
}
