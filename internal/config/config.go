package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CARTSTORE_"

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
		// Storage is "postgres" or "memory".
		Storage string `koanf:"storage"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout    time.Duration `koanf:"read_timeout"`
		WriteTimeout   time.Duration `koanf:"write_timeout"`
		IdleTimeout    time.Duration `koanf:"idle_timeout"`
		RequestTimeout time.Duration `koanf:"request_timeout"`
	} `koanf:"http"`

	Postgres struct {
		DSN      string `koanf:"dsn"`
		MaxConns int32  `koanf:"max_conns"`
		Migrate  bool   `koanf:"migrate"`
	} `koanf:"postgres"`

	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		GuestTTL time.Duration `koanf:"guest_ttl"`
	} `koanf:"redis"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		TopicOrders string   `koanf:"topic_orders"`
	} `koanf:"kafka"`

	Checkout struct {
		DefaultStoreID     string        `koanf:"default_store_id"`
		PlaceholderAddress string        `koanf:"placeholder_address"`
		PlaceholderPhone   string        `koanf:"placeholder_phone"`
		PaymentMethod      string        `koanf:"payment_method"`
		TaxMultiplier      string        `koanf:"tax_multiplier"`
		ClearDelay         time.Duration `koanf:"clear_delay"`
		Currency           string        `koanf:"currency"`
	} `koanf:"checkout"`

	Client struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"client"`

	Shop struct {
		// SessionTTL is how long an unused storefront session stays cached.
		SessionTTL time.Duration `koanf:"session_ttl"`
	} `koanf:"shop"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`
}

// Load reads <dir>/base.yaml, then the optional <dir>/<envName>.yaml, then
// CARTSTORE_ environment variables with "__" as the nesting separator,
// e.g. CARTSTORE_POSTGRES__DSN.
func Load(dir, envName string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", dir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// missing env file is fine for local runs
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", dir, envName)), yaml.Parser())

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Storage == "" {
		c.App.Storage = StoragePostgres
	}
	if c.Checkout.Currency == "" {
		c.Checkout.Currency = "USD"
	}
	if c.HTTP.RequestTimeout == 0 {
		c.HTTP.RequestTimeout = 10 * time.Second
	}
	if c.Redis.GuestTTL == 0 {
		c.Redis.GuestTTL = 30 * 24 * time.Hour
	}
	if c.Kafka.TopicOrders == "" {
		c.Kafka.TopicOrders = "order-events"
	}
	if c.Checkout.ClearDelay == 0 {
		c.Checkout.ClearDelay = 1500 * time.Millisecond
	}
	if c.Checkout.TaxMultiplier == "" {
		c.Checkout.TaxMultiplier = "1"
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 5 * time.Second
	}
	if c.Shop.SessionTTL == 0 {
		c.Shop.SessionTTL = 30 * time.Minute
	}
	if c.Idempotency.TTL == 0 {
		c.Idempotency.TTL = 24 * time.Hour
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	switch c.App.Storage {
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("app.storage[%s] must be %q or %q", c.App.Storage, StoragePostgres, StorageMemory)
	}
	if c.Checkout.DefaultStoreID == "" {
		return fmt.Errorf("checkout.default_store_id required")
	}
	return nil
}
