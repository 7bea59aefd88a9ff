// Package config loads service settings from defaults, an optional YAML file
// named by CONFIG_FILE and then environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/sugrae-storefront/internal/auth"
	"github.com/example/sugrae-storefront/internal/gateway"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
	DriverRedis    = "redis"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Shop struct {
	Domain      string        `yaml:"domain"`
	AccessToken string        `yaml:"access_token"`
	APIVersion  string        `yaml:"api_version"`
	PageSize    int           `yaml:"page_size"`
	Timeout     time.Duration `yaml:"timeout"`

	// RefreshInterval reloads the catalog periodically; zero disables it
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// AdminToken guards the manual catalog refresh route; empty disables the route
	AdminToken string `yaml:"admin_token"`
}

type Newsletter struct {
	Endpoint string `yaml:"endpoint"`
	ListID   string `yaml:"list_id"`
	APIKey   string `yaml:"api_key"`
}

type Geo struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	Disabled bool          `yaml:"disabled"`

	// CacheSize and CacheTTL bound the per-address lookup cache
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type Session struct {
	Secret       string        `yaml:"secret"`
	MaxAge       time.Duration `yaml:"max_age"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CookieSecure bool          `yaml:"cookie_secure"`
	MaxSessions  int           `yaml:"max_sessions"`
}

type Storage struct {
	Driver      string        `yaml:"driver"`
	DatabaseURL string        `yaml:"database_url"`
	DynamoTable string        `yaml:"dynamo_table"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisTTL    time.Duration `yaml:"redis_ttl"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

type SMTP struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	From     string `yaml:"from"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Checkout struct {
	SubmitDelay   time.Duration `yaml:"submit_delay"`
	CompleteDelay time.Duration `yaml:"complete_delay"`
}

// Config is the complete service configuration
type Config struct {
	HTTPAddr   string     `yaml:"http_addr"`
	TrustProxy bool       `yaml:"trust_proxy"`
	Shop       Shop       `yaml:"shop"`
	Newsletter Newsletter `yaml:"newsletter"`
	Geo        Geo        `yaml:"geo"`
	Session    Session    `yaml:"session"`
	Storage    Storage    `yaml:"storage"`
	Kafka      Kafka      `yaml:"kafka"`
	SMTP       SMTP       `yaml:"smtp"`
	Checkout   Checkout   `yaml:"checkout"`
}

// Default returns the settings used when nothing else is configured
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		Shop: Shop{
			APIVersion: "2024-10",
			PageSize:   20,
			Timeout:    15 * time.Second,

			RefreshInterval: 15 * time.Minute,
		},
		Geo: Geo{
			Endpoint:  gateway.DefaultGeoEndpoint,
			Timeout:   3 * time.Second,
			CacheSize: 4096,
			CacheTTL:  time.Hour,
		},
		Session: Session{
			MaxAge:      30 * 24 * time.Hour,
			IdleTimeout: 30 * time.Minute,
			MaxSessions: 10000,
		},
		Storage: Storage{
			Driver:      DriverMemory,
			DynamoTable: "storefront_kv",
			RedisAddr:   "localhost:6379",
		},
		Kafka: Kafka{
			Topic:   "storefront-events",
			GroupID: "email-notifier",
		},
		SMTP: SMTP{
			Host: "localhost",
			Port: "1025",
			From: "noreply@sugrae.example",
		},
		Checkout: Checkout{
			SubmitDelay:   2 * time.Second,
			CompleteDelay: 3 * time.Second,
		},
	}
}

// Load builds the configuration. A CONFIG_FILE that cannot be read or parsed
// is an error; malformed numeric or duration environment values are ignored.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.TrustProxy = getEnvBool("TRUST_PROXY", c.TrustProxy)

	c.Shop.Domain = getEnv("SHOPIFY_STORE_DOMAIN", c.Shop.Domain)
	c.Shop.AccessToken = getEnv("SHOPIFY_STOREFRONT_TOKEN", c.Shop.AccessToken)
	c.Shop.APIVersion = getEnv("SHOPIFY_API_VERSION", c.Shop.APIVersion)
	c.Shop.PageSize = getEnvInt("CATALOG_PAGE_SIZE", c.Shop.PageSize)
	c.Shop.Timeout = getEnvDuration("SHOPIFY_TIMEOUT", c.Shop.Timeout)
	c.Shop.RefreshInterval = getEnvDuration("CATALOG_REFRESH_INTERVAL", c.Shop.RefreshInterval)
	c.Shop.AdminToken = getEnv("ADMIN_TOKEN", c.Shop.AdminToken)

	c.Newsletter.Endpoint = getEnv("NEWSLETTER_ENDPOINT", c.Newsletter.Endpoint)
	c.Newsletter.ListID = getEnv("NEWSLETTER_LIST_ID", c.Newsletter.ListID)
	c.Newsletter.APIKey = getEnv("NEWSLETTER_API_KEY", c.Newsletter.APIKey)

	c.Geo.Endpoint = getEnv("GEO_ENDPOINT", c.Geo.Endpoint)
	c.Geo.Timeout = getEnvDuration("GEO_TIMEOUT", c.Geo.Timeout)
	c.Geo.Disabled = getEnvBool("GEO_DISABLED", c.Geo.Disabled)
	c.Geo.CacheSize = getEnvInt("GEO_CACHE_SIZE", c.Geo.CacheSize)
	c.Geo.CacheTTL = getEnvDuration("GEO_CACHE_TTL", c.Geo.CacheTTL)

	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.Session.MaxAge = getEnvDuration("SESSION_MAX_AGE", c.Session.MaxAge)
	c.Session.IdleTimeout = getEnvDuration("SESSION_IDLE_TIMEOUT", c.Session.IdleTimeout)
	c.Session.CookieSecure = getEnvBool("COOKIE_SECURE", c.Session.CookieSecure)
	c.Session.MaxSessions = getEnvInt("SESSION_MAX_COUNT", c.Session.MaxSessions)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.DatabaseURL = getEnv("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.DynamoTable = getEnv("DYNAMODB_TABLE", c.Storage.DynamoTable)
	c.Storage.RedisAddr = getEnv("REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisTTL = getEnvDuration("REDIS_TTL", c.Storage.RedisTTL)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)
	c.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", c.Kafka.GroupID)

	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = getEnv("SMTP_PORT", c.SMTP.Port)
	c.SMTP.From = getEnv("SMTP_FROM", c.SMTP.From)
	c.SMTP.Username = getEnv("SMTP_USERNAME", c.SMTP.Username)
	c.SMTP.Password = getEnv("SMTP_PASSWORD", c.SMTP.Password)

	c.Checkout.SubmitDelay = getEnvDuration("CHECKOUT_SUBMIT_DELAY", c.Checkout.SubmitDelay)
	c.Checkout.CompleteDelay = getEnvDuration("CHECKOUT_COMPLETE_DELAY", c.Checkout.CompleteDelay)
}

// Validate reports every problem that would stop the storefront from starting
func (c Config) Validate() error {
	var problems []string

	switch {
	case c.Session.Secret == "":
		problems = append(problems, "SESSION_SECRET is required")
	case len(c.Session.Secret) < auth.MinSecretLength:
		problems = append(problems, fmt.Sprintf("SESSION_SECRET must be at least %d characters long", auth.MinSecretLength))
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverDynamoDB:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres driver")
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR is required for the redis driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	if c.Shop.Domain != "" && c.Shop.AccessToken == "" {
		problems = append(problems, "SHOPIFY_STOREFRONT_TOKEN is required when SHOPIFY_STORE_DOMAIN is set")
	}
	if c.Newsletter.Endpoint != "" && c.Newsletter.ListID == "" {
		problems = append(problems, "NEWSLETTER_LIST_ID is required when NEWSLETTER_ENDPOINT is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
