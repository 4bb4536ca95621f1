package storefront

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
	cartapp "github.com/llmndev/perfume-storefront/internal/domains/cart/application"
	platformobservability "github.com/llmndev/perfume-storefront/internal/platform/observability"
)

// MemoryStoreAPI selects the in-process cart remote instead of the HTTP store API.
const MemoryStoreAPI = "memory"

// Wishlist storage backends.
const (
	WishlistMemory   = "memory"
	WishlistPostgres = "postgres"
	WishlistRedis    = "redis"
)

// Config carries environment-driven settings for the storefront process.
type Config struct {
	Port                 string
	StoreAPIURL          string
	StoreAPITimeout      time.Duration
	JWTSecret            string
	JWTIssuer            string
	CartSessionLimit     int
	CartClearConcurrency int
	WishlistBackend      string
	PostgresDSN          string
	RedisAddr            string
	LogLevel             slog.Level
	Environment          string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                 envDefault("PORT", "8080"),
		StoreAPIURL:          envDefault("STORE_API_URL", storeapi.DefaultBaseURL),
		StoreAPITimeout:      storeapi.DefaultTimeout,
		JWTSecret:            strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")),
		JWTIssuer:            strings.TrimSpace(os.Getenv("AUTH_JWT_ISSUER")),
		CartSessionLimit:     cartapp.DefaultRegistrySize,
		CartClearConcurrency: cartapp.DefaultClearConcurrency,
		WishlistBackend:      strings.ToLower(envDefault("WISHLIST_BACKEND", WishlistMemory)),
		PostgresDSN:          strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:            envDefault("REDIS_ADDR", "localhost:6379"),
		Environment:          envDefault("ENVIRONMENT", "local"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if seconds, ok, err := positiveInt("STORE_API_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.StoreAPITimeout = time.Duration(seconds) * time.Second
	}
	if limit, ok, err := positiveInt("CART_SESSION_LIMIT"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.CartSessionLimit = limit
	}
	if n, ok, err := positiveInt("CART_CLEAR_CONCURRENCY"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.CartClearConcurrency = n
	}
	switch cfg.WishlistBackend {
	case WishlistMemory, WishlistRedis:
	case WishlistPostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required when WISHLIST_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("WISHLIST_BACKEND must be one of memory, postgres, redis")
	}
	level, err := platformobservability.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func positiveInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, true, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
