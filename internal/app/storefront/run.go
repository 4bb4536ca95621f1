package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/llmndev/perfume-storefront/internal/clients/http/storeapi"
	carthandlers "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/http/handlers"
	cartmemory "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/memory"
	cartobs "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/observability"
	cartremote "github.com/llmndev/perfume-storefront/internal/domains/cart/adapters/storeapi"
	cartapp "github.com/llmndev/perfume-storefront/internal/domains/cart/application"
	cartdomain "github.com/llmndev/perfume-storefront/internal/domains/cart/domain"
	cartports "github.com/llmndev/perfume-storefront/internal/domains/cart/ports"
	wishlisthandlers "github.com/llmndev/perfume-storefront/internal/domains/wishlist/adapters/http/handlers"
	wishlistmemory "github.com/llmndev/perfume-storefront/internal/domains/wishlist/adapters/memory"
	wishlistobs "github.com/llmndev/perfume-storefront/internal/domains/wishlist/adapters/observability"
	wishlistpostgres "github.com/llmndev/perfume-storefront/internal/domains/wishlist/adapters/persistence/postgres"
	wishlistredis "github.com/llmndev/perfume-storefront/internal/domains/wishlist/adapters/persistence/redis"
	wishlistapp "github.com/llmndev/perfume-storefront/internal/domains/wishlist/application"
	wishlistports "github.com/llmndev/perfume-storefront/internal/domains/wishlist/ports"
	"github.com/llmndev/perfume-storefront/internal/platform/auth"
	platformobservability "github.com/llmndev/perfume-storefront/internal/platform/observability"
	platformpostgres "github.com/llmndev/perfume-storefront/internal/platform/postgres"
	platformredis "github.com/llmndev/perfume-storefront/internal/platform/redis"
)

const serviceName = "perfume-storefront"

// Run boots the storefront HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	remote, err := buildCartRemote(cfg, logger)
	if err != nil {
		return err
	}
	wishlistRepo, cleanupWishlist := buildWishlistRepository(ctx, cfg, logger)
	defer cleanupWishlist()

	router, err := NewRouter(cfg, Dependencies{
		Remote:       remote,
		WishlistRepo: wishlistRepo,
		Instruments:  instruments,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront API listening", slog.String("addr", srv.Addr), slog.String("store_api", cfg.StoreAPIURL))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("storefront API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		logger.Info("shutting down storefront API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Dependencies are the adapters NewRouter wires into the HTTP surface.
type Dependencies struct {
	Remote       cartports.Remote
	WishlistRepo wishlistports.Repository
	// Instruments may be nil; decorators then fall back to no-op telemetry.
	Instruments *platformobservability.Instruments
}

// NewRouter assembles the gin engine: health probe, and the cart and wishlist
// APIs under /api behind bearer authentication.
func NewRouter(cfg Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Remote == nil || deps.WishlistRepo == nil {
		return nil, errors.New("storefront dependencies are incomplete")
	}
	logger := slog.Default()
	if deps.Instruments != nil && deps.Instruments.Logger != nil {
		logger = deps.Instruments.Logger
	}

	validator, err := auth.NewValidator(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, err
	}

	sessions, err := cartapp.NewRegistry(cfg.CartSessionLimit, func(userID int64) (cartports.Synchronizer, error) {
		core, err := cartapp.NewSynchronizer(deps.Remote, userID,
			cartapp.WithLogger(logger),
			cartapp.WithClearConcurrency(cfg.CartClearConcurrency),
		)
		if err != nil {
			return nil, err
		}
		return cartobs.New(core,
			cartobs.WithLogger(logger),
			cartobs.WithTracer(deps.Instruments.Tracer("internal.cart.application")),
			cartobs.WithMeter(deps.Instruments.Meter("internal.cart.application")),
		), nil
	}, cartapp.WithRegistryLogger(logger))
	if err != nil {
		return nil, err
	}

	wishlist := wishlistobs.New(
		wishlistapp.NewService(deps.WishlistRepo),
		wishlistobs.WithLogger(logger),
		wishlistobs.WithTracer(deps.Instruments.Tracer("internal.wishlist.application")),
		wishlistobs.WithMeter(deps.Instruments.Meter("internal.wishlist.application")),
	)

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), requestID(), accessLog(logger))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Len()})
	})

	api := router.Group("/api", auth.Middleware(validator, nil))
	carthandlers.NewCartAPI(sessions).Register(api)
	wishlisthandlers.NewWishlistAPI(wishlist).Register(api)
	return router, nil
}

func buildCartRemote(cfg Config, logger *slog.Logger) (cartports.Remote, error) {
	if strings.EqualFold(cfg.StoreAPIURL, MemoryStoreAPI) {
		logger.Warn("STORE_API_URL=memory, carts are kept in process with a demo catalog")
		return cartmemory.NewRemote().WithProducts(demoCatalog...), nil
	}
	client, err := storeapi.NewClient(cfg.StoreAPIURL,
		storeapi.WithHTTPClient(storeapi.NewHTTPClient(cfg.StoreAPITimeout)),
		storeapi.WithBearerToken(auth.TokenFromContext),
		storeapi.WithRequestID(),
	)
	if err != nil {
		return nil, fmt.Errorf("configure store API client: %w", err)
	}
	return cartremote.NewRemote(client), nil
}

func buildWishlistRepository(ctx context.Context, cfg Config, logger *slog.Logger) (wishlistports.Repository, func()) {
	switch cfg.WishlistBackend {
	case WishlistPostgres:
		db, cleanup := platformpostgres.ConnectOrWarn(ctx, cfg.PostgresDSN, logger)
		if db != nil {
			logger.Info("wishlist repository configured with postgres")
			return wishlistpostgres.NewRepository(db), cleanup
		}
	case WishlistRedis:
		client, cleanup := platformredis.ConnectOrWarn(ctx, cfg.RedisAddr, logger)
		if client != nil {
			logger.Info("wishlist repository configured with redis")
			return wishlistredis.NewRepository(client), cleanup
		}
	}
	return wishlistmemory.NewRepository(), func() {}
}

var demoCatalog = []cartdomain.ProductSnapshot{
	{ID: 1, Name: "Oud Noir", UnitPrice: 100, ImageURL: "/images/oud-noir.jpg"},
	{ID: 2, Name: "Rose Absolue", UnitPrice: 45.5, ImageURL: "/images/rose-absolue.jpg"},
	{ID: 3, Name: "Vetiver Fumé", UnitPrice: 80, ImageURL: "/images/vetiver-fume.jpg"},
	{ID: 4, Name: "Neroli Bloom", UnitPrice: 62.25, ImageURL: "/images/neroli-bloom.jpg"},
}
