package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/sugrae-storefront/internal/api"
	"github.com/example/sugrae-storefront/internal/auth"
	"github.com/example/sugrae-storefront/internal/catalog"
	"github.com/example/sugrae-storefront/internal/checkout"
	"github.com/example/sugrae-storefront/internal/config"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/events"
	"github.com/example/sugrae-storefront/internal/gateway"
	"github.com/example/sugrae-storefront/internal/identity"
	"github.com/example/sugrae-storefront/internal/infrastructure/kafka"
	"github.com/example/sugrae-storefront/internal/infrastructure/store"
	"github.com/example/sugrae-storefront/internal/storefront"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Sugraé Storefront")
	log.Println("[API] ========================================")
	log.Printf("[API] Shop: %s", orNone(cfg.Shop.Domain))
	log.Printf("[API] Storage: %s", cfg.Storage.Driver)
	log.Printf("[API] Kafka: %v", cfg.Kafka.Brokers)

	// Initialize persisted visitor state
	kv, closeKV, err := openKV(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("[API] Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer closeKV()

	// Initialize event publisher
	var publisher events.Publisher = events.LogPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Printf("[API] Publishing order events to %s", cfg.Kafka.Topic)
	}

	// Initialize gateway clients
	httpClient := &http.Client{Timeout: cfg.Shop.Timeout}
	var commerce identity.Gateway = gateway.Offline{}
	var fetcher catalog.Fetcher
	if cfg.Shop.Domain != "" {
		sf, err := gateway.NewStorefront(gateway.Config{
			Domain:      cfg.Shop.Domain,
			AccessToken: cfg.Shop.AccessToken,
			APIVersion:  cfg.Shop.APIVersion,
			HTTPClient:  httpClient,
		})
		if err != nil {
			log.Fatalf("[API] Invalid shop configuration: %v", err)
		}
		commerce = sf
		fetcher = sf
		log.Printf("[API] Storefront API: %s", sf.Endpoint())
	}

	var newsletter storefront.Subscriber
	if cfg.Newsletter.Endpoint != "" {
		n, err := gateway.NewNewsletter(gateway.NewsletterConfig{
			Endpoint:   cfg.Newsletter.Endpoint,
			ListID:     cfg.Newsletter.ListID,
			APIKey:     cfg.Newsletter.APIKey,
			HTTPClient: httpClient,
		})
		if err != nil {
			log.Fatalf("[API] Invalid newsletter configuration: %v", err)
		}
		newsletter = n
	}

	var detector region.Detector
	if !cfg.Geo.Disabled {
		geo := gateway.NewGeoLocator(cfg.Geo.Endpoint, &http.Client{Timeout: cfg.Geo.Timeout})
		cached, err := region.NewCachingDetector(geo, cfg.Geo.CacheSize, cfg.Geo.CacheTTL)
		if err != nil {
			log.Fatalf("[API] Invalid geolocation cache: %v", err)
		}
		detector = cached
	}

	codec, err := auth.NewSessionCodec(cfg.Session.Secret, cfg.Session.MaxAge)
	if err != nil {
		log.Fatalf("[API] Invalid session secret: %v", err)
	}

	// Load the shared catalog; the fallback products serve until it succeeds
	products := catalog.NewStore(fetcher).WithPageSize(cfg.Shop.PageSize)
	if err := products.Load(ctx); err != nil {
		log.Printf("[API] Catalog unavailable, serving fallback products: %v", err)
	}
	if fetcher != nil && cfg.Shop.RefreshInterval > 0 {
		go products.Run(ctx, cfg.Shop.RefreshInterval)
	}

	registry, err := storefront.NewRegistry(storefront.Deps{
		Catalog:    products,
		Gateway:    commerce,
		KV:         kv,
		Codec:      codec,
		Detector:   detector,
		Publisher:  publisher,
		Newsletter: newsletter,
		ShopDomain: cfg.Shop.Domain,
		Checkout: checkout.Config{
			SubmitDelay:   cfg.Checkout.SubmitDelay,
			CompleteDelay: cfg.Checkout.CompleteDelay,
		},
	})
	if err != nil {
		log.Fatalf("[API] Failed to initialize storefront: %v", err)
	}
	registry.WithMaxSessions(cfg.Session.MaxSessions)
	defer registry.Close()
	go registry.Run(ctx, time.Minute, cfg.Session.IdleTimeout)

	// Initialize API
	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(registry, products),
		SecureCookie: cfg.Session.CookieSecure,
		TrustProxy:   cfg.TrustProxy,
		AdminToken:   cfg.Shop.AdminToken,
	})

	// Start HTTP server
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("[API] ========================================")
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		log.Println("[API] ========================================")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}

// openKV connects the configured storage driver and returns a close function
func openKV(ctx context.Context, cfg config.Storage) (store.KV, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		kv := store.NewPostgresKV(db)
		if err := kv.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("[API] Connected to PostgreSQL")
		return kv, closer(db), nil

	case config.DriverDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[API] Using DynamoDB table %s", cfg.DynamoTable)
		return store.NewDynamoKV(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), func() {}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Printf("[API] Connected to Redis at %s", cfg.RedisAddr)
		return store.NewRedisKV(client, cfg.RedisTTL), func() { client.Close() }, nil

	default:
		log.Println("[API] Using in-memory storage; visitor state is lost on restart")
		return store.NewMemoryKV(), func() {}, nil
	}
}

func closer(db *sql.DB) func() {
	return func() { db.Close() }
}

func orNone(s string) string {
	if s == "" {
		return "(none, fallback catalog)"
	}
	return s
}
