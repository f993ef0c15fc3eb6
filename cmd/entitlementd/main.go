// Command entitlementd serves the two entitlement reconciliation endpoints:
// the payment-provider webhook and the mobile receipt verifier.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gfirestore "cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	entmw "github.com/cleardish/entitlements/middleware/chi"
	"github.com/cleardish/entitlements/pkg/billing/iap"
	prommetrics "github.com/cleardish/entitlements/pkg/billing/metrics/prometheus"
	"github.com/cleardish/entitlements/pkg/billing/stripe"
	"github.com/cleardish/entitlements/pkg/entitle"
	zladapter "github.com/cleardish/entitlements/pkg/entitle/logger/zerolog"
	"github.com/cleardish/entitlements/pkg/identity"
	"github.com/cleardish/entitlements/pkg/identity/supabase"
	fsstore "github.com/cleardish/entitlements/storage/firestore"
	memstore "github.com/cleardish/entitlements/storage/memory"
	pgstore "github.com/cleardish/entitlements/storage/postgres"
	redisstore "github.com/cleardish/entitlements/storage/redis"
)

func main() {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger := zladapter.NewLogger(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	directory, err := supabase.New(supabase.Config{
		ProjectURL:     cfg.ProjectURL,
		ServiceRoleKey: cfg.ServiceRoleKey,
	})
	if err != nil {
		zl.Error().Err(err).Msg("failed to create identity client")
		os.Exit(1)
	}

	profiles, cleanup, err := buildProfileStore(ctx, cfg, directory)
	if err != nil {
		zl.Error().Err(err).Msg("failed to create profile store")
		os.Exit(1)
	}
	defer cleanup()
	zl.Info().Str("store", cfg.ProfileStore).Msg("profile store ready")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := prommetrics.NewMetrics(registry, "entitlements")

	resolver := identity.NewResolver(directory, identity.ResolverConfig{Logger: logger})

	webhook, err := stripe.NewProvider(stripe.Config{
		Directory:     directory,
		Resolver:      resolver,
		WebhookSecret: cfg.StripeWebhookSecret,
		APIKey:        cfg.StripeSecretKey,
		Prices: stripe.PriceMap{
			Starter: cfg.PriceStarter,
			Pro:     cfg.PricePro,
			Plus:    cfg.PricePlus,
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		zl.Error().Err(err).Msg("failed to create webhook provider")
		os.Exit(1)
	}

	receipt, err := iap.NewProvider(iap.Config{
		Verifier:     directory,
		Profiles:     profiles,
		BypassVerify: cfg.IAPBypassVerify,
		Logger:       logger,
		Metrics:      metrics,
	})
	if err != nil {
		zl.Error().Err(err).Msg("failed to create receipt provider")
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Method("GET", "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	entmw.Register(r, entmw.Config{Webhook: webhook, Receipt: receipt})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info().Str("port", cfg.ServerPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zl.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	zl.Info().Msg("server stopped")
}

// buildProfileStore picks the receipt-pipeline persistence backend. The
// supabase directory client doubles as the default store, writing the same
// user_profiles table through PostgREST.
func buildProfileStore(ctx context.Context, cfg config, directory *supabase.Client) (entitle.ProfileStore, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.ProfileStore) {
	case "", "supabase":
		return directory, noop, nil

	case "postgres":
		pgConfig := pgstore.DefaultConfig()
		pgConfig.ConnectionString = cfg.DatabaseURL
		store, err := pgstore.New(ctx, pgConfig)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		store, err := redisstore.New(client, redisstore.DefaultConfig())
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = client.Close() }, nil

	case "firestore":
		client, err := gfirestore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, noop, err
		}
		store, err := fsstore.New(client, fsstore.Config{})
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return store, func() { _ = client.Close() }, nil

	case "memory":
		return memstore.New(), noop, nil
	}

	return nil, noop, errors.New("unknown PROFILE_STORE: " + cfg.ProfileStore)
}
