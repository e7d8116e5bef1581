package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"ektagames/internal/cart"
	"ektagames/internal/catalog"
	"ektagames/internal/config"
	"ektagames/internal/http/handlers"
	applog "ektagames/internal/log"
	"ektagames/internal/metrics"
	"ektagames/internal/repos"
	fsrepo "ektagames/internal/repos/firestore"
	"ektagames/internal/services"
)

func main() {
	cfg := config.Load()
	applog.SetLevel(cfg.LogLevel)

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ---------- Catalog ----------
	var cache catalog.Cache = catalog.NewMemoryCache()
	if cfg.Catalog.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Catalog.RedisURL)
		if err != nil {
			log.Fatalf("[catalog] bad REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		cache = catalog.NewRedisCache(rdb)
	}
	agg := catalog.NewAggregator(
		catalog.DefaultSources(cfg.Upstream.DummyJSONURL, cfg.Upstream.FakeStoreURL),
		catalog.NewHTTPFetcher(cfg.Upstream.Timeout, cfg.Upstream.RPS),
		catalog.WithCache(cache, cfg.Catalog.CacheTTL),
		catalog.WithMetrics(m),
	)
	if cfg.Catalog.RefreshCron != "" {
		cr, err := catalog.StartRefresher(agg, cfg.Catalog.RefreshCron, cfg.Upstream.Timeout*2)
		if err != nil {
			log.Fatalf("[catalog] bad CATALOG_REFRESH_CRON: %v", err)
		}
		defer cr.Stop()
	}

	// ---------- Backends ----------
	ctx := context.Background()
	backends := handlers.Backends{Products: agg, Metrics: m}
	if cfg.CartBackend == config.BackendFirestore {
		client, err := fsrepo.NewClient(ctx, cfg.GCPProjectID, cfg.GCPCredentialsFile)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		backends.CartRemote = fsrepo.NewCartRepo(client)
		backends.Orders = fsrepo.NewOrderRepo(client)
	}
	if cfg.AuthProvider == config.ProviderFirebase {
		p, err := services.NewFirebaseProvider(ctx, cfg.GCPProjectID, cfg.GCPCredentialsFile, cfg.FirebaseAPIKey)
		if err != nil {
			log.Fatal(err)
		}
		backends.Provider = p
	}
	if cfg.Gemini.APIKey != "" {
		backends.Generator = &services.GeminiGenerator{
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
			APIKey:  cfg.Gemini.APIKey,
			Timeout: cfg.Gemini.Timeout,
		}
	} else {
		applog.BgWarn("recommend.disabled", nil, map[string]any{"reason": "GEMINI_API_KEY unset"})
	}

	deps := handlers.NewDeps(db, cfg, backends)
	if cfg.Cart.SweepCron != "" {
		sw, err := cart.StartSweeper(deps.Hub, cfg.Cart.SweepCron, cfg.Cart.IdleTimeout)
		if err != nil {
			log.Fatalf("[cart] bad CART_SWEEP_CRON: %v", err)
		}
		defer sw.Stop()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		// Event streams stay open; only bound reads.
		ReadTimeout: 30 * time.Second,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics" || strings.HasSuffix(p, "/cart/events")
		},
	}))
	// Double-submit: clients echo the csrf_ cookie in X-CSRF-Token.
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(handlers.AttachUser(deps.Auth))

	deps.Mount(app, handlers.DefaultLimits())

	// Health, metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		applog.BgInfo("server.shutdown", nil)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			applog.BgError("server.shutdown", err, nil)
		}
	}()

	applog.BgInfo("server.start", map[string]any{"port": cfg.Port, "cart_backend": cfg.CartBackend, "auth_provider": cfg.AuthProvider})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.BgError("server.listen", err, nil)
	}
	deps.Close()
}
