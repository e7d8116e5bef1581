package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"

	"ektagames/internal/cart"
	"ektagames/internal/config"
	applog "ektagames/internal/log"
	"ektagames/internal/metrics"
	"ektagames/internal/repos"
	"ektagames/internal/services"
)

// Backends lets the caller swap storage and identity. Nil fields fall back
// to the SQLite implementations on DB.
type Backends struct {
	Products   services.ProductSource
	CartRemote cart.Remote
	Orders     services.OrderStore
	Provider   services.Provider
	Generator  services.Generator
	Metrics    *metrics.Metrics
}

type Deps struct {
	Auth *services.AuthService
	Hub  *cart.Hub

	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	GameHandler      *GameHandler
	RecommendHandler *RecommendHandler
	AuthHandler      *AuthHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, b Backends) *Deps {
	userRepo := repos.NewUserRepo(db)
	if b.CartRemote == nil {
		b.CartRemote = repos.NewCartRepo(db)
	}
	if b.Orders == nil {
		b.Orders = repos.NewOrderRepo(db)
	}
	if b.Provider == nil {
		b.Provider = &services.LocalProvider{Users: userRepo}
	}

	hub := cart.NewHub(b.CartRemote, b.Metrics)
	authSvc := &services.AuthService{Provider: b.Provider, Users: userRepo, Carts: hub}
	catalogSvc := &services.CatalogService{
		Products:      b.Products,
		PageInitial:   cfg.Catalog.PageInitial,
		PageStep:      cfg.Catalog.PageStep,
		LoadMoreDelay: cfg.Catalog.LoadMoreDelay,
	}
	invSvc := services.NewInventoryService(b.Products)
	orderSvc := services.NewOrderService(b.Orders)
	recSvc := &services.RecommendService{Gen: b.Generator, Metrics: b.Metrics}

	return &Deps{
		Auth:             authSvc,
		Hub:              hub,
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		GameHandler:      &GameHandler{},
		RecommendHandler: &RecommendHandler{Rec: recSvc},
		AuthHandler:      &AuthHandler{Auth: authSvc},
		CartHandler:      &CartHandler{Hub: hub, Catalog: catalogSvc},
		OrderHandler:     &OrderHandler{Hub: hub, Order: orderSvc},
	}
}

// Close signs every live cart out.
func (d *Deps) Close() { d.Hub.Close() }

// Limits are per-route request budgets.
type Limits struct {
	Login        int
	Availability int
	Recommend    int
	Window       time.Duration
}

func DefaultLimits() Limits {
	return Limits{Login: 5, Availability: 15, Recommend: 10, Window: time.Minute}
}

func routeLimiter(n int, window time.Duration, key, action string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        n,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + key
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, action, nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests. Please try again later."})
		},
	})
}

// Mount registers the JSON API under /api/v1. AttachUser must already be
// installed on r.
func (d *Deps) Mount(r fiber.Router, lim Limits) {
	api := r.Group("/api/v1")

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/categories", d.ProductHandler.Categories)
	api.Get("/availability", routeLimiter(lim.Availability, lim.Window, "avail", "rate.availability.hit"), d.InventoryHandler.Check)
	api.Get("/games", d.GameHandler.List)
	api.Get("/games/:slug", d.GameHandler.Detail)
	api.Post("/recommendations", routeLimiter(lim.Recommend, lim.Window, "recs", "rate.recommend.hit"), d.RecommendHandler.Recommend)

	auth := api.Group("/auth")
	auth.Post("/signup", routeLimiter(lim.Login, lim.Window, "signup", "rate.signup.hit"), d.AuthHandler.SignUp)
	auth.Post("/login", routeLimiter(lim.Login, lim.Window, "login", "rate.login.hit"), d.AuthHandler.Login)
	auth.Post("/logout", d.AuthHandler.Logout)
	auth.Get("/me", d.AuthHandler.Me)

	api.Get("/cart", d.CartHandler.View)
	api.Get("/cart/events", d.CartHandler.Events)
	api.Post("/cart/items", d.CartHandler.Add)
	api.Patch("/cart/items/:id", d.CartHandler.Update)
	api.Delete("/cart/items/:id", d.CartHandler.Remove)
	api.Delete("/cart", d.CartHandler.Clear)

	api.Get("/orders", RequireUser(), d.OrderHandler.History)
	api.Post("/orders", RequireUser(), d.OrderHandler.Place)
}
