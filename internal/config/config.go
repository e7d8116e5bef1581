package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"

	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBDSN    string `envconfig:"DB_DSN" default:"ektagames.db"` // sqlite file in project root
	LogFile  string `envconfig:"LOG_FILE" default:"./ektagames.log"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	CartBackend  string `envconfig:"CART_BACKEND" default:"sqlite"`  // sqlite | firestore
	AuthProvider string `envconfig:"AUTH_PROVIDER" default:"local"` // local | firebase

	GCPProjectID       string `envconfig:"GCP_PROJECT_ID"`
	GCPCredentialsFile string `envconfig:"GCP_CREDENTIALS_FILE"`
	FirebaseAPIKey     string `envconfig:"FIREBASE_API_KEY"`

	Upstream UpstreamConfig
	Catalog  CatalogConfig
	Cart     CartConfig
	Gemini   GeminiConfig
}

// CartConfig bounds how long a silent session keeps its live cart.
type CartConfig struct {
	IdleTimeout time.Duration `envconfig:"CART_IDLE_TIMEOUT" default:"30m"`
	SweepCron   string        `envconfig:"CART_SWEEP_CRON" default:"@every 5m"`
}

type UpstreamConfig struct {
	DummyJSONURL string        `envconfig:"DUMMYJSON_URL" default:"https://dummyjson.com"`
	FakeStoreURL string        `envconfig:"FAKESTORE_URL" default:"https://fakestoreapi.com"`
	Timeout      time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"8s"`
	RPS          float64       `envconfig:"UPSTREAM_RPS" default:"20"`
}

type CatalogConfig struct {
	CacheTTL      time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"0s"`
	RefreshCron   string        `envconfig:"CATALOG_REFRESH_CRON"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	PageInitial   int           `envconfig:"PAGE_INITIAL" default:"12"`
	PageStep      int           `envconfig:"PAGE_STEP" default:"8"`
	LoadMoreDelay time.Duration `envconfig:"LOAD_MORE_DELAY" default:"500ms"`
}

type GeminiConfig struct {
	APIKey  string        `envconfig:"GEMINI_API_KEY"`
	Model   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	BaseURL string        `envconfig:"GEMINI_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `envconfig:"GEMINI_TIMEOUT" default:"20s"`
}

func Load() Config {
	// .env is optional; real env vars win.
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("[config] %v", err)
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s CART_BACKEND=%s AUTH_PROVIDER=%s CATALOG_CACHE_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.CartBackend, cfg.AuthProvider, cfg.Catalog.CacheTTL)
	return cfg
}
