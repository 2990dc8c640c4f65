package gateway

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrconsole/internal/backend"
	"hrconsole/internal/domain/audit"
	"hrconsole/internal/platform/config"
	"hrconsole/internal/platform/db"
	"hrconsole/internal/transport/http/middleware"
)

// App is the reference gateway: the legacy HTTP protocol the console talks
// to, backed by Postgres when DATABASE_URL is set and by memory otherwise.
type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Store  backend.Store
	Audit  audit.Recorder
	Router http.Handler
}

const memoryAuditEvents = 1000

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.ValidateGateway(); err != nil {
		return nil, err
	}
	if cfg.GatewayJWTSecret == "" {
		slog.Warn("GATEWAY_JWT_SECRET not set, using a random secret")
		cfg.GatewayJWTSecret = uuid.NewString()
	}

	app := &App{Config: cfg}
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				pool.Close()
				return nil, err
			}
		}
		if cfg.RunSeed {
			if err := db.Seed(ctx, pool, cfg); err != nil {
				pool.Close()
				return nil, err
			}
		}
		app.DB = pool
		app.Store = backend.NewPGStore(pool)
		app.Audit = audit.New(pool)
	} else {
		slog.Warn("DATABASE_URL not set, serving demo data from memory")
		store := backend.NewMemStore()
		if err := backend.SeedDemo(ctx, store, cfg.SeedAdminUsername, cfg.SeedAdminPassword); err != nil {
			return nil, err
		}
		app.Store = store
		app.Audit = audit.NewMemoryLog(memoryAuditEvents)
	}

	app.Router = app.routes()
	return app, nil
}

func (a *App) routes() http.Handler {
	cfg := a.Config

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(cfg.GatewayJWTSecret))
	router.Use(middleware.Logger("gateway", nil))
	router.Use(chimw.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMin, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := a.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	handler := backend.NewHandler(a.Store, cfg.GatewayJWTSecret, cfg.GatewayTokenTTL, cfg.DoubleEncode)
	handler.Audit = a.Audit
	handler.RegisterRoutes(router)

	return router
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()
	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("gateway startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("reference gateway listening on %s", cfg.GatewayAddr)
	if err := http.ListenAndServe(cfg.GatewayAddr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
