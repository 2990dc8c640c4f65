package console

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"hrconsole/internal/gateway"
	"hrconsole/internal/platform/config"
	"hrconsole/internal/platform/jobs"
	"hrconsole/internal/platform/metrics"
	"hrconsole/internal/session"
	authhandler "hrconsole/internal/transport/http/handlers/auth"
	leavehandler "hrconsole/internal/transport/http/handlers/leave"
	masterdatahandler "hrconsole/internal/transport/http/handlers/masterdata"
	"hrconsole/internal/transport/http/middleware"
	"hrconsole/internal/transport/http/shared"
)

type App struct {
	Config   config.Config
	Router   http.Handler
	Sessions *session.Registry
	Jobs     *jobs.Service
	Metrics  *metrics.Collector
}

// New wires the console server. Background jobs start only when Start is
// called, so tests can build an App without a sweeper running.
func New(cfg config.Config) (*App, error) {
	if err := cfg.ValidateConsole(); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		slog.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
		cfg.SessionSecret = uuid.NewString()
	}

	base, err := gateway.New(cfg.GatewayURL, cfg.GatewayTimeout)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Sessions: session.NewRegistry(base, cfg.NotificationTTL, cfg.SessionTTL),
		Jobs:     jobs.New(),
		Metrics:  metrics.New(),
	}
	app.Jobs.Every(jobs.JobSessionSweep, cfg.SweepInterval, app.sweepSessions)
	app.Router = app.routes()
	return app, nil
}

func (a *App) sweepSessions(ctx context.Context) (any, error) {
	removed := a.Sessions.Sweep(time.Now())
	return map[string]int{"removed": removed, "live": a.Sessions.Len()}, nil
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	sessions := &shared.Sessions{
		Registry: a.Sessions,
		Secret:   cfg.SessionSecret,
		TTL:      cfg.SessionTTL,
		Secure:   cfg.IsProduction(),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(cfg.SessionSecret))
	router.Use(middleware.Logger("console", a.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMin, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := gatewayReachable(ctx, cfg.GatewayURL); err != nil {
			http.Error(w, "gateway not reachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		snapshot := a.Metrics.Snapshot()
		snapshot["liveSessions"] = a.Sessions.Len()
		snapshot["jobs"] = a.Jobs.LastRuns()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			slog.Warn("write metrics failed", "err", err)
		}
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(sessions)
		authHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireWorkspace)
			r.Use(shared.RequireActive)

			masterdataHandler := masterdatahandler.NewHandler()
			masterdataHandler.RegisterRoutes(r)

			leaveHandler := leavehandler.NewHandler()
			leaveHandler.RegisterRoutes(r)
		})
	})

	return router
}

// gatewayReachable treats any HTTP answer as reachable; only transport
// failures mean the gateway is down.
func gatewayReachable(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Start launches the background jobs.
func (a *App) Start(ctx context.Context) {
	a.Jobs.Start(ctx)
}

func Run() {
	cfg := config.Load()
	app, err := New(cfg)
	if err != nil {
		log.Fatalf("console config invalid: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.Start(ctx)

	log.Printf("HR console listening on %s (gateway %s)", cfg.ConsoleAddr, cfg.GatewayURL)
	if err := http.ListenAndServe(cfg.ConsoleAddr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
