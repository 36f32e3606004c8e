package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sui-testnet-faucet/internal/broadcaster"
	"github.com/sui-testnet-faucet/internal/config"
	"github.com/sui-testnet-faucet/internal/faucet"
	"github.com/sui-testnet-faucet/internal/handler"
	"github.com/sui-testnet-faucet/internal/handler/admin"
	"github.com/sui-testnet-faucet/internal/metrics"
	mw "github.com/sui-testnet-faucet/internal/middleware"
	"github.com/sui-testnet-faucet/internal/service"
	"github.com/sui-testnet-faucet/internal/store"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	limiter := faucet.NewRateLimiter(cfg.WalletCooldown, cfg.IPWindow, cfg.IPMaxPerWindow)
	ledger := faucet.NewLedger()
	stats := faucet.NewStats(time.Now())
	sim := broadcaster.NewSimulator(cfg.BroadcastFailureRate, cfg.BroadcastMinDelay, cfg.BroadcastMaxDelay, cfg.ExplorerBaseURL)
	svc := faucet.NewService(limiter, ledger, stats, sim, m, cfg.DispenseAmount, cfg.BroadcastTimeout)

	sessions := mw.NewSessionStore()

	// The client registry is optional: without a database the v1 keyed API
	// surface is simply not mounted.
	var clients *service.ClientService
	var pg *store.Postgres
	if cfg.DatabaseURL != "" {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("pinging database: %w", err)
		}
		pg = store.NewPostgres(pool)
		clients = service.NewClientService(pg)
		log.Info().Msg("API client registry enabled")
	} else {
		log.Warn().Msg("DATABASE_URL not set; API client registry disabled")
	}

	router := buildRouter(cfg, svc, clients, pg, sessions, reg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("version", version).Msg("faucet server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func buildRouter(
	cfg *config.Config,
	svc *faucet.Service,
	clients *service.ClientService,
	pg *store.Postgres,
	sessions *mw.SessionStore,
	reg *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.RequireJSON)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Method(http.MethodGet, "/healthz", handler.NewHealthHandler(version))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	creds := admin.Credentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword}

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/faucet/request", handler.NewDispenseHandler(svc))
		r.Method(http.MethodGet, "/faucet/rate-limit/{walletAddress}", handler.NewRateLimitHandler(svc))
		r.Method(http.MethodGet, "/stats", handler.NewStatsHandler(svc))

		r.Route("/admin", func(r chi.Router) {
			r.Method(http.MethodPost, "/login", admin.NewLoginHandler(creds, sessions))
			r.Group(func(r chi.Router) {
				r.Use(mw.AdminAuth(sessions))
				r.Method(http.MethodPost, "/logout", admin.NewLogoutHandler(sessions))
				r.Method(http.MethodGet, "/dashboard", admin.NewDashboardHandler(svc, version))
				if pg != nil {
					r.Method(http.MethodGet, "/clients", admin.NewListClientsHandler(pg))
				}
			})
		})

		if clients != nil {
			r.Route("/v1", func(r chi.Router) {
				r.Method(http.MethodPost, "/clients/register", handler.NewRegisterClientHandler(clients))
				r.Method(http.MethodGet, "/clients/{clientId}", handler.NewClientDashboardHandler(clients))
				r.Group(func(r chi.Router) {
					r.Use(mw.APIClientAuth(clients))
					r.Use(mw.UsageLogging(clients))
					r.Method(http.MethodPost, "/faucet/request", handler.NewV1DispenseHandler(svc))
				})
			})
		}
	})

	return r
}
