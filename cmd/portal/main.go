package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"portal/internal/auth"
	"portal/internal/auth/adapter/inmem"
	"portal/internal/auth/adapter/jwks"
	"portal/internal/auth/adapter/oidc"
	"portal/internal/auth/adapter/postgres"
	redisadapter "portal/internal/auth/adapter/redis"
	"portal/internal/auth/adapter/token"
	"portal/internal/auth/middleware"
	"portal/internal/domain"
	"portal/internal/platform/config"
	"portal/internal/platform/server"
	"portal/internal/platform/telemetry"
)

func main() {
	cfg := config.Load()

	// Logging
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	shutdown, err := telemetry.Setup(context.Background(), "portal")
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	metrics, err := telemetry.NewAuthMetrics()
	if err != nil {
		slog.Error("metrics initialization failed", "error", err)
		os.Exit(1)
	}

	// Internal token verification
	keys := jwks.NewClient(cfg.JWKSEndpoint, cfg.JWKSMinRefresh)
	tokens := token.NewVerifier(keys)

	// External identity verification
	var external auth.ExternalIdentityVerifier = externalDisabled{}
	if cfg.OIDCIssuer != "" {
		external, err = oidc.New(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			slog.Error("oidc verifier initialization failed", "issuer", cfg.OIDCIssuer, "error", err)
			os.Exit(1)
		}
	}

	// Revocation registry and session authenticator
	var revocation auth.RevocationRegistry
	var sessions auth.SessionAuthenticator
	if cfg.RedisAddr != "" {
		client, err := redisadapter.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		revocation = redisadapter.NewRevocationRegistry(client)
		sessions = redisadapter.NewAuthenticator(redisadapter.NewSessionStore(client))
	} else {
		slog.Warn("REDIS_ADDR not set, using in-memory revocation registry and sessions")
		revocation = inmem.NewRevocationRegistry()
		sessions = inmem.NewSessionStore()
	}

	// User directory
	var directory auth.UserDirectory
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		directory = pg
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory user directory")
		directory = inmem.NewDirectory()
	}

	resolver := auth.NewResolver(tokens, external, revocation, directory, sessions)

	// Routes
	publicPaths := []string{"/healthz", "/readyz", "/metrics"}
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	mux.HandleFunc("GET /healthz", handleOK)
	mux.HandleFunc("GET /readyz", handleOK)
	mux.HandleFunc("GET /api/auth/user", handleCurrentUser)

	handler := middleware.Chain(
		mux,
		middleware.Metrics(metrics),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recovery,
		middleware.RequireAuth(resolver, publicPaths, metrics),
	)

	srv := server.New(cfg.Addr, handler)

	slog.Info("portal starting",
		"addr", cfg.Addr,
		"jwks_endpoint", cfg.JWKSEndpoint,
		"oidc_issuer", cfg.OIDCIssuer,
	)

	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
	}

	if err := shutdown(context.Background()); err != nil {
		slog.Error("telemetry shutdown error", "error", err)
	}
}

func handleOK(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	display, ok := auth.CurrentDisplayUser(r.Context())
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(domain.ErrorResponse{Message: "Authentication required"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(display); err != nil {
		slog.Error("encoding user response", "error", err)
	}
}

// externalDisabled stands in when no OIDC issuer is configured; every token
// it sees falls back to internal verification.
type externalDisabled struct{}

func (externalDisabled) Verify(context.Context, string) (*domain.ExternalClaims, error) {
	return nil, errors.New("external identity provider not configured")
}
