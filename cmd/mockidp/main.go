// Command mockidp is a development identity provider. It issues kid-less
// internal bearer tokens from seeded credentials, publishes the signing key
// as JWKS, and doubles as a minimal OIDC issuer so the external path can be
// exercised locally.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portal/internal/platform/server"
)

type mockUser struct {
	password  string
	email     string
	firstName string
	lastName  string
	isAdmin   bool
}

func main() {
	addr := envOr("MOCKIDP_ADDR", ":8081")
	issuer := envOr("MOCKIDP_ISSUER", "http://localhost:8081")
	clientID := envOr("MOCKIDP_CLIENT_ID", "portal-dev")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		slog.Error("generating RSA key", "error", err)
		os.Exit(1)
	}
	kid := fmt.Sprintf("mockidp-key-%d", time.Now().Unix())

	users := map[string]mockUser{
		"admin": {password: "admin", email: "admin@example.com", firstName: "Ada", lastName: "Admin", isAdmin: true},
		"user":  {password: "password", email: "user@example.com", firstName: "Uma", lastName: "User"},
	}

	slog.Info("mock identity provider starting",
		"addr", addr,
		"issuer", issuer,
		"kid", kid,
		"users", "admin:admin, user:password",
	)

	mux := http.NewServeMux()

	jwksHandler := func(w http.ResponseWriter, r *http.Request) {
		pub := &priv.PublicKey
		jwks := map[string]any{
			"keys": []map[string]any{
				{
					"kty": "RSA",
					"alg": "RS256",
					"use": "sig",
					"kid": kid,
					"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jwks)
	}
	mux.HandleFunc("GET /.well-known/jwks.json", jwksHandler)
	mux.HandleFunc("GET /keys", jwksHandler)

	// OIDC discovery, enough for go-oidc to point at this process
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                issuer,
			"jwks_uri":                              issuer + "/keys",
			"authorization_endpoint":                issuer + "/auth",
			"token_endpoint":                        issuer + "/token",
			"id_token_signing_alg_values_supported": []string{"RS256"},
			"subject_types_supported":               []string{"public"},
			"response_types_supported":              []string{"id_token"},
		})
	})

	// Internal bearer tokens: signed with the same key but without a kid,
	// the shape the portal's classifier treats as internally issued.
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		u, ok := users[req.Username]
		if !ok || u.password != req.Password {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		ttl := 15 * time.Minute
		now := time.Now()
		claims := jwt.MapClaims{
			"sub":       req.Username,
			"email":     u.email,
			"firstName": u.firstName,
			"lastName":  u.lastName,
			"isAdmin":   u.isAdmin,
			"iat":       now.Unix(),
			"exp":       now.Add(ttl).Unix(),
			"iss":       issuer,
		}

		signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(priv)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to sign token")
			return
		}
		writeToken(w, signed, ttl)
	})

	// External id tokens: kid in the header, issuer/audience claims, the
	// shape the portal's classifier routes to the external path.
	mux.HandleFunc("POST /idp/token", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject string `json:"subject"`
			Email   string `json:"email"`
			Name    string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Subject == "" || req.Email == "" {
			writeError(w, http.StatusBadRequest, "subject and email are required")
			return
		}

		ttl := 15 * time.Minute
		now := time.Now()
		claims := jwt.MapClaims{
			"iss":   issuer,
			"aud":   clientID,
			"sub":   req.Subject,
			"email": req.Email,
			"iat":   now.Unix(),
			"exp":   now.Add(ttl).Unix(),
		}
		if req.Name != "" {
			claims["name"] = req.Name
		}

		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		token.Header["kid"] = kid
		signed, err := token.SignedString(priv)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to sign token")
			return
		}
		writeToken(w, signed, ttl)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "mockidp"})
	})

	srv := server.New(addr, mux)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
	}
}

func writeToken(w http.ResponseWriter, signed string, ttl time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int(ttl.Seconds()),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
