// Package testutil provides token issuance and fake identity-provider
// plumbing shared by tests.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portal/internal/domain"
)

// GenerateTestKeyPair generates an RSA key pair for testing.
// Returns (keyID, privateKey, publicKey).
func GenerateTestKeyPair(t *testing.T) (string, *rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	kid := fmt.Sprintf("test-key-%d", time.Now().UnixNano())
	return kid, priv, &priv.PublicKey
}

// IssueInternalToken creates a signed, kid-less RS256 bearer token the way
// the portal's own issuer does. Empty claim fields are omitted from the token
// rather than written as empty strings, matching the issuer's behavior.
// A negative ttl produces an already-expired token.
func IssueInternalToken(t *testing.T, priv *rsa.PrivateKey, tc domain.TokenClaims, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   tc.Sub,
		"email": tc.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"iss":   "portal-test",
	}
	if tc.Name != "" {
		claims["name"] = tc.Name
	}
	if tc.FirstName != "" {
		claims["firstName"] = tc.FirstName
	}
	if tc.LastName != "" {
		claims["lastName"] = tc.LastName
	}
	if tc.IsAdmin {
		claims["isAdmin"] = true
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// MockJWKSHandler returns an http.Handler that serves a JWKS response
// containing the given public key.
func MockJWKSHandler(kid string, pub *rsa.PublicKey) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwks := map[string]any{
			"keys": []map[string]any{
				{
					"kty": "RSA",
					"alg": "RS256",
					"use": "sig",
					"kid": kid,
					"n":   base64URLEncode(pub.N.Bytes()),
					"e":   base64URLEncode(big.NewInt(int64(pub.E)).Bytes()),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jwks)
	})
}

// OIDCIssuer is a fake external identity provider: it serves OIDC discovery
// and JWKS over httptest and signs kid-bearing id tokens.
type OIDCIssuer struct {
	URL      string
	ClientID string

	kid  string
	priv *rsa.PrivateKey
}

// NewOIDCIssuer starts the fake issuer and registers its shutdown with t.
func NewOIDCIssuer(t *testing.T) *OIDCIssuer {
	t.Helper()

	kid, priv, pub := GenerateTestKeyPair(t)
	iss := &OIDCIssuer{ClientID: "portal-test", kid: kid, priv: priv}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                iss.URL,
			"jwks_uri":                              iss.URL + "/keys",
			"authorization_endpoint":                iss.URL + "/auth",
			"token_endpoint":                        iss.URL + "/token",
			"id_token_signing_alg_values_supported": []string{"RS256"},
			"subject_types_supported":               []string{"public"},
			"response_types_supported":              []string{"id_token"},
		})
	})
	mux.Handle("GET /keys", MockJWKSHandler(kid, pub))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	iss.URL = srv.URL
	return iss
}

// IssueToken signs an id token for the subject. An empty name claim is
// omitted. A negative ttl produces an already-expired token.
func (i *OIDCIssuer) IssueToken(t *testing.T, sub, email, name string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   i.URL,
		"aud":   i.ClientID,
		"sub":   sub,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if name != "" {
		claims["name"] = name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = i.kid

	signed, err := token.SignedString(i.priv)
	if err != nil {
		t.Fatalf("signing id token: %v", err)
	}
	return signed
}

func base64URLEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
