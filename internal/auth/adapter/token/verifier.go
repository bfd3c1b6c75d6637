package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portal/internal/auth/adapter/jwks"
	"portal/internal/domain"
)

const maxClockSkew = 30 * time.Second

// Verifier validates internally issued bearer tokens against the issuer's
// published signing keys.
type Verifier struct {
	keys *jwks.Client
}

// NewVerifier creates a Verifier backed by the given key source.
func NewVerifier(keys *jwks.Client) *Verifier {
	return &Verifier{keys: keys}
}

// Verify decodes the raw token and returns its claims.
// SECURITY: Only RS256 is accepted — prevents algorithm confusion attacks.
// Internal tokens carry no kid and verify against the issuer's primary key;
// a kid, when present, selects the key directly.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*domain.TokenClaims, error) {
	tok, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		kidRaw, ok := t.Header["kid"]
		if !ok {
			return v.keys.PrimaryKey(ctx)
		}
		kid, ok := kidRaw.(string)
		if !ok {
			return nil, domain.ErrInvalidToken
		}
		return v.keys.GetKey(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithLeeway(maxClockSkew),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, domain.ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, domain.ErrInvalidToken
	}

	claims := &domain.TokenClaims{Sub: sub}
	claims.Email, _ = mc["email"].(string)
	claims.Name, _ = mc["name"].(string)
	claims.FirstName, _ = mc["firstName"].(string)
	claims.LastName, _ = mc["lastName"].(string)
	claims.IsAdmin, _ = mc["isAdmin"].(bool)
	return claims, nil
}
