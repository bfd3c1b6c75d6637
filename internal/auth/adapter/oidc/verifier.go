// Package oidc verifies externally issued identity tokens against the
// configured OIDC issuer.
package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"portal/internal/domain"
)

// Verifier wraps an OIDC ID-token verifier for one issuer/audience pair.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// New discovers the issuer's configuration and builds a Verifier that
// accepts tokens minted for clientID.
func New(ctx context.Context, issuerURL, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discovering oidc issuer: %w", err)
	}
	return &Verifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify checks the raw token's signature, issuer, audience, and expiry, and
// returns the external assertion. Any failure means the token is not a valid
// external credential.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*domain.ExternalClaims, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification failed: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("id token claims parse failed: %w", err)
	}
	if idToken.Subject == "" || claims.Email == "" {
		return nil, errors.New("id token missing required claims")
	}

	return &domain.ExternalClaims{
		ExternalID:  idToken.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
