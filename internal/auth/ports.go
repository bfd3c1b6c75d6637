package auth

import (
	"context"
	"net/http"

	"portal/internal/domain"
)

// TokenVerifier validates an internally issued bearer token. Nil claims (with
// or without an error) mean the token could not be verified as internal; the
// pipeline treats that as grounds for fallthrough, never as a hard failure.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.TokenClaims, error)
}

// ExternalIdentityVerifier validates an externally issued identity token.
// An error means the token is not a valid external assertion.
type ExternalIdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.ExternalClaims, error)
}

// RevocationRegistry reports whether an internal token has been invalidated
// before its natural expiry.
type RevocationRegistry interface {
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// UserDirectory is the persisted user record store. Find methods return
// (nil, nil) when no record matches; Update applies only the patch's non-nil
// fields.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) error
}

// SessionAuthenticator reports whether the request already carries an
// authenticated session and, if so, which user it references.
type SessionAuthenticator interface {
	UserID(r *http.Request) (string, bool)
}

// PrincipalFromContext extracts the resolved Principal from a request context.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// ContextWithPrincipal stores the resolved Principal in the context.
func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

type principalKey struct{}

// ExternalClaimsFromContext extracts the raw external assertion attached on
// the external path. Most requests have none.
func ExternalClaimsFromContext(ctx context.Context) (domain.ExternalClaims, bool) {
	c, ok := ctx.Value(externalClaimsKey{}).(domain.ExternalClaims)
	return c, ok
}

// ContextWithExternalClaims stores the raw external assertion in the context.
func ContextWithExternalClaims(ctx context.Context, c domain.ExternalClaims) context.Context {
	return context.WithValue(ctx, externalClaimsKey{}, c)
}

type externalClaimsKey struct{}
