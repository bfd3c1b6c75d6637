package auth

import (
	"net/http"
	"strings"
)

// CookieName is the auth-token cookie consulted when no usable Authorization
// header is present.
const CookieName = "auth_token"

// SessionCookieName carries the server-side session id. The session itself is
// established by a login flow outside this layer; resolution only reads it.
const SessionCookieName = "portal_session"

// CredentialKind says where a raw token candidate came from.
type CredentialKind int

const (
	CredentialNone CredentialKind = iota
	CredentialBearer
	CredentialCookie
)

// Credential is the raw material extracted from a request before any
// verification. Ephemeral: created per request, discarded after
// classification.
type Credential struct {
	Kind     CredentialKind
	RawToken string
}

// ExtractCredential pulls the raw token candidate out of the request. A
// bearer Authorization header takes priority over the auth cookie; absence of
// both is a valid result, not an error.
func ExtractCredential(r *http.Request) Credential {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return Credential{Kind: CredentialBearer, RawToken: strings.TrimSpace(parts[1])}
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return Credential{Kind: CredentialCookie, RawToken: c.Value}
	}
	return Credential{Kind: CredentialNone}
}
