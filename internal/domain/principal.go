package domain

import "strings"

// Provider identifies which credential mechanism produced a Principal.
type Provider string

const (
	ProviderJWT      Provider = "jwt"
	ProviderExternal Provider = "external"
	ProviderSession  Provider = "session"
)

// AvailableProviders is the static listing included in rejections that stem
// from a missing or invalid credential, so clients know what else to try.
var AvailableProviders = map[string]string{
	"jwt":      "Bearer token issued by this service",
	"external": "Identity token issued by the configured external provider",
	"session":  "Authenticated browser session",
}

// RawClaims preserves the source token's own subject/email/name assertions
// verbatim. Downstream code treats this as an audit trail of what the token
// actually declared; Name is never synthesized from first/last name.
type RawClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Principal is the normalized, provider-agnostic identity attached to a
// request after successful resolution.
type Principal struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	Provider        Provider  `json:"provider"`
	IsAdmin         bool      `json:"isAdmin"`
	Claims          RawClaims `json:"claims"`
}

// TokenClaims is the decoded payload of an internally issued bearer token.
type TokenClaims struct {
	Sub       string
	Email     string
	Name      string
	FirstName string
	LastName  string
	IsAdmin   bool
}

// ExternalClaims is the verified assertion of an externally issued identity
// token. On the external path the raw claims travel alongside the Principal
// for consumers that need the unmodified assertion.
type ExternalClaims struct {
	ExternalID  string `json:"externalId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// User is the persisted directory record. A user is linked to at most one
// external id; linking touches ExternalID and nothing else.
type User struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
	ExternalID      string
	IsAdmin         bool
}

// UserPatch is a partial directory update. Nil fields are left untouched.
type UserPatch struct {
	ExternalID      *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
}

// NewTokenPrincipal builds a Principal from internal bearer-token claims.
func NewTokenPrincipal(c TokenClaims) Principal {
	return Principal{
		ID:        c.Sub,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Provider:  ProviderJWT,
		IsAdmin:   c.IsAdmin,
		Claims: RawClaims{
			Sub:   c.Sub,
			Email: c.Email,
			Name:  c.Name,
		},
	}
}

// NewExternalPrincipal builds a Principal for an external identity that has
// been reconciled against the directory. The id is always the local record's
// id; the claims keep the external subject exactly as the token asserted it.
func NewExternalPrincipal(u User, c ExternalClaims) Principal {
	return Principal{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Provider:        ProviderExternal,
		IsAdmin:         u.IsAdmin,
		Claims: RawClaims{
			Sub:   c.ExternalID,
			Email: c.Email,
			Name:  c.DisplayName,
		},
	}
}

// NewSessionPrincipal builds a Principal from a directory record referenced
// by an authenticated session. There is no token, so the claims carry the
// record's own identifiers.
func NewSessionPrincipal(u User) Principal {
	return Principal{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Provider:        ProviderSession,
		IsAdmin:         u.IsAdmin,
		Claims: RawClaims{
			Sub:   u.ID,
			Email: u.Email,
		},
	}
}

// SplitDisplayName derives first/last name from a free-form display name:
// first token, then the remainder. Empty input yields empty parts.
func SplitDisplayName(displayName string) (first, last string) {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// DisplayUser is the minimal display shape projected from a Principal.
type DisplayUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Provider Provider `json:"provider"`
}

// Display projects the Principal to its display shape. Name is the trimmed
// concatenation of first/last name when either is present, else the email.
func (p Principal) Display() DisplayUser {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		name = p.Email
	}
	return DisplayUser{
		ID:       p.ID,
		Email:    p.Email,
		Name:     name,
		Provider: p.Provider,
	}
}
