package domain_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"portal/internal/domain"
)

func TestRejectionKindStatus(t *testing.T) {
	cases := map[domain.RejectionKind]int{
		domain.RejectionRevokedToken:        http.StatusUnauthorized,
		domain.RejectionInvalidCredentials:  http.StatusUnauthorized,
		domain.RejectionUnauthenticated:     http.StatusUnauthorized,
		domain.RejectionAccountNotFound:     http.StatusUnauthorized,
		domain.RejectionVerificationFailure: http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.Status(); got != want {
			t.Errorf("%s: status = %d, want %d", kind, got, want)
		}
	}
}

func TestRejectionKindListsProviders(t *testing.T) {
	listed := []domain.RejectionKind{
		domain.RejectionRevokedToken,
		domain.RejectionInvalidCredentials,
		domain.RejectionUnauthenticated,
	}
	for _, kind := range listed {
		if !kind.ListsProviders() {
			t.Errorf("%s must list providers", kind)
		}
	}
	if domain.RejectionAccountNotFound.ListsProviders() {
		t.Error("account_not_found is a data-consistency case, no provider listing")
	}
	if domain.RejectionVerificationFailure.ListsProviders() {
		t.Error("verification_failure must not list providers")
	}
}

func TestNewTokenPrincipalKeepsClaimsVerbatim(t *testing.T) {
	p := domain.NewTokenPrincipal(domain.TokenClaims{
		Sub:       "user-123",
		Email:     "test@example.com",
		FirstName: "Test",
		LastName:  "User",
	})

	if p.Provider != domain.ProviderJWT {
		t.Errorf("provider = %q", p.Provider)
	}
	if p.Claims.Name != "" {
		t.Errorf("claims name must not be synthesized, got %q", p.Claims.Name)
	}
	if p.Claims.Sub != "user-123" || p.Claims.Email != "test@example.com" {
		t.Errorf("claims mismatch: %+v", p.Claims)
	}
}

func TestRawClaimsOmitsAbsentName(t *testing.T) {
	b, err := json.Marshal(domain.RawClaims{Sub: "s", Email: "e@x.y"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "name") {
		t.Errorf("absent name must stay absent on the wire: %s", b)
	}
}

func TestNewExternalPrincipalUsesLocalID(t *testing.T) {
	u := domain.User{ID: "local-1", Email: "e@x.y", FirstName: "Eve"}
	c := domain.ExternalClaims{ExternalID: "ext-9", Email: "e@x.y", DisplayName: "Eve Example"}

	p := domain.NewExternalPrincipal(u, c)
	if p.ID != "local-1" {
		t.Errorf("id = %q, want the local record id", p.ID)
	}
	if p.Claims.Sub != "ext-9" {
		t.Errorf("claims sub = %q, want the external subject", p.Claims.Sub)
	}
	if p.Claims.Name != "Eve Example" {
		t.Errorf("claims name = %q", p.Claims.Name)
	}
}

func TestSplitDisplayName(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"", "", ""},
		{"Cher", "Cher", ""},
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Jean Claude Van Damme", "Jean", "Claude Van Damme"},
		{"  padded   name  ", "padded", "name"},
	}
	for _, c := range cases {
		first, last := domain.SplitDisplayName(c.in)
		if first != c.first || last != c.last {
			t.Errorf("SplitDisplayName(%q) = %q/%q, want %q/%q", c.in, first, last, c.first, c.last)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		p    domain.Principal
		want string
	}{
		{domain.Principal{FirstName: "Ada", LastName: "Lovelace", Email: "a@x.y"}, "Ada Lovelace"},
		{domain.Principal{FirstName: "Ada", Email: "a@x.y"}, "Ada"},
		{domain.Principal{LastName: "Lovelace", Email: "a@x.y"}, "Lovelace"},
		{domain.Principal{Email: "a@x.y"}, "a@x.y"},
	}
	for _, c := range cases {
		if got := c.p.Display().Name; got != c.want {
			t.Errorf("display name = %q, want %q", got, c.want)
		}
	}
}
