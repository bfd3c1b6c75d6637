package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"portal/internal/domain"
)

// Client-facing rejection messages.
const (
	msgTokenRevoked       = "Token has been invalidated"
	msgInvalidCredentials = "Invalid authentication credentials"
	msgAuthRequired       = "Authentication required"
	msgAccountNotFound    = "User account not found"
	msgVerificationFailed = "Authentication verification failed"
)

// Outcome is the terminal result of resolving one request: either an accepted
// Principal (plus the raw external claims on the external path) or a
// categorized rejection. Constructed once per request, consumed immediately,
// never persisted.
type Outcome struct {
	Principal      *domain.Principal
	ExternalClaims *domain.ExternalClaims
	Rejection      *Rejection
}

// Rejection carries the category and client-facing message of a refusal.
type Rejection struct {
	Kind    domain.RejectionKind
	Message string
}

func accepted(p domain.Principal) *Outcome {
	return &Outcome{Principal: &p}
}

func rejected(kind domain.RejectionKind, msg string) *Outcome {
	return &Outcome{Rejection: &Rejection{Kind: kind, Message: msg}}
}

// Resolver sequences credential extraction, classification, and the provider
// resolvers into one deterministic pipeline. It holds no per-request state;
// all mutable state lives behind the injected collaborators.
type Resolver struct {
	tokens     TokenVerifier
	external   ExternalIdentityVerifier
	revocation RevocationRegistry
	directory  UserDirectory
	sessions   SessionAuthenticator
}

// NewResolver wires the five external collaborators into a Resolver.
func NewResolver(
	tokens TokenVerifier,
	external ExternalIdentityVerifier,
	revocation RevocationRegistry,
	directory UserDirectory,
	sessions SessionAuthenticator,
) *Resolver {
	return &Resolver{
		tokens:     tokens,
		external:   external,
		revocation: revocation,
		directory:  directory,
		sessions:   sessions,
	}
}

// step is one stage of the pipeline. A nil outcome means "no decision, try
// the next step"; the last step of every pipeline is terminal.
type step func(ctx context.Context) *Outcome

// Resolve turns a request into an accepted Principal or a categorized
// rejection. Precedence is deterministic and strictly sequential: steps never
// run concurrently, and the only retry is the single external-to-internal
// fallback for tokens the external verifier refuses.
func (r *Resolver) Resolve(req *http.Request) *Outcome {
	cred := ExtractCredential(req)

	var steps []step
	if cred.Kind == CredentialNone {
		steps = []step{r.sessionStep(req)}
	} else if tok := Classify(cred.RawToken); tok.ExternallyIssued {
		steps = []step{
			r.externalStep(tok.RawToken),
			r.internalVerifyStep(tok.RawToken),
			rejectStep(domain.RejectionInvalidCredentials, msgInvalidCredentials),
		}
	} else {
		steps = []step{
			r.revocationStep(tok.RawToken),
			r.internalVerifyStep(tok.RawToken),
			r.sessionStep(req),
		}
	}

	ctx := req.Context()
	for _, s := range steps {
		if out := s(ctx); out != nil {
			return out
		}
	}
	// Unreachable: every pipeline ends in a terminal step.
	return rejected(domain.RejectionUnauthenticated, msgAuthRequired)
}

// revocationStep terminates resolution for invalidated tokens. Registry
// errors are fail-open: an unreachable registry must not lock every client
// out, and the token still has to pass signature verification.
func (r *Resolver) revocationStep(raw string) step {
	return func(ctx context.Context) *Outcome {
		revoked, err := r.revocation.IsRevoked(ctx, raw)
		if err != nil {
			slog.Warn("revocation check failed", "error", err)
			return nil
		}
		if revoked {
			return rejected(domain.RejectionRevokedToken, msgTokenRevoked)
		}
		return nil
	}
}

// internalVerifyStep accepts the request when the token decodes as a valid
// internal bearer token. An unverifiable token is not proof of full
// unauthentication, so the step yields no decision and the pipeline moves on.
func (r *Resolver) internalVerifyStep(raw string) step {
	return func(ctx context.Context) *Outcome {
		claims, err := r.tokens.Verify(ctx, raw)
		if err != nil {
			slog.Debug("internal token verification failed", "error", err)
			return nil
		}
		if claims == nil {
			return nil
		}
		return accepted(domain.NewTokenPrincipal(*claims))
	}
}

// externalStep verifies an external identity token and reconciles it against
// the directory. Verifier refusals are recovered locally: a misclassified
// token still gets one more chance through internal verification, so the step
// yields no decision. Directory failures during linking are server faults.
func (r *Resolver) externalStep(raw string) step {
	return func(ctx context.Context) *Outcome {
		claims, err := r.external.Verify(ctx, raw)
		if err != nil {
			slog.Debug("external token verification failed", "error", err)
			return nil
		}

		user, err := r.linkOrCreate(ctx, *claims)
		if err != nil {
			slog.Error("reconciling external identity", "error", err)
			return rejected(domain.RejectionVerificationFailure, msgVerificationFailed)
		}

		out := accepted(domain.NewExternalPrincipal(*user, *claims))
		out.ExternalClaims = claims
		return out
	}
}

// linkOrCreate reconciles a verified external identity with the directory: an
// email match links the external id to the existing record without touching
// its other fields, otherwise a new record keyed by the external id is
// created.
func (r *Resolver) linkOrCreate(ctx context.Context, c domain.ExternalClaims) (*domain.User, error) {
	existing, err := r.directory.FindByEmail(ctx, c.Email)
	if err != nil {
		return nil, fmt.Errorf("directory lookup by email: %w", err)
	}
	if existing != nil {
		if err := r.directory.Update(ctx, existing.ID, domain.UserPatch{ExternalID: &c.ExternalID}); err != nil {
			return nil, fmt.Errorf("linking external id: %w", err)
		}
		linked := *existing
		linked.ExternalID = c.ExternalID
		return &linked, nil
	}

	first, last := domain.SplitDisplayName(c.DisplayName)
	created, err := r.directory.Create(ctx, domain.User{
		ID:         c.ExternalID,
		Email:      c.Email,
		FirstName:  first,
		LastName:   last,
		ExternalID: c.ExternalID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return created, nil
}

// sessionStep is the terminal fallback. A missing session rejects with the
// provider listing; a session that references a vanished record is a
// data-consistency rejection; a directory failure behind an already-trusted
// session is the one place an internal error surfaces as a server fault.
func (r *Resolver) sessionStep(req *http.Request) step {
	return func(ctx context.Context) *Outcome {
		userID, ok := r.sessions.UserID(req)
		if !ok {
			return rejected(domain.RejectionUnauthenticated, msgAuthRequired)
		}

		user, err := r.directory.FindByID(ctx, userID)
		if err != nil {
			slog.Error("session user lookup failed", "user_id", userID, "error", err)
			return rejected(domain.RejectionVerificationFailure, msgVerificationFailed)
		}
		if user == nil {
			return rejected(domain.RejectionAccountNotFound, msgAccountNotFound)
		}
		return accepted(domain.NewSessionPrincipal(*user))
	}
}

func rejectStep(kind domain.RejectionKind, msg string) step {
	return func(context.Context) *Outcome {
		return rejected(kind, msg)
	}
}
