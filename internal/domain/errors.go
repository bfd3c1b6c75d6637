package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors used across service boundaries.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSigningKey = errors.New("no signing key available")
)

// RejectionKind categorizes why resolution refused a request.
type RejectionKind string

const (
	RejectionRevokedToken        RejectionKind = "revoked_token"
	RejectionInvalidCredentials  RejectionKind = "invalid_credentials"
	RejectionUnauthenticated     RejectionKind = "unauthenticated"
	RejectionAccountNotFound     RejectionKind = "account_not_found"
	RejectionVerificationFailure RejectionKind = "verification_failure"
)

// Status maps the rejection kind to its HTTP status code. Only a directory
// failure behind an already-trusted session or during account linking is a
// server fault; everything else is a credential problem.
func (k RejectionKind) Status() int {
	if k == RejectionVerificationFailure {
		return http.StatusInternalServerError
	}
	return http.StatusUnauthorized
}

// ListsProviders reports whether rejections of this kind carry the
// available-provider listing. Only rejections caused by a missing or invalid
// credential do; AccountNotFound is a data-consistency case, not a
// "try another method" case.
func (k RejectionKind) ListsProviders() bool {
	switch k {
	case RejectionRevokedToken, RejectionInvalidCredentials, RejectionUnauthenticated:
		return true
	default:
		return false
	}
}

// ErrorResponse is the standard JSON rejection envelope returned to clients.
type ErrorResponse struct {
	Success            bool              `json:"success"`
	Message            string            `json:"message"`
	AvailableProviders map[string]string `json:"availableProviders,omitempty"`
}
