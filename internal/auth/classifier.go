package auth

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ClassifiedToken records which verifier a raw token should be tried against
// first.
type ClassifiedToken struct {
	RawToken         string
	ExternallyIssued bool
}

// Classify peeks at the token's header segment for a signing-key identifier.
// Externally issued tokens carry a kid; internally issued ones do not. This
// is a structural heuristic, not verification: it only narrows which verifier
// to attempt first, so any malformed input classifies as internally issued
// and Classify never fails.
func Classify(rawToken string) ClassifiedToken {
	tok := ClassifiedToken{RawToken: rawToken}

	segments := strings.Split(rawToken, ".")
	if len(segments) != 3 {
		return tok
	}
	headerBytes, err := jwt.NewParser().DecodeSegment(segments[0])
	if err != nil {
		return tok
	}
	var header struct {
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return tok
	}

	tok.ExternallyIssued = header.Kid != ""
	return tok
}
