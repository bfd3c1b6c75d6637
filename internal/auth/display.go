package auth

import (
	"context"

	"portal/internal/domain"
)

// CurrentDisplayUser projects the request's attached Principal to the minimal
// display shape. Pure and side-effect free; the boolean is false when no
// Principal is attached.
func CurrentDisplayUser(ctx context.Context) (domain.DisplayUser, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return domain.DisplayUser{}, false
	}
	return p.Display(), true
}
