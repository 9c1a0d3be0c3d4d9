// Package apple accepts Apple identity tokens WITHOUT cryptographic
// validation: the token's mere presence is taken as proof and a fixed
// substitute email is used. This reproduces the behavior of existing
// deployments and is a documented security gap, not an oversight. Do not
// treat accounts resolved here as having a verified email.
package apple

import (
	"fmt"

	"github.com/visitgate/visitgate/internal/providers"
)

type Resolver struct {
	fallbackEmail string
}

func NewResolver(fallbackEmail string) *Resolver {
	return &Resolver{fallbackEmail: fallbackEmail}
}

// Resolve substitutes the configured fixed email for any non-empty token.
// EmailVerified is always false; callers must gate session issuance behind
// an email-delivered code.
func (r *Resolver) Resolve(identityToken string) (*providers.Identity, error) {
	if identityToken == "" {
		return nil, fmt.Errorf("identity token is required")
	}
	return &providers.Identity{
		Email:         r.fallbackEmail,
		DisplayName:   "",
		ProviderID:    "",
		EmailVerified: false,
	}, nil
}
