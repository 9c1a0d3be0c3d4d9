// Package providers defines the identity shape every external login adapter
// resolves to before the orchestrator touches the credential store.
package providers

// Identity is a provider-resolved proof of identity. Email may be a
// synthesized placeholder when the provider does not expose a real address;
// in that case it is only an internal key, never a deliverable address.
type Identity struct {
	Email         string
	DisplayName   string
	ProviderID    string
	EmailVerified bool
}
