// Package repository declares the persistence interfaces of the client.
// The only thing the client persists is the bearer credential; everything
// else it shows is a cache of server state.
package repository

import "context"

// CredentialStore holds the single bearer credential of the client.
//
// Lifecycle: written on successful login, read on every outgoing request,
// cleared on logout or when identity resolution fails. At most one
// credential is active at a time; an empty token from Get means
// "unauthenticated". No expiry bookkeeping happens here — an expired token
// is only discovered when an authenticated call fails.
type CredentialStore interface {
	// Set replaces the stored credential.
	Set(ctx context.Context, token string) error

	// Get returns the stored credential, or "" when none is stored.
	// Absence is not an error.
	Get(ctx context.Context) (string, error)

	// Clear removes the stored credential. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
