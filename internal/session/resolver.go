// Package session owns the client side of the authenticated session: the
// resolver that turns a stored credential into an identity, and the guard
// that gates every protected view on the outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mfekih/jobtrack/internal/apperror"
	"github.com/mfekih/jobtrack/internal/model"
	"github.com/mfekih/jobtrack/internal/repository"
)

// ErrNoCredential is returned by Resolve when the store is empty. The guard
// treats this as "unauthenticated", distinct from a failed resolution.
var ErrNoCredential = errors.New("session: no credential present")

// IdentityFetcher is the slice of the API gateway the resolver needs.
type IdentityFetcher interface {
	Me(ctx context.Context) (*model.User, error)
}

// Resolver fetches and caches the identity behind the stored credential.
//
// The identity is fetched at most once per session: the first successful
// Resolve caches the user and later calls return the cached copy without a
// network round trip. The cache is dropped on Invalidate (logout) or when a
// fetch fails. A fetch failure is terminal — it means "credential invalid",
// not "transient", so the resolver never retries.
type Resolver struct {
	fetcher IdentityFetcher
	store   repository.CredentialStore
	logger  *slog.Logger

	mu   sync.Mutex
	user *model.User
}

func NewResolver(fetcher IdentityFetcher, store repository.CredentialStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// Resolve returns the session identity. It refuses to call the identity
// endpoint with no credential present — that would only produce 401 noise.
func (r *Resolver) Resolve(ctx context.Context) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.user != nil {
		return r.user, nil
	}

	token, err := r.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: reading credential: %w", err)
	}
	if token == "" {
		return nil, ErrNoCredential
	}

	user, err := r.fetcher.Me(ctx)
	if err != nil {
		r.logger.Info("identity resolution failed",
			slog.String("error", err.Error()),
		)
		// Whatever actually failed, the session is over: the credential is
		// treated as invalid and the caller redirects to login.
		return nil, apperror.Auth(statusOf(err))
	}

	r.user = user
	r.logger.Debug("identity resolved", slog.String("user_id", user.ID))
	return user, nil
}

// Invalidate drops the cached identity. The next Resolve fetches again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.user = nil
	r.mu.Unlock()
}

func statusOf(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
