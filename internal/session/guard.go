package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mfekih/jobtrack/internal/model"
	"github.com/mfekih/jobtrack/internal/repository"
)

// State is the guard's position in the auth-gating state machine.
type State int

const (
	// StateUnauthenticated: no credential stored. Redirect to login.
	StateUnauthenticated State = iota
	// StateResolving: credential present, identity fetch in flight. Render
	// a loading indicator, nothing protected.
	StateResolving
	// StateAuthenticated: resolver returned an identity. Render protected
	// content.
	StateAuthenticated
	// StateRejected: resolver failed. The credential has been cleared and
	// the next stop is login.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// Decision is the guard's verdict on entering a protected view.
type Decision struct {
	State State
	// User is set only when State is StateAuthenticated.
	User *model.User
}

// RedirectToLogin reports whether the caller must show the login flow
// instead of protected content.
func (d Decision) RedirectToLogin() bool {
	return d.State != StateAuthenticated
}

// Guard gates access to protected views.
//
// There is no optimistic path: a stored credential alone never yields
// StateAuthenticated — the resolver must complete first. When resolution
// fails the guard clears the credential store as a side effect *before*
// reporting the redirect, so a rejected token can never be replayed by the
// next check.
type Guard struct {
	store    repository.CredentialStore
	resolver *Resolver
	logger   *slog.Logger

	state State
}

func NewGuard(store repository.CredentialStore, resolver *Resolver, logger *slog.Logger) *Guard {
	return &Guard{
		store:    store,
		resolver: resolver,
		logger:   logger,
		state:    StateUnauthenticated,
	}
}

// State returns the guard's current state.
func (g *Guard) State() State {
	return g.state
}

// Check runs the state machine once and returns the decision.
func (g *Guard) Check(ctx context.Context) (Decision, error) {
	token, err := g.store.Get(ctx)
	if err != nil {
		return Decision{State: g.state}, fmt.Errorf("session: reading credential: %w", err)
	}
	if token == "" {
		// No credential always means login, regardless of resolver state.
		g.transition(StateUnauthenticated)
		return Decision{State: StateUnauthenticated}, nil
	}

	g.transition(StateResolving)

	user, err := g.resolver.Resolve(ctx)
	if errors.Is(err, ErrNoCredential) {
		// The credential disappeared between the presence check and the
		// resolve (logout raced the check). Same verdict as no credential.
		g.transition(StateUnauthenticated)
		return Decision{State: StateUnauthenticated}, nil
	}
	if err != nil {
		g.transition(StateRejected)
		// Clear before redirecting: the invalid credential must be gone by
		// the time the login view takes over.
		if clearErr := g.store.Clear(ctx); clearErr != nil {
			g.logger.Error("failed to clear rejected credential",
				slog.String("error", clearErr.Error()),
			)
		}
		g.resolver.Invalidate()
		g.transition(StateUnauthenticated)
		return Decision{State: StateUnauthenticated}, nil
	}

	g.transition(StateAuthenticated)
	return Decision{State: StateAuthenticated, User: user}, nil
}

// Revalidate drops the cached identity so the next Check resolves against
// the server again. Views call this when an authenticated data fetch comes
// back 401: the guard, not the gateway, decides whether the session is over.
func (g *Guard) Revalidate() {
	g.resolver.Invalidate()
}

// Logout clears the session: cached identity first, stored credential next.
// After Logout the guard reports StateUnauthenticated until the next login.
func (g *Guard) Logout(ctx context.Context) error {
	g.resolver.Invalidate()
	if err := g.store.Clear(ctx); err != nil {
		return fmt.Errorf("session: clearing credential: %w", err)
	}
	g.transition(StateUnauthenticated)
	return nil
}

func (g *Guard) transition(next State) {
	if g.state == next {
		return
	}
	g.logger.Debug("guard transition",
		slog.String("from", g.state.String()),
		slog.String("to", next.String()),
	)
	g.state = next
}
