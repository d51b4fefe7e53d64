package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/mfekih/jobtrack/internal/apperror"
)

func newTestGuard(store *memStore, fetcher *fakeFetcher) *Guard {
	logger := testLogger()
	return NewGuard(store, NewResolver(fetcher, store, logger), logger)
}

func TestCheck_NoCredentialRedirects(t *testing.T) {
	fetcher := &fakeFetcher{user: testUser}
	guard := newTestGuard(&memStore{}, fetcher)

	decision, err := guard.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if decision.State != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", decision.State)
	}
	if !decision.RedirectToLogin() {
		t.Error("RedirectToLogin() = false, want true")
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times, want 0", fetcher.calls)
	}
}

func TestCheck_ValidCredentialAuthenticates(t *testing.T) {
	fetcher := &fakeFetcher{user: testUser}
	guard := newTestGuard(&memStore{token: "T1"}, fetcher)

	decision, err := guard.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if decision.State != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", decision.State)
	}
	if decision.RedirectToLogin() {
		t.Error("RedirectToLogin() = true, want false")
	}
	if decision.User == nil || decision.User.ID != "user-1" {
		t.Errorf("decision user = %+v, want user-1", decision.User)
	}
}

func TestCheck_StoredCredentialAloneNeverAuthenticates(t *testing.T) {
	// A credential in the store is a claim, not a session: authentication
	// requires the resolver to have completed.
	fetcher := &fakeFetcher{err: apperror.Auth(http.StatusUnauthorized)}
	guard := newTestGuard(&memStore{token: "stale"}, fetcher)

	decision, err := guard.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !decision.RedirectToLogin() {
		t.Error("a credential that fails resolution must redirect to login")
	}
}

func TestCheck_RejectionClearsCredentialBeforeRedirect(t *testing.T) {
	store := &memStore{token: "stale"}
	fetcher := &fakeFetcher{err: apperror.Auth(http.StatusUnauthorized)}
	guard := newTestGuard(store, fetcher)

	decision, err := guard.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !decision.RedirectToLogin() {
		t.Fatal("RedirectToLogin() = false, want true")
	}

	// By the time the redirect decision is in the caller's hands the
	// rejected credential must already be gone.
	if store.token != "" {
		t.Errorf("store still holds %q after rejection", store.token)
	}

	// The next check sees an empty store and redirects without another
	// resolution attempt: the rejected token cannot be replayed.
	decision, err = guard.Check(context.Background())
	if err != nil {
		t.Fatalf("second Check() error = %v", err)
	}
	if decision.State != StateUnauthenticated {
		t.Errorf("second state = %v, want unauthenticated", decision.State)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
}

func TestCheck_SecondCheckUsesCachedIdentity(t *testing.T) {
	fetcher := &fakeFetcher{user: testUser}
	guard := newTestGuard(&memStore{token: "T1"}, fetcher)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := guard.Check(ctx)
		if err != nil {
			t.Fatalf("Check() #%d error = %v", i+1, err)
		}
		if decision.State != StateAuthenticated {
			t.Fatalf("Check() #%d state = %v, want authenticated", i+1, decision.State)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want exactly 1", fetcher.calls)
	}
}

func TestRevalidate_ForcesResolutionOnNextCheck(t *testing.T) {
	store := &memStore{token: "T1"}
	fetcher := &fakeFetcher{user: testUser}
	guard := newTestGuard(store, fetcher)
	ctx := context.Background()

	if _, err := guard.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	// The server starts rejecting the token mid-session; a data fetch saw a
	// 401 and the view asked the guard to revalidate.
	fetcher.err = apperror.Auth(http.StatusUnauthorized)
	guard.Revalidate()

	decision, err := guard.Check(ctx)
	if err != nil {
		t.Fatalf("Check() after Revalidate() error = %v", err)
	}
	if !decision.RedirectToLogin() {
		t.Error("RedirectToLogin() = false, want true after revalidation failed")
	}
	if store.token != "" {
		t.Errorf("store still holds %q, want cleared", store.token)
	}
}

func TestLogout(t *testing.T) {
	store := &memStore{token: "T1"}
	fetcher := &fakeFetcher{user: testUser}
	guard := newTestGuard(store, fetcher)
	ctx := context.Background()

	if _, err := guard.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if err := guard.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if store.token != "" {
		t.Errorf("store still holds %q after logout", store.token)
	}
	if guard.State() != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", guard.State())
	}

	decision, err := guard.Check(ctx)
	if err != nil {
		t.Fatalf("Check() after Logout() error = %v", err)
	}
	if !decision.RedirectToLogin() {
		t.Error("RedirectToLogin() = false, want true after logout")
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateUnauthenticated: "unauthenticated",
		StateResolving:       "resolving",
		StateAuthenticated:   "authenticated",
		StateRejected:        "rejected",
		State(99):            "unknown",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
