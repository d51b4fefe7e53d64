package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfekih/jobtrack/internal/apperror"
	"github.com/mfekih/jobtrack/internal/apitest"
)

// memStore is an in-memory CredentialStore for tests.
type memStore struct {
	token string
}

func (m *memStore) Set(_ context.Context, token string) error { m.token = token; return nil }
func (m *memStore) Get(_ context.Context) (string, error)     { return m.token, nil }
func (m *memStore) Clear(_ context.Context) error             { m.token = ""; return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T) (*Client, *apitest.Server, *memStore) {
	t.Helper()
	server := apitest.New()
	t.Cleanup(server.Close)
	store := &memStore{}
	return New(server.URL, store, testLogger()), server, store
}

func TestRequest_CarriesBearerHeaderWhenCredentialPresent(t *testing.T) {
	client, server, store := newTestClient(t)
	store.token = "T1"

	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me() error = %v", err)
	}

	requests := server.Requests()
	if len(requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(requests))
	}
	if got := requests[0].Auth; got != "Bearer T1" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer T1")
	}
}

func TestRequest_OmitsAuthorizationHeaderWithoutCredential(t *testing.T) {
	client, server, _ := newTestClient(t)

	// Unauthenticated call; the interesting part is the outgoing header.
	_, _ = client.Me(context.Background())

	requests := server.Requests()
	if len(requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(requests))
	}
	if got := requests[0].Auth; got != "" {
		t.Errorf("Authorization = %q, want no header at all", got)
	}
}

func TestRequest_CarriesRequestID(t *testing.T) {
	var requestID string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	client := New(backend.URL, &memStore{}, testLogger())
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if requestID == "" {
		t.Error("expected an X-Request-Id header on the outgoing request")
	}
}

func TestLogin_ReturnsToken(t *testing.T) {
	client, _, _ := newTestClient(t)

	token, err := client.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "T1" {
		t.Errorf("Login() token = %q, want %q", token, "T1")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	client, _, _ := newTestClient(t)

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, apperror.ErrAuth) {
		t.Errorf("Login() error = %v, want ErrAuth", err)
	}
}

func TestLogin_ThenIdentityUsesIssuedToken(t *testing.T) {
	client, server, store := newTestClient(t)
	ctx := context.Background()

	token, err := client.Login(ctx, "a@b.com", "x")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := store.Set(ctx, token); err != nil {
		t.Fatalf("store.Set() error = %v", err)
	}

	user, err := client.Me(ctx)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("Me() user ID = %q, want %q", user.ID, "user-1")
	}

	requests := server.Requests()
	last := requests[len(requests)-1]
	if last.Path != "/users/me" {
		t.Fatalf("last request path = %q, want /users/me", last.Path)
	}
	if last.Auth != "Bearer "+token {
		t.Errorf("Authorization = %q, want %q", last.Auth, "Bearer "+token)
	}
}

func TestDecodeError_Unauthorized(t *testing.T) {
	backend := errorBackend(t, http.StatusUnauthorized, `{"message":"Unauthorized"}`)

	_, err := New(backend.URL, &memStore{}, testLogger()).Me(context.Background())
	if !errors.Is(err, apperror.ErrAuth) {
		t.Fatalf("error = %v, want ErrAuth", err)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an *apperror.AppError", err)
	}
	if appErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", appErr.Status)
	}
}

func TestDecodeError_SingleMessageBecomesList(t *testing.T) {
	backend := errorBackend(t, http.StatusBadRequest, `{"message":"company should not be empty"}`)

	_, err := New(backend.URL, &memStore{}, testLogger()).Me(context.Background())
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	messages := apperror.MessagesOf(err)
	if len(messages) != 1 || messages[0] != "company should not be empty" {
		t.Errorf("MessagesOf() = %v, want the server message as a one-element list", messages)
	}
}

func TestDecodeError_MessageListPassedThrough(t *testing.T) {
	backend := errorBackend(t, http.StatusBadRequest,
		`{"message":["company should not be empty","jobTitle should not be empty"]}`)

	_, err := New(backend.URL, &memStore{}, testLogger()).Me(context.Background())

	messages := apperror.MessagesOf(err)
	want := []string{"company should not be empty", "jobTitle should not be empty"}
	if len(messages) != len(want) {
		t.Fatalf("MessagesOf() = %v, want %v", messages, want)
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, messages[i], want[i])
		}
	}
}

func TestDecodeError_ServerFailure(t *testing.T) {
	backend := errorBackend(t, http.StatusInternalServerError, `boom`)

	_, err := New(backend.URL, &memStore{}, testLogger()).Me(context.Background())
	if !errors.Is(err, apperror.ErrTransport) {
		t.Errorf("error = %v, want ErrTransport for 5xx", err)
	}
}

func TestSend_NetworkFailureIsTransportError(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	backend.Close() // closed: every request fails at the dial

	_, err := New(backend.URL, &memStore{}, testLogger()).Me(context.Background())
	if !errors.Is(err, apperror.ErrTransport) {
		t.Errorf("error = %v, want ErrTransport", err)
	}
}

func errorBackend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}
