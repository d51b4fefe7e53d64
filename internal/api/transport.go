package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/mfekih/jobtrack/internal/repository"
)

// bearerTransport attaches the stored credential to outgoing requests.
//
// This is the whole of the gateway's auth behaviour, composed explicitly
// around the base transport rather than hidden in call sites: if the store
// holds a credential the request goes out with "Authorization: Bearer
// <token>", otherwise it goes out unauthenticated, with no Authorization
// header at all. The transport never retries, never refreshes and never
// reacts to a 401 — deciding what an auth failure means belongs to the
// session resolver and the access guard, which keeps this layer stateless
// and reusable for every endpoint.
type bearerTransport struct {
	store repository.CredentialStore
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.store.Get(req.Context())
	if err != nil {
		return nil, err
	}
	if token != "" {
		// Per the RoundTripper contract the original request is not mutated.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}

// loggingTransport logs each outgoing call with a correlation ID. The ID is
// also sent as X-Request-Id so client and server logs can be joined.
type loggingTransport struct {
	logger *slog.Logger
	base   http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := xid.New().String()
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", id)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("request failed",
			slog.String("request_id", id),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	t.logger.Debug("request completed",
		slog.String("request_id", id),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
