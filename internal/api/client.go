// Package api is the gateway to the remote tracker service. It owns the
// single outgoing-request pipeline: every call goes through the same
// decorated transport (credential attachment, request logging) and the same
// error decoding. The gateway surfaces failures unchanged to its callers —
// it does not retry, does not refresh credentials and does not intercept
// 401s; those policies live with the session resolver and the controllers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mfekih/jobtrack/internal/apperror"
	"github.com/mfekih/jobtrack/internal/repository"
)

// Client talks to the remote tracker API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a Client whose transport reads the credential store on every
// request. The store is injected, not ambient: the gateway holds no token
// state of its own.
func New(baseURL string, store repository.CredentialStore, logger *slog.Logger) *Client {
	transport := &loggingTransport{
		logger: logger,
		base: &bearerTransport{
			store: store,
			base:  http.DefaultTransport,
		},
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		logger: logger,
	}
}

// do issues one request and decodes a JSON response into out (out may be nil
// for endpoints with empty responses). Non-2xx responses and transport
// failures come back as *apperror.AppError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// send issues one request and returns the raw response for 2xx statuses.
// The caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encoding %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: building %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Transport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.decodeError(resp)
	}
	return resp, nil
}

// decodeError maps a non-2xx response onto the client's failure taxonomy.
// The body is read tolerantly: the server reports errors as {"message": ...}
// where message may be a single string or a list, and both shapes must reach
// the user as a list.
func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	messages := errorMessages(body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperror.Auth(resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		if len(messages) > 0 {
			return apperror.ValidationStatus(resp.StatusCode, messages...)
		}
		return &apperror.AppError{
			Err:      apperror.ErrNotFound,
			Message:  "Not found.",
			Messages: []string{"Not found."},
			Status:   resp.StatusCode,
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		if len(messages) == 0 {
			messages = []string{"Something went wrong."}
		}
		return apperror.ValidationStatus(resp.StatusCode, messages...)
	default:
		// 5xx: the server failed; surface a generic failure, no retry.
		return &apperror.AppError{
			Err:      apperror.ErrTransport,
			Message:  "The server reported an error. Please try again.",
			Messages: []string{"The server reported an error. Please try again."},
			Status:   resp.StatusCode,
		}
	}
}

// errorMessages pulls the message list out of an error payload without
// committing to a fixed shape.
func errorMessages(body []byte) []string {
	msg := gjson.GetBytes(body, "message")
	switch {
	case msg.IsArray():
		var out []string
		for _, m := range msg.Array() {
			if s := m.String(); s != "" {
				out = append(out, s)
			}
		}
		return out
	case msg.Type == gjson.String && msg.String() != "":
		return []string{msg.String()}
	}
	if e := gjson.GetBytes(body, "error"); e.Type == gjson.String && e.String() != "" {
		return []string{e.String()}
	}
	return nil
}
