// Package api holds the HTTP clients for the identity, task and
// notification services.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token attached to authenticated
// requests. It is consulted on every request, never cached.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is a thin JSON-over-HTTP client bound to one service base URL.
// When a TokenSource is set, every request carries the current token as
// a Bearer credential. Requests are never retried.
type Client struct {
	service    string
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a client for the named service rooted at baseURL
// (e.g. http://host:8081/v1). tokens may be nil for unauthenticated
// services.
func NewClient(service, baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result any,
) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// Post performs an HTTP POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

// Put performs an HTTP PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

// Delete performs an HTTP DELETE request. The task service expects the
// records to delete in the request body.
func (c *Client) Delete(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, body, result)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	result any,
) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &NetworkError{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return fmt.Errorf("%w: empty body from %s %s", ErrMalformedResponse, method, path)
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", ErrMalformedResponse, method, path, err)
	}

	return nil
}

// authorize attaches the bearer token, if any. A token that cannot be
// read is treated as absent and the request goes out without it.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}

	raw, err := c.tokens.Token(ctx)
	if err != nil {
		log.Printf("api: reading token for %s %s: %v", req.Method, req.URL.Path, err)
		return
	}

	token := CleanToken(raw)
	if token == "" {
		log.Printf("api: no token for %s %s", req.Method, req.URL.Path)
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// CleanToken strips every quote character and surrounding whitespace from
// a stored token.
func CleanToken(raw string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(raw))
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message  string `json:"message"`
		Error    string `json:"error"`
		Mensagem string `json:"mensagem"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Message, payload.Mensagem, payload.Error} {
			if m != "" {
				return m
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
