package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/api"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token(context.Context) (string, error) { return s.token, s.err }

func newClient(t *testing.T, h http.HandlerFunc, tokens api.TokenSource) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.NewClient("tasks", srv.URL+"/v1", tokens, 5*time.Second)
}

func TestClientBearerTokenIsCleaned(t *testing.T) {
	var got string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, staticToken{token: ` "abc.def" `})

	require.NoError(t, c.Get(context.Background(), "/tasks", nil, nil))
	assert.Equal(t, "Bearer abc.def", got)
}

func TestClientNoTokenNoHeader(t *testing.T) {
	for name, tokens := range map[string]api.TokenSource{
		"nil source":   nil,
		"empty token":  staticToken{},
		"quotes only":  staticToken{token: `""`},
		"read failure": staticToken{err: errors.New("locked")},
	} {
		t.Run(name, func(t *testing.T) {
			var present bool
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, present = r.Header["Authorization"]
				w.WriteHeader(http.StatusNoContent)
			}, tokens)

			require.NoError(t, c.Get(context.Background(), "/tasks", nil, nil))
			assert.False(t, present)
		})
	}
}

func TestClientTokenReadEveryRequest(t *testing.T) {
	var calls atomic.Int32
	tokens := tokenFunc(func() string {
		calls.Add(1)
		return "T"
	})
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, tokens)

	require.NoError(t, c.Get(context.Background(), "/a", nil, nil))
	require.NoError(t, c.Get(context.Background(), "/b", nil, nil))
	assert.Equal(t, int32(2), calls.Load())
}

type tokenFunc func() string

func (f tokenFunc) Token(context.Context) (string, error) { return f(), nil }

func TestClientAuthErrors(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = io.WriteString(w, `{"message":"token expired"}`)
		}, staticToken{token: "T"})

		err := c.Get(context.Background(), "/tasks", nil, &struct{}{})
		var authErr *api.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, code, authErr.StatusCode)
		assert.Equal(t, "token expired", authErr.Message)
		assert.True(t, api.IsAuthError(err))
	}
}

func TestClientNoRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}, nil)

	err := c.Post(context.Background(), "/tasks", []int{1}, nil)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Message)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "server error (500): boom", api.Describe(err))
}

func TestClientMalformedBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>not json</html>")
	}, nil)

	err := c.Get(context.Background(), "/tasks", nil, &struct{}{})
	require.ErrorIs(t, err, api.ErrMalformedResponse)
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := api.NewClient("tasks", srv.URL, nil, time.Second)

	err := c.Get(context.Background(), "/tasks", nil, nil)
	var netErr *api.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "cannot reach server", api.Describe(err))
}

func TestClientCancelledContext(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/tasks", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClientSendsJSONBody(t *testing.T) {
	var (
		contentType string
		body        []map[string]any
	)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}, nil)

	require.NoError(t, c.Put(context.Background(), "/x", []map[string]any{{"a": 1}}, nil))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, []map[string]any{{"a": float64(1)}}, body)
}
