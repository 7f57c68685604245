package authsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProviderStub spins up a fake provider API. The handler map is keyed by
// "METHOD /path".
func newProviderStub(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	// Method-qualified ServeMux patterns need Go 1.22; split the key by hand
	// so the stub also works on older toolchains.
	mux := http.NewServeMux()
	for pattern, h := range handlers {
		method, path, ok := strings.Cut(pattern, " ")
		if !ok {
			mux.HandleFunc(pattern, h)
			continue
		}

		handler := h
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handler(w, r)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	c, err := NewClient(Config{
		URL:      baseURL,
		ClientID: "test-client",
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)

	return c
}

func writeToken(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  "token-123",
		"refresh_token": "refresh-123",
		"token_type":    "bearer",
		"expires_in":    3600,
	})
}

func TestNewClient_Misconfigured(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrMisconfigured)

	_, err = NewClient(Config{URL: "http://localhost"})
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestSignIn_Success(t *testing.T) {
	srv := newProviderStub(t, map[string]http.HandlerFunc{
		"POST /oauth/token": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			assert.Equal(t, "alice@example.com", r.PostForm.Get("username"))
			writeToken(w)
		},
		"GET /user": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(User{ID: "user-1", Email: "alice@example.com", EmailConfirmed: true})
		},
	})

	c := newTestClient(t, srv.URL)

	sess, err := c.SignIn(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-123", sess.AccessToken)
	assert.Equal(t, "user-1", sess.User.ID)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	srv := newProviderStub(t, map[string]http.HandlerFunc{
		"POST /oauth/token": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
		},
	})

	c := newTestClient(t, srv.URL)

	_, err := c.SignIn(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_ProviderDown(t *testing.T) {
	srv := newProviderStub(t, nil)
	srv.Close() // connection refused from here on

	c := newTestClient(t, srv.URL)

	_, err := c.SignIn(context.Background(), "alice@example.com", "secret")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExchangeCode_InvalidCode(t *testing.T) {
	srv := newProviderStub(t, map[string]http.HandlerFunc{
		"POST /oauth/token": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		},
	})

	c := newTestClient(t, srv.URL)

	_, err := c.ExchangeCode(context.Background(), "stale-code")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestGetUser_SessionInvalid(t *testing.T) {
	srv := newProviderStub(t, map[string]http.HandlerFunc{
		"GET /user": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	})

	c := newTestClient(t, srv.URL)

	_, err := c.GetUser(context.Background(), "dead-token")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	// no token short circuits without a network call
	_, err = c.GetUser(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSignUp_Branches(t *testing.T) {
	testCases := []struct {
		name        string
		handler     http.HandlerFunc
		wantErr     error
		wantPending bool
	}{
		{
			name: "confirmation pending",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"user":{"id":"user-2","email":"bob@example.com"}}`))
			},
			wantPending: true,
		},
		{
			name: "immediately verified",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"user":{"id":"user-2","email":"bob@example.com","email_confirmed":true},
					"session":{"access_token":"tok","refresh_token":"ref","expires_in":3600}
				}`))
			},
			wantPending: false,
		},
		{
			name: "email taken",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusConflict)
			},
			wantErr: ErrEmailTaken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newProviderStub(t, map[string]http.HandlerFunc{"POST /signup": tc.handler})
			c := newTestClient(t, srv.URL)

			result, err := c.SignUp(context.Background(), "bob@example.com", "secret1", "Bob", "http://app/auth/callback")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantPending, result.ConfirmationPending)
			assert.Equal(t, tc.wantPending, result.Session == nil)
		})
	}
}

func TestSendRecoveryEmail(t *testing.T) {
	var gotRedirect string

	srv := newProviderStub(t, map[string]http.HandlerFunc{
		"POST /recover": func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			gotRedirect = payload["redirect_to"]
			w.WriteHeader(http.StatusNoContent)
		},
	})

	c := newTestClient(t, srv.URL)

	err := c.SendRecoveryEmail(context.Background(), "alice@example.com", "http://app/auth/callback?type=recovery")
	require.NoError(t, err)
	assert.Contains(t, gotRedirect, "type=recovery")
}

func TestSignOut_DeadTokenIsFine(t *testing.T) {
	srv := newProviderStub(t, map[string]http.HandlerFunc{
		"POST /logout": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	})

	c := newTestClient(t, srv.URL)
	assert.NoError(t, c.SignOut(context.Background(), "dead-token"))
}
