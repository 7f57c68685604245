package authcallback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-jobboard/jobboard/internal/authsvc"
	"github.com/go-jobboard/jobboard/internal/config"
	"github.com/go-jobboard/jobboard/internal/web/authflow"
	"github.com/go-jobboard/jobboard/internal/web/markers"
	websess "github.com/go-jobboard/jobboard/internal/web/session"
)

type stubProvider struct {
	authsvc.Provider

	session     *authsvc.Session
	exchangeErr error
	lastCode    string
}

func (p *stubProvider) ExchangeCode(_ context.Context, code string) (*authsvc.Session, error) {
	p.lastCode = code
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}

	return p.session, nil
}

func newTestApp(t *testing.T, provider authsvc.Provider) *fiber.App {
	t.Helper()
	websess.Init(websess.NewMemoryStorage())

	app := fiber.New()
	flow := authflow.New(provider, "http://localhost:3000", time.Minute)
	cfg := &config.Config{DevMode: true}

	svc := Service{}
	require.NoError(t, svc.Init(app, cfg, flow))

	return app
}

func testProviderSession() *authsvc.Session {
	return &authsvc.Session{
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        authsvc.User{ID: "user-1", Email: "jane@example.com"},
	}
}

func cookieNames(resp *http.Response) map[string]bool {
	names := map[string]bool{}
	for _, cookie := range resp.Cookies() {
		names[cookie.Name] = true
	}

	return names
}

func TestRecoveryCodeContinuesToPasswordChange(t *testing.T) {
	provider := &stubProvider{session: testProviderSession()}
	app := newTestApp(t, provider)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path+"?code=mail-code&type=recovery", nil))
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/change-password?from=reset", resp.Header.Get(fiber.HeaderLocation))
	assert.Equal(t, "mail-code", provider.lastCode)

	names := cookieNames(resp)
	assert.True(t, names[markers.SessionCookie])
	assert.True(t, names[markers.RecoveryFlowCookie])
	assert.True(t, names[markers.RecoveryBypassCookie])
}

func TestConfirmationCodeLandsOnDashboard(t *testing.T) {
	app := newTestApp(t, &stubProvider{session: testProviderSession()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path+"?code=confirm-code", nil))
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))
	assert.True(t, cookieNames(resp)[markers.AuthBypassCookie])
}

func TestProviderErrorRedirectsToLoginWithMessage(t *testing.T) {
	app := newTestApp(t, &stubProvider{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		Path+"?error=access_denied&error_description=otp_expired", nil))
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)

	assert.Equal(t, "/auth/login", location.Path)
	assert.Equal(t, MsgLinkExpired, location.Query().Get("error"))
}

func TestExpiredCodeRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, &stubProvider{exchangeErr: authsvc.ErrInvalidCode})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path+"?code=stale&type=recovery", nil))
	require.NoError(t, err)

	defer resp.Body.Close()

	location, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)

	assert.Equal(t, "/auth/login", location.Path)
	assert.Equal(t, MsgLinkExpired, location.Query().Get("error"))
}

func TestMissingCodeRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, &stubProvider{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path, nil))
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get(fiber.HeaderLocation))
}
