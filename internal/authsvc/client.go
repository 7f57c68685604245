package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultTimeout = 3 * time.Second

// Config is the connection configuration for the provider client.
type Config struct {
	URL          string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client implements Provider against the service's HTTP API.
// Token issuance goes through the OAuth2 token endpoint (password grant for
// sign in, authorization code grant for mailed link codes); account state
// calls are plain JSON endpoints.
type Client struct {
	cfg    Config
	oauth  *oauth2.Config
	client *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a provider client. The configuration must carry at least
// the base URL and client id, otherwise every later call would fail in
// confusing ways.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.ClientID == "" {
		return nil, ErrMisconfigured
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	cfg.URL = strings.TrimRight(cfg.URL, "/")

	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.URL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// SignIn exchanges credentials for a session via the password grant.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.oauth.PasswordCredentialsToken(c.oauthContext(ctx), email, password)
	if err != nil {
		return nil, classifyTokenError(err, ErrInvalidCredentials)
	}

	user, err := c.GetUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	return sessionFromToken(tok, *user), nil
}

// ExchangeCode trades a mailed one time code for a session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, classifyTokenError(err, ErrInvalidCode)
	}

	user, err := c.GetUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	return sessionFromToken(tok, *user), nil
}

// SignUp creates an account.
func (c *Client) SignUp(ctx context.Context, email, password, fullName, callbackURL string) (*SignUpResult, error) {
	payload := map[string]string{
		"email":        email,
		"password":     password,
		"full_name":    fullName,
		"callback_url": callbackURL,
	}

	var resp struct {
		User    User           `json:"user"`
		Session *tokenResponse `json:"session"`
	}

	status, err := c.do(ctx, http.MethodPost, "/signup", "", payload, &resp)
	if err != nil {
		return nil, err
	}

	if status == http.StatusConflict || status == http.StatusUnprocessableEntity {
		return nil, ErrEmailTaken
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return nil, unexpectedStatus(status)
	}

	result := &SignUpResult{
		User:                resp.User,
		ConfirmationPending: resp.Session == nil,
	}

	if resp.Session != nil {
		result.Session = resp.Session.toSession(resp.User)
	}

	return result, nil
}

// SignOut invalidates the session.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	status, err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
	if err != nil {
		return err
	}

	// a dead token is already signed out
	if status == http.StatusUnauthorized {
		return nil
	}

	if status != http.StatusOK && status != http.StatusNoContent {
		return unexpectedStatus(status)
	}

	return nil
}

// GetUser validates the access token and returns the account behind it.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrSessionInvalid
	}

	var user User

	status, err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, ErrSessionInvalid
	}

	if status != http.StatusOK {
		return nil, unexpectedStatus(status)
	}

	return &user, nil
}

// UpdatePassword sets a new password for the account behind the token.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	payload := map[string]string{"password": newPassword}

	status, err := c.do(ctx, http.MethodPut, "/user", accessToken, payload, nil)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrSessionInvalid
	}

	if status != http.StatusOK && status != http.StatusNoContent {
		return unexpectedStatus(status)
	}

	return nil
}

// SendRecoveryEmail triggers the reset mail. The provider answers success for
// unknown addresses as well, so this leaks no account existence.
func (c *Client) SendRecoveryEmail(ctx context.Context, email, callbackURL string) error {
	payload := map[string]string{
		"email":       email,
		"redirect_to": callbackURL,
	}

	status, err := c.do(ctx, http.MethodPost, "/recover", "", payload, nil)
	if err != nil {
		return err
	}

	if status != http.StatusOK && status != http.StatusNoContent {
		return unexpectedStatus(status)
	}

	return nil
}

// oauthContext pins the oauth2 transport to the bounded client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.client)
}

// do performs one JSON round trip. Error statuses the caller wants to
// classify are returned as plain status codes, transport failures as
// ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path, accessToken string, payload, out interface{}) (int, error) {
	var body *bytes.Buffer = bytes.NewBuffer(nil)

	if payload != nil {
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return 0, errors.Wrap(err, "failed to encode request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+path, body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", c.cfg.ClientID)

	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("auth provider request failed")
		return 0, errors.Wrap(ErrUnavailable, err.Error())
	}

	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "failed to decode provider response")
		}
	}

	return resp.StatusCode, nil
}

// tokenResponse is the provider's wire form of an issued session.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (t *tokenResponse) toSession(user User) *Session {
	return &Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(t.ExpiresIn) * time.Second),
		User:         user,
	}
}

func sessionFromToken(tok *oauth2.Token, user User) *Session {
	return &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		User:         user,
	}
}

// classifyTokenError maps oauth2 token endpoint failures to the package's
// sentinel errors. badGrant names what an invalid_grant means for the call
// (wrong credentials on sign in, dead link code on exchange).
func classifyTokenError(err error, badGrant error) error {
	var rErr *oauth2.RetrieveError

	if errors.As(err, &rErr) {
		switch rErr.ErrorCode {
		case "invalid_grant", "invalid_request":
			return badGrant
		case "invalid_client", "unauthorized_client":
			return ErrMisconfigured
		}

		if rErr.Response != nil && rErr.Response.StatusCode >= http.StatusInternalServerError {
			return errors.Wrap(ErrUnavailable, rErr.Error())
		}

		return badGrant
	}

	return errors.Wrap(ErrUnavailable, err.Error())
}

func unexpectedStatus(status int) error {
	return errors.Wrapf(ErrUnavailable, "unexpected provider status %d", status)
}
