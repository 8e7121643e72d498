// Package identity is the HTTP client for the external identity provider.
// It owns credentials (id token + refresh token), keeps the session manager
// informed of auth-state changes, and hands out fresh bearer tokens.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"eventhub/internal/session"
	"eventhub/pkg/faults"
	"eventhub/pkg/models"
)

// refreshLeeway triggers a refresh slightly before the token actually
// expires so in-flight requests don't race the cutoff.
const refreshLeeway = 30 * time.Second

// Client authenticates against the identity provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
	session *session.Manager

	mu           sync.Mutex
	idToken      string
	refreshToken string
	expiry       time.Time
}

// NewClient creates an identity client bound to sess. The client registers
// itself as the session's token source.
func NewClient(baseURL, apiKey string, sess *session.Manager, timeout time.Duration, logger *zap.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		session: sess,
	}
	sess.SetTokenSource(c)
	return c
}

// authResponse is the provider's reply to any credential-granting call.
type authResponse struct {
	IDToken      string      `json:"idToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
	User         models.User `json:"user"`
}

// SignUp registers a new email/password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	return c.grant(ctx, "/v1/signup", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignIn authenticates an existing email/password account.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	return c.grant(ctx, "/v1/signin", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignInWithGoogle exchanges a federated authorization code for a session.
func (c *Client) SignInWithGoogle(ctx context.Context, code string) (*models.User, error) {
	return c.grant(ctx, "/v1/oauth", map[string]string{
		"provider": "google.com",
		"code":     code,
	})
}

func (c *Client) grant(ctx context.Context, path string, payload map[string]string) (*models.User, error) {
	body, err := c.post(ctx, path, payload, "")
	if err != nil {
		return nil, err
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, faults.Wrap(faults.ServerRejected, "malformed auth response", err)
	}
	if resp.IDToken == "" {
		return nil, faults.New(faults.ServerRejected, "auth response missing token")
	}

	c.mu.Lock()
	c.idToken = resp.IDToken
	c.refreshToken = resp.RefreshToken
	c.expiry = tokenExpiry(resp.IDToken, resp.ExpiresIn)
	c.mu.Unlock()

	user := resp.User
	c.session.Set(&user)
	c.logger.Info("signed in", zap.String("uid", user.UID), zap.String("email", user.Email))
	return &user, nil
}

// SignOut drops credentials and clears the session. It is local-only, like
// the provider SDK's signOut.
func (c *Client) SignOut() {
	c.mu.Lock()
	c.idToken = ""
	c.refreshToken = ""
	c.expiry = time.Time{}
	c.mu.Unlock()

	c.session.Set(nil)
	c.logger.Info("signed out")
}

// Token returns a bearer token, refreshing it first when it is within the
// leeway of expiring. Implements session.TokenSource.
func (c *Client) Token() (string, error) {
	c.mu.Lock()
	token := c.idToken
	refresh := c.refreshToken
	fresh := token != "" && time.Now().Add(refreshLeeway).Before(c.expiry)
	c.mu.Unlock()

	if fresh {
		return token, nil
	}
	if refresh == "" {
		return "", faults.New(faults.Unauthenticated, "not signed in")
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.http.Timeout)
	defer cancel()

	body, err := c.post(ctx, "/v1/token", map[string]string{"refreshToken": refresh}, "")
	if err != nil {
		return "", err
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.IDToken == "" {
		return "", faults.New(faults.ServerRejected, "malformed refresh response")
	}

	c.mu.Lock()
	c.idToken = resp.IDToken
	if resp.RefreshToken != "" {
		c.refreshToken = resp.RefreshToken
	}
	c.expiry = tokenExpiry(resp.IDToken, resp.ExpiresIn)
	c.mu.Unlock()

	c.logger.Debug("token refreshed")
	return resp.IDToken, nil
}

// CurrentUser fetches the profile behind the current token and updates the
// session with it.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	token, err := c.Token()
	if err != nil {
		return nil, err
	}

	body, err := c.request(ctx, http.MethodGet, "/v1/me", nil, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, faults.Wrap(faults.ServerRejected, "malformed profile response", err)
	}
	c.session.Set(&user)
	return &user, nil
}

// UpdateProfile changes the display name and photo of the current user.
func (c *Client) UpdateProfile(ctx context.Context, displayName, photoURL string) (*models.User, error) {
	token, err := c.Token()
	if err != nil {
		return nil, err
	}

	body, err := c.request(ctx, http.MethodPatch, "/v1/me", map[string]string{
		"displayName": displayName,
		"photoURL":    photoURL,
	}, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, faults.Wrap(faults.ServerRejected, "malformed profile response", err)
	}
	c.session.Set(&user)
	c.logger.Info("profile updated", zap.String("uid", user.UID))
	return &user, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, token string) ([]byte, error) {
	return c.request(ctx, http.MethodPost, path, payload, token)
}

func (c *Client) request(ctx context.Context, method, path string, payload any, token string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, faults.Wrap(faults.Validation, "encode request", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, faults.Wrap(faults.Network, "build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("identity request failed", zap.String("path", path), zap.Error(err))
		return nil, faults.Wrap(faults.Network, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.Network, "read response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := providerMessage(body)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, faults.New(faults.Unauthenticated, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return nil, faults.New(faults.Validation, msg)
	default:
		return nil, faults.New(faults.ServerRejected,
			fmt.Sprintf("%s (status %d)", msg, resp.StatusCode))
	}
}

func providerMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return "request rejected"
}

// tokenExpiry reads the exp claim without verifying the signature; only the
// provider can verify it, the client just schedules refreshes. Falls back to
// expiresIn seconds when the token is opaque.
func tokenExpiry(token string, expiresIn int64) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	// Unknown lifetime: force a refresh on next use.
	return time.Time{}
}
