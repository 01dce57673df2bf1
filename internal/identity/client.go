// Package identity wraps the hosted identity provider (a GoTrue-style HTTP
// API) and the local user_roles table that maps accounts to back-office roles.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mifmarket/directory-api/internal/config"
)

// Provider errors translated from HTTP responses
var (
	ErrUserAlreadyExists  = errors.New("user already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// APIError is a non-translated provider error carrying the raw message
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPDoer abstracts the HTTP client for testing
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the identity provider API client. Requests are single-shot with
// no retries; failures surface directly to the caller.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient HTTPDoer
}

// NewClient creates a new identity provider client
func NewClient(cfg config.IdentityConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

func (c *Client) doRequest(ctx context.Context, method, endpoint, bearer string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return translateError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func translateError(status int, body []byte) error {
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &payload)

	message := payload.Message
	if message == "" {
		message = payload.Msg
	}
	if message == "" {
		message = payload.ErrorDescription
	}
	if message == "" {
		message = string(body)
	}

	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		return ErrUserAlreadyExists
	case status == http.StatusNotFound:
		return ErrUserNotFound
	case status == http.StatusBadRequest && message == "Invalid login credentials":
		return ErrInvalidCredentials
	}
	return &APIError{StatusCode: status, Message: message}
}

// SignUp creates a new account with email and password
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.doRequest(ctx, http.MethodPost, "/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignInWithPassword exchanges credentials for a session
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.doRequest(ctx, http.MethodPost, "/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session behind an access token
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.doRequest(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// GetUser returns the account owning an access token
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminListUsers lists every account. The provider pages at 50 by default;
// the directory is small enough that one large page is sufficient.
func (c *Client) AdminListUsers(ctx context.Context) ([]User, error) {
	var payload struct {
		Users []User `json:"users"`
	}
	err := c.doRequest(ctx, http.MethodGet, "/admin/users?per_page=1000", c.serviceKey, nil, &payload)
	if err != nil {
		return nil, err
	}
	return payload.Users, nil
}

// AdminFindUserByEmail scans provider accounts for a matching email
func (c *Client) AdminFindUserByEmail(ctx context.Context, email string) (*User, error) {
	users, err := c.AdminListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// AdminUpdateUserPassword sets a new password on an account
func (c *Client) AdminUpdateUserPassword(ctx context.Context, userID uuid.UUID, password string) error {
	endpoint := fmt.Sprintf("/admin/users/%s", userID)
	return c.doRequest(ctx, http.MethodPut, endpoint, c.serviceKey, map[string]string{
		"password": password,
	}, nil)
}

// AdminGenerateRecoveryLink asks the provider for a one-time recovery link
func (c *Client) AdminGenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	body := map[string]string{
		"type":  "recovery",
		"email": email,
	}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}

	var payload struct {
		ActionLink string `json:"action_link"`
	}
	err := c.doRequest(ctx, http.MethodPost, "/admin/generate_link", c.serviceKey, body, &payload)
	if err != nil {
		return "", err
	}
	return payload.ActionLink, nil
}

// AdminDeleteUser removes an account outright
func (c *Client) AdminDeleteUser(ctx context.Context, userID uuid.UUID) error {
	endpoint := fmt.Sprintf("/admin/users/%s", userID)
	return c.doRequest(ctx, http.MethodDelete, endpoint, c.serviceKey, nil, nil)
}
