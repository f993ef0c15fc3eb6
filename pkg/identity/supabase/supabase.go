// Package supabase implements the identity contracts against a Supabase
// project: token verification and the account directory through the GoTrue
// admin API, and profile persistence through PostgREST.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleardish/entitlements/pkg/entitle"
	"github.com/cleardish/entitlements/pkg/identity"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	profilesTable      = "user_profiles"
)

// Config holds Supabase client configuration.
type Config struct {
	// ProjectURL is the project base URL, e.g. https://ref.supabase.co.
	ProjectURL string

	// ServiceRoleKey is the service_role credential used for admin calls.
	ServiceRoleKey string

	// HTTPClient is optional. If nil, a default client with a 10s timeout
	// is used.
	HTTPClient *http.Client
}

// Client talks to one Supabase project. It implements identity.TokenVerifier,
// identity.Directory, and entitle.ProfileStore.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// New creates a new Supabase client.
func New(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.ProjectURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("project URL is required")
	}
	serviceKey := strings.TrimSpace(config.ServiceRoleKey)
	if serviceKey == "" {
		return nil, fmt.Errorf("service role key is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: httpClient,
	}, nil
}

type userPayload struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	AppMetadata map[string]interface{} `json:"app_metadata"`
}

func (u *userPayload) account() *identity.Account {
	return &identity.Account{ID: u.ID, Email: u.Email, AppMetadata: u.AppMetadata}
}

// VerifyToken implements identity.TokenVerifier via GET /auth/v1/user.
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*identity.Account, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, identity.ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.serviceKey)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, identity.ErrInvalidToken
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("auth API error: status %d, body: %s", status, string(body))
	}

	var user userPayload
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	if user.ID == "" {
		return nil, identity.ErrInvalidToken
	}
	return user.account(), nil
}

// ListAccounts implements identity.Directory via GET /auth/v1/admin/users.
func (c *Client) ListAccounts(ctx context.Context, page, perPage int) ([]*identity.Account, error) {
	endpoint := fmt.Sprintf("%s/auth/v1/admin/users?page=%d&per_page=%d", c.baseURL, page, perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAdminHeaders(req)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("admin API error: status %d, body: %s", status, string(body))
	}

	var payload struct {
		Users []userPayload `json:"users"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse user list: %w", err)
	}

	accounts := make([]*identity.Account, 0, len(payload.Users))
	for i := range payload.Users {
		accounts = append(accounts, payload.Users[i].account())
	}
	return accounts, nil
}

// UpdateAppMetadata implements identity.Directory via
// PUT /auth/v1/admin/users/{id}. GoTrue merges the submitted app_metadata
// with the stored one, so unrelated keys survive the update.
func (c *Client) UpdateAppMetadata(ctx context.Context, accountID string, patch map[string]interface{}) error {
	if accountID == "" {
		return identity.ErrAccountNotFound
	}

	payload, err := json.Marshal(map[string]interface{}{"app_metadata": patch})
	if err != nil {
		return fmt.Errorf("failed to encode metadata patch: %w", err)
	}

	endpoint := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, url.PathEscape(accountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setAdminHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return identity.ErrAccountNotFound
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("admin API error: status %d, body: %s", status, string(body))
	}
	return nil
}

// GetProfile implements entitle.ProfileStore via PostgREST.
func (c *Client) GetProfile(ctx context.Context, userID string) (*entitle.Profile, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?user_id=eq.%s&select=user_id,user_sub_plan,user_sub_paid_until,updated_at",
		c.baseURL, profilesTable, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAdminHeaders(req)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("profile API error: status %d, body: %s", status, string(body))
	}

	var rows []struct {
		UserID    string    `json:"user_id"`
		Plan      string    `json:"user_sub_plan"`
		PaidUntil time.Time `json:"user_sub_paid_until"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, entitle.ErrProfileNotFound
	}

	return &entitle.Profile{
		UserID:    rows[0].UserID,
		Plan:      entitle.Plan(rows[0].Plan),
		PaidUntil: rows[0].PaidUntil,
		UpdatedAt: rows[0].UpdatedAt,
	}, nil
}

// SetSubscription implements entitle.ProfileStore via PostgREST.
func (c *Client) SetSubscription(ctx context.Context, userID string, plan entitle.Plan, paidUntil time.Time) error {
	payload, err := json.Marshal(map[string]interface{}{
		"user_sub_plan":       string(plan),
		"user_sub_paid_until": entitle.ISO(paidUntil),
		"updated_at":          entitle.ISO(time.Now()),
	})
	if err != nil {
		return fmt.Errorf("failed to encode profile update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?user_id=eq.%s", c.baseURL, profilesTable, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setAdminHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	body, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("profile API error: status %d, body: %s", status, string(body))
	}
	return nil
}

func (c *Client) setAdminHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", identity.ErrDirectoryUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, res.StatusCode, nil
}
