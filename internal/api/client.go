// Package api is the HTTP client for the provider's v4 REST API. Every
// operation is a single request wrapped in the provider's response envelope;
// there is no retry logic here, callers surface failures directly.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/opentunnel/opentunnel/internal/appconfig"
	"github.com/opentunnel/opentunnel/internal/security"
	"github.com/opentunnel/opentunnel/internal/util"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// Error is a failure reported inside the API's response envelope.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("API error: %s (code %d)", e.Message, e.Code)
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Errors  []Error         `json:"errors"`
}

// Client talks to the provider API on behalf of one account.
type Client struct {
	baseURL   string
	token     string
	AccountID string
	ZoneID    string
	http      *http.Client
}

// New creates a client against baseURL. AccountID and zoneID may be empty
// for token-only flows (verification, account/zone discovery during setup);
// account- and zone-scoped calls fail with the appconfig sentinel errors
// until they are set.
func New(baseURL, token, accountID, zoneID string) *Client {
	return &Client{
		baseURL:   baseURL,
		token:     token,
		AccountID: accountID,
		ZoneID:    zoneID,
		http:      &http.Client{Timeout: util.APITimeout},
	}
}

// BaseURL returns the API endpoint, honoring the OPENTUNNEL_API_BASE
// override for staging environments and tests.
func BaseURL() string {
	if v := os.Getenv("OPENTUNNEL_API_BASE"); v != "" {
		return v
	}
	return DefaultBaseURL
}

// FromConfig builds a client from the saved credentials.
func FromConfig(cfg appconfig.Config) (*Client, error) {
	if !cfg.IsConfigured() {
		return nil, appconfig.ErrNotConfigured
	}
	return New(BaseURL(), cfg.APIToken, cfg.AccountID, cfg.ZoneID), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		if len(env.Errors) > 0 {
			e := env.Errors[0]
			return &e
		}
		return fmt.Errorf("request failed with HTTP %d", resp.StatusCode)
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

func (c *Client) accountPath(format string, args ...any) (string, error) {
	if c.AccountID == "" {
		return "", appconfig.ErrNotConfigured
	}
	return "/accounts/" + url.PathEscape(c.AccountID) + fmt.Sprintf(format, args...), nil
}

func (c *Client) zonePath(format string, args ...any) (string, error) {
	if c.ZoneID == "" {
		return "", appconfig.ErrZoneNotConfigured
	}
	return "/zones/" + url.PathEscape(c.ZoneID) + fmt.Sprintf(format, args...), nil
}

// VerifyToken checks that the token is valid and active. Failures come
// back classified so the raw rejection (which can echo request headers)
// stays out of user-facing output.
func (c *Client) VerifyToken(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/user/tokens/verify", nil, nil); err != nil {
		return security.NewClassifiedError("the API token was rejected by the provider", err.Error())
	}
	return nil
}
