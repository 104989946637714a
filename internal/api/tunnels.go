package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/opentunnel/opentunnel/internal/ingress"
	"github.com/opentunnel/opentunnel/internal/model"
)

// Tunnels lists all tunnels in the account, including deleted status labels
// the API reports.
func (c *Client) Tunnels(ctx context.Context) ([]model.Tunnel, error) {
	path, err := c.accountPath("/cfd_tunnel")
	if err != nil {
		return nil, err
	}
	var out []model.Tunnel
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tunnel fetches one tunnel by ID.
func (c *Client) Tunnel(ctx context.Context, tunnelID string) (model.Tunnel, error) {
	path, err := c.accountPath("/cfd_tunnel/%s", url.PathEscape(tunnelID))
	if err != nil {
		return model.Tunnel{}, err
	}
	var out model.Tunnel
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return model.Tunnel{}, err
	}
	return out, nil
}

// CreateTunnel creates a tunnel with the given name and base64 secret.
func (c *Client) CreateTunnel(ctx context.Context, name, secret string) (model.Tunnel, error) {
	path, err := c.accountPath("/cfd_tunnel")
	if err != nil {
		return model.Tunnel{}, err
	}
	body := map[string]string{
		"name":          name,
		"tunnel_secret": secret,
	}
	var out model.Tunnel
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return model.Tunnel{}, err
	}
	return out, nil
}

// DeleteTunnel removes a tunnel by ID.
func (c *Client) DeleteTunnel(ctx context.Context, tunnelID string) error {
	path, err := c.accountPath("/cfd_tunnel/%s", url.PathEscape(tunnelID))
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// TunnelToken fetches the run token used to install the daemon service for
// a tunnel.
func (c *Client) TunnelToken(ctx context.Context, tunnelID string) (string, error) {
	path, err := c.accountPath("/cfd_tunnel/%s/token", url.PathEscape(tunnelID))
	if err != nil {
		return "", err
	}
	var token string
	if err := c.do(ctx, http.MethodGet, path, nil, &token); err != nil {
		return "", err
	}
	return token, nil
}

// tunnelConfiguration wraps the remotely managed ingress list.
type tunnelConfiguration struct {
	Config struct {
		Ingress []ingress.Rule `json:"ingress"`
	} `json:"config"`
}

// IngressConfig fetches the remotely managed ingress rule list for a tunnel.
func (c *Client) IngressConfig(ctx context.Context, tunnelID string) ([]ingress.Rule, error) {
	path, err := c.accountPath("/cfd_tunnel/%s/configurations", url.PathEscape(tunnelID))
	if err != nil {
		return nil, err
	}
	var out tunnelConfiguration
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Config.Ingress, nil
}

// PutIngressConfig replaces the remotely managed ingress rule list. The API
// takes the whole list; there is no partial update.
func (c *Client) PutIngressConfig(ctx context.Context, tunnelID string, rules []ingress.Rule) error {
	path, err := c.accountPath("/cfd_tunnel/%s/configurations", url.PathEscape(tunnelID))
	if err != nil {
		return err
	}
	var body tunnelConfiguration
	body.Config.Ingress = rules
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// Accounts lists the accounts the token can act on. Usable before an
// account is configured (setup wizard).
func (c *Client) Accounts(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Zones lists the zones the token can act on.
func (c *Client) Zones(ctx context.Context) ([]model.Zone, error) {
	var out []model.Zone
	if err := c.do(ctx, http.MethodGet, "/zones", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
