package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/opentunnel/opentunnel/internal/model"
)

// AccessApps lists Zero Trust Access applications in the account.
func (c *Client) AccessApps(ctx context.Context) ([]model.AccessApp, error) {
	path, err := c.accountPath("/access/apps")
	if err != nil {
		return nil, err
	}
	var out []model.AccessApp
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccessApp creates an Access application.
func (c *Client) CreateAccessApp(ctx context.Context, app model.AccessApp) (model.AccessApp, error) {
	path, err := c.accountPath("/access/apps")
	if err != nil {
		return model.AccessApp{}, err
	}
	var out model.AccessApp
	if err := c.do(ctx, http.MethodPost, path, app, &out); err != nil {
		return model.AccessApp{}, err
	}
	return out, nil
}

// DeleteAccessApp removes an Access application by ID.
func (c *Client) DeleteAccessApp(ctx context.Context, appID string) error {
	path, err := c.accountPath("/access/apps/%s", url.PathEscape(appID))
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// AccessPolicies lists the policies attached to an Access application.
func (c *Client) AccessPolicies(ctx context.Context, appID string) ([]model.AccessPolicy, error) {
	path, err := c.accountPath("/access/apps/%s/policies", url.PathEscape(appID))
	if err != nil {
		return nil, err
	}
	var out []model.AccessPolicy
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccessPolicy attaches a policy to an Access application.
func (c *Client) CreateAccessPolicy(ctx context.Context, appID string, policy model.AccessPolicy) (model.AccessPolicy, error) {
	path, err := c.accountPath("/access/apps/%s/policies", url.PathEscape(appID))
	if err != nil {
		return model.AccessPolicy{}, err
	}
	var out model.AccessPolicy
	if err := c.do(ctx, http.MethodPost, path, policy, &out); err != nil {
		return model.AccessPolicy{}, err
	}
	return out, nil
}
