package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/opentunnel/opentunnel/internal/model"
)

// DNSRecords lists the configured zone's records. The per_page cap matches
// the API maximum; zones beyond that need the web dashboard anyway.
func (c *Client) DNSRecords(ctx context.Context) ([]model.DNSRecord, error) {
	path, err := c.zonePath("/dns_records?per_page=100")
	if err != nil {
		return nil, err
	}
	var out []model.DNSRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDNSRecord adds a record to the configured zone.
func (c *Client) CreateDNSRecord(ctx context.Context, rec model.CreateDNSRecord) (model.DNSRecord, error) {
	path, err := c.zonePath("/dns_records")
	if err != nil {
		return model.DNSRecord{}, err
	}
	var out model.DNSRecord
	if err := c.do(ctx, http.MethodPost, path, rec, &out); err != nil {
		return model.DNSRecord{}, err
	}
	return out, nil
}

// UpdateDNSRecord replaces a record by ID.
func (c *Client) UpdateDNSRecord(ctx context.Context, recordID string, rec model.CreateDNSRecord) (model.DNSRecord, error) {
	path, err := c.zonePath("/dns_records/%s", url.PathEscape(recordID))
	if err != nil {
		return model.DNSRecord{}, err
	}
	var out model.DNSRecord
	if err := c.do(ctx, http.MethodPut, path, rec, &out); err != nil {
		return model.DNSRecord{}, err
	}
	return out, nil
}

// DeleteDNSRecord removes a record by ID.
func (c *Client) DeleteDNSRecord(ctx context.Context, recordID string) error {
	path, err := c.zonePath("/dns_records/%s", url.PathEscape(recordID))
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
