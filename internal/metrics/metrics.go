// Package metrics reads the tunnel daemon's Prometheus endpoint and distils
// it into the handful of numbers the user cares about.
package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/opentunnel/opentunnel/internal/util"
)

// DefaultEndpoint is where cloudflared exposes metrics by default.
const DefaultEndpoint = "http://127.0.0.1:20241/metrics"

// Metric families exported by cloudflared.
const (
	famTotalRequests = "cloudflared_tunnel_total_requests"
	famRequestErrors = "cloudflared_tunnel_request_errors"
	famActiveStreams = "cloudflared_tunnel_active_streams"
	famHAConnections = "cloudflared_tunnel_ha_connections"
)

// Snapshot is a point-in-time view of daemon health.
type Snapshot struct {
	TotalRequests float64
	RequestErrors float64
	ActiveStreams float64
	HAConnections float64
	Taken         time.Time
}

// ErrorRate returns errors as a fraction of total requests, or 0 when no
// requests have been served yet.
func (s Snapshot) ErrorRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return s.RequestErrors / s.TotalRequests
}

// Client scrapes a single daemon metrics endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a metrics client. An empty endpoint uses DefaultEndpoint.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: util.DefaultScanTimeout * 4},
	}
}

// Fetch scrapes the endpoint once. A connection error usually means the
// daemon is not running.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch daemon metrics: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon metrics endpoint returned %s", resp.Status)
	}
	return Parse(resp.Body)
}

// Parse reads Prometheus text exposition format and extracts the tunnel
// families. Families the daemon does not export yet are left at zero.
func Parse(r io.Reader) (*Snapshot, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("parse daemon metrics: %w", err)
	}
	return &Snapshot{
		TotalRequests: sum(families[famTotalRequests]),
		RequestErrors: sum(families[famRequestErrors]),
		ActiveStreams: sum(families[famActiveStreams]),
		HAConnections: sum(families[famHAConnections]),
		Taken:         time.Now(),
	}, nil
}

// sum totals a family across all label sets. cloudflared labels some metrics
// by connection index, so the per-label values must be added up.
func sum(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.GetCounter() != nil:
			total += m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			total += m.GetGauge().GetValue()
		case m.GetUntyped() != nil:
			total += m.GetUntyped().GetValue()
		}
	}
	return total
}

// Monitor scrapes the endpoint every interval and hands each result to fn
// until ctx is cancelled. Scrape failures are reported through fn rather
// than ending the loop, so a daemon restart mid-watch recovers on its own.
func (c *Client) Monitor(ctx context.Context, interval time.Duration, fn func(*Snapshot, error)) {
	if interval <= 0 {
		interval = util.DefaultMonitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap, err := c.Fetch(ctx)
		fn(snap, err)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
