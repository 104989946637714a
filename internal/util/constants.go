// Package util provides common utility functions and constants used across the
// opentunnel application. This package is intentionally kept dependency-free
// (no imports from other internal/* packages) to serve as a shared foundation
// without introducing circular dependencies.
package util

import "time"

const (
	// DefaultScanTimeout is the per-port timeout for local service discovery.
	// Each TCP probe against 127.0.0.1:<port> is abandoned if the connection
	// is not established within this window. The CLI exposes it as
	// `opentunnel scan --timeout <ms>` with this value as the default.
	//
	// 500ms is generous for loopback connections: a healthy local listener
	// accepts in well under a millisecond, so anything slower is treated as
	// "nothing listening" rather than retried.
	DefaultScanTimeout = 500 * time.Millisecond

	// DefaultMonitorInterval is the refresh interval for the real-time
	// metrics monitor (`opentunnel monitor`). Polling the local cloudflared
	// metrics endpoint is cheap, but refreshing faster than this makes the
	// terminal output unreadable.
	DefaultMonitorInterval = 2 * time.Second

	// APITimeout bounds every request made against the provider REST API.
	// Used by: internal/api (http.Client construction).
	APITimeout = 30 * time.Second
)
