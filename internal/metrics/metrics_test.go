package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExposition = `# HELP cloudflared_tunnel_total_requests Amount of requests proxied through the tunnel
# TYPE cloudflared_tunnel_total_requests counter
cloudflared_tunnel_total_requests 1204
# HELP cloudflared_tunnel_request_errors Count of errors proxying to origin
# TYPE cloudflared_tunnel_request_errors counter
cloudflared_tunnel_request_errors 12
# HELP cloudflared_tunnel_active_streams Number of active streams
# TYPE cloudflared_tunnel_active_streams gauge
cloudflared_tunnel_active_streams 3
# HELP cloudflared_tunnel_ha_connections Number of active HA connections
# TYPE cloudflared_tunnel_ha_connections gauge
cloudflared_tunnel_ha_connections{conn_index="0"} 1
cloudflared_tunnel_ha_connections{conn_index="1"} 1
`

func TestParse(t *testing.T) {
	snap, err := Parse(strings.NewReader(sampleExposition))
	require.NoError(t, err)

	assert.Equal(t, 1204.0, snap.TotalRequests)
	assert.Equal(t, 12.0, snap.RequestErrors)
	assert.Equal(t, 3.0, snap.ActiveStreams)
	assert.Equal(t, 2.0, snap.HAConnections, "labelled values should be summed")
	assert.False(t, snap.Taken.IsZero())
}

func TestParseMissingFamilies(t *testing.T) {
	snap, err := Parse(strings.NewReader("# nothing exported yet\n"))
	require.NoError(t, err)
	assert.Zero(t, snap.TotalRequests)
	assert.Zero(t, snap.HAConnections)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("cloudflared_tunnel_total_requests{ 12\n"))
	assert.Error(t, err)
}

func TestErrorRate(t *testing.T) {
	assert.Zero(t, Snapshot{}.ErrorRate())
	assert.InDelta(t, 0.01, Snapshot{TotalRequests: 1200, RequestErrors: 12}.ErrorRate(), 1e-9)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleExposition))
	}))
	defer srv.Close()

	c := New(srv.URL)
	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1204.0, snap.TotalRequests)
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchDaemonDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).Fetch(context.Background())
	assert.Error(t, err)
}

func TestMonitorStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleExposition))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan *Snapshot, 1)
	doneCh := make(chan struct{})
	go func() {
		New(srv.URL).Monitor(ctx, 10*time.Millisecond, func(s *Snapshot, err error) {
			if err == nil {
				select {
				case got <- s:
				default:
				}
			}
		})
		close(doneCh)
	}()

	select {
	case s := <-got:
		assert.Equal(t, 1204.0, s.TotalRequests)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
	cancel()
	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
