package scan

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen opens a loopback listener on an ephemeral port and returns the port.
func listen(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort returns a port number that currently has no listener: bind an
// ephemeral port, note it, release it.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestProbeOpenPort(t *testing.T) {
	port := listen(t)
	assert.True(t, Probe(port, time.Second))
}

func TestProbeClosedPort(t *testing.T) {
	assert.False(t, Probe(closedPort(t), time.Second))
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{name: "single", in: "3000", want: []int{3000}},
		{name: "multiple with spaces", in: "3000, 8080 ,9000", want: []int{3000, 8080, 9000}},
		{name: "bad tokens skipped", in: "3000,abc,8080", want: []int{3000, 8080}},
		{name: "out of range skipped", in: "0,70000,-1,443", want: []int{443}},
		{name: "all bad", in: "x,y,z", want: nil},
		{name: "empty", in: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePorts(tt.in))
		})
	}
}

func TestCandidatesDedup(t *testing.T) {
	// 3000 is in the well-known set: the well-known description wins and
	// the port appears exactly once.
	cs := Candidates([]int{3000, 49152})

	count := 0
	for _, c := range cs {
		if c.Port == 3000 {
			count++
			assert.Equal(t, "React / Node.js", c.Description)
		}
	}
	assert.Equal(t, 1, count, "duplicate extra port must appear once")

	found := false
	for _, c := range cs {
		if c.Port == 49152 {
			found = true
			assert.Equal(t, "custom", c.Description)
		}
	}
	assert.True(t, found)
}

func TestCandidatesNoExtras(t *testing.T) {
	assert.Len(t, Candidates(nil), len(wellKnown))
}

func TestScanFindsListener(t *testing.T) {
	port := listen(t)

	found, err := Scan(context.Background(), []int{port}, time.Second)
	require.NoError(t, err)

	var hit bool
	for _, svc := range found {
		if svc.Port == port {
			hit = true
			assert.Equal(t, "custom", svc.Description)
		}
	}
	assert.True(t, hit, "scan should discover the test listener on port %d", port)

	// Output is sorted ascending by port.
	for i := 1; i < len(found); i++ {
		assert.LessOrEqual(t, found[i-1].Port, found[i].Port)
	}
}

func TestScanOmitsClosedPort(t *testing.T) {
	port := closedPort(t)
	found, err := Scan(context.Background(), []int{port}, 200*time.Millisecond)
	require.NoError(t, err)
	for _, svc := range found {
		assert.NotEqual(t, port, svc.Port)
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, nil, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
