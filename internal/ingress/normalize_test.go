package ingress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare port", in: "3000", want: "http://localhost:3000"},
		{name: "host and port", in: "myhost:8080", want: "http://myhost:8080"},
		{name: "http unchanged", in: "http://localhost:3000", want: "http://localhost:3000"},
		{name: "https unchanged", in: "https://api.example.com", want: "https://api.example.com"},
		{name: "http_status unchanged", in: "http_status:404", want: "http_status:404"},
		{name: "unix unchanged", in: "unix:/run/app.sock", want: "unix:/run/app.sock"},
		{name: "ssh unchanged", in: "ssh://localhost:22", want: "ssh://localhost:22"},
		{name: "rdp unchanged", in: "rdp://localhost:3389", want: "rdp://localhost:3389"},
		{name: "tcp unchanged", in: "tcp://localhost:5432", want: "tcp://localhost:5432"},
		{name: "empty unchanged", in: "", want: ""},
		{name: "whitespace unchanged", in: "   ", want: "   "},
		{name: "path not host:port", in: "/var/run:80", want: "/var/run:80"},
		{name: "non-numeric port unchanged", in: "host:abc", want: "host:abc"},
		{name: "empty host unchanged", in: ":8080", want: ":8080"},
		{name: "opaque unchanged", in: "hello_world", want: "hello_world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTarget(tt.in))
		})
	}
}

func TestNormalizeTargetIdempotent(t *testing.T) {
	inputs := []string{
		"3000", "myhost:8080", "https://api.example.com", "http_status:404",
		"", "  ", "hello", ":9", "tcp://db:5432", "0", "65535",
	}
	for _, in := range inputs {
		once := NormalizeTarget(in)
		assert.Equal(t, once, NormalizeTarget(once), "normalize must be idempotent for %q", in)
	}
}
