package ingress

import "strings"

// Service target schemes the tunnel daemon understands. Input already
// carrying one of these prefixes is passed through untouched; keeping the
// set in one slice makes the supported schemes auditable.
var recognizedSchemes = []string{
	"http://",
	"https://",
	"http_status:",
	"unix:",
	"ssh://",
	"rdp://",
	"tcp://",
}

// NormalizeTarget canonicalizes free-form user input into a service target:
//
//	"3000"            → "http://localhost:3000"
//	"myhost:8080"     → "http://myhost:8080"
//	"https://a.b"     → unchanged
//	"" / "   "        → unchanged (caller rejects empty targets)
//
// Anything it does not recognize is returned unchanged so intentionally
// opaque targets survive. Pure string transformation, idempotent, no I/O.
func NormalizeTarget(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	for _, scheme := range recognizedSchemes {
		if strings.HasPrefix(raw, scheme) {
			return raw
		}
	}

	if allDigits(raw) {
		return "http://localhost:" + raw
	}

	// Bare host:port shorthand gets an http:// prefix.
	if host, port, ok := strings.Cut(raw, ":"); ok &&
		host != "" &&
		!strings.HasPrefix(raw, "/") &&
		!strings.Contains(raw, "://") &&
		allDigits(port) {
		return "http://" + raw
	}

	return raw
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
