// Package scan discovers services listening on local TCP ports.
//
// A scan probes a well-known port set plus any caller-supplied extras, one
// goroutine per port, and aggregates after every probe has finished. Probes
// share no state; the only ordering guarantee is on the output, which is
// sorted by port.
package scan

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/opentunnel/opentunnel/internal/model"
	"github.com/opentunnel/opentunnel/internal/util"
)

// Probe reports whether something is listening on 127.0.0.1:port. It answers
// only "is something listening", never why not: timeouts, refused
// connections, and any other dial error all come back false. A single
// attempt, no retries; port discovery is best-effort.
func Probe(port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// ParsePorts parses a comma-separated port list from the CLI. Malformed
// tokens (non-numeric, out of range) are dropped silently so one bad token
// never fails the whole scan.
func ParsePorts(raw string) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		p, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || util.ValidatePort(p) != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Candidates builds the probe set: the well-known list plus extras. An extra
// port already present keeps its well-known description and appears once.
func Candidates(extra []int) []Candidate {
	out := make([]Candidate, len(wellKnown))
	copy(out, wellKnown)
	for _, p := range extra {
		if hasPort(out, p) {
			continue
		}
		out = append(out, Candidate{Port: p, Description: "custom"})
	}
	return out
}

// Scan probes every candidate port concurrently and returns the open ones
// sorted ascending by port. A closed port is not an error; the error return
// exists only for context cancellation.
func Scan(ctx context.Context, extra []int, timeout time.Duration) ([]model.DiscoveredService, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates := Candidates(extra)

	type probeResult struct {
		candidate Candidate
		open      bool
	}

	results := make(chan probeResult, len(candidates))
	for _, c := range candidates {
		go func(c Candidate) {
			results <- probeResult{candidate: c, open: Probe(c.Port, timeout)}
		}(c)
	}

	// Join before aggregating: the results slice is only written here,
	// after each probe goroutine has reported, so no lock is needed.
	var found []model.DiscoveredService
	for range candidates {
		select {
		case r := <-results:
			if r.open {
				found = append(found, model.DiscoveredService{
					Port:        r.candidate.Port,
					Description: r.candidate.Description,
				})
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Port < found[j].Port })
	return found, nil
}

func hasPort(cs []Candidate, port int) bool {
	for _, c := range cs {
		if c.Port == port {
			return true
		}
	}
	return false
}
