// Package ingress implements the tunnel ingress rule model and the
// reconciliation logic shared by the mapping commands, the scan wizard, and
// preset application.
//
// An ingress rule list is order-sensitive: the serving daemon matches rules
// top to bottom, and the catch-all rule (no hostname) must stay last. All
// mutations here return a fresh slice and leave the input untouched, so a
// failed operation never leaves a half-modified list behind.
//
// Callers must not mutate a rule list from multiple goroutines concurrently;
// the read-modify-write here is not internally synchronized.
package ingress

import (
	"errors"
	"fmt"

	"github.com/opentunnel/opentunnel/internal/model"
)

// Rule maps one hostname to a service target. An empty Hostname denotes the
// catch-all rule. The YAML tags match the cloudflared config file format.
type Rule struct {
	Hostname string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	Service  string `yaml:"service" json:"service"`
}

// IsCatchAll reports whether the rule matches any otherwise-unmatched request.
func (r Rule) IsCatchAll() bool {
	return r.Hostname == ""
}

var (
	// ErrDuplicateHostname is returned by Insert when the hostname already
	// has a rule. Hostname comparison is exact and case-sensitive, matching
	// how rules are stored.
	ErrDuplicateHostname = errors.New("hostname already mapped")

	// ErrMappingNotFound is returned by Remove when no rule carries the
	// requested hostname.
	ErrMappingNotFound = errors.New("mapping not found")
)

// Insert returns a copy of rules with a new hostname→service rule added.
// The rule is placed immediately before the last element when the list is
// non-empty, which keeps a trailing catch-all rule last; an empty list gets
// the rule at position 0.
func Insert(rules []Rule, hostname, service string) ([]Rule, error) {
	if hasHostname(rules, hostname) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateHostname, hostname)
	}

	pos := 0
	if len(rules) > 0 {
		pos = len(rules) - 1
	}

	out := make([]Rule, 0, len(rules)+1)
	out = append(out, rules[:pos]...)
	out = append(out, Rule{Hostname: hostname, Service: service})
	out = append(out, rules[pos:]...)
	return out, nil
}

// Remove returns a copy of rules with the rule for hostname removed.
func Remove(rules []Rule, hostname string) ([]Rule, error) {
	if !hasHostname(rules, hostname) {
		return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, hostname)
	}

	out := make([]Rule, 0, len(rules)-1)
	for _, r := range rules {
		if !r.IsCatchAll() && r.Hostname == hostname {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// MergeOutcome reports what MergeDiscovered did with one discovered service.
type MergeOutcome int

const (
	// Added means a new rule was inserted for the hostname.
	Added MergeOutcome = iota
	// AlreadyMapped means the hostname had a rule and the service was
	// skipped. This is an outcome, not an error: bulk reconciliation after
	// a scan must keep going when one hostname is already taken.
	AlreadyMapped
)

// MergeDiscovered folds one scan result into the rule list under the given
// hostname, targeting http://localhost:<port>. Duplicate hostnames are
// skipped rather than failed so a batch of discovered services can be merged
// without aborting.
func MergeDiscovered(rules []Rule, svc model.DiscoveredService, hostname string) ([]Rule, MergeOutcome, error) {
	if hasHostname(rules, hostname) {
		return rules, AlreadyMapped, nil
	}
	out, err := Insert(rules, hostname, NormalizeTarget(fmt.Sprintf("%d", svc.Port)))
	if err != nil {
		return rules, AlreadyMapped, err
	}
	return out, Added, nil
}

// Hostnames returns the non-catch-all hostnames in rule order.
func Hostnames(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if !r.IsCatchAll() {
			out = append(out, r.Hostname)
		}
	}
	return out
}

func hasHostname(rules []Rule, hostname string) bool {
	for _, r := range rules {
		if !r.IsCatchAll() && r.Hostname == hostname {
			return true
		}
	}
	return false
}
