package doctor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/opentunnel/opentunnel/internal/appconfig"
	"github.com/opentunnel/opentunnel/internal/config"
	"github.com/opentunnel/opentunnel/internal/daemon"
	"github.com/opentunnel/opentunnel/internal/ingress"
	"github.com/opentunnel/opentunnel/internal/security"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// TokenVerifier checks that the stored API token is still accepted.
type TokenVerifier interface {
	VerifyToken(ctx context.Context) error
}

// Run executes local diagnostics: daemon availability, API configuration,
// tunnel config integrity and credential posture. verifier may be nil to
// skip the remote token check (e.g. when offline).
func Run(ctx context.Context, verifier TokenVerifier) (Report, error) {
	var issues []Issue

	if err := daemon.EnsureInstalled(); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "daemon-binary",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install cloudflared and ensure it is on PATH",
		})
	}

	cfg, err := appconfig.Load()
	if err != nil {
		return Report{}, err
	}
	switch {
	case cfg.APIToken == "" || cfg.AccountID == "":
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "api-config",
			Target:         "config.json",
			Message:        "API token or account is not configured",
			Recommendation: "run `opentunnel config set` to store credentials",
		})
	case cfg.ZoneID == "":
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Check:          "api-config",
			Target:         "config.json",
			Message:        "no DNS zone selected",
			Recommendation: "run `opentunnel config set` and pick a zone to enable DNS and mapping commands",
		})
	default:
		if verifier != nil {
			if err := verifier.VerifyToken(ctx); err != nil {
				issues = append(issues, Issue{
					Severity:       SeverityHigh,
					Check:          "api-token",
					Target:         "config.json",
					Message:        fmt.Sprintf("stored API token was rejected: %v", err),
					Recommendation: "rotate the token and run `opentunnel config set` again",
				})
			}
		}
	}

	tc, err := config.Load()
	switch {
	case err == nil:
		issues = append(issues, ingressIssues(tc.Ingress)...)
	case errors.Is(err, config.ErrConfigNotFound):
		issues = append(issues, Issue{
			Severity:       SeverityLow,
			Check:          "tunnel-config",
			Target:         config.DefaultPath(),
			Message:        "no tunnel config found",
			Recommendation: "run `opentunnel create` or `opentunnel switch` to generate one",
		})
	default:
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "tunnel-config",
			Target:         config.DefaultPath(),
			Message:        fmt.Sprintf("tunnel config could not be parsed: %v", err),
			Recommendation: "fix or regenerate the tunnel config",
		})
	}

	if audit, err := security.RunLocalAudit(); err == nil {
		for _, f := range audit.Findings {
			sev := SeverityLow
			if f.Severity == security.SeverityMedium {
				sev = SeverityMedium
			}
			if f.Severity == security.SeverityHigh {
				sev = SeverityHigh
			}
			issues = append(issues, Issue{
				Severity:       sev,
				Check:          "security-audit",
				Target:         f.Target,
				Message:        f.Message,
				Recommendation: f.Recommendation,
			})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		ri := severityRank(issues[i].Severity)
		rj := severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		if issues[i].Target != issues[j].Target {
			return issues[i].Target < issues[j].Target
		}
		return issues[i].Message < issues[j].Message
	})
	return Report{Issues: issues}, nil
}

// ingressIssues flags rule lists that cloudflared would reject or route
// surprisingly: duplicate hostnames, a missing or misplaced catch-all, and
// targets that do not look like service URLs.
func ingressIssues(rules []ingress.Rule) []Issue {
	var issues []Issue

	seen := map[string]int{}
	for _, r := range rules {
		if r.IsCatchAll() {
			continue
		}
		seen[r.Hostname]++
	}
	for hostname, n := range seen {
		if n < 2 {
			continue
		}
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "duplicate-hostname",
			Target:         hostname,
			Message:        fmt.Sprintf("hostname appears in %d rules; only the first ever matches", n),
			Recommendation: "remove the shadowed rules with `opentunnel unmap`",
		})
	}

	for i, r := range rules {
		if r.IsCatchAll() && i != len(rules)-1 {
			issues = append(issues, Issue{
				Severity:       SeverityHigh,
				Check:          "catch-all-position",
				Target:         r.Service,
				Message:        "catch-all rule is not last; rules after it never match",
				Recommendation: "move the catch-all to the end of the ingress list",
			})
		}
	}
	if len(rules) > 0 && !rules[len(rules)-1].IsCatchAll() {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "catch-all-missing",
			Target:         config.DefaultPath(),
			Message:        "ingress list has no trailing catch-all rule",
			Recommendation: "append a catch-all such as http_status:404",
		})
	}

	for _, r := range rules {
		if r.IsCatchAll() || r.Service == "" {
			continue
		}
		if ingress.NormalizeTarget(r.Service) != r.Service {
			issues = append(issues, Issue{
				Severity:       SeverityLow,
				Check:          "target-format",
				Target:         r.Hostname,
				Message:        fmt.Sprintf("service %q has no scheme", r.Service),
				Recommendation: fmt.Sprintf("use %q", ingress.NormalizeTarget(r.Service)),
			})
		}
	}

	return issues
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}
