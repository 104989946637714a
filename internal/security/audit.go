package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/opentunnel/opentunnel/internal/appconfig"
	"github.com/opentunnel/opentunnel/internal/config"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	Severity       Severity `json:"severity"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type AuditReport struct {
	Findings []Finding `json:"findings"`
}

func (r AuditReport) HasHigh() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// RunLocalAudit inspects the posture of local credential material: the
// opentunnel config holding the API token, and the cloudflared tunnel
// credential files it points at.
func RunLocalAudit() (AuditReport, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return AuditReport{}, err
	}

	var findings []Finding

	cfgDir, err := appconfig.ConfigDir()
	if err == nil {
		checkPathPerm(&findings, cfgDir, 0o700, false)
		checkPathPerm(&findings, filepath.Join(cfgDir, "config.json"), 0o600, true)
	}

	if cfg.APIToken == "" {
		findings = append(findings, Finding{
			Severity:       SeverityLow,
			Target:         "config.json",
			Message:        "no API token configured",
			Recommendation: "run `opentunnel config set` to store a scoped token",
		})
	}

	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		credDir := filepath.Join(home, ".cloudflared")
		checkPathPerm(&findings, credDir, 0o755, false)
		if entries, err := os.ReadDir(credDir); err == nil {
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				checkPathPerm(&findings, filepath.Join(credDir, e.Name()), 0o600, true)
			}
		}
	}

	tc, err := config.Load()
	if err == nil {
		if tc.CredentialsFile != "" {
			path := tc.CredentialsFile
			if len(path) > 1 && path[:2] == "~/" && home != "" {
				path = filepath.Join(home, path[2:])
			}
			checkPathPerm(&findings, path, 0o600, true)
		}
		for _, rule := range tc.Ingress {
			if rule.IsCatchAll() {
				continue
			}
			if rule.Service == "" {
				findings = append(findings, Finding{
					Severity:       SeverityMedium,
					Target:         rule.Hostname,
					Message:        "mapping has an empty service target",
					Recommendation: "remove the mapping or point it at a local service",
				})
			}
		}
	} else if !errors.Is(err, config.ErrConfigNotFound) {
		findings = append(findings, Finding{
			Severity:       SeverityLow,
			Target:         config.DefaultPath(),
			Message:        fmt.Sprintf("tunnel config could not be parsed: %v", err),
			Recommendation: "fix or regenerate the tunnel config",
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		if findings[i].Target != findings[j].Target {
			return findings[i].Target < findings[j].Target
		}
		return findings[i].Message < findings[j].Message
	})
	return AuditReport{Findings: findings}, nil
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

func checkPathPerm(findings *[]Finding, path string, max os.FileMode, isFile bool) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityLow,
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	mode := st.Mode().Perm()
	if mode > max {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		severity := SeverityMedium
		if isFile && mode&0o044 != 0 {
			// World or group readable credential files leak tokens outright.
			severity = SeverityHigh
		}
		*findings = append(*findings, Finding{
			Severity:       severity,
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("restrict permissions to %#o or tighter", max),
		})
	}
}
