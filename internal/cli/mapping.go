package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/events"
	"github.com/opentunnel/opentunnel/internal/ingress"
	"github.com/opentunnel/opentunnel/internal/util"
)

// ruleSource abstracts where the ingress rule list lives: the local daemon
// config file, or the remote tunnel configuration when --tunnel is given.
type ruleSource interface {
	LoadRules(ctx context.Context) ([]ingress.Rule, error)
	SaveRules(ctx context.Context, rules []ingress.Rule) error
	Describe() string
}

type fileRuleSource struct {
	a *app
}

func (s fileRuleSource) LoadRules(context.Context) ([]ingress.Rule, error) {
	cfg, err := s.a.loadTunnelConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Ingress, nil
}

func (s fileRuleSource) SaveRules(_ context.Context, rules []ingress.Rule) error {
	cfg, err := s.a.loadTunnelConfig()
	if err != nil {
		return err
	}
	cfg.Ingress = rules
	return s.a.saveTunnelConfig(cfg)
}

func (s fileRuleSource) Describe() string { return s.a.tunnelConfigPath() }

type remoteRuleSource struct {
	a        *app
	tunnelID string
}

func (s remoteRuleSource) LoadRules(ctx context.Context) ([]ingress.Rule, error) {
	client, err := s.a.apiClient()
	if err != nil {
		return nil, err
	}
	return client.IngressConfig(ctx, s.tunnelID)
}

func (s remoteRuleSource) SaveRules(ctx context.Context, rules []ingress.Rule) error {
	client, err := s.a.apiClient()
	if err != nil {
		return err
	}
	return client.PutIngressConfig(ctx, s.tunnelID, rules)
}

func (s remoteRuleSource) Describe() string { return "tunnel " + util.ShortID(s.tunnelID) }

func (a *app) ruleSource(tunnelID string) ruleSource {
	if tunnelID != "" {
		return remoteRuleSource{a: a, tunnelID: tunnelID}
	}
	return fileRuleSource{a: a}
}

func newMapCmd(a *app) *cobra.Command {
	var tunnelID string
	cmd := &cobra.Command{
		Use:   "map <hostname> <target>",
		Short: "Map a public hostname to a local service",
		Long: `Map a public hostname to a local service target.

Targets are normalized: a bare port such as 3000 becomes
http://localhost:3000, and host:port gets an http:// prefix.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostname, target := args[0], ingress.NormalizeTarget(args[1])
			src := a.ruleSource(tunnelID)

			rules, err := src.LoadRules(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := ingress.Insert(rules, hostname, target)
			if err != nil {
				return err
			}
			if err := src.SaveRules(cmd.Context(), updated); err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeMappingAdded, TunnelID: tunnelID, Hostname: hostname, Message: target})
			fmt.Printf("%s %s -> %s (%s)\n", a.lang.T("mapped", "已映射"), hostname, target, src.Describe())
			return nil
		},
	}
	cmd.Flags().StringVar(&tunnelID, "tunnel", "", "edit the remote configuration of this tunnel ID instead of the local file")
	return cmd
}

func newUnmapCmd(a *app) *cobra.Command {
	var tunnelID string
	cmd := &cobra.Command{
		Use:   "unmap <hostname>",
		Short: "Remove a hostname mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostname := args[0]
			src := a.ruleSource(tunnelID)

			rules, err := src.LoadRules(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := ingress.Remove(rules, hostname)
			if err != nil {
				return err
			}
			if err := src.SaveRules(cmd.Context(), updated); err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeMappingRemoved, TunnelID: tunnelID, Hostname: hostname})
			fmt.Printf("%s %s (%s)\n", a.lang.T("unmapped", "已取消映射"), hostname, src.Describe())
			return nil
		},
	}
	cmd.Flags().StringVar(&tunnelID, "tunnel", "", "edit the remote configuration of this tunnel ID instead of the local file")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var tunnelID string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current hostname mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := a.ruleSource(tunnelID)
			rules, err := src.LoadRules(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rules)
			}
			fmt.Printf("%-40s %s\n", "HOSTNAME", "SERVICE")
			for _, r := range rules {
				name := r.Hostname
				if r.IsCatchAll() {
					name = "(catch-all)"
				}
				fmt.Printf("%-40s %s\n", name, r.Service)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tunnelID, "tunnel", "", "read the remote configuration of this tunnel ID instead of the local file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}
