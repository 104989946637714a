package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/api"
	"github.com/opentunnel/opentunnel/internal/appconfig"
	"github.com/opentunnel/opentunnel/internal/daemon"
	"github.com/opentunnel/opentunnel/internal/doctor"
	"github.com/opentunnel/opentunnel/internal/events"
	"github.com/opentunnel/opentunnel/internal/util"
)

func newCheckCmd(a *app) *cobra.Command {
	var jsonOut, offline bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Diagnose the local setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			var verifier doctor.TokenVerifier
			if !offline {
				if cfg, err := appconfig.Require(); err == nil {
					if client, err := api.FromConfig(cfg); err == nil {
						verifier = client
					}
				}
			}
			report, err := doctor.Run(cmd.Context(), verifier)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			if len(report.Issues) == 0 {
				fmt.Println(a.lang.T("no issues found", "未发现问题"))
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Printf("[%s] %s (%s)\n    %s\n    %s\n", issue.Severity, issue.Check, issue.Target, issue.Message, issue.Recommendation)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the remote token check")
	return cmd
}

func newDebugCmd(a *app) *cobra.Command {
	var limit int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Show local state and recent operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			recent, err := a.store.Read(events.Query{Limit: limit})
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(recent)
			}

			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			cfgDir, _ := appconfig.ConfigDir()
			fmt.Printf("%-18s %s\n", "config dir", cfgDir)
			fmt.Printf("%-18s %s\n", "tunnel config", a.tunnelConfigPath())
			fmt.Printf("%-18s %s\n", "api token", cfg.MaskedToken())
			fmt.Printf("%-18s %s\n", "account", util.EmptyDash(cfg.AccountID))
			fmt.Printf("%-18s %s\n", "zone", util.EmptyDash(cfg.ZoneName))
			if err := daemon.EnsureInstalled(); err != nil {
				fmt.Printf("%-18s %s\n", "cloudflared", "not installed")
			} else if v, err := daemon.New().Version(cmd.Context()); err == nil {
				fmt.Printf("%-18s %s\n", "cloudflared", v)
			}

			fmt.Printf("\n%s\n", a.lang.T("recent operations:", "最近操作："))
			if len(recent) == 0 {
				fmt.Println("  (none)")
				return nil
			}
			for _, evt := range recent {
				fmt.Printf("  %s  %-18s %-30s %s\n",
					evt.Timestamp.Format("2006-01-02 15:04:05"),
					evt.EventType, util.EmptyDash(evt.Hostname), evt.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of recent events to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output recent events as JSON")
	return cmd
}
