package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/events"
	"github.com/opentunnel/opentunnel/internal/model"
	"github.com/opentunnel/opentunnel/internal/util"
)

func newDNSCmd(a *app) *cobra.Command {
	root := &cobra.Command{Use: "dns", Short: "Manage DNS records in the configured zone"}
	root.AddCommand(newDNSListCmd(a), newDNSAddCmd(a), newDNSDeleteCmd(a), newDNSSyncCmd(a))
	return root
}

func newDNSListCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List DNS records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			records, err := client.DNSRecords(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			fmt.Printf("%-40s %-8s %-10s %s\n", "NAME", "TYPE", "PROXIED", "CONTENT")
			for _, r := range records {
				proxied := "-"
				if r.Proxied != nil {
					proxied = fmt.Sprintf("%t", *r.Proxied)
				}
				fmt.Printf("%-40s %-8s %-10s %s\n", r.Name, r.Type, proxied, r.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newDNSAddCmd(a *app) *cobra.Command {
	var recordType string
	var proxied bool
	cmd := &cobra.Command{
		Use:   "add <name> <content>",
		Short: "Create a DNS record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			rec, err := client.CreateDNSRecord(cmd.Context(), model.CreateDNSRecord{
				Type:    recordType,
				Name:    args[0],
				Content: args[1],
				Proxied: proxied,
			})
			if err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeDNSCreated, Hostname: rec.Name, Message: rec.Content})
			fmt.Printf("%s %s %s -> %s\n", a.lang.T("created", "已创建"), rec.Type, rec.Name, rec.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&recordType, "type", "CNAME", "record type")
	cmd.Flags().BoolVar(&proxied, "proxied", true, "proxy through the provider edge")
	return cmd
}

func newDNSDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a DNS record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			records, err := client.DNSRecords(cmd.Context())
			if err != nil {
				return err
			}
			var target *model.DNSRecord
			for i := range records {
				if records[i].ID == args[0] || records[i].Name == args[0] {
					target = &records[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("DNS record not found: %s", args[0])
			}
			if err := client.DeleteDNSRecord(cmd.Context(), target.ID); err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeDNSDeleted, Hostname: target.Name})
			fmt.Printf("%s %s\n", a.lang.T("deleted", "已删除"), target.Name)
			return nil
		},
	}
}

// tunnelCNAMETarget is the provider's per-tunnel DNS target.
func tunnelCNAMETarget(tunnelID string) string {
	return tunnelID + ".cfargotunnel.com"
}

func newDNSSyncCmd(a *app) *cobra.Command {
	var tunnelID string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create missing DNS records for mapped hostnames",
		Long: `Ensure every mapped hostname has a proxied CNAME pointing at the
tunnel. Hostnames with an existing record of any type are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			id := tunnelID
			src := a.ruleSource(tunnelID)
			if id == "" {
				cfg, err := a.loadTunnelConfig()
				if err != nil {
					return err
				}
				id = cfg.Tunnel
			}
			if id == "" {
				return fmt.Errorf("no tunnel configured; run `opentunnel switch` or pass --tunnel")
			}

			rules, err := src.LoadRules(cmd.Context())
			if err != nil {
				return err
			}
			records, err := client.DNSRecords(cmd.Context())
			if err != nil {
				return err
			}
			existing := make(map[string]struct{}, len(records))
			for _, r := range records {
				existing[r.Name] = struct{}{}
			}

			var created, skipped int
			for _, r := range rules {
				if r.IsCatchAll() {
					continue
				}
				if _, ok := existing[r.Hostname]; ok {
					skipped++
					continue
				}
				if dryRun {
					fmt.Printf("would create CNAME %s -> %s\n", r.Hostname, tunnelCNAMETarget(id))
					created++
					continue
				}
				rec, err := client.CreateDNSRecord(cmd.Context(), model.CreateDNSRecord{
					Type:    "CNAME",
					Name:    r.Hostname,
					Content: tunnelCNAMETarget(id),
					Proxied: true,
				})
				if err != nil {
					return fmt.Errorf("create record for %s: %w", r.Hostname, err)
				}
				a.journal(events.Event{EventType: events.TypeDNSCreated, TunnelID: id, Hostname: rec.Name, Message: rec.Content})
				fmt.Printf("%s CNAME %s -> %s\n", a.lang.T("created", "已创建"), rec.Name, rec.Content)
				created++
			}
			fmt.Printf("%s: %d %s, %d %s (tunnel %s)\n",
				a.lang.T("sync complete", "同步完成"),
				created, a.lang.T("created", "已创建"),
				skipped, a.lang.T("already present", "已存在"),
				util.ShortID(id))
			return nil
		},
	}
	cmd.Flags().StringVar(&tunnelID, "tunnel", "", "sync the remote configuration of this tunnel ID instead of the local file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be created without creating it")
	return cmd
}
