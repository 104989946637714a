package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/events"
	"github.com/opentunnel/opentunnel/internal/preset"
)

func newPresetCmd(a *app) *cobra.Command {
	root := &cobra.Command{Use: "preset", Short: "Manage named mapping sets"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := preset.LoadAll()
			if err != nil {
				return err
			}
			fmt.Printf("%-24s %-10s %s\n", "NAME", "MAPPINGS", "HOSTNAMES")
			for _, def := range defs {
				var hosts []string
				for _, e := range def.Entries {
					hosts = append(hosts, e.Hostname)
				}
				fmt.Printf("%-24s %-10d %s\n", def.Name, len(def.Entries), strings.Join(hosts, ", "))
			}
			return nil
		},
	}

	var mappings []string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a preset from --map hostname=target pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []preset.Entry
			for _, m := range mappings {
				hostname, target, ok := strings.Cut(m, "=")
				if !ok {
					return fmt.Errorf("invalid --map value %q, want hostname=target", m)
				}
				entries = append(entries, preset.Entry{Hostname: hostname, Target: target})
			}
			if err := preset.Create(args[0], entries); err != nil {
				return err
			}
			fmt.Printf("%s %s (%d %s)\n", a.lang.T("created preset", "已创建预设"), args[0], len(entries), a.lang.T("mappings", "映射"))
			return nil
		},
	}
	create.Flags().StringSliceVar(&mappings, "map", nil, "hostname=target pair (repeatable)")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := preset.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", a.lang.T("deleted preset", "已删除预设"), args[0])
			return nil
		},
	}

	var tunnelID string
	apply := &cobra.Command{
		Use:   "apply <name>",
		Short: "Merge a preset's mappings into the tunnel config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := preset.Get(args[0])
			if err != nil {
				return err
			}
			src := a.ruleSource(tunnelID)
			rules, err := src.LoadRules(cmd.Context())
			if err != nil {
				return err
			}
			updated, added, skipped, err := preset.Apply(rules, def)
			if err != nil {
				return err
			}
			if len(added) > 0 {
				if err := src.SaveRules(cmd.Context(), updated); err != nil {
					return err
				}
			}
			for _, hostname := range added {
				a.journal(events.Event{EventType: events.TypeMappingAdded, TunnelID: tunnelID, Hostname: hostname, Message: "preset " + def.Name})
			}
			fmt.Printf("%s %s: %d %s, %d %s\n",
				a.lang.T("applied preset", "已应用预设"), def.Name,
				len(added), a.lang.T("added", "新增"),
				len(skipped), a.lang.T("skipped", "跳过"))
			return nil
		},
	}
	apply.Flags().StringVar(&tunnelID, "tunnel", "", "apply to the remote configuration of this tunnel ID instead of the local file")

	root.AddCommand(list, create, del, apply)
	return root
}
