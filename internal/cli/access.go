package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/model"
	"github.com/opentunnel/opentunnel/internal/util"
)

func newAccessCmd(a *app) *cobra.Command {
	root := &cobra.Command{Use: "access", Short: "Manage Zero Trust Access applications"}
	root.AddCommand(newAccessListCmd(a), newAccessCreateCmd(a), newAccessDeleteCmd(a), newAccessPolicyCmd(a))
	return root
}

func newAccessListCmd(a *app) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List Access applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			apps, err := client.AccessApps(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(apps)
			}
			fmt.Printf("%-38s %-24s %-40s %s\n", "ID", "NAME", "DOMAIN", "SESSION")
			for _, app := range apps {
				fmt.Printf("%-38s %-24s %-40s %s\n", app.ID, app.Name, app.Domain, util.EmptyDash(app.SessionDuration))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newAccessCreateCmd(a *app) *cobra.Command {
	var sessionDuration string
	cmd := &cobra.Command{
		Use:   "create <name> <domain>",
		Short: "Create an Access application protecting a domain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			app, err := client.CreateAccessApp(cmd.Context(), model.AccessApp{
				Name:            args[0],
				Domain:          args[1],
				Type:            "self_hosted",
				SessionDuration: sessionDuration,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s %s (%s) -> %s\n", a.lang.T("created Access app", "已创建 Access 应用"), app.Name, app.ID, app.Domain)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionDuration, "session-duration", "24h", "session duration before re-authentication")
	return cmd
}

func newAccessDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete an Access application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			app, err := resolveAccessApp(cmd, a, args[0])
			if err != nil {
				return err
			}
			if err := client.DeleteAccessApp(cmd.Context(), app.ID); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", a.lang.T("deleted Access app", "已删除 Access 应用"), app.Name)
			return nil
		},
	}
}

func newAccessPolicyCmd(a *app) *cobra.Command {
	root := &cobra.Command{Use: "policy", Short: "Manage policies on an Access application"}

	var jsonOut bool
	list := &cobra.Command{
		Use:   "list <app-name|app-id>",
		Short: "List policies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			app, err := resolveAccessApp(cmd, a, args[0])
			if err != nil {
				return err
			}
			policies, err := client.AccessPolicies(cmd.Context(), app.ID)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(policies)
			}
			fmt.Printf("%-38s %-24s %-8s %s\n", "ID", "NAME", "ACTION", "INCLUDES")
			for _, p := range policies {
				fmt.Printf("%-38s %-24s %-8s %d\n", p.ID, p.Name, p.Decision, len(p.Include))
			}
			return nil
		},
	}
	list.Flags().BoolVar(&jsonOut, "json", false, "output JSON")

	var emails, domains []string
	var everyone bool
	var decision string
	add := &cobra.Command{
		Use:   "add <app-name|app-id> <policy-name>",
		Short: "Add a policy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			app, err := resolveAccessApp(cmd, a, args[0])
			if err != nil {
				return err
			}

			var include []model.PolicyRule
			for _, e := range emails {
				include = append(include, model.PolicyRule{Email: &model.PolicyEmail{Email: e}})
			}
			for _, d := range domains {
				include = append(include, model.PolicyRule{EmailDomain: &model.PolicyEmailDomain{Domain: d}})
			}
			if everyone {
				include = append(include, model.PolicyRule{Everyone: map[string]any{}})
			}
			if len(include) == 0 {
				return fmt.Errorf("policy needs at least one of --email, --email-domain or --everyone")
			}

			p, err := client.CreateAccessPolicy(cmd.Context(), app.ID, model.AccessPolicy{
				Name:     args[1],
				Decision: decision,
				Include:  include,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s %s (%s) on %s\n", a.lang.T("created policy", "已创建策略"), p.Name, p.Decision, app.Name)
			return nil
		},
	}
	add.Flags().StringSliceVar(&emails, "email", nil, "allow this email (repeatable)")
	add.Flags().StringSliceVar(&domains, "email-domain", nil, "allow this email domain (repeatable)")
	add.Flags().BoolVar(&everyone, "everyone", false, "match everyone")
	add.Flags().StringVar(&decision, "decision", "allow", "policy decision (allow|deny|bypass)")

	root.AddCommand(list, add)
	return root
}

func resolveAccessApp(cmd *cobra.Command, a *app, nameOrID string) (model.AccessApp, error) {
	client, err := a.apiClient()
	if err != nil {
		return model.AccessApp{}, err
	}
	apps, err := client.AccessApps(cmd.Context())
	if err != nil {
		return model.AccessApp{}, err
	}
	for _, app := range apps {
		if app.ID == nameOrID || app.Name == nameOrID {
			return app, nil
		}
	}
	return model.AccessApp{}, fmt.Errorf("Access application not found: %s", nameOrID)
}
