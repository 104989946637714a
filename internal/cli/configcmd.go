package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/api"
	"github.com/opentunnel/opentunnel/internal/appconfig"
	"github.com/opentunnel/opentunnel/internal/i18n"
	"github.com/opentunnel/opentunnel/internal/util"
)

func newConfigCmd(a *app) *cobra.Command {
	root := &cobra.Command{Use: "config", Short: "Manage saved API credentials and preferences"}
	root.AddCommand(newConfigSetCmd(a), newConfigShowCmd(a), newConfigTestCmd(a), newConfigClearCmd(a), newConfigLangCmd(a))
	return root
}

func newConfigSetCmd(a *app) *cobra.Command {
	var token, account, zone string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save API credentials",
		Long: `Save the API token, account and zone used by remote operations.

The token is verified before saving. When the token can act on exactly one
account or zone, that one is selected automatically; otherwise pass
--account / --zone (ID or name).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			if token != "" {
				cfg.APIToken = token
			}
			if cfg.APIToken == "" {
				return fmt.Errorf("no API token given; pass --token")
			}

			client := api.New(api.BaseURL(), cfg.APIToken, "", "")
			if err := client.VerifyToken(cmd.Context()); err != nil {
				return fmt.Errorf("token verification failed: %w", err)
			}

			accounts, err := client.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			switch {
			case account != "":
				found := false
				for _, acc := range accounts {
					if acc.ID == account || acc.Name == account {
						cfg.AccountID = acc.ID
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("account not found: %s", account)
				}
			case cfg.AccountID == "" && len(accounts) == 1:
				cfg.AccountID = accounts[0].ID
			case cfg.AccountID == "":
				return fmt.Errorf("token can act on %d accounts; pass --account", len(accounts))
			}

			zones, err := client.Zones(cmd.Context())
			if err != nil {
				return err
			}
			switch {
			case zone != "":
				found := false
				for _, z := range zones {
					if z.ID == zone || z.Name == zone {
						cfg.ZoneID, cfg.ZoneName = z.ID, z.Name
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("zone not found: %s", zone)
				}
			case cfg.ZoneID == "" && len(zones) == 1:
				cfg.ZoneID, cfg.ZoneName = zones[0].ID, zones[0].Name
			}

			if err := appconfig.Save(cfg); err != nil {
				return err
			}
			fmt.Println(a.lang.T("configuration saved", "配置已保存"))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "API token")
	cmd.Flags().StringVar(&account, "account", "", "account ID or name")
	cmd.Flags().StringVar(&zone, "zone", "", "zone ID or name")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			fmt.Printf("%-12s %s\n", "token", cfg.MaskedToken())
			fmt.Printf("%-12s %s\n", "account", util.EmptyDash(cfg.AccountID))
			fmt.Printf("%-12s %s\n", "zone", util.EmptyDash(cfg.ZoneName))
			fmt.Printf("%-12s %s\n", "language", util.EmptyDash(cfg.Language))
			return nil
		},
	}
}

func newConfigTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Verify the saved API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := client.VerifyToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(a.lang.T("token is valid", "令牌有效"))
			return nil
		},
	}
}

func newConfigClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appconfig.Clear(); err != nil {
				return err
			}
			fmt.Println(a.lang.T("configuration cleared", "配置已清除"))
			return nil
		},
	}
}

func newConfigLangCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lang <en|zh>",
		Short: "Save the display language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ok := i18n.Parse(args[0])
			if !ok {
				return fmt.Errorf("unsupported language: %s", args[0])
			}
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			cfg.Language = l.String()
			if err := appconfig.Save(cfg); err != nil {
				return err
			}
			fmt.Println(l.T("language set to English", "语言已设置为中文"))
			return nil
		},
	}
}
