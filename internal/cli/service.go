package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/daemon"
	"github.com/opentunnel/opentunnel/internal/events"
	"github.com/opentunnel/opentunnel/internal/svc"
)

func newServiceCmd(a *app) *cobra.Command {
	root := &cobra.Command{Use: "service", Short: "Manage the tunnel daemon system service"}

	var force, native bool
	var tunnelArg string
	install := &cobra.Command{
		Use:   "install",
		Short: "Install the daemon as a system service",
		Long: `Install a system service that supervises the tunnel daemon.

By default the service runs this binary, which starts cloudflared against
the local tunnel config. With --native the daemon registers itself using a
tunnel run token fetched from the API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := daemon.EnsureInstalled(); err != nil {
				return err
			}
			if native {
				return installNative(cmd.Context(), a, tunnelArg)
			}
			if err := svc.CheckPrivileges(); err != nil {
				return err
			}
			if err := svc.Install(svc.DefaultConfig(a.tunnelConfigPath()), force); err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeServiceChanged, Message: "installed"})
			fmt.Println(a.lang.T("service installed", "服务已安装"))
			return nil
		},
	}
	install.Flags().BoolVar(&force, "force", false, "replace an existing service")
	install.Flags().BoolVar(&native, "native", false, "use cloudflared's own service install with a tunnel token")
	install.Flags().StringVar(&tunnelArg, "tunnel", "", "tunnel name or ID for --native install")

	uninstall := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the system service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.CheckPrivileges(); err != nil {
				return err
			}
			if err := svc.Uninstall(svc.DefaultConfig(a.tunnelConfigPath())); err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeServiceChanged, Message: "uninstalled"})
			fmt.Println(a.lang.T("service removed", "服务已移除"))
			return nil
		},
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Start the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.CheckPrivileges(); err != nil {
				return err
			}
			return svc.Start(svc.DefaultConfig(a.tunnelConfigPath()))
		},
	}
	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.CheckPrivileges(); err != nil {
				return err
			}
			return svc.Stop(svc.DefaultConfig(a.tunnelConfigPath()))
		},
	}
	restart := &cobra.Command{
		Use:   "restart",
		Short: "Restart the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.CheckPrivileges(); err != nil {
				return err
			}
			return svc.Restart(svc.DefaultConfig(a.tunnelConfigPath()))
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show service status",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := svc.Status(svc.DefaultConfig(a.tunnelConfigPath()))
			if err != nil {
				return err
			}
			fmt.Println(svc.StatusString(st))
			return nil
		},
	}

	run := &cobra.Command{
		Use:    "run",
		Short:  "Run the daemon under the service manager",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := svc.DefaultConfig(a.tunnelConfigPath())
			prg := &svc.Program{
				ConfigPath: cfg.ConfigPath,
				RunDaemon: func(ctx context.Context, configPath string) error {
					return daemon.New().RunAttached(ctx, configPath)
				},
			}
			return svc.Run(prg, cfg)
		},
	}

	attach := &cobra.Command{
		Use:   "attach",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := daemon.EnsureInstalled(); err != nil {
				return err
			}
			return daemon.New().RunAttached(cmd.Context(), a.tunnelConfigPath())
		},
	}

	root.AddCommand(install, uninstall, start, stop, restart, status, run, attach)
	return root
}

// installNative registers cloudflared's own service using a tunnel run token.
func installNative(ctx context.Context, a *app, tunnelArg string) error {
	if tunnelArg == "" {
		return fmt.Errorf("--native requires --tunnel")
	}
	client, err := a.apiClient()
	if err != nil {
		return err
	}
	t, err := resolveTunnel(ctx, client, tunnelArg)
	if err != nil {
		return err
	}
	token, err := client.TunnelToken(ctx, t.ID)
	if err != nil {
		return err
	}
	out, err := daemon.New().InstallService(ctx, token)
	if out != "" {
		fmt.Print(out)
	}
	if err != nil {
		return err
	}
	a.journal(events.Event{EventType: events.TypeServiceChanged, TunnelID: t.ID, Message: "installed (native)"})
	return nil
}
