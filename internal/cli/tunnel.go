package cli

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/api"
	"github.com/opentunnel/opentunnel/internal/config"
	"github.com/opentunnel/opentunnel/internal/events"
	"github.com/opentunnel/opentunnel/internal/history"
	"github.com/opentunnel/opentunnel/internal/ingress"
	"github.com/opentunnel/opentunnel/internal/model"
	"github.com/opentunnel/opentunnel/internal/util"
)

func newListCmd(a *app) *cobra.Command {
	var jsonOut, recent bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tunnels in the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			tunnels, err := client.Tunnels(cmd.Context())
			if err != nil {
				return err
			}
			if recent {
				lastUsed, err := history.LastUsed()
				if err != nil {
					log.Warn().Err(err).Msg("failed to load history")
				}
				tunnels = history.SortTunnelsRecent(tunnels, lastUsed)
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(tunnels)
			}
			fmt.Printf("%-38s %-24s %-12s %s\n", "ID", "NAME", "STATUS", "CREATED")
			for _, t := range tunnels {
				fmt.Printf("%-38s %-24s %-12s %s\n", t.ID, t.Name, util.EmptyDash(t.Status), util.EmptyDash(t.CreatedAt))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().BoolVar(&recent, "recent", false, "order by recent use")
	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new tunnel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			secret, err := newTunnelSecret()
			if err != nil {
				return err
			}
			t, err := client.CreateTunnel(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeTunnelCreated, TunnelID: t.ID, Message: t.Name})
			if err := history.Touch(t.ID); err != nil {
				log.Warn().Err(err).Msg("failed to record history")
			}
			fmt.Printf("%s %s (%s)\n", a.lang.T("created tunnel", "已创建隧道"), t.Name, t.ID)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a tunnel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			t, err := resolveTunnel(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			if err := client.DeleteTunnel(cmd.Context(), t.ID); err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeTunnelDeleted, TunnelID: t.ID, Message: t.Name})
			fmt.Printf("%s %s\n", a.lang.T("deleted tunnel", "已删除隧道"), t.Name)
			return nil
		},
	}
}

func newSwitchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name|id>",
		Short: "Point the local daemon config at a tunnel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			t, err := resolveTunnel(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}

			cfg, err := a.loadTunnelConfig()
			if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
				return err
			}
			cfg.Tunnel = t.ID
			cfg.CredentialsFile = credentialsPath(t.ID)
			if len(cfg.Ingress) == 0 {
				cfg.Ingress = []ingress.Rule{{Service: "http_status:404"}}
			}
			if err := a.saveTunnelConfig(cfg); err != nil {
				return err
			}
			a.journal(events.Event{EventType: events.TypeTunnelSwitched, TunnelID: t.ID, Message: t.Name})
			if err := history.Touch(t.ID); err != nil {
				log.Warn().Err(err).Msg("failed to record history")
			}
			fmt.Printf("%s %s -> %s\n", a.lang.T("switched to tunnel", "已切换到隧道"), t.Name, a.tunnelConfigPath())
			return nil
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token <name|id>",
		Short: "Print a tunnel's run token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			t, err := resolveTunnel(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			token, err := client.TunnelToken(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

// resolveTunnel finds a tunnel by exact ID or name.
func resolveTunnel(ctx context.Context, client *api.Client, nameOrID string) (model.Tunnel, error) {
	tunnels, err := client.Tunnels(ctx)
	if err != nil {
		return model.Tunnel{}, err
	}
	for _, t := range tunnels {
		if t.ID == nameOrID || t.Name == nameOrID {
			return t, nil
		}
	}
	return model.Tunnel{}, fmt.Errorf("tunnel not found: %s", nameOrID)
}

// newTunnelSecret generates the 32-byte secret the provider requires for a
// new tunnel, base64 encoded.
func newTunnelSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate tunnel secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// credentialsPath is where `cloudflared tunnel login`/`create` drops the
// per-tunnel credential file.
func credentialsPath(tunnelID string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cloudflared", tunnelID+".json")
	}
	return filepath.Join(home, ".cloudflared", tunnelID+".json")
}
