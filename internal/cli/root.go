// Package cli provides the command-line interface for opentunnel.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/api"
	"github.com/opentunnel/opentunnel/internal/appconfig"
	"github.com/opentunnel/opentunnel/internal/config"
	"github.com/opentunnel/opentunnel/internal/events"
	"github.com/opentunnel/opentunnel/internal/i18n"
	"github.com/opentunnel/opentunnel/internal/ui"
)

// app carries state shared by all subcommands: the resolved display
// language, the tunnel config path override and the event journal.
type app struct {
	lang       i18n.Lang
	configPath string
	store      *events.Store
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	a := &app{store: events.NewStore()}
	var langFlag, logLevel string

	root := &cobra.Command{
		Use:           "opentunnel",
		Short:         "Manage Cloudflare tunnels, DNS records and Zero Trust access",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(logLevel)
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			a.lang = i18n.Resolve(langFlag, cfg.Language)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run(a.lang, a.tunnelConfigPath())
		},
	}

	root.PersistentFlags().StringVar(&langFlag, "lang", "", "display language (en|zh)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "tunnel config file (default: platform cloudflared path)")

	root.AddCommand(
		newListCmd(a),
		newCreateCmd(a),
		newDeleteCmd(a),
		newSwitchCmd(a),
		newTokenCmd(a),
		newMapCmd(a),
		newUnmapCmd(a),
		newShowCmd(a),
		newScanCmd(a),
		newDNSCmd(a),
		newAccessCmd(a),
		newServiceCmd(a),
		newStatsCmd(a),
		newMonitorCmd(a),
		newCheckCmd(a),
		newDebugCmd(a),
		newPresetCmd(a),
		newConfigCmd(a),
	)
	return root
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func (a *app) tunnelConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.DefaultPath()
}

func (a *app) loadTunnelConfig() (config.TunnelConfig, error) {
	return config.LoadFrom(a.tunnelConfigPath())
}

func (a *app) saveTunnelConfig(cfg config.TunnelConfig) error {
	return config.SaveTo(a.tunnelConfigPath(), cfg)
}

// apiClient builds a client from the saved credentials, failing with the
// not-configured sentinel when setup has not run.
func (a *app) apiClient() (*api.Client, error) {
	cfg, err := appconfig.Require()
	if err != nil {
		return nil, err
	}
	return api.FromConfig(cfg)
}

// journal appends to the local event journal. Journal failures never fail
// the operation they describe.
func (a *app) journal(evt events.Event) {
	if err := a.store.Append(evt); err != nil {
		log.Warn().Err(err).Msg("failed to record event")
	}
}
