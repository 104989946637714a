// Package main is the entry point for the opentunnel binary.
//
// opentunnel is a terminal application that combines a TUI dashboard (built
// with Bubble Tea) and a CLI (built with Cobra) for managing Cloudflare
// tunnels, hostname mappings, DNS records and Zero Trust access.
//
// When invoked without arguments, it launches the interactive dashboard.
// When invoked with subcommands (e.g. "list", "map", "scan", "service"),
// it runs the corresponding CLI operation and exits.
//
// Usage:
//
//	opentunnel                          # launch the dashboard
//	opentunnel list                     # list tunnels on the account
//	opentunnel map app.example.com 3000 # publish a local service
//
// The CLI is constructed in internal/cli and the TUI in internal/ui. This
// file simply wires them together and handles top-level error reporting.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/opentunnel/opentunnel/internal/cli"
	"github.com/opentunnel/opentunnel/internal/security"
)

func main() {
	cmd := cli.NewRootCommand()

	// Any error returned by a RunE handler is printed to stderr with
	// token material and home paths redacted; the full detail goes to
	// the debug log.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", security.UserMessage(err, true))
		log.Debug().Msg(security.DebugMessage(err))
		os.Exit(1)
	}
}
