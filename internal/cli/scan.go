package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/scan"
	"github.com/opentunnel/opentunnel/internal/util"
)

func newScanCmd(a *app) *cobra.Command {
	var ports string
	var timeoutMS int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan localhost for running services",
		Long: `Scan well-known development ports on localhost for listening services.
Extra ports can be added with --ports; malformed tokens are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := time.Duration(timeoutMS) * time.Millisecond
			if timeout <= 0 {
				timeout = util.DefaultScanTimeout
			}
			found, err := scan.Scan(cmd.Context(), scan.ParsePorts(ports), timeout)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(found)
			}
			if len(found) == 0 {
				fmt.Println(a.lang.T("no services found", "未发现服务"))
				return nil
			}
			fmt.Printf("%-8s %s\n", "PORT", "SERVICE")
			for _, svc := range found {
				fmt.Printf("%-8d %s\n", svc.Port, svc.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ports, "ports", "", "extra ports to probe, comma separated")
	cmd.Flags().IntVar(&timeoutMS, "timeout", 500, "per-port probe timeout in milliseconds")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}
