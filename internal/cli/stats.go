package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opentunnel/opentunnel/internal/metrics"
)

func printSnapshot(snap *metrics.Snapshot) {
	fmt.Printf("%-20s %.0f\n", "total requests", snap.TotalRequests)
	fmt.Printf("%-20s %.0f\n", "request errors", snap.RequestErrors)
	fmt.Printf("%-20s %.2f%%\n", "error rate", snap.ErrorRate()*100)
	fmt.Printf("%-20s %.0f\n", "active streams", snap.ActiveStreams)
	fmt.Printf("%-20s %.0f\n", "edge connections", snap.HAConnections)
}

func newStatsCmd(a *app) *cobra.Command {
	var endpoint string
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show daemon traffic statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := metrics.New(endpoint).Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", a.lang.T("daemon metrics unavailable (is the tunnel running?)", "无法获取守护进程指标（隧道在运行吗？）"), err)
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			printSnapshot(snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "metrics endpoint (default "+metrics.DefaultEndpoint+")")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}

func newMonitorCmd(a *app) *cobra.Command {
	var endpoint string
	var intervalSec int
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch daemon statistics until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println(a.lang.T("monitoring, press Ctrl+C to stop", "监控中，按 Ctrl+C 停止"))
			metrics.New(endpoint).Monitor(ctx, time.Duration(intervalSec)*time.Second, func(snap *metrics.Snapshot, err error) {
				if err != nil {
					fmt.Printf("%s  %s: %v\n", time.Now().Format("15:04:05"), a.lang.T("unreachable", "不可达"), err)
					return
				}
				fmt.Printf("%s  requests=%.0f errors=%.0f streams=%.0f connections=%.0f\n",
					snap.Taken.Format("15:04:05"), snap.TotalRequests, snap.RequestErrors, snap.ActiveStreams, snap.HAConnections)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "metrics endpoint (default "+metrics.DefaultEndpoint+")")
	cmd.Flags().IntVar(&intervalSec, "interval", 2, "poll interval in seconds")
	return cmd
}
