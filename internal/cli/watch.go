package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/config"
	"github.com/law-makers/shiptrack/internal/status"
	"github.com/law-makers/shiptrack/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the fleet on an interval and serve status over HTTP",
	Long: `Watch runs the fleet immediately and then once per interval until
interrupted. Between runs it serves health, the latest ship states, the last
run report and Prometheus metrics. The ships file is re-read before every
run.`,
	Example: `  # Every 15 minutes, status on :9090
  shiptrack watch

  # Every hour, status on localhost only
  shiptrack watch --interval 1h --status-addr 127.0.0.1:8080`,
	Annotations: map[string]string{annotationNeedsApp: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}
		ctx := cmd.Context()
		cfg := a.Config

		interval := cfg.WatchInterval
		if d, _ := cmd.Flags().GetDuration("interval"); d > 0 {
			interval = d
		}
		addr := cfg.StatusAddr
		if s, _ := cmd.Flags().GetString("status-addr"); s != "" {
			addr = s
		}
		names, _ := cmd.Flags().GetStringSlice("ship")

		ships, err := loadFleet(cfg, names)
		if err != nil {
			return err
		}

		srv := status.NewServer(a.Store, a.Metrics.Handler(), cfg.CORSOrigins)
		serveCtx, stopServer := context.WithCancel(ctx)
		defer stopServer()
		serveErr := make(chan error, 1)
		if addr != "" {
			go func() {
				serveErr <- srv.ListenAndServe(serveCtx, addr, a.Metrics.Middleware)
			}()
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			summary := runFleet(cmd, a, ships)
			srv.RecordRun(summary)
			printSummary(cmd.OutOrStdout(), summary)
			log.Info().Dur("interval", interval).Dur("uptime", a.Uptime()).Msg("Waiting for next run")

			select {
			case <-ctx.Done():
				log.Info().Msg("Watch stopped")
				return nil
			case err := <-serveErr:
				return fmt.Errorf("status server: %w", err)
			case <-ticker.C:
			}

			ships = reloadFleet(cfg, names, ships)
		}
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "Time between runs (default from SHIPTRACK_WATCH_INTERVAL or 15m)")
	watchCmd.Flags().String("status-addr", "", "Status server address (default from SHIPTRACK_STATUS_ADDR or :9090)")
	watchCmd.Flags().StringSlice("ship", nil, "Only run these ships (name or vessel id, repeatable)")
	rootCmd.AddCommand(watchCmd)
}

// reloadFleet re-reads the ships file, keeping current when it can't be used
func reloadFleet(cfg *config.Config, names []string, current []models.ShipConfig) []models.ShipConfig {
	ships, err := loadFleet(cfg, names)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.ShipsFile).Msg("Keeping previous ship list")
		return current
	}
	return ships
}
