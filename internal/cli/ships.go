package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/fleet"
	"github.com/law-makers/shiptrack/internal/ui"
)

var shipsCmd = &cobra.Command{
	Use:   "ships",
	Short: "List the configured fleet and tracking URLs",
	Example: `  shiptrack ships
  shiptrack ships --ships fleet.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfigFromCmd(cmd)
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		ships, err := loadFleet(cfg, nil)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		width := 0
		for _, s := range ships {
			width = max(width, len(s.Name))
		}
		for _, s := range ships {
			fmt.Fprintf(w, "%s%s  %s%-10s%s  %s\n",
				ui.Bold(s.Name), strings.Repeat(" ", width-len(s.Name)),
				ui.ColorCyan, s.VesselID, ui.ColorReset,
				ui.Dim(fleet.TrackingURL(cfg.URLTemplate, s)))
		}
		fmt.Fprintf(w, "\n%s\n", ui.Info(fmt.Sprintf("%d ships in %s", len(ships), cfg.ShipsFile)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shipsCmd)
}
