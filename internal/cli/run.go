package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/app"
	"github.com/law-makers/shiptrack/internal/config"
	"github.com/law-makers/shiptrack/internal/fleet"
	"github.com/law-makers/shiptrack/internal/ui"
	"github.com/law-makers/shiptrack/internal/utils/output"
	"github.com/law-makers/shiptrack/pkg/models"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape every configured ship once",
	Long: `Run visits each ship's tracking page in turn, reads its voyage and
position, records a trip when the voyage is new and updates the ship's
latest state. A ship that fails is reported and the run moves on.`,
	Example: `  # Run the whole fleet
  shiptrack run

  # Two ships only, saving the results
  shiptrack run --ship "SEA STAR" --ship 712345 -o results.csv`,
	Annotations: map[string]string{annotationNeedsApp: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		names, _ := cmd.Flags().GetStringSlice("ship")
		ships, err := loadFleet(a.Config, names)
		if err != nil {
			return err
		}

		summary := runFleet(cmd, a, ships)
		printSummary(cmd.OutOrStdout(), summary)

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := output.Save(output.Rows(summary), path); err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}
			fmt.Fprintf(os.Stderr, "%s\n", ui.Success("✓ Results saved to: "+path))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSlice("ship", nil, "Only run these ships (name or vessel id, repeatable)")
	runCmd.Flags().StringP("output", "o", "", "Save results to a .json or .csv file")
	rootCmd.AddCommand(runCmd)
}

// loadFleet reads the ships file and narrows it to names when given
func loadFleet(cfg *config.Config, names []string) ([]models.ShipConfig, error) {
	ships, err := config.LoadShips(cfg.ShipsFile)
	if err != nil {
		return nil, err
	}
	return config.SelectShips(ships, names)
}

// runFleet runs ships with a progress bar on stderr when output is
// interactive, and records the run in the metrics.
func runFleet(cmd *cobra.Command, a *app.Application, ships []models.ShipConfig) fleet.Summary {
	var bar *progressbar.ProgressBar
	if showProgress(a.Config) {
		bar = progressbar.NewOptions(len(ships),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Tracking ships"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}

	summary := a.Runner.Run(cmd.Context(), ships, func(res fleet.Result) {
		if bar == nil {
			return
		}
		bar.Describe(res.Ship.Name)
		_ = bar.Add(1)
	})
	if bar != nil {
		_ = bar.Finish()
	}

	a.Metrics.RunFinished(time.Now())
	return summary
}

func showProgress(cfg *config.Config) bool {
	return !cfg.JSONLog && cfg.LogLevel != "debug"
}

// printSummary writes one line per ship plus totals
func printSummary(w io.Writer, s fleet.Summary) {
	fmt.Fprintln(w)
	for _, r := range s.Results {
		if r.Failed() {
			fmt.Fprintf(w, "%s %s %s\n",
				ui.Error("✗"), ui.Bold(r.Ship.Name),
				ui.Error(fmt.Sprintf("failed while %s: %v", r.FailedIn, r.Err)))
		} else {
			fmt.Fprintf(w, "%s %s %s\n", ui.Success("✓"), ui.Bold(r.Ship.Name), describeShip(r))
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "    %s\n", ui.Warn("! "+warn.Error()))
		}
	}

	done, failed := s.Counts()
	line := fmt.Sprintf("%d done, %d failed, %d new trips in %s",
		done, failed, s.TripsInserted(), s.Duration.Round(time.Millisecond))
	if failed > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.Error(line))
	} else {
		fmt.Fprintf(w, "\n%s\n", ui.Success(line))
	}
}

func describeShip(r fleet.Result) string {
	snap := r.Snapshot
	if snap == nil {
		return ""
	}
	parts := []string{snap.RouteText()}
	if snap.Position != nil {
		parts = append(parts, fmt.Sprintf("at %.5f, %.5f", snap.Position.Lat(), snap.Position.Lon()))
	} else {
		parts = append(parts, "no position")
	}
	parts = append(parts, fmt.Sprintf("%.1f kn / %.0f°", snap.SpeedKnots, snap.HeadingDegrees))
	if r.TripInserted {
		parts = append(parts, "new trip")
	}
	return ui.Dim(strings.Join(parts, " · "))
}
