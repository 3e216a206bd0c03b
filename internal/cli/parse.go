package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/app"
	"github.com/law-makers/shiptrack/internal/extract"
	"github.com/law-makers/shiptrack/internal/snapshot"
	"github.com/law-makers/shiptrack/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Extract a vessel snapshot from saved page text or HTML",
	Long: `Parse runs the extraction rules against a saved tracking page without a
browser, store or network. HTML files (.html, .htm or --html) are reduced to
their visible text first. The snapshot is printed as JSON together with the
rule that matched each field.`,
	Example: `  # A page saved from the browser
  shiptrack parse page.html

  # Plain text, failing when no position is present
  shiptrack parse popup.txt --strict`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfigFromCmd(cmd)
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		text := string(data)
		asHTML, _ := cmd.Flags().GetBool("html")
		if ext := strings.ToLower(filepath.Ext(args[0])); ext == ".html" || ext == ".htm" {
			asHTML = true
		}
		if asHTML {
			if text, err = extract.TextFromHTML(bytes.NewReader(data)); err != nil {
				return fmt.Errorf("failed to read HTML: %w", err)
			}
		}

		if strict, _ := cmd.Flags().GetBool("strict"); strict {
			cfg.CoordinatePolicy = string(extract.PolicyStrict)
		}
		ex, err := app.NewExtractor(cfg)
		if err != nil {
			return err
		}

		fields, err := ex.Extract(text)
		if err != nil {
			return err
		}

		out := parseOutput{
			Snapshot: snapshot.Build(fields, time.Now(), cfg.Location),
			Rules:    map[string]string{},
		}
		for name, m := range map[string]*extract.Match{
			"route":             fields.Route,
			"departure_time":    fields.Departure,
			"estimated_arrival": fields.Arrival,
		} {
			if m != nil {
				out.Rules[name] = m.Rule
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

type parseOutput struct {
	Snapshot models.VesselSnapshot `json:"snapshot"`
	Rules    map[string]string     `json:"rules"`
}

func init() {
	parseCmd.Flags().Bool("strict", false, "Fail when the page has no coordinate pair")
	parseCmd.Flags().Bool("html", false, "Treat the file as HTML regardless of extension")
	rootCmd.AddCommand(parseCmd)
}
