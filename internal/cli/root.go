package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/app"
	"github.com/law-makers/shiptrack/internal/config"
	"github.com/law-makers/shiptrack/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shiptrack",
	Short: "Track a vessel fleet from its public tracking pages",
	Long: `Shiptrack visits each configured ship's tracking page in headless Chrome,
reads route, voyage times, position, speed and heading from the rendered
text, records new trips and keeps the latest state of every ship.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI with ctx, which is cancelled on interrupt. Startup
// errors exit non-zero; a single ship failing never does.
func Execute(ctx context.Context) {
	if err := execute(ctx, rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		os.Exit(1)
	}
}

// execute runs root and then closes the application the executed command
// built. Cobra skips post-run hooks when RunE fails, so closing lives here.
func execute(ctx context.Context, root *cobra.Command) error {
	cmd, err := root.ExecuteContextC(ctx)
	closeApp(cmd)
	return err
}

// closeApp closes and forgets the application stored on cmd, if any
func closeApp(cmd *cobra.Command) {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return
	}
	timeout := config.DefaultShutdownTimeout
	if a.Config != nil && a.Config.ShutdownTimeout > 0 {
		timeout = a.Config.ShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = a.Close(ctx)
	SetApp(cmd, nil)
}

func init() {
	// Configuration is loaded before every command; the application is only
	// built for commands that need the store and browser (not for -h/help).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		for c := cmd; c != nil; c = c.Parent() {
			if c.Annotations[annotationNoConfig] == "true" {
				return nil
			}
		}
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		app.NewLogger(cfg)
		log.Debug().Str("ships_file", cfg.ShipsFile).Str("store", cfg.StoreDriver).Msg("Configuration loaded")
		withValue(cmd, configKey, cfg)

		if cmd.Annotations[annotationNeedsApp] != "true" || GetAppFromCmd(cmd) != nil {
			return nil
		}
		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for Shiptrack")
	rootCmd.Flags().Bool("version", false, "Version for Shiptrack")
}

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Set custom help function
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}
