// Package cli provides the command-line interface for shiptrack.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/app"
	"github.com/law-makers/shiptrack/internal/config"
)

// ctxKey is used for storing values in cobra command contexts
type ctxKey string

const (
	appKey    ctxKey = "app"
	configKey ctxKey = "config"
)

// annotationNeedsApp marks commands that need the store, browser and runner
const annotationNeedsApp = "needs-app"

// annotationNoConfig marks commands that run without loading configuration
const annotationNoConfig = "no-config"

func withValue(cmd *cobra.Command, key ctxKey, v interface{}) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, key, v))
}

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	withValue(cmd, appKey, a)
}

// GetAppFromCmd retrieves the Application from cmd or one of its parents
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	for c := cmd; c != nil; c = c.Parent() {
		if ctx := c.Context(); ctx != nil {
			if a, ok := ctx.Value(appKey).(*app.Application); ok && a != nil {
				return a
			}
		}
	}
	return nil
}

// GetConfigFromCmd retrieves the loaded Config from cmd or one of its parents
func GetConfigFromCmd(cmd *cobra.Command) *config.Config {
	for c := cmd; c != nil; c = c.Parent() {
		if ctx := c.Context(); ctx != nil {
			if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
				return cfg
			}
		}
	}
	return nil
}
