package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("env-file", DefaultEnvFile, "Path to a .env file (optional)")
	cmd.PersistentFlags().String("ships", "", "Path to the ships JSON file (default \"ships.json\")")
	cmd.PersistentFlags().String("policy", "", "Coordinate policy: lenient or strict (default \"lenient\")")
	cmd.PersistentFlags().String("timezone", "", "Zone for page timestamps without an offset (default \"UTC\")")
	cmd.PersistentFlags().String("timeout", "", "Navigation timeout (default 1m30s)")
	cmd.PersistentFlags().String("chrome-path", "", "Chrome or Chromium executable")
	cmd.PersistentFlags().Bool("headless", DefaultBrowserHeadless, "Run the browser headless")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("proxy", "", "Comma separated HTTP/SOCKS5 proxies, rotated per ship")
	cmd.PersistentFlags().StringArrayP("header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")
	cmd.PersistentFlags().String("store", "", "Store driver: sqlite or postgres")
	cmd.PersistentFlags().String("database-url", "", "Postgres connection string")
	cmd.PersistentFlags().String("sqlite-path", "", "SQLite database file (default \"data/shiptrack.db\")")
	cmd.PersistentFlags().String("image-dir", "", "Directory receiving a copy of every map image")
}
