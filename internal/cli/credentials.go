package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/shiptrack/internal/config"
	"github.com/law-makers/shiptrack/internal/ui"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the object storage key in the system keyring",
	Long: `The storage service-role key can live in the system keyring instead of
SUPABASE_SERVICE_ROLE_KEY. The environment variable wins when both are set.`,
	Annotations: map[string]string{annotationNoConfig: "true"},
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set [KEY]",
	Short: "Store the storage key (reads stdin when KEY is omitted)",
	Example: `  shiptrack credentials set
  echo "$KEY" | shiptrack credentials set`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Fprint(os.Stderr, "Storage key: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read key: %w", err)
			}
			key = line
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("empty key")
		}
		if err := config.SetStorageKey(key); err != nil {
			return fmt.Errorf("failed to save key to keyring: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("✓ Storage key saved to keyring"))
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the storage key from the keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteStorageKey(); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("✓ Storage key removed"))
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}
