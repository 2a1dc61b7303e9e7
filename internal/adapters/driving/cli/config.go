package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage daemon configuration",
	Long: `View and change daemon settings.

Settings are stored in the state directory and read by the daemon when
it starts, so changes take effect on the next daemon start.`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	RunE:  runConfigList,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, err := settingsService.GetKey(args[0])
	if err != nil {
		return fmt.Errorf("failed to get setting: %w", err)
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.SetKey(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, displayValue(key, value))

	if strings.HasPrefix(key, "embedding.") {
		// A backend that is down is a reason to warn, not to reject the
		// setting: folders that need it wait and report, data stays put.
		cmd.Print("Validating embedding backend... ")
		if err := settingsService.ValidateEmbeddingConfig(); err != nil {
			cmd.Println("unreachable")
			cmd.Printf("Warning: %v\n", err)
		} else {
			cmd.Println("OK")
		}
	}

	cmd.Println("Restart the daemon for this to take effect.")
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		value, err := settingsService.GetKey(key)
		if err != nil {
			continue
		}
		cmd.Printf("%s = %s\n", key, displayValue(key, value))
	}
	return nil
}

// displayValue masks credentials in output.
func displayValue(key, value string) string {
	if strings.HasSuffix(key, "api_key") && value != "" {
		return maskAPIKey(value)
	}
	return value
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
