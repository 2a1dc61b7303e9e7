package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open [document-id]",
	Short: "Open an indexed document",
	Long:  `Opens the document's source file in the default application.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	if actionService == nil {
		return errors.New("action service not configured")
	}

	path, err := actionService.OpenDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	cmd.Printf("Opened %s\n", path)
	return nil
}
