package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

var (
	folderAddModel    string
	folderAddExcludes []string
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage monitored folders",
	Long:  `Add, remove and inspect the folders kept indexed by the daemon.`,
}

var folderAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Start monitoring a folder",
	Long: `Register a folder for indexing. Indexing runs in the background;
the folder serves search once it reaches the active state.`,
	Args: cobra.ExactArgs(1),
	RunE: runFolderAdd,
}

var folderRemoveCmd = &cobra.Command{
	Use:   "remove [folder-id]",
	Short: "Stop monitoring a folder",
	Long:  `Stops monitoring and deletes the folder's index data. The folder's files are untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderRemove,
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored folders",
	RunE:  runFolderList,
}

var folderRescanCmd = &cobra.Command{
	Use:   "rescan [folder-id]",
	Short: "Rescan a folder now",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderRescan,
}

var folderStatusCmd = &cobra.Command{
	Use:   "status [folder-id]",
	Short: "Show one folder's indexing status",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderStatus,
}

func init() {
	folderAddCmd.Flags().StringVar(&folderAddModel, "model", "", "embedding model for this folder (default: configured model)")
	folderAddCmd.Flags().StringSliceVar(&folderAddExcludes, "exclude", nil, "glob pattern to skip, relative to the folder root (repeatable)")

	folderCmd.AddCommand(folderAddCmd)
	folderCmd.AddCommand(folderRemoveCmd)
	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderRescanCmd)
	folderCmd.AddCommand(folderStatusCmd)
	rootCmd.AddCommand(folderCmd)
}

func runFolderAdd(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errors.New("folder service not configured")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	config := domain.FolderConfig{
		EmbeddingModel:  folderAddModel,
		ExcludePatterns: folderAddExcludes,
	}

	folder, err := folderService.AddFolder(context.Background(), path, config)
	if err != nil {
		return fmt.Errorf("failed to add folder: %w", err)
	}

	cmd.Printf("Folder %s added: %s\n", folder.ID, folder.Path)
	cmd.Println("Indexing runs in the background; watch it with 'folder-mcp folder list'.")
	return nil
}

func runFolderRemove(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errors.New("folder service not configured")
	}

	if err := folderService.RemoveFolder(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove folder: %w", err)
	}

	cmd.Printf("Folder %s removed; its index data is deleted.\n", args[0])
	return nil
}

func runFolderList(cmd *cobra.Command, _ []string) error {
	if folderService == nil {
		return errors.New("folder service not configured")
	}

	folders, err := folderService.ListFolders(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	if len(folders) == 0 {
		cmd.Println("No folders are monitored.")
		cmd.Println("Add one with 'folder-mcp folder add <path>'.")
		return nil
	}

	cmd.Println("Monitored folders:")
	cmd.Println()
	for i := range folders {
		printFolderLine(cmd, &folders[i])
	}
	cmd.Printf("Total: %d folders\n", len(folders))
	return nil
}

func printFolderLine(cmd *cobra.Command, folder *domain.MonitoredFolder) {
	cmd.Printf("  %s  [%s]  %s\n", folder.ID, folder.State, folder.Path)
	if folder.LastError != nil {
		cmd.Printf("      Error (%s): %s\n", folder.LastError.Class, folder.LastError.Message)
		if folder.LastError.Remediation != "" {
			cmd.Printf("      Fix: %s\n", folder.LastError.Remediation)
		}
	}
	cmd.Println()
}

func runFolderRescan(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errors.New("folder service not configured")
	}

	if err := folderService.RescanFolder(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to rescan folder: %w", err)
	}

	cmd.Printf("Rescan of folder %s started.\n", args[0])
	return nil
}

func runFolderStatus(cmd *cobra.Command, args []string) error {
	if folderService == nil {
		return errors.New("folder service not configured")
	}

	status, err := folderService.GetStatus(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get folder status: %w", err)
	}

	folder := status.Folder
	cmd.Printf("Folder: %s\n\n", folder.ID)
	cmd.Printf("  Path:       %s\n", folder.Path)
	cmd.Printf("  State:      %s\n", folder.State)
	if folder.Config.EmbeddingModel != "" {
		cmd.Printf("  Model:      %s\n", folder.Config.EmbeddingModel)
	}
	if len(folder.Config.ExcludePatterns) > 0 {
		cmd.Printf("  Excludes:   %v\n", folder.Config.ExcludePatterns)
	}
	cmd.Printf("  Documents:  %d\n", status.DocumentCount)
	cmd.Printf("  Chunks:     %d\n", status.ChunkCount)
	if !folder.LastIndexedAt.IsZero() {
		cmd.Printf("  Indexed:    %s\n", folder.LastIndexedAt.Format("2006-01-02 15:04:05"))
	}

	if run := status.LastRun; run != nil {
		outcome := "ok"
		if !run.Success {
			outcome = "failed"
		}
		cmd.Printf("\n  Last run:   %s, %d files seen, %d indexed, %d chunks",
			outcome, run.FilesSeen, run.FilesIndexed, run.ChunksWritten)
		if !run.EndedAt.IsZero() {
			cmd.Printf(" (%s)", run.EndedAt.Format("2006-01-02 15:04:05"))
		}
		cmd.Println()
	}

	if folder.LastError != nil {
		cmd.Printf("\n  Error (%s): %s\n", folder.LastError.Class, folder.LastError.Message)
		if folder.LastError.Remediation != "" {
			cmd.Printf("  Fix: %s\n", folder.LastError.Remediation)
		}
	}
	return nil
}
