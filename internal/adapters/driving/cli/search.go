package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// snippetPreviewLen caps the snippet column in table output.
const snippetPreviewLen = 160

var (
	searchLimit    int
	searchJSON     bool
	searchFolders  []string
	searchMIMEs    []string
	searchMinScore float64
	searchContext  int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed folders",
	Long: `Performs semantic search across active folders. Result text is
reconstructed from the source files at query time; the index itself
stores only coordinates and vectors.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringSliceVar(&searchFolders, "folder", nil, "restrict to a folder id (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchMIMEs, "mime", nil, "restrict to a document MIME type (repeatable)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop results below this similarity")
	searchCmd.Flags().IntVar(&searchContext, "context", 0, "neighbouring chunks to include on each side")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:         searchLimit,
		FolderIDs:     searchFolders,
		MIMETypes:     searchMIMEs,
		MinScore:      searchMinScore,
		ContextChunks: searchContext,
	}

	results, err := searchService.Search(context.Background(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results[i].Document.Path, results[i].Score)
		if results[i].FolderPath != "" {
			cmd.Printf("      Folder: %s\n", results[i].FolderPath)
		}
		if snippet := snippetPreview(results[i].Snippet); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	return nil
}

// snippetPreview collapses a snippet onto one line and truncates it.
func snippetPreview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= snippetPreviewLen {
		return s
	}
	return string(runes[:snippetPreviewLen]) + "..."
}
