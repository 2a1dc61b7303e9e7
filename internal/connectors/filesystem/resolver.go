package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
)

// ResolvePath normalizes a user-supplied folder path for registration.
// A leading ~ expands to the home directory and relative paths become
// absolute, so two spellings of the same folder resolve to the same key.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidPath)
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", path, err)
	}
	return abs, nil
}
