// Package filesystem provides folder scanning and change watching for
// monitored folders.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
)

// DefaultMaxFileSize is the largest file the scanner will hash and index.
const DefaultMaxFileSize = 64 << 20

// alwaysSkippedDirs are directory names never descended into, regardless
// of folder configuration.
var alwaysSkippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"__pycache__":  {},
	".venv":        {},
}

// Ensure Scanner implements the interface.
var _ driven.FolderScanner = (*Scanner)(nil)

// Scanner enumerates a folder's indexable files with their content hashes.
type Scanner struct {
	maxFileSize int64
}

// ScannerOption configures the scanner.
type ScannerOption func(*Scanner)

// WithMaxFileSize sets the per-file size cap in bytes.
func WithMaxFileSize(n int64) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// NewScanner creates a folder scanner.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the folder root and returns every indexable file. Exclusion
// patterns from the folder configuration are matched against the
// slash-separated relative path and against the base name. A missing or
// unreadable root returns a FolderError so the lifecycle can classify it.
func (s *Scanner) Scan(ctx context.Context, folder *domain.MonitoredFolder) ([]driven.FileEntry, error) {
	info, err := os.Stat(folder.Path)
	if err != nil {
		return nil, &domain.FolderError{Op: "scan folder", Path: folder.Path, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.FolderError{
			Op: "scan folder", Path: folder.Path, Terminal: true,
			Err: fmt.Errorf("%w: not a directory", domain.ErrInvalidPath),
		}
	}

	var entries []driven.FileEntry
	walkErr := filepath.WalkDir(folder.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(folder.Path, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if _, skip := alwaysSkippedDirs[name]; skip {
				return filepath.SkipDir
			}
			if excluded(rel, d.Name(), folder.Config.ExcludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if excluded(rel, d.Name(), folder.Config.ExcludePatterns) {
			return nil
		}

		mime := MIMEForPath(path)
		if mime == "" {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if fi.Size() > s.maxFileSize {
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			return nil
		}

		entries = append(entries, driven.FileEntry{
			Path:    rel,
			AbsPath: path,
			MIME:    mime,
			Hash:    hash,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, walkErr
		}
		return nil, &domain.FolderError{Op: "scan folder", Path: folder.Path, Err: walkErr}
	}
	return entries, nil
}

// excluded reports whether a relative path matches any exclusion pattern.
func excluded(rel, base string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// hashFile returns the hex-encoded SHA-256 of the file's bytes.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
