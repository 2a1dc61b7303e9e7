package filesystem

import (
	"path/filepath"
	"strings"
)

// mimeByExt maps indexable file extensions to their content types.
// Detection is by extension, never by content sniffing, so that the same
// file always resolves to the same extractor.
var mimeByExt = map[string]string{
	".txt":  "text/plain",
	".text": "text/plain",
	".log":  "text/plain",
	".md":   "text/markdown",
	".mdx":  "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".yaml": "application/x-yaml",
	".yml":  "application/x-yaml",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// MIMEForPath returns the content type for a file path, or empty when the
// extension is not indexable.
func MIMEForPath(path string) string {
	return mimeByExt[strings.ToLower(filepath.Ext(path))]
}
