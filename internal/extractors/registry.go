package extractors

import (
	"fmt"
	"sort"

	"github.com/okets/folder-mcp-sub010/internal/core/domain"
	"github.com/okets/folder-mcp-sub010/internal/core/ports/driven"
	"github.com/okets/folder-mcp-sub010/internal/extractors/docx"
	"github.com/okets/folder-mcp-sub010/internal/extractors/pdf"
	"github.com/okets/folder-mcp-sub010/internal/extractors/plaintext"
	"github.com/okets/folder-mcp-sub010/internal/extractors/pptx"
	"github.com/okets/folder-mcp-sub010/internal/extractors/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps MIME types to their extractors.
type Registry struct {
	byMIME map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string]driven.Extractor),
	}
}

// NewDefaultRegistry creates a registry with every built-in extractor
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(pptx.New())
	return r
}

// Register adds an extractor for each of its MIME types.
// A later registration for the same MIME type wins.
func (r *Registry) Register(e driven.Extractor) {
	for _, mime := range e.MIMETypes() {
		r.byMIME[mime] = e
	}
}

// ForMIME returns the extractor handling the given content type.
func (r *Registry) ForMIME(mime string) (driven.Extractor, error) {
	e, ok := r.byMIME[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMIME, mime)
	}
	return e, nil
}

// Supported lists all content types with a registered extractor, sorted.
func (r *Registry) Supported() []string {
	mimes := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		mimes = append(mimes, mime)
	}
	sort.Strings(mimes)
	return mimes
}
