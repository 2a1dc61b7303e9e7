package driving

import "context"

// ActionService performs operator actions on indexed documents.
type ActionService interface {
	// OpenDocument launches the OS default application for the
	// document's source file and returns the absolute path it opened.
	OpenDocument(ctx context.Context, documentID string) (string, error)
}
