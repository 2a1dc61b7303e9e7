package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FailureClass is the closed set of outcomes the failure classifier
// can produce. Everything downstream of the classification boundary
// branches on this enum, never on the raw error again.
type FailureClass string

const (
	// FailureEnvironment means the host runtime is broken (native
	// dependency mismatch, dynamic library load failure, model runtime
	// failure). The folder's data and configuration are preserved;
	// remediation is external.
	FailureEnvironment FailureClass = "environment"

	// FailureFolder means the folder itself is the problem (missing path,
	// permission denied, malformed file). Retried with backoff; eligible
	// for cleanup once terminal.
	FailureFolder FailureClass = "folder"
)

// environmentSignatures are substrings that identify an environment
// failure in a raw error coming from a native or model-runtime boundary.
// Matching is case-insensitive. The list covers the three categories the
// classifier recognises: native-dependency version mismatch, dynamic
// library load failure, and model execution runtime failure.
var environmentSignatures = []string{
	// Native dependency version mismatch.
	"version mismatch",
	"incompatible library version",
	"compiled against a different version",
	"glibc_",
	"abi version",
	"undefined symbol",
	"symbol not found",
	// Dynamic library load failure.
	"cannot open shared object file",
	"error while loading shared libraries",
	"dlopen",
	"library not loaded",
	"image not found",
	"invalid elf header",
	"loadlibrary",
	"specified module could not be found",
	// Model execution runtime failure.
	"onnxruntime",
	"cuda driver version",
	"cudnn",
	"model runtime error",
}

// ClassifyFailure maps a raw indexing error to a FailureClass.
//
// It is a pure function and the single place where raw errors are
// inspected. Typed taxonomy errors win over signature matching; anything
// unrecognised is a folder failure, because treating an unknown failure
// as environmental would leave folders stuck in error forever, while
// treating it as a folder failure still preserves data until the retry
// budget is exhausted.
func ClassifyFailure(err error) FailureClass {
	if err == nil {
		return FailureFolder
	}

	var envErr *EnvironmentError
	if errors.As(err, &envErr) {
		return FailureEnvironment
	}

	var folderErr *FolderError
	if errors.As(err, &folderErr) {
		return FailureFolder
	}

	msg := strings.ToLower(err.Error())
	for _, sig := range environmentSignatures {
		if strings.Contains(msg, sig) {
			return FailureEnvironment
		}
	}

	return FailureFolder
}

// EnvironmentError reports a failure of the host runtime rather than of a
// folder's own content or path. It is raised at the boundary that touches
// native code or the model runtime, and always preserves indexed data.
type EnvironmentError struct {
	// Op is the operation that failed (e.g., "load vector index").
	Op string

	// Remediation names the external fix action
	// (e.g., "rebuild the hnsw native library").
	Remediation string

	// Err is the underlying cause.
	Err error
}

func (e *EnvironmentError) Error() string {
	if e.Remediation != "" {
		return fmt.Sprintf("environment failure in %s: %v (remediation: %s)", e.Op, e.Err, e.Remediation)
	}
	return fmt.Sprintf("environment failure in %s: %v", e.Op, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// FolderError reports a failure caused by the folder's own path or
// content. Terminal marks failures that cannot resolve on retry
// (e.g., the path is confirmed permanently gone).
type FolderError struct {
	// Op is the operation that failed (e.g., "scan folder").
	Op string

	// Path is the file or folder path involved.
	Path string

	// Terminal is true when retrying cannot succeed.
	Terminal bool

	// Err is the underlying cause.
	Err error
}

func (e *FolderError) Error() string {
	return fmt.Sprintf("folder failure in %s (%s): %v", e.Op, e.Path, e.Err)
}

func (e *FolderError) Unwrap() error { return e.Err }

// CoordinateMismatchError reports that stored extraction coordinates no
// longer resolve against the source file (e.g., the file was truncated).
// It is always surfaced to the caller, never silently replaced with
// empty text.
type CoordinateMismatchError struct {
	// Path is the source file path.
	Path string

	// Coordinates are the stored coordinates that failed to resolve.
	Coordinates ExtractionCoordinates

	// Reason describes why resolution failed.
	Reason string
}

func (e *CoordinateMismatchError) Error() string {
	return fmt.Sprintf("coordinates %s no longer resolve in %s: %s", e.Coordinates, e.Path, e.Reason)
}

// DaemonUnavailableError reports that the daemon could not be reached and
// could not be started. Callers must be able to distinguish this from a
// generic timeout, so the auto-start cause is preserved.
type DaemonUnavailableError struct {
	// Err is the reason the daemon could not be started
	// (executable missing, health check never became healthy).
	Err error
}

func (e *DaemonUnavailableError) Error() string {
	return fmt.Sprintf("daemon could not be started: %v", e.Err)
}

func (e *DaemonUnavailableError) Unwrap() error { return e.Err }
