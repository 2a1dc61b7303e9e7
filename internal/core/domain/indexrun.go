package domain

import "time"

// IndexRun records one scan-and-index pass over a folder. The run log is
// what the status surfaces report from, and what the consistency auditor
// consults to find folders whose last run is stale or failed.
type IndexRun struct {
	// FolderID is the folder the run covered.
	FolderID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// EndedAt is when the run finished, successfully or not.
	EndedAt time.Time

	// Success reports whether the run completed without error.
	Success bool

	// Error is the failure message for unsuccessful runs.
	Error string

	// FilesSeen is the number of indexable files enumerated by the scan.
	FilesSeen int

	// FilesIndexed is the number of files chunked and embedded this run.
	// Unchanged files are skipped, so this is usually smaller than FilesSeen.
	FilesIndexed int

	// ChunksWritten is the number of chunk records written this run.
	ChunksWritten int
}
