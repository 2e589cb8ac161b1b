package domain

import "time"

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Root is the document directory that was ingested.
	Root string

	// IndexPath is the directory the index was built in.
	IndexPath string

	// Documents is the number of documents that produced fragments.
	Documents int

	// Fragments is the number of indexed fragments.
	Fragments int

	// Skipped lists documents that failed to load, normalise, split or embed.
	Skipped []SkippedDocument

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}
