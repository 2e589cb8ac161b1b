package domain

// RawDocument represents opaque bytes read by the document loader.
// It is the loader's output before normalisation.
type RawDocument struct {
	// Path is the file path relative to the ingestion root, slash-separated.
	Path string

	// AbsPath is the absolute path the bytes were read from.
	AbsPath string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]any
}

// SkippedDocument records a document that ingestion could not use.
type SkippedDocument struct {
	// Path is the relative path of the document.
	Path string

	// Reason is the error that caused the skip.
	Reason error
}
