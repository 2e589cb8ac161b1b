package domain

// DocumentFormat identifies the on-disk format a document was loaded from.
type DocumentFormat string

// Supported document formats.
const (
	FormatPDF      DocumentFormat = "pdf"
	FormatDOCX     DocumentFormat = "docx"
	FormatPlain    DocumentFormat = "plain"
	FormatMarkdown DocumentFormat = "markdown"
)

// String returns the string representation.
func (f DocumentFormat) String() string {
	return string(f)
}

// Document is a source unit after normalisation.
// It is created at ingestion time and never persisted itself; only its
// fragments reach the index.
type Document struct {
	// ID is a stable identifier derived from Source.
	ID string

	// Source identifies the document in citations. It is the file path
	// relative to the ingestion root, slash-separated.
	Source string

	// Title is the human-readable title, if the format carries one.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Format is the format the document was loaded from.
	Format DocumentFormat

	// Metadata contains format-specific key-value pairs.
	Metadata map[string]any
}
