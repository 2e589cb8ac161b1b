// Package connectors holds the document sources ingestion reads from.
// The filesystem connector is the only source: a local directory of PDF,
// DOCX, Markdown and plain text files.
package connectors
