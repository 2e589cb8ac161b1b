// Package normalisers provides implementations of the Normaliser interface
// for the supported document formats (PDF, DOCX, Markdown and plain text),
// plus the Registry that dispatches raw documents by MIME type.
package normalisers
