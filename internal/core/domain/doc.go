// Package domain defines the core entities of the answering pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Bytes read from the document directory
//   - Document: Normalised text of one source file
//   - Fragment: A contiguous span of a document, the unit of retrieval
//   - RetrievalResult: Ranked fragments for one question
//   - FormattedContext: Numbered context block plus its citation table
//   - Answer: The generated, cited answer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
