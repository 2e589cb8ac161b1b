package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors: adapters translate
// transport failures into one of these at the port boundary.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config not found")

	// Pipeline Errors.

	// ErrModelUnavailable indicates the language model or embedding model
	// backend is missing or unreachable. It is fatal and surfaced before any
	// question is accepted.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrEmbedding indicates bad embedding input (empty text) or a failure
	// of the embedding model.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexNotFound indicates there is no usable persisted index at the
	// expected location, either because it is absent or because it is corrupt.
	ErrIndexNotFound = errors.New("index not found")

	// ErrInvalidQuery indicates an empty question or an invalid result count.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrGeneration indicates the language model call failed or timed out.
	ErrGeneration = errors.New("generation failed")
)
