// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Ingestion
//
//   - DocumentLoader: Reads files from the document directory
//   - NormaliserRegistry / Normaliser: Extract text per format
//   - PostProcessorPipeline: Splits documents into fragments
//   - VectorIndexStore: Builds and loads the persisted index
//
// # Answering
//
//   - EmbeddingService: Maps text to vectors
//   - VectorIndex: Similarity search over a loaded index
//   - LLMService: Completes the rendered prompt
//   - PromptStore: Prompt templates
//
// # Collaborators
//
//   - FeedbackStore: Append-only rating log
//   - EvalSetReader / EvalReportWriter: Golden set input and report output
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
