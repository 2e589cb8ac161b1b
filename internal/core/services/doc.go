// Package services implements the driving port interfaces.
//
// The answering path is Retriever, ContextFormatter and AnswerGenerator,
// composed by Pipeline. IngestService builds the index that path reads;
// FeedbackService and EvaluationService sit on top of a finished answer.
//
// Services only see driven ports; models, stores and files are supplied by
// adapters.
package services
