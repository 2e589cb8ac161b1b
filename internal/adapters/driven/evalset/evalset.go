// Package evalset reads golden question sets from CSV and writes evaluation
// reports as JSON for an external judge.
package evalset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// Golden set columns.
const (
	ColumnQuestion           = "question"
	ColumnGroundTruthAnswer  = "ground_truth_answer"
	ColumnGroundTruthContext = "ground_truth_context"
)

// Ensure the adapters implement the interfaces.
var (
	_ driven.EvalSetReader    = (*CSVReader)(nil)
	_ driven.EvalReportWriter = (*JSONWriter)(nil)
)

// CSVReader reads a golden set whose header names the columns. Only the
// question column is required.
type CSVReader struct{}

// NewCSVReader creates a golden set reader.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// Read returns the cases in file order. Rows with a blank question are
// skipped.
func (r *CSVReader) Read(ctx context.Context, path string) ([]domain.EvalCase, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: golden set %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening golden set: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: golden set %s has no header: %w", domain.ErrInvalidInput, path, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	qi, ok := columns[ColumnQuestion]
	if !ok {
		return nil, fmt.Errorf("%w: golden set %s lacks a %q column", domain.ErrInvalidInput, path, ColumnQuestion)
	}

	field := func(rec []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var cases []domain.EvalCase
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: golden set %s: %w", domain.ErrInvalidInput, path, err)
		}
		if qi >= len(rec) || strings.TrimSpace(rec[qi]) == "" {
			continue
		}
		cases = append(cases, domain.EvalCase{
			Question:           strings.TrimSpace(rec[qi]),
			GroundTruthAnswer:  field(rec, ColumnGroundTruthAnswer),
			GroundTruthContext: field(rec, ColumnGroundTruthContext),
		})
	}
	return cases, nil
}

// Report is the JSON document written for a run. Each result carries the
// question, answer, contexts and ground_truth fields a ragas-style judge
// expects.
type Report struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     ReportSummary  `json:"summary"`
	Results     []ReportResult `json:"results"`
}

// ReportSummary mirrors domain.EvalSummary.
type ReportSummary struct {
	Cases        int     `json:"cases"`
	Failures     int     `json:"failures"`
	CitationRate float64 `json:"citation_rate"`
	FallbackRate float64 `json:"fallback_rate"`
	GroundedRate float64 `json:"grounded_rate"`
}

// ReportResult is one evaluated question.
type ReportResult struct {
	Question           string           `json:"question"`
	Answer             string           `json:"answer"`
	Contexts           []string         `json:"contexts"`
	GroundTruth        string           `json:"ground_truth"`
	GroundTruthContext string           `json:"ground_truth_context,omitempty"`
	Citations          []ReportCitation `json:"citations,omitempty"`
	HasCitation        bool             `json:"has_citation"`
	IsFallback         bool             `json:"is_fallback"`
	Grounded           bool             `json:"grounded"`
	Error              string           `json:"error,omitempty"`
}

// ReportCitation maps a marker to its source.
type ReportCitation struct {
	Number int    `json:"number"`
	Source string `json:"source"`
}

// JSONWriter writes reports as indented JSON.
type JSONWriter struct {
	now   func() time.Time
	newID func() string
}

// NewJSONWriter creates a report writer.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{now: time.Now, newID: uuid.NewString}
}

// BuildReport converts results to the report layout.
func (w *JSONWriter) BuildReport(results []domain.EvalResult, summary domain.EvalSummary) Report {
	report := Report{
		RunID:       w.newID(),
		GeneratedAt: w.now().UTC(),
		Summary: ReportSummary{
			Cases:        summary.Cases,
			Failures:     summary.Failures,
			CitationRate: summary.CitationRate,
			FallbackRate: summary.FallbackRate,
			GroundedRate: summary.GroundedRate,
		},
		Results: make([]ReportResult, 0, len(results)),
	}

	for i := range results {
		res := &results[i]
		rr := ReportResult{
			Question:           res.Case.Question,
			Answer:             res.Answer,
			Contexts:           res.Contexts,
			GroundTruth:        res.Case.GroundTruthAnswer,
			GroundTruthContext: res.Case.GroundTruthContext,
			HasCitation:        res.Checks.HasCitation,
			IsFallback:         res.Checks.IsFallback,
		}
		if rr.Contexts == nil {
			rr.Contexts = []string{}
		}
		for _, c := range res.Citations {
			rr.Citations = append(rr.Citations, ReportCitation{Number: c.Number, Source: c.Source})
		}
		if res.Err != nil {
			rr.Error = res.Err.Error()
		} else {
			rr.Grounded = res.Checks.Grounded()
		}
		report.Results = append(report.Results, rr)
	}
	return report
}

// Write writes the report to path, replacing any existing file. It runs to
// completion on a cancelled context so an interrupted run keeps its results.
func (w *JSONWriter) Write(_ context.Context, path string, results []domain.EvalResult, summary domain.EvalSummary) error {
	data, err := json.MarshalIndent(w.BuildReport(results, summary), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
