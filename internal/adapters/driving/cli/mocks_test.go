package cli

import (
	"bytes"
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/manwithbarba/rag-ets/internal/adapters/driven/storage/memory"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
)

// mockRuntime is a Runtime backed by in-memory mocks.
type mockRuntime struct {
	settings domain.Settings
	store    *memory.ConfigStore

	answers  *mockAnswerService
	ingest   *mockIngestService
	feedback *mockFeedbackService
	eval     *mockEvaluationService
	reader   *mockEvalReader
	writer   *mockEvalWriter

	// reportWriter replaces writer when set.
	reportWriter driven.EvalReportWriter

	// openErr fails the service constructors that open models.
	openErr error

	ingestSettings domain.Settings
	closed         int
}

func (m *mockRuntime) Settings() domain.Settings { return m.settings }
func (m *mockRuntime) ConfigStore() driven.ConfigStore { return m.store }

func (m *mockRuntime) IngestService(_ context.Context, s domain.Settings) (driving.IngestService, error) {
	m.ingestSettings = s
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.ingest, nil
}

func (m *mockRuntime) RetrievalService(context.Context) (driving.RetrievalService, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.answers, nil
}

func (m *mockRuntime) AnswerService(context.Context) (driving.AnswerService, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.answers, nil
}

func (m *mockRuntime) EvaluationService(context.Context) (driving.EvaluationService, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.eval, nil
}

func (m *mockRuntime) FeedbackService() driving.FeedbackService { return m.feedback }

func (m *mockRuntime) EvalSet() (driven.EvalSetReader, driven.EvalReportWriter) {
	if m.reportWriter != nil {
		return m.reader, m.reportWriter
	}
	return m.reader, m.writer
}

func (m *mockRuntime) Close() error {
	m.closed++
	return nil
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer  *domain.Answer
	results domain.RetrievalResult
	err     error

	question string
	k        int
	calls    int
}

func (m *mockAnswerService) AnswerQuestion(_ context.Context, question string, k int) (*domain.Answer, error) {
	m.question, m.k = question, k
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAnswerService) Retrieve(_ context.Context, question string, k int) (domain.RetrievalResult, error) {
	m.question, m.k = question, k
	m.calls++
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error
	roots  []string
}

func (m *mockIngestService) Ingest(_ context.Context, root string) (*domain.IngestReport, error) {
	m.roots = append(m.roots, root)
	return m.report, m.err
}

// mockFeedbackService is a mock implementation of driving.FeedbackService.
type mockFeedbackService struct {
	entries []domain.FeedbackEntry
	err     error

	recorded []domain.Rating
	limit    int
}

func (m *mockFeedbackService) Record(_ context.Context, _ *domain.Answer, rating domain.Rating) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, rating)
	return nil
}

func (m *mockFeedbackService) Recent(_ context.Context, limit int) ([]domain.FeedbackEntry, error) {
	m.limit = limit
	return m.entries, m.err
}

// mockEvaluationService is a mock implementation of driving.EvaluationService.
type mockEvaluationService struct {
	results []domain.EvalResult
	err     error
	k       int

	// interrupt, when set, is called mid-run and the run then reports
	// the context error.
	interrupt func()
}

func (m *mockEvaluationService) Run(ctx context.Context, _ []domain.EvalCase, k int) ([]domain.EvalResult, error) {
	m.k = k
	if m.interrupt != nil {
		m.interrupt()
		return m.results, ctx.Err()
	}
	return m.results, m.err
}

// mockEvalReader is a mock implementation of driven.EvalSetReader.
type mockEvalReader struct {
	cases []domain.EvalCase
	err   error
	path  string
}

func (m *mockEvalReader) Read(_ context.Context, path string) ([]domain.EvalCase, error) {
	m.path = path
	return m.cases, m.err
}

// mockEvalWriter is a mock implementation of driven.EvalReportWriter.
type mockEvalWriter struct {
	err     error
	path    string
	results []domain.EvalResult
	summary domain.EvalSummary
	ctxErr  error
}

func (m *mockEvalWriter) Write(ctx context.Context, path string, results []domain.EvalResult, summary domain.EvalSummary) error {
	m.path, m.results, m.summary = path, results, summary
	m.ctxErr = ctx.Err()
	return m.err
}

// setupTestServices installs a mock runtime and returns it with a cleanup
// function that restores the package state.
func setupTestServices() (*mockRuntime, func()) {
	rt := &mockRuntime{
		settings: domain.DefaultSettings(),
		store:    memory.NewConfigStore(nil),
		answers:  &mockAnswerService{answer: testAnswer()},
		ingest:   &mockIngestService{report: &domain.IngestReport{}},
		feedback: &mockFeedbackService{},
		eval:     &mockEvaluationService{},
		reader:   &mockEvalReader{},
		writer:   &mockEvalWriter{},
	}

	original := app
	app = rt
	return rt, func() {
		app = original
	}
}

// executeCommand runs the root command with args and returns its output.
// Flags are reset afterwards because cobra keeps their values.
func executeCommand(args ...string) (string, error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (string, error) {
	return executeCommandContext(context.Background(), input, args...)
}

// executeCommandContext runs the root command under ctx.
func executeCommandContext(ctx context.Context, input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(os.Stderr)
		rootCmd.SetIn(os.Stdin)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Question: "¿Qué países participaron?",
		Text:     "Participaron pacientes de Argentina [1] y Chile [2].",
		Context: domain.FormattedContext{
			Text: "### Fuente [1]\n...",
			Citations: domain.CitationTable{
				{Number: 1, Source: "informes/argentina.txt"},
				{Number: 2, Source: "informes/chile.txt"},
			},
		},
		Fragments: domain.RetrievalResult{
			{Fragment: domain.Fragment{Source: "informes/argentina.txt", Text: "Pacientes de Argentina."}, Score: 0.91, Rank: 1},
			{Fragment: domain.Fragment{Source: "informes/chile.txt", Text: "Pacientes de Chile."}, Score: 0.84, Rank: 2},
		},
	}
}
