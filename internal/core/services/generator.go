package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// GeneratorConfig configures answer generation.
type GeneratorConfig struct {
	// Options are passed to the LLM on every call.
	Options driven.GenerateOptions

	// Timeout bounds one generation call. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// GeneratorConfigFromSettings maps LLM settings to a generator config.
func GeneratorConfigFromSettings(s domain.LLMSettings) GeneratorConfig {
	return GeneratorConfig{
		Options: driven.GenerateOptions{
			MaxTokens:     s.MaxTokens,
			Temperature:   s.Temperature,
			ContextLength: s.ContextLength,
			GPULayers:     s.GPULayers,
			Seed:          s.Seed,
		},
		Timeout: s.Timeout,
	}
}

// AnswerGenerator asks the language model for a cited answer over a
// formatted context.
type AnswerGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     GeneratorConfig
}

// NewAnswerGenerator creates an answer generator. prompts may be nil, in
// which case the built-in template is used.
func NewAnswerGenerator(llm driven.LLMService, prompts driven.PromptStore, cfg GeneratorConfig) *AnswerGenerator {
	return &AnswerGenerator{
		llm:     llm,
		prompts: prompts,
		cfg:     cfg,
	}
}

// Generate renders the answer prompt and returns the trimmed completion.
// Every backend failure, including the timeout, is an ErrGeneration.
func (g *AnswerGenerator) Generate(ctx context.Context, fc domain.FormattedContext, question string) (string, error) {
	template, err := g.template()
	if err != nil {
		return "", err
	}
	prompt := domain.RenderPrompt(template, fc.Text, question)

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	logger.Debug("Generating answer with %s (%d sources, prompt %d bytes)", g.llm.ModelName(), len(fc.Citations), len(prompt))
	start := time.Now()

	text, err := g.llm.Generate(ctx, prompt, g.cfg.Options)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s: %w", domain.ErrGeneration, g.cfg.Timeout, err)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	logger.Debug("Generation took %s", time.Since(start).Round(time.Millisecond))
	return NormaliseAnswer(text), nil
}

func (g *AnswerGenerator) template() (string, error) {
	if g.prompts == nil {
		return domain.AnswerPromptTemplate, nil
	}
	template, err := g.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("loading answer prompt: %w", err)
	}
	if err := domain.ValidatePromptTemplate(template); err != nil {
		return "", err
	}
	return template, nil
}

// answerQuotes are stripped around a reply before comparing it with the
// fallback sentence.
const answerQuotes = "\"'`“”«»"

// NormaliseAnswer trims the reply. A reply that is the fallback sentence
// wrapped in quotes becomes exactly domain.FallbackAnswer.
func NormaliseAnswer(text string) string {
	text = strings.TrimSpace(text)
	unquoted := strings.TrimSpace(strings.Trim(text, answerQuotes))
	if unquoted == domain.FallbackAnswer {
		return domain.FallbackAnswer
	}
	return text
}

var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// CheckFormat inspects an answer for the format-level properties of a
// grounded reply: citation markers that resolve against citations and no
// document names in the text.
func CheckFormat(answer string, citations domain.CitationTable) domain.FormatChecks {
	checks := domain.FormatChecks{
		IsFallback:       answer == domain.FallbackAnswer,
		CitationsInRange: true,
	}

	seen := make(map[int]bool)
	for _, m := range markerPattern.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		checks.Markers = append(checks.Markers, n)
		if _, ok := citations.Lookup(n); !ok {
			checks.CitationsInRange = false
		}
	}
	sort.Ints(checks.Markers)
	checks.HasCitation = len(checks.Markers) > 0

	for _, c := range citations {
		if c.Source == "" {
			continue
		}
		if strings.Contains(answer, c.Source) || strings.Contains(answer, path.Base(c.Source)) {
			checks.MentionsSource = true
			break
		}
	}
	return checks
}
