package domain

// EvalCase is one question of a golden evaluation set.
type EvalCase struct {
	Question           string
	GroundTruthAnswer  string
	GroundTruthContext string
}

// FormatChecks are the format-level properties of an answer that can be
// verified without a judge model.
type FormatChecks struct {
	// HasCitation is true if the answer contains at least one [i] marker.
	HasCitation bool

	// IsFallback is true if the answer is exactly FallbackAnswer.
	IsFallback bool

	// CitationsInRange is true if every marker refers to a retrieved fragment.
	CitationsInRange bool

	// MentionsSource is true if a source name leaked into the answer text.
	MentionsSource bool

	// Markers lists the distinct citation numbers found, ascending.
	Markers []int
}

// Grounded reports whether the answer is either the fallback sentence or a
// cited answer whose markers all resolve and which names no documents.
func (c FormatChecks) Grounded() bool {
	if c.IsFallback {
		return true
	}
	return c.HasCitation && c.CitationsInRange && !c.MentionsSource
}

// EvalResult is the outcome of running one EvalCase through the pipeline.
type EvalResult struct {
	Case      EvalCase
	Answer    string
	Contexts  []string
	Citations CitationTable
	Checks    FormatChecks
	Err       error
}

// EvalSummary aggregates a run.
type EvalSummary struct {
	Cases        int
	Failures     int
	CitationRate float64
	FallbackRate float64
	GroundedRate float64
}

// Summarise computes aggregate rates over the successful results.
func Summarise(results []EvalResult) EvalSummary {
	s := EvalSummary{Cases: len(results)}
	var ok, cited, fallback, grounded int
	for i := range results {
		if results[i].Err != nil {
			s.Failures++
			continue
		}
		ok++
		if results[i].Checks.HasCitation {
			cited++
		}
		if results[i].Checks.IsFallback {
			fallback++
		}
		if results[i].Checks.Grounded() {
			grounded++
		}
	}
	if ok > 0 {
		s.CitationRate = float64(cited) / float64(ok)
		s.FallbackRate = float64(fallback) / float64(ok)
		s.GroundedRate = float64(grounded) / float64(ok)
	}
	return s
}
