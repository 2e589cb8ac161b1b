package domain

import (
	"fmt"
	"time"
)

// FallbackAnswer is the exact sentence the model must give when the context
// does not contain the answer.
const FallbackAnswer = "La información solicitada no se encuentra en los documentos disponibles."

// TimestampLayout is the layout used for answer and feedback timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Retrieval bounds.
const (
	MinRetrievalK     = 1
	MaxRetrievalK     = 10
	DefaultRetrievalK = 3
)

// Citation maps a citation number to the source it refers to.
type Citation struct {
	// Number is the marker value, so Number 2 is written "[2]".
	Number int

	// Source is the document the cited fragment came from.
	Source string
}

// Marker returns the inline citation marker, e.g. "[2]".
func (c Citation) Marker() string {
	return fmt.Sprintf("[%d]", c.Number)
}

// CitationTable is the explicit mapping from citation number to source for a
// single question. The formatter produces it and the generator's prompt uses
// the same numbering, so numbers are stable for the whole question.
type CitationTable []Citation

// Lookup returns the citation with the given number.
func (t CitationTable) Lookup(number int) (Citation, bool) {
	for _, c := range t {
		if c.Number == number {
			return c, true
		}
	}
	return Citation{}, false
}

// FormattedContext is the numbered, citable context block shown to the model.
type FormattedContext struct {
	Text      string
	Citations CitationTable
}

// Answer is the result of answering one question.
type Answer struct {
	Question  string
	Text      string
	Context   FormattedContext
	Fragments RetrievalResult
	Timestamp time.Time
}

// Contexts returns the raw texts of the retrieved fragments, in citation order.
func (a *Answer) Contexts() []string {
	return a.Fragments.Texts()
}

// Record returns the answer as a flat mapping for collaborators such as the
// feedback log.
func (a *Answer) Record() map[string]string {
	return map[string]string{
		"timestamp": a.Timestamp.Format(TimestampLayout),
		"question":  a.Question,
		"answer":    a.Text,
		"context":   a.Context.Text,
	}
}
