package cli

import (
	"errors"
	"strings"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// hints suggest a next step for the errors a user can fix.
var hints = []struct {
	err  error
	hint string
}{
	{domain.ErrIndexNotFound, "run 'ragets ingest' first"},
	{domain.ErrModelUnavailable, "check that the model server is running and the model is available"},
	{domain.ErrInvalidQuery, "ask a non-empty question with -k between 1 and 10"},
	{domain.ErrGeneration, "the language model did not answer; try again or raise llm.timeout"},
}

// errorMessage renders err as one line with a hint when one applies.
func errorMessage(err error) string {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	for _, h := range hints {
		if errors.Is(err, h.err) {
			return msg + " (" + h.hint + ")"
		}
	}
	return msg
}
