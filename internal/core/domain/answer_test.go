package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitation_Marker(t *testing.T) {
	assert.Equal(t, "[1]", Citation{Number: 1}.Marker())
	assert.Equal(t, "[10]", Citation{Number: 10}.Marker())
}

func TestCitationTable_Lookup(t *testing.T) {
	table := CitationTable{
		{Number: 1, Source: "a.pdf"},
		{Number: 2, Source: "sub/b.docx"},
	}

	c, ok := table.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "sub/b.docx", c.Source)

	_, ok = table.Lookup(0)
	assert.False(t, ok)
	_, ok = table.Lookup(3)
	assert.False(t, ok)
}

func TestAnswer_RecordAndContexts(t *testing.T) {
	a := &Answer{
		Question: "¿Qué países?",
		Text:     "Argentina [1] y Chile [2].",
		Context:  FormattedContext{Text: "### Fuente [1]\n"},
		Fragments: RetrievalResult{
			{Fragment: Fragment{Text: "uno", Source: "a.txt"}, Rank: 1},
			{Fragment: Fragment{Text: "dos", Source: "b.txt"}, Rank: 2},
		},
		Timestamp: time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
	}

	rec := a.Record()
	assert.Equal(t, "2024-03-09 14:05:07", rec["timestamp"])
	assert.Equal(t, "¿Qué países?", rec["question"])
	assert.Equal(t, "Argentina [1] y Chile [2].", rec["answer"])
	assert.Equal(t, "### Fuente [1]\n", rec["context"])

	assert.Equal(t, []string{"uno", "dos"}, a.Contexts())
	assert.Equal(t, []string{"a.txt", "b.txt"}, a.Fragments.Sources())
}

func TestFragment_Len(t *testing.T) {
	assert.Equal(t, 5, Fragment{Text: "señal"}.Len())
}
