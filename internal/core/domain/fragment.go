package domain

// Fragment is a contiguous span of one document, the unit that is embedded,
// indexed and retrieved.
//
// Text is always Content[Start:End] of the source document. Fragments of the
// same document may overlap; together they cover the whole document.
type Fragment struct {
	// ID is derived from Source, Position and the span, so unchanged input
	// always yields the same ID.
	ID string

	// Source is the relative path of the document this fragment came from.
	Source string

	// Text is the fragment content.
	Text string

	// Position is the 0-based ordinal of the fragment within its document.
	Position int

	// Start is the byte offset of Text within the document content.
	Start int

	// End is the byte offset one past the end of Text.
	End int
}

// Len returns the fragment length in characters.
func (f Fragment) Len() int {
	return len([]rune(f.Text))
}

// IndexEntry pairs a fragment with its embedding vector.
type IndexEntry struct {
	Fragment  Fragment
	Embedding []float32
}

// RetrievedFragment is a fragment returned by a similarity search.
type RetrievedFragment struct {
	Fragment Fragment

	// Score is the cosine similarity to the query vector.
	Score float64

	// Rank is the 1-based position in the result. It doubles as the
	// citation number for the fragment.
	Rank int
}

// RetrievalResult is an ordered sequence of retrieved fragments with
// non-increasing scores.
type RetrievalResult []RetrievedFragment

// Texts returns the raw fragment texts in rank order.
func (r RetrievalResult) Texts() []string {
	texts := make([]string, len(r))
	for i := range r {
		texts[i] = r[i].Fragment.Text
	}
	return texts
}

// Sources returns the fragment sources in rank order.
func (r RetrievalResult) Sources() []string {
	sources := make([]string, len(r))
	for i := range r {
		sources[i] = r[i].Fragment.Source
	}
	return sources
}
