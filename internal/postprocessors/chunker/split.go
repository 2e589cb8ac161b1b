package chunker

import (
	"strings"
	"unicode/utf8"
)

// span is a half-open byte range of the document content.
type span struct {
	start int
	end   int
}

// split breaks content[start:end] into contiguous pieces of at most
// chunkSize characters. Each separator stays attached to the piece before it,
// so the pieces tile the range exactly.
func (p *Processor) split(content string, start, end int, separators []string) []span {
	text := content[start:end]
	if utf8.RuneCountInString(text) <= p.chunkSize {
		return []span{{start, end}}
	}

	sep, rest := "", []string(nil)
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, separators[i+1:]
			break
		}
	}

	if sep == "" {
		// Hard cut into single characters; merge regroups them.
		pieces := make([]span, 0, utf8.RuneCountInString(text))
		for offset := range text {
			pieces = append(pieces, span{start + offset, 0})
		}
		for i := range pieces {
			if i+1 < len(pieces) {
				pieces[i].end = pieces[i+1].start
			} else {
				pieces[i].end = end
			}
		}
		return pieces
	}

	var pieces []span
	cursor := start
	for cursor < end {
		idx := strings.Index(content[cursor:end], sep)
		next := end
		if idx >= 0 {
			next = cursor + idx + len(sep)
		}
		if utf8.RuneCountInString(content[cursor:next]) <= p.chunkSize {
			pieces = append(pieces, span{cursor, next})
		} else {
			pieces = append(pieces, p.split(content, cursor, next, rest)...)
		}
		cursor = next
	}
	return pieces
}

// merge groups consecutive pieces into fragments of at most chunkSize
// characters. Each fragment after the first starts with the trailing pieces
// of the previous one whose combined length is at most overlap.
func (p *Processor) merge(content string, pieces []span) []span {
	var (
		out    []span
		window []span
		total  int
	)

	size := func(s span) int {
		return utf8.RuneCountInString(content[s.start:s.end])
	}

	for _, piece := range pieces {
		n := size(piece)
		if total+n > p.chunkSize && len(window) > 0 {
			out = append(out, span{window[0].start, window[len(window)-1].end})
			for len(window) > 0 && (total > p.overlap || total+n > p.chunkSize) {
				total -= size(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}

	if len(window) > 0 {
		last := span{window[0].start, window[len(window)-1].end}
		if len(out) == 0 || last.end > out[len(out)-1].end {
			out = append(out, last)
		}
	}

	return out
}
