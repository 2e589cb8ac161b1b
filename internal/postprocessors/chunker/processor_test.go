package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

func mustNew(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

// assertTiling checks every fragment is an exact substring and that the
// fragments cover the document without gaps.
func assertTiling(t *testing.T, content string, fragments []domain.Fragment, chunkSize int) {
	t.Helper()

	if content == "" {
		if len(fragments) != 0 {
			t.Fatalf("expected no fragments for empty content, got %d", len(fragments))
		}
		return
	}
	if len(fragments) == 0 {
		t.Fatal("expected fragments")
	}

	var rebuilt strings.Builder
	prevEnd := 0
	for i, f := range fragments {
		if f.Text != content[f.Start:f.End] {
			t.Fatalf("fragment %d text is not content[%d:%d]", i, f.Start, f.End)
		}
		if n := utf8.RuneCountInString(f.Text); n > chunkSize {
			t.Fatalf("fragment %d has %d characters, limit %d", i, n, chunkSize)
		}
		if f.Position != i {
			t.Errorf("fragment %d has position %d", i, f.Position)
		}
		if i == 0 && f.Start != 0 {
			t.Fatalf("first fragment starts at %d", f.Start)
		}
		if f.Start > prevEnd {
			t.Fatalf("gap between %d and %d", prevEnd, f.Start)
		}
		if f.End <= prevEnd {
			t.Fatalf("fragment %d adds no new content", i)
		}
		rebuilt.WriteString(content[prevEnd:f.End])
		prevEnd = f.End
	}

	if rebuilt.String() != content {
		t.Fatal("unique spans do not reconstruct the document")
	}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := mustNew(t)
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
		if p.overlap != 50 {
			t.Errorf("expected overlap 50, got %d", p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := mustNew(t, WithChunkSize(800))
		if p.ChunkSize() != 800 {
			t.Errorf("expected chunkSize 800, got %d", p.ChunkSize())
		}
	})

	t.Run("overlap not smaller than chunk size", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := mustNew(t, WithChunkSize(0), WithOverlap(-1))
		if p.ChunkSize() != DefaultChunkSize || p.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected defaults, got %d/%d", p.ChunkSize(), p.Overlap())
		}
	})

	t.Run("separators get a hard cut fallback", func(t *testing.T) {
		p := mustNew(t, WithSeparators(". "))
		if got := p.separators[len(p.separators)-1]; got != "" {
			t.Errorf("expected empty separator last, got %q", got)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if mustNew(t).Name() != "chunker" {
		t.Error("expected name 'chunker'")
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p := mustNew(t)
	fragments, err := p.Process(context.Background(), &domain.Document{Source: "a.txt"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 0 {
		t.Errorf("expected 0 fragments, got %d", len(fragments))
	}
}

func TestProcessor_Process_NilDocument(t *testing.T) {
	_, err := mustNew(t).Process(context.Background(), nil, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	p := mustNew(t, WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{Source: "notes/a.txt", Content: "Short content."}

	fragments, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if fragments[0].Text != doc.Content {
		t.Errorf("expected whole content, got %q", fragments[0].Text)
	}
	if fragments[0].Source != "notes/a.txt" {
		t.Errorf("expected source to be carried, got %q", fragments[0].Source)
	}
}

func TestProcessor_Process_PrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("a", 30)
	para2 := strings.Repeat("b", 30)
	content := para1 + "\n\n" + para2

	p := mustNew(t, WithChunkSize(40), WithOverlap(5))
	fragments, err := p.Process(context.Background(), &domain.Document{Content: content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if fragments[0].Text != para1+"\n\n" {
		t.Errorf("expected first fragment to end at the paragraph break, got %q", fragments[0].Text)
	}
	if fragments[1].Text != para2 {
		t.Errorf("expected second fragment to be the second paragraph, got %q", fragments[1].Text)
	}
	assertTiling(t, content, fragments, 40)
}

func TestProcessor_Process_OverlapBetweenWords(t *testing.T) {
	words := make([]string, 60)
	for i := range words {
		words[i] = "palabra"
	}
	content := strings.Join(words, " ")

	p := mustNew(t, WithChunkSize(50), WithOverlap(16))
	fragments, err := p.Process(context.Background(), &domain.Document{Content: content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertTiling(t, content, fragments, 50)
	for i := 1; i < len(fragments); i++ {
		shared := fragments[i-1].End - fragments[i].Start
		if shared <= 0 {
			t.Errorf("fragments %d and %d do not overlap", i-1, i)
		}
		if shared > 16 {
			t.Errorf("fragments %d and %d overlap by %d characters", i-1, i, shared)
		}
	}
}

func TestProcessor_Process_HardCutsLongUnits(t *testing.T) {
	content := strings.Repeat("x", 1234)

	p := mustNew(t, WithChunkSize(500), WithOverlap(50))
	fragments, err := p.Process(context.Background(), &domain.Document{Content: content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertTiling(t, content, fragments, 500)
	if len(fragments) != 3 {
		t.Errorf("expected 3 fragments, got %d", len(fragments))
	}
}

func TestProcessor_Process_MultibyteRunes(t *testing.T) {
	content := strings.Repeat("ñandú ", 100) + strings.Repeat("é", 700)

	p := mustNew(t, WithChunkSize(120), WithOverlap(12))
	fragments, err := p.Process(context.Background(), &domain.Document{Content: content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertTiling(t, content, fragments, 120)
	for i, f := range fragments {
		if !utf8.ValidString(f.Text) {
			t.Fatalf("fragment %d cuts a rune", i)
		}
	}
}

func TestProcessor_Process_CoverageDefaults(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("El estudio evaluó la eficacia del tratamiento en pacientes adultos. ")
		if i%3 == 0 {
			b.WriteString("\n")
		}
		if i%7 == 0 {
			b.WriteString("\n\n")
		}
	}
	content := b.String()

	p := mustNew(t)
	fragments, err := p.Process(context.Background(), &domain.Document{Content: content}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertTiling(t, content, fragments, 500)
}

func TestProcessor_Process_Deterministic(t *testing.T) {
	content := strings.Repeat("Primera oración del documento. Segunda oración.\n", 50)
	doc := &domain.Document{Source: "informe.pdf", Content: content}

	p := mustNew(t)
	first, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("fragment count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("fragment %d differs between runs", i)
		}
	}
}

func TestProcessor_Process_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mustNew(t).Process(ctx, &domain.Document{Content: "text"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFragmentID(t *testing.T) {
	a := FragmentID("a.pdf", 0, 0, 10)
	if a != FragmentID("a.pdf", 0, 0, 10) {
		t.Error("expected stable IDs")
	}
	if a == FragmentID("b.pdf", 0, 0, 10) {
		t.Error("expected source to change the ID")
	}
	if a == FragmentID("a.pdf", 1, 0, 10) {
		t.Error("expected position to change the ID")
	}
}

func TestSplitDocuments(t *testing.T) {
	docs := []*domain.Document{
		{Source: "a.txt", Content: strings.Repeat("uno dos tres ", 80)},
		{Source: "b.txt", Content: "corto"},
	}

	fragments, err := SplitDocuments(context.Background(), docs, 500, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fromA, fromB int
	for _, f := range fragments {
		switch f.Source {
		case "a.txt":
			fromA++
		case "b.txt":
			fromB++
		}
	}
	if fromA < 2 || fromB != 1 {
		t.Errorf("unexpected distribution: a=%d b=%d", fromA, fromB)
	}

	if _, err := SplitDocuments(context.Background(), docs, 50, 50); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for overlap == size, got %v", err)
	}
	if _, err := SplitDocuments(context.Background(), docs, 0, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero size, got %v", err)
	}
}
