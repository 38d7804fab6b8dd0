package search

import (
	"testing"
)

func spanOf(buf []byte, lines []LineView, line int, m Matcher, maxOffsets int) []Span {
	return m.Match(buf, lines[line], maxOffsets)
}

func TestLiteralMatcherCaseSensitive(t *testing.T) {
	m, err := NewMatcher(CaseSensitive, "needle")
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("a needle in a needle stack")
	lines := splitLines(buf)

	spans := spanOf(buf, lines, 0, m, 10)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(spans), spans)
	}
	if spans[0] != (Span{Start: 2, End: 8}) {
		t.Errorf("span 0 = %+v, want {2 8}", spans[0])
	}
	if spans[1] != (Span{Start: 14, End: 20}) {
		t.Errorf("span 1 = %+v, want {14 20}", spans[1])
	}
}

func TestLiteralMatcherNoMatch(t *testing.T) {
	m, err := NewMatcher(CaseSensitive, "zzz")
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("nothing here")
	lines := splitLines(buf)
	if got := spanOf(buf, lines, 0, m, 10); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestLiteralMatcherCaseInsensitive(t *testing.T) {
	m, err := NewMatcher(CaseInsensitive, "Needle")
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("a NEEDLE and a needle")
	lines := splitLines(buf)
	spans := spanOf(buf, lines, 0, m, 10)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(spans), spans)
	}
}

func TestLiteralMatcherSkipsPastSelfOverlappingMatch(t *testing.T) {
	m, err := NewMatcher(CaseSensitive, "ana")
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("banana")
	lines := splitLines(buf)
	spans := spanOf(buf, lines, 0, m, 10)
	want := []Span{{Start: 1, End: 4}}
	if len(spans) != len(want) {
		t.Fatalf("got %+v, want %+v (non-overlapping occurrences only)", spans, want)
	}
	if spans[0] != want[0] {
		t.Errorf("got %+v, want %+v", spans[0], want[0])
	}
}

func TestLiteralMatcherMaxOffsets(t *testing.T) {
	m, err := NewMatcher(CaseSensitive, "a")
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("aaaaaaaaaa")
	lines := splitLines(buf)
	spans := spanOf(buf, lines, 0, m, 3)
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
}

func TestRegexMatcher(t *testing.T) {
	m, err := NewMatcher(Regex, `\d+`)
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("port 8080 or 443")
	lines := splitLines(buf)
	spans := spanOf(buf, lines, 0, m, 10)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(spans), spans)
	}
	if string(buf[spans[0].Start:spans[0].End]) != "8080" {
		t.Errorf("span 0 = %q, want 8080", buf[spans[0].Start:spans[0].End])
	}
	if string(buf[spans[1].Start:spans[1].End]) != "443" {
		t.Errorf("span 1 = %q, want 443", buf[spans[1].Start:spans[1].End])
	}
}

func TestRegexMatcherSkipsZeroLength(t *testing.T) {
	m, err := NewMatcher(Regex, `x*`)
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("abc")
	lines := splitLines(buf)
	if got := spanOf(buf, lines, 0, m, 10); len(got) != 0 {
		t.Errorf("got %+v, want no spans", got)
	}
}

func TestNewMatcherRejectsEmptyNeedle(t *testing.T) {
	if _, err := NewMatcher(CaseSensitive, ""); err == nil {
		t.Error("expected an error for an empty needle")
	}
}

func TestNewMatcherRejectsBadRegex(t *testing.T) {
	if _, err := NewMatcher(Regex, "("); err == nil {
		t.Error("expected an error for an invalid regex")
	}
}

func TestMatcherCopyIsIndependent(t *testing.T) {
	m, err := NewMatcher(CaseInsensitive, "needle")
	if err != nil {
		t.Fatal(err)
	}
	a := m.Copy()
	b := m.Copy()

	bufA := []byte("NEEDLE one")
	bufB := []byte("needle two")
	linesA := splitLines(bufA)
	linesB := splitLines(bufB)

	spansA := a.Match(bufA, linesA[0], 10)
	spansB := b.Match(bufB, linesB[0], 10)
	if len(spansA) != 1 || len(spansB) != 1 {
		t.Fatalf("got spansA=%+v spansB=%+v, want one span each", spansA, spansB)
	}
}
