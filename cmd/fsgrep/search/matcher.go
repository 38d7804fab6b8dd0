package search

import (
	"regexp"

	"github.com/pkg/errors"
)

// Matcher applies one search strategy to a single line and returns every
// non-overlapping hit span, sorted ascending, bounded by the line's length.
// This mirrors the three strategies spec §4.3 names, generalized from the
// teacher's single-strategy readerGrep (cmd/searcher/search/matcher.go)
// into a tagged-variant interface per spec §9's re-architecture note.
//
// A Matcher is not safe for concurrent use directly; each worker gets its
// own copy (see Copy), the same discipline the teacher applies to readerGrep
// before handing it to a goroutine.
type Matcher interface {
	// Match scans line (within buf) for the needle and returns every hit,
	// capped at maxOffsets spans.
	Match(buf []byte, line LineView, maxOffsets int) []Span
	// Copy returns an independent copy safe to use from another goroutine.
	Copy() Matcher
}

// NewMatcher compiles a Matcher for the given mode and needle. For Regex
// mode the expression is compiled once here and shared read-only across
// worker copies, per spec §4.3 and §4.7 step 2.
func NewMatcher(mode Mode, needle string) (Matcher, error) {
	if needle == "" {
		return nil, errors.New("search: empty needle")
	}
	switch mode {
	case CaseSensitive:
		return &literalMatcher{needle: []byte(needle)}, nil
	case CaseInsensitive:
		return &literalMatcher{needle: []byte(needle), ignoreCase: true}, nil
	case Regex:
		re, err := regexp.Compile(needle)
		if err != nil {
			return nil, errors.Wrap(err, "search: compiling regex")
		}
		return &regexMatcher{re: re}, nil
	default:
		return nil, errors.Errorf("search: unknown mode %d", mode)
	}
}

// literalMatcher implements both CaseSensitive and CaseInsensitive via a
// Boyer-Moore-Horspool scan, per spec §4.3. ignoreCase folds both the needle
// (once, at construction) and each line (into a reusable scratch buffer) via
// ASCII case folding, the same "lowercase the input instead of trusting the
// regex engine" trick the teacher's readerGrep.Find uses for its ignoreCase
// path.
type literalMatcher struct {
	needle     []byte
	ignoreCase bool

	// cmpNeedle is the needle actually compared against: needle itself
	// for CaseSensitive, or its ASCII-folded form for CaseInsensitive.
	// Computed once in buildSkip.
	cmpNeedle []byte
	// foldBuf is reused between lines to avoid reallocating; only used
	// when ignoreCase is set. Owned exclusively by one worker's copy.
	foldBuf []byte
	// skip is the Boyer-Moore-Horspool bad-character table, built once
	// per matcher (the needle is frozen for the run).
	skip  [256]int
	built bool
}

func (m *literalMatcher) buildSkip() {
	if m.built {
		return
	}
	m.cmpNeedle = m.needle
	if m.ignoreCase {
		m.cmpNeedle = foldNeedle(m.needle)
	}
	nlen := len(m.cmpNeedle)
	for i := range m.skip {
		m.skip[i] = nlen
	}
	for i := 0; i < nlen-1; i++ {
		m.skip[m.cmpNeedle[i]] = nlen - 1 - i
	}
	m.built = true
}

func (m *literalMatcher) Copy() Matcher {
	cp := &literalMatcher{needle: m.needle, ignoreCase: m.ignoreCase}
	cp.buildSkip()
	return cp
}

// Match runs a Horspool scan over line. When ignoreCase is set, both the
// needle (at construction) and the haystack (into foldBuf, here) are folded
// under ASCII case mapping (0x41-0x5A -> 0x61-0x7A); non-ASCII bytes compare
// raw, per spec §4.3.
func (m *literalMatcher) Match(buf []byte, line LineView, maxOffsets int) []Span {
	m.buildSkip()
	needle := m.cmpNeedle
	nlen := len(needle)
	if nlen == 0 || line.Len < nlen {
		return nil
	}

	hay := line.Bytes(buf)
	if m.ignoreCase {
		if cap(m.foldBuf) < len(hay) {
			m.foldBuf = make([]byte, len(hay))
		}
		foldBuf := m.foldBuf[:len(hay)]
		foldASCII(foldBuf, hay)
		hay = foldBuf
	}

	var spans []Span
	pos := 0
	for pos+nlen <= len(hay) {
		if len(spans) >= maxOffsets {
			break
		}
		last := nlen - 1
		if hay[pos+last] == needle[last] && bytesEqual(hay[pos:pos+last], needle[:last]) {
			spans = append(spans, Span{Start: pos, End: pos + nlen})
			pos += nlen
			continue
		}
		pos += m.skip[hay[pos+last]]
	}
	return spans
}

// foldNeedle returns needle lowered under ASCII folding in a new slice.
// literalMatcher stores the needle verbatim and buildSkip calls this once
// per matcher, caching the result in cmpNeedle.
func foldNeedle(needle []byte) []byte {
	out := make([]byte, len(needle))
	foldASCII(out, needle)
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// foldASCII lowers src into dst under ASCII case folding. dst must be at
// least len(src) long. This is the teacher's bytesToLowerASCII
// (cmd/searcher/search/matcher.go), generalized to fold an arbitrary slice
// instead of only a whole-file buffer.
func foldASCII(dst, src []byte) {
	dst = dst[:len(src)]
	for i := range src {
		dst[i] = lowerTable[src[i]]
	}
}

// lowerTable is the teacher's own ASCII-fold lookup table, carried over
// byte-for-byte from cmd/searcher/search/matcher.go.
var lowerTable = [256]byte{
	0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9, 0xa, 0xb, 0xc, 0xd, 0xe, 0xf,
	0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f,
	0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f,
	0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39, 0x3a, 0x3b, 0x3c, 0x3d, 0x3e, 0x3f,
	0x40, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69, 0x6a, 0x6b, 0x6c, 0x6d, 0x6e, 0x6f,
	0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79, 0x7a, 0x5b, 0x5c, 0x5d, 0x5e, 0x5f,
	0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69, 0x6a, 0x6b, 0x6c, 0x6d, 0x6e, 0x6f,
	0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79, 0x7a, 0x7b, 0x7c, 0x7d, 0x7e, 0x7f,
	0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89, 0x8a, 0x8b, 0x8c, 0x8d, 0x8e, 0x8f,
	0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98, 0x99, 0x9a, 0x9b, 0x9c, 0x9d, 0x9e, 0x9f,
	0xa0, 0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7, 0xa8, 0xa9, 0xaa, 0xab, 0xac, 0xad, 0xae, 0xaf,
	0xb0, 0xb1, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6, 0xb7, 0xb8, 0xb9, 0xba, 0xbb, 0xbc, 0xbd, 0xbe, 0xbf,
	0xc0, 0xc1, 0xc2, 0xc3, 0xc4, 0xc5, 0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xcb, 0xcc, 0xcd, 0xce, 0xcf,
	0xd0, 0xd1, 0xd2, 0xd3, 0xd4, 0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda, 0xdb, 0xdc, 0xdd, 0xde, 0xdf,
	0xe0, 0xe1, 0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea, 0xeb, 0xec, 0xed, 0xee, 0xef,
	0xf0, 0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8, 0xf9, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff,
}

// regexMatcher implements Regex mode. The compiled regexp is read-only and
// shared; Copy calls (*regexp.Regexp).Copy so each worker gets its own
// internal match-state, exactly as the teacher's readerGrep.Copy does.
type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) Copy() Matcher {
	return &regexMatcher{re: m.re.Copy()}
}

// Match enumerates all non-overlapping matches on the line, skipping
// zero-length matches to avoid looping forever, per spec §4.3.
func (m *regexMatcher) Match(buf []byte, line LineView, maxOffsets int) []Span {
	hay := line.Bytes(buf)
	locs := m.re.FindAllIndex(hay, -1)
	if locs == nil {
		return nil
	}
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		if len(spans) >= maxOffsets {
			break
		}
		if loc[0] == loc[1] {
			continue
		}
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans
}
