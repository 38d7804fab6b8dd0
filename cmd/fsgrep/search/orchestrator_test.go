package search

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	log "gopkg.in/inconshreveable/log15.v2"
)

func writeFile(t *testing.T, dir, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func runSearch(t *testing.T, opts Options) (string, Result) {
	t.Helper()
	var out bytes.Buffer
	res, err := Search(context.Background(), opts, &out, log.New())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	return out.String(), res
}

// S1 — single literal hit.
func TestScenarioSingleLiteralHit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("hello\nworld\n"))

	out, res := runSearch(t, Options{
		Term:   "world",
		Mode:   CaseSensitive,
		Source: Source{Kind: AllFiles, Root: dir},
		Output: Piped,
	})
	if !res.Matched {
		t.Error("expected a match")
	}
	if out != "a.txt:2:world\n" && out != filepath.Join(dir, "a.txt")+":2:world\n" {
		t.Errorf("got %q", out)
	}
}

// S2 — case-insensitive, multiple hits on one line.
func TestScenarioCaseInsensitiveMultipleHits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", []byte("Foo foo FOO\n"))

	m, err := NewMatcher(CaseInsensitive, "foo")
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte("Foo foo FOO\n")
	lines := splitLines(buf)
	spans := m.Match(buf, lines[0], 10)
	want := []Span{{0, 3}, {4, 7}, {8, 11}}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans, want %d: %+v", len(spans), len(want), spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, spans[i], want[i])
		}
	}

	out, res := runSearch(t, Options{
		Term:   "foo",
		Mode:   CaseInsensitive,
		Source: Source{Kind: AllFiles, Root: dir},
		Output: Piped,
	})
	if !res.Matched {
		t.Error("expected a match")
	}
	if !strings.Contains(out, "b.txt:1:Foo foo FOO\n") {
		t.Errorf("got %q", out)
	}
}

// S3 — regex across two files.
func TestScenarioRegexAcrossTwoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.c", []byte("int main(){}\n"))
	writeFile(t, dir, "y.c", []byte("void f(){}\n"))

	out, res := runSearch(t, Options{
		Term:   `\w+\s*\(`,
		Mode:   Regex,
		Source: Source{Kind: AllFiles, Root: dir},
		Output: Piped,
	})
	if !res.Matched {
		t.Error("expected a match")
	}
	if !strings.Contains(out, "x.c:1:int main(){}\n") {
		t.Errorf("missing x.c line, got %q", out)
	}
	if !strings.Contains(out, "y.c:1:void f(){}\n") {
		t.Errorf("missing y.c line, got %q", out)
	}
}

// S4 — binary skip.
func TestScenarioBinarySkip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.pdf", []byte("%PDF-1.4\nneedle\n"))

	out, res := runSearch(t, Options{
		Term:   "needle",
		Mode:   CaseSensitive,
		Source: Source{Kind: AllFiles, Root: dir},
		Output: Piped,
	})
	if res.Matched {
		t.Error("expected no match in a binary-sniffed file")
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

// S5 — git mode skips a binary file `git ls-files` still reports.
func TestScenarioGitModeSkipsBinary(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	writeFile(t, dir, "src/a.cpp", []byte("int x = 1;\n"))
	writeFile(t, dir, "build/tmp.o", append([]byte("junk"), 0, 0))

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.email", "t@example.com")
	run("config", "user.name", "t")
	run("add", "-A")
	run("commit", "-q", "-m", "init")

	out, res := runSearch(t, Options{
		Term:   "int",
		Mode:   CaseSensitive,
		Source: Source{Kind: GitFiles, Root: dir},
		Output: Piped,
	})
	if !res.Matched {
		t.Error("expected a match in src/a.cpp")
	}
	if strings.Contains(out, "tmp.o") {
		t.Errorf("binary file should have been skipped, got %q", out)
	}
}

// S6 — CRLF file, no carriage return in output.
func TestScenarioCRLFFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w.txt", []byte("alpha\r\nbeta\r\n"))

	out, res := runSearch(t, Options{
		Term:   "alpha",
		Mode:   CaseSensitive,
		Source: Source{Kind: AllFiles, Root: dir},
		Output: Piped,
	})
	if !res.Matched {
		t.Error("expected a match")
	}
	if strings.Contains(out, "\r") {
		t.Errorf("output retained a carriage return: %q", out)
	}
	if !strings.Contains(out, "w.txt:1:alpha\n") {
		t.Errorf("got %q", out)
	}
}

func TestSearchRejectsEmptyTerm(t *testing.T) {
	dir := t.TempDir()
	_, err := Search(context.Background(), Options{
		Term:   "",
		Source: Source{Kind: AllFiles, Root: dir},
	}, &bytes.Buffer{}, log.New())
	if err == nil {
		t.Error("expected an error for an empty term")
	}
}

func TestSearchRejectsMissingRoot(t *testing.T) {
	_, err := Search(context.Background(), Options{
		Term:   "needle",
		Source: Source{Kind: AllFiles, Root: filepath.Join(t.TempDir(), "does-not-exist")},
	}, &bytes.Buffer{}, log.New())
	if err == nil {
		t.Fatal("expected an error for a nonexistent root")
	}
	var se *Error
	if !stderrors.As(err, &se) || se.Kind != KindConfig {
		t.Errorf("got %v, want a KindConfig *Error", err)
	}
}

func TestSearchRejectsBadRegex(t *testing.T) {
	dir := t.TempDir()
	_, err := Search(context.Background(), Options{
		Term:   "(",
		Mode:   Regex,
		Source: Source{Kind: AllFiles, Root: dir},
	}, &bytes.Buffer{}, log.New())
	if err == nil {
		t.Error("expected an error for an invalid regex")
	}
}
