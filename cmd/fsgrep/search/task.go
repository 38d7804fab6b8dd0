package search

import (
	"sync/atomic"

	log "gopkg.in/inconshreveable/log15.v2"
)

// task is one file's worth of work submitted to the Pool. It mirrors the
// teacher's per-zip.File closure inside concurrentFind: ingest, scan every
// line, format, hand off to the sink. Exactly one task runs per discovered
// path (spec §4.4).
type task struct {
	path    string
	opts    Options
	sink    *sink
	printer Printer
	matched *int32 // atomic flag, set non-zero on the first match across all tasks
	stats   *stats
	log     log.Logger
}

func (t *task) run(ctx *WorkerContext) {
	fv, oversized := readFile(t.path, ctx.Buf)
	t.stats.filesScanned.Add(1)

	if oversized {
		t.log.Warn("search: skipping file larger than the size limit", "path", t.path)
	}
	if fv.empty() {
		return
	}

	data := fv.Data
	matches := t.scan(data, fv.Lines, ctx.Matcher)
	if len(matches) == 0 {
		return
	}

	atomic.StoreInt32(t.matched, 1)
	t.stats.filesMatched.Add(1)
	var spanCount uint64
	for _, m := range matches {
		spanCount += uint64(len(m.Spans))
	}
	t.stats.matches.Add(spanCount)

	block := t.printer.Format(data, FileResult{Path: t.path, Matches: matches})
	t.sink.write(block)
}

// scan applies matcher to every line of a file already split into lines,
// stopping at opts.MaxMatchesPerFile matches, per spec §4.3/§4.4 and the
// teacher's own maxLineMatches bound.
func (t *task) scan(data []byte, lines []LineView, matcher Matcher) []Match {
	var matches []Match
	for i, line := range lines {
		if len(matches) >= t.opts.MaxMatchesPerFile {
			break
		}
		spans := matcher.Match(data, line, t.opts.MaxOffsetsPerLine)
		if len(spans) == 0 {
			continue
		}
		matches = append(matches, Match{
			LineNumber: i + 1,
			Line:       line,
			Spans:      spans,
		})
	}
	return matches
}
