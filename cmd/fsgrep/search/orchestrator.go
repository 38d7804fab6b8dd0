package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"
	log "gopkg.in/inconshreveable/log15.v2"
)

// Result is Search's outcome, enough for the CLI layer to pick an exit code
// per spec §6: 0 if Matched, 1 if not, 2 whenever Search returns an error.
type Result struct {
	Matched bool
	Stats   Stats
}

// Stats is the public snapshot of --stats counters.
type Stats struct {
	FilesScanned uint64
	FilesMatched uint64
	Matches      uint64
	Elapsed      time.Duration
}

// WriteSummary prints the --stats report, grounded on sift's post-search
// summary line.
func (s Stats) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "files scanned: %d\n", s.FilesScanned)
	fmt.Fprintf(w, "files matched: %d\n", s.FilesMatched)
	fmt.Fprintf(w, "matches: %d\n", s.Matches)
	fmt.Fprintf(w, "elapsed: %s\n", s.Elapsed)
}

// Search runs one end-to-end search: validate options, compile the matcher,
// start the Pool, discover files, submit one task per path, drain, and
// report. It is the generalization of the teacher's concurrentFind into the
// orchestrator spec §4.9/§9 calls for: the same "span per call, worker pool,
// single result sink" shape, restructured around a mutex+cond pool instead
// of a zip.File slice and channel fan-out.
func Search(ctx context.Context, opts Options, out io.Writer, logger log.Logger) (Result, error) {
	if logger == nil {
		logger = log.New()
	}
	if err := validate(opts); err != nil {
		return Result{}, err
	}
	opts = opts.normalized()

	searchID := uuid.New().String()
	logger = logger.New("search_id", searchID)

	span, ctx := opentracing.StartSpanFromContext(ctx, "Search")
	ext.Component.Set(span, "fsgrep")
	span.SetTag("term", opts.Term)
	span.SetTag("mode", int(opts.Mode))
	span.SetTag("source", opts.Source.Root)
	var spanErr error
	defer func() {
		if spanErr != nil {
			ext.Error.Set(span, true)
			span.LogFields(otlog.String("err", spanErr.Error()))
		}
		span.Finish()
	}()

	matcher, err := NewMatcher(opts.Mode, opts.Term)
	if err != nil {
		spanErr = err
		return Result{}, wrapError(KindRegex, err, "search: constructing matcher")
	}

	start := time.Now()
	st := newStats()
	snk := newSink(out, logger)
	printer := NewPrinter(opts.Output, opts.ColorsEnabled)
	pool := NewPool(opts.Threads, matcher, logger)

	stopMetrics, err := serveMetrics(opts.MetricsAddr, st, logger)
	if err != nil {
		pool.Close()
		spanErr = err
		return Result{}, wrapError(KindConfig, err, "search: starting metrics listener")
	}
	defer stopMetrics()

	paths, err := discover(ctx, opts.Source, opts.ExcludeGlob, logger)
	if err != nil {
		pool.Close()
		spanErr = err
		return Result{}, wrapError(KindConfig, err, "search: starting discovery")
	}

	var matched int32
	for path := range paths {
		p := path
		_ = pool.Submit(func(wc *WorkerContext) {
			t := &task{
				path:    p,
				opts:    opts,
				sink:    snk,
				printer: printer,
				matched: &matched,
				stats:   st,
				log:     logger,
			}
			t.run(wc)
		})
	}
	pool.Close()

	if !snk.ok() {
		spanErr = errSinkFailed
		return Result{Matched: matched != 0}, wrapError(KindSink, errSinkFailed, "search: output incomplete")
	}

	res := Result{
		Matched: matched != 0,
		Stats: Stats{
			FilesScanned: st.filesScanned.Load(),
			FilesMatched: st.filesMatched.Load(),
			Matches:      st.matches.Load(),
			Elapsed:      time.Since(start),
		},
	}
	span.SetTag("matched", res.Matched)
	return res, nil
}

func validate(opts Options) error {
	if opts.Term == "" {
		return configError("search: term must not be empty")
	}
	if opts.Source.Root == "" {
		return configError("search: source root must not be empty")
	}
	if _, err := os.Stat(opts.Source.Root); err != nil {
		return wrapError(KindConfig, err, "search: root path does not exist")
	}
	return nil
}

type sinkFailedError struct{}

func (sinkFailedError) Error() string { return "search: sink stopped accepting output" }

var errSinkFailed = sinkFailedError{}
