package search

import "runtime"

// Mode selects how a Matcher compares the needle against a line.
type Mode int

const (
	// CaseSensitive does a byte-exact Boyer-Moore-Horspool scan.
	CaseSensitive Mode = iota
	// CaseInsensitive folds both needle and haystack under ASCII case
	// folding before comparing.
	CaseInsensitive
	// Regex compiles the needle once as a regular expression.
	Regex
)

// SourceKind selects how candidate file paths are discovered.
type SourceKind int

const (
	// AllFiles recursively walks the root directory.
	AllFiles SourceKind = iota
	// GitFiles consumes `git ls-files` run in the root directory.
	GitFiles
)

// Source pairs a discovery strategy with the root it operates on.
type Source struct {
	Kind SourceKind
	Root string
}

// OutputFormat selects how FileResults are rendered.
type OutputFormat int

const (
	// Pretty prints colorized, human-readable blocks (the default).
	Pretty OutputFormat = iota
	// Piped prints one line per match: path:line:text.
	Piped
	// HTML prints the same content as Pretty, wrapped in HTML tags.
	HTML
)

// defaultMaxThreads bounds the default worker count the way the teacher's own
// numWorkers constant bounds cmd/searcher/search's concurrentFind, except here
// it is derived from the host instead of hardcoded, per spec §5.
const defaultMaxThreads = 8

// Options is the immutable configuration for one Search invocation. Once
// constructed it is shared read-only by every worker.
type Options struct {
	// Term is the search needle. Must be non-empty.
	Term string
	// Mode selects the matching strategy.
	Mode Mode
	// Source selects file discovery.
	Source Source
	// Output selects the printer.
	Output OutputFormat
	// Threads is the target worker count. 0 or less means DefaultThreads().
	Threads int
	// ColorsEnabled toggles ANSI/Windows colorization in Pretty output.
	ColorsEnabled bool
	// ExcludeGlob, if non-empty, is a glob pattern matched against
	// discovered paths; matching paths are skipped before a task is
	// submitted. Supplemental to the distilled spec (see SPEC_FULL.md).
	ExcludeGlob string
	// MaxMatchesPerFile caps the number of Match records kept per file,
	// mirroring the teacher's maxLineMatches. 0 means use the default.
	MaxMatchesPerFile int
	// MaxOffsetsPerLine caps the number of hit spans kept per line,
	// mirroring the teacher's maxOffsets. 0 means use the default.
	MaxOffsetsPerLine int
	// MetricsAddr, if non-empty, serves the run's prometheus counters at
	// http://<MetricsAddr>/metrics for the duration of the search.
	MetricsAddr string
}

// DefaultThreads returns min(hardware_parallelism, 8), the default worker
// count required by spec §5 when the caller does not set Options.Threads.
func DefaultThreads() int {
	n := runtime.GOMAXPROCS(0)
	if n > defaultMaxThreads {
		n = defaultMaxThreads
	}
	if n < 1 {
		n = 1
	}
	return n
}

// normalized returns a copy of o with zero-valued fields replaced by their
// defaults. It does not validate o; validate does that.
func (o Options) normalized() Options {
	if o.Threads <= 0 {
		o.Threads = DefaultThreads()
	}
	if o.MaxMatchesPerFile <= 0 {
		o.MaxMatchesPerFile = maxLineMatches
	}
	if o.MaxOffsetsPerLine <= 0 {
		o.MaxOffsetsPerLine = maxOffsets
	}
	return o
}
