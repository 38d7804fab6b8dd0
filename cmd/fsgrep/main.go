// Command fsgrep searches a file tree's text content for a literal string or
// regular expression, reporting one block of matching lines per file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"go.uber.org/automaxprocs/maxprocs"
	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/sourcegraph/fsgrep/cmd/fsgrep/search"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("fsgrep", flag.ContinueOnError)
	var (
		path              = fs.String("path", ".", "root directory to search")
		git               = fs.Bool("git", false, "search only files tracked by git (git ls-files)")
		ignoreCase        = fs.Bool("i", false, "case-insensitive search")
		useRegex          = fs.Bool("e", false, "treat the search term as a regular expression")
		html              = fs.Bool("html", false, "print results as HTML")
		pipe              = fs.Bool("pipe", false, "print results as path:line:text, one per line")
		threads           = fs.Int("threads", 0, "number of worker goroutines (0: auto)")
		noColor           = fs.Bool("no-color", false, "disable colorized output")
		exclude           = fs.String("exclude", "", "glob pattern of paths to exclude")
		stats             = fs.Bool("stats", false, "print a summary to stderr after searching")
		maxMatchesPerFile = fs.Int("max-matches-per-file", 0, "cap matches reported per file (0: default)")
		metricsAddr       = fs.String("metrics-addr", "", "serve prometheus counters at this address (e.g. :9090) while searching; empty disables it")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "fsgrep: exactly one search term is required")
		return 2
	}
	term := fs.Arg(0)

	loadDotenv(*path)
	// Errors here mean no cgroup quota was found; DefaultThreads then falls
	// back to runtime.GOMAXPROCS(0) unchanged.
	_, _ = maxprocs.Set()

	logger := log.New("cmd", "fsgrep")
	logger.SetHandler(log.LvlFilterHandler(log.LvlWarn, log.StreamHandler(os.Stderr, log.LogfmtFormat())))

	mode := search.CaseSensitive
	switch {
	case *useRegex:
		mode = search.Regex
	case *ignoreCase:
		mode = search.CaseInsensitive
	}

	output := envOutput()
	switch {
	case *html:
		output = search.HTML
	case *pipe:
		output = search.Piped
	}

	sourceKind := search.AllFiles
	if *git {
		sourceKind = search.GitFiles
	}

	n := *threads
	if n == 0 {
		n = envThreads()
	}

	colorsEnabled := !*noColor && !envNoColor() && output == search.Pretty

	opts := search.Options{
		Term:              term,
		Mode:              mode,
		Source:            search.Source{Kind: sourceKind, Root: *path},
		Output:            output,
		Threads:           n,
		ColorsEnabled:     colorsEnabled,
		ExcludeGlob:       *exclude,
		MaxMatchesPerFile: *maxMatchesPerFile,
		MetricsAddr:       *metricsAddr,
	}

	stdout := colorable.NewColorableStdout()
	result, err := search.Search(context.Background(), opts, stdout, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fsgrep:", err)
		return 2
	}

	if *stats {
		result.Stats.WriteSummary(os.Stderr)
	}

	if result.Matched {
		return 0
	}
	return 1
}
