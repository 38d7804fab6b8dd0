package search

import (
	"bufio"
	"context"
	"os/exec"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	log "gopkg.in/inconshreveable/log15.v2"
)

// discover streams candidate file paths for source into paths, closing it
// when done. It is the generalized form of spec §4.6's two discovery
// strategies (C6), implemented as a single function selecting on
// source.Kind rather than two unrelated entry points, since both strategies
// share the same "stream paths on a channel, let the orchestrator submit as
// they arrive" shape.
//
// discover never blocks the orchestrator on a slow tree: paths are streamed,
// not collected, matching spec §4.4's "discovery and scanning overlap"
// requirement.
func discover(ctx context.Context, source Source, excludeGlob string, logger log.Logger) (<-chan string, error) {
	var exclude glob.Glob
	if excludeGlob != "" {
		g, err := glob.Compile(excludeGlob)
		if err != nil {
			return nil, errors.Wrapf(err, "search: compiling --exclude glob %q", excludeGlob)
		}
		exclude = g
	}

	paths := make(chan string, 64)

	switch source.Kind {
	case GitFiles:
		go gitFiles(ctx, source.Root, exclude, paths, logger)
	default:
		go allFiles(ctx, source.Root, exclude, paths, logger)
	}
	return paths, nil
}

// allFiles recursively walks root, skipping ., .., and .git, following no
// symlinks, and submitting only regular files — spec §4.6's AllFiles
// strategy. It uses godirwalk instead of filepath.Walk for the same reason
// the teacher reaches for low-allocation directory walking in its own
// indexing paths: one syscall per entry instead of an extra Lstat.
func allFiles(ctx context.Context, root string, exclude glob.Glob, out chan<- string, logger log.Logger) {
	defer close(out)

	var walkErrs *multierror.Error
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			name := de.Name()
			if de.IsDir() {
				if name == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !de.ModeType().IsRegular() {
				return nil
			}
			if exclude != nil && exclude.Match(path) {
				return nil
			}
			select {
			case out <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			walkErrs = multierror.Append(walkErrs, errors.Wrapf(err, "walking %s", path))
			return godirwalk.SkipNode
		},
	})
	if err != nil && err != context.Canceled {
		walkErrs = multierror.Append(walkErrs, err)
	}
	if walkErrs != nil && len(walkErrs.Errors) > 0 {
		logger.Warn("search: errors during directory walk", "count", len(walkErrs.Errors), "err", walkErrs)
	}
}

// gitFiles submits every path `git ls-files` reports inside root, spec
// §4.6's GitFiles strategy. A failure to start or run git degrades to an
// empty (or, if git fails midway, partial) result set and is logged as a
// warning; it is not returned as an error from Search.
func gitFiles(ctx context.Context, root string, exclude glob.Glob, out chan<- string, logger log.Logger) {
	defer close(out)

	cmd := exec.CommandContext(ctx, "git", "ls-files")
	cmd.Dir = root

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logger.Warn("search: starting git ls-files failed", "err", err)
		return
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("search: starting git ls-files failed", "err", err)
		return
	}

	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		rel := sc.Text()
		if rel == "" {
			continue
		}
		path := filepath.Join(root, rel)
		if exclude != nil && exclude.Match(path) {
			continue
		}
		select {
		case out <- path:
		case <-ctx.Done():
			_ = cmd.Wait()
			return
		}
	}
	if err := sc.Err(); err != nil {
		logger.Warn("search: reading git ls-files output failed", "err", err)
	}
	if err := cmd.Wait(); err != nil {
		logger.Warn("search: git ls-files exited with an error", "err", err)
	}
}
