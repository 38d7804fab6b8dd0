package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sourcegraph/fsgrep/cmd/fsgrep/search"
)

// loadDotenv optionally loads root/.fsgrep.env. main calls it after flags are
// parsed (root comes from --path) but before the FSGREP_* environment
// defaults are read, the same "env file loaded before defaults are applied"
// ordering the teacher's docker entrypoint uses for CONFIG_DIR/env. A missing
// file is not an error.
func loadDotenv(root string) {
	path := filepath.Join(root, ".fsgrep.env")
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		// Non-fatal: an unreadable .fsgrep.env should not block a search
		// that would otherwise succeed on flags and environment alone.
		os.Stderr.WriteString("fsgrep: warning: failed to load " + path + ": " + err.Error() + "\n")
	}
}

// envThreads mirrors FSGREP_THREADS, falling back to 0 (meaning: let
// search.DefaultThreads decide) on an absent or unparsable value.
func envThreads() int {
	v, ok := os.LookupEnv("FSGREP_THREADS")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// envNoColor mirrors FSGREP_NO_COLOR, a boolean-ish env var in the style of
// the NO_COLOR convention.
func envNoColor() bool {
	v := os.Getenv("FSGREP_NO_COLOR")
	return v != "" && v != "0" && v != "false"
}

// envOutput mirrors FSGREP_OUTPUT (pretty|piped|html), defaulting to Pretty
// on an absent or unrecognized value.
func envOutput() search.OutputFormat {
	switch os.Getenv("FSGREP_OUTPUT") {
	case "piped":
		return search.Piped
	case "html":
		return search.HTML
	default:
		return search.Pretty
	}
}
