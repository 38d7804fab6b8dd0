package search

import "github.com/pkg/errors"

// Kind classifies a fatal error returned by Search, per spec §7's error-kind
// taxonomy. Only fatal kinds are represented here; per-file ingest failures
// are not errors at all (they degrade to an empty FileView) and internal
// worker panics are logged and swallowed by the Pool.
type Kind int

const (
	// KindConfig covers invalid Options: an empty term, an empty or
	// nonexistent source root, an invalid exclude glob, or a metrics
	// listener that cannot start.
	KindConfig Kind = iota
	// KindRegex covers any failure to construct the matcher: a Regex-mode
	// needle that fails to compile, or an unknown Mode.
	KindRegex
	// KindSink covers a sink write failure; search still completes the
	// current drain but reports the failure through Search's return value.
	KindSink
)

// Error wraps a fatal error with its Kind. The CLI layer maps every error
// from Search to exit code 2, whatever its Kind (spec §6: 0 match, 1 no
// match, 2 everything else).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Cause() error  { return e.Err }
func (e *Error) Unwrap() error { return e.Err }

func configError(msg string) error {
	return &Error{Kind: KindConfig, Err: errors.New(msg)}
}

func wrapError(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrap(err, msg)}
}
