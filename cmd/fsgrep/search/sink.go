package search

import (
	"io"
	"sync"

	log "gopkg.in/inconshreveable/log15.v2"
)

// sink is the serialized output destination described in spec §4.7's output
// ordering guarantee and the GLOSSARY entry for "Sink": one mutex, held only
// for the duration of one block write, so blocks appear in the order workers
// finish formatting rather than file-enumeration order.
type sink struct {
	mu     sync.Mutex
	w      io.Writer
	log    log.Logger
	failed bool
}

func newSink(w io.Writer, logger log.Logger) *sink {
	return &sink{w: w, log: logger}
}

// write appends block atomically. Per spec §7's "sink write failure" kind,
// the first failure is reported once to stderr and every subsequent write is
// silently discarded rather than retried or repeatedly logged.
func (s *sink) write(block string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return
	}
	if _, err := io.WriteString(s.w, block); err != nil {
		s.failed = true
		s.log.Error("search: sink write failed, discarding subsequent output", "err", err)
	}
}

// ok reports whether every write so far has succeeded.
func (s *sink) ok() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.failed
}
