package search

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "gopkg.in/inconshreveable/log15.v2"
)

// stats accumulates the counts behind the --stats summary (a supplemental
// feature grounded on sift's --stats flag, see SPEC_FULL.md). Each counter
// is a dualCounter: cheap for the hot per-file path, and live on the
// private prometheus registry exposed by Handler whenever --metrics-addr is
// set, so the same numbers that drive the final stderr summary can also be
// scraped mid-run.
type stats struct {
	filesScanned dualCounter
	filesMatched dualCounter
	matches      dualCounter

	registry *prometheus.Registry
}

// dualCounter increments a lock-free uint64 (for --stats's final read) and
// a prometheus.Counter (itself already safe for concurrent Add) together,
// so neither view of the count can drift from the other.
type dualCounter struct {
	v  uint64
	pc prometheus.Counter
}

func (c *dualCounter) Add(n uint64) {
	atomic.AddUint64(&c.v, n)
	c.pc.Add(float64(n))
}

func (c *dualCounter) Load() uint64 { return atomic.LoadUint64(&c.v) }

func newStats() *stats {
	reg := prometheus.NewRegistry()
	s := &stats{registry: reg}
	s.filesScanned.pc = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fsgrep_files_scanned_total",
		Help: "Files handed to a worker during the search, whether or not they could be read.",
	})
	s.filesMatched.pc = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fsgrep_files_matched_total",
		Help: "Files containing at least one match.",
	})
	s.matches.pc = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fsgrep_matches_total",
		Help: "Total hit spans found across every file.",
	})
	reg.MustRegister(s.filesScanned.pc, s.filesMatched.pc, s.matches.pc)
	return s
}

// Handler exposes the private registry for scraping, wired to an HTTP
// listener by serveMetrics when Options.MetricsAddr is set.
func (s *stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// serveMetrics starts an HTTP server exposing s at addr/metrics for the
// duration of one Search call, returning a func that shuts it down. A blank
// addr is a no-op: Options.MetricsAddr defaults to off, since a CLI
// invocation of fsgrep normally has nothing to scrape it.
func serveMetrics(addr string, s *stats, logger log.Logger) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	srv := &http.Server{Handler: mux}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Warn("search: metrics listener stopped unexpectedly", "err", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

const metricsShutdownTimeout = 2 * time.Second
