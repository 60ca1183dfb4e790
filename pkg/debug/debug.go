// Package debug provides conditional debug logging for starmap.
//
// Debug logging is enabled by setting the STARMAP_DEBUG environment variable:
//
//	STARMAP_DEBUG=1 starmap layout nodes.jsonl
//
// When enabled, debug messages are written to stderr with timestamps. Layout passes
// additionally log one trace line with per-phase timings and the overlap fraction
// after each placement phase. When disabled (default), all debug functions are no-ops.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

var (
	// enabled is true when STARMAP_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [starmap] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("STARMAP_DEBUG") != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[starmap] ", log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// Log writes a printf-style debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// PassTrace collects the phases of one layout pass and logs them as a single line.
// NewPass returns nil when debugging is off; every method accepts a nil receiver.
type PassTrace struct {
	nodes int
	start time.Time
	last  time.Time
	steps []string
}

// NewPass starts a trace for a pass over n nodes.
func NewPass(n int) *PassTrace {
	if !enabled {
		return nil
	}
	now := time.Now()
	return &PassTrace{nodes: n, start: now, last: now}
}

// Phase records the time since the previous phase. overlap, when non-nil, is called
// to report the overlapping-pair fraction at this point; it is never called while
// debugging is off.
func (p *PassTrace) Phase(name string, overlap func() float64) {
	if p == nil {
		return
	}
	now := time.Now()
	step := fmt.Sprintf("%s %v", name, now.Sub(p.last).Round(time.Microsecond))
	if overlap != nil {
		step += fmt.Sprintf(" (overlap %.3f)", overlap())
	}
	p.steps = append(p.steps, step)
	p.last = now
}

// Done logs the trace with the number of edges kept.
func (p *PassTrace) Done(edges int) {
	if p == nil || !enabled {
		return
	}
	logger.Printf("layout pass %d nodes: %s; %d edges; total %v",
		p.nodes, strings.Join(p.steps, ", "), edges, time.Since(p.start).Round(time.Microsecond))
}
