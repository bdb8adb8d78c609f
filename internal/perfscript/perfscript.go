// Package perfscript renders a validated trace as text in the format printed
// by `perf script`, one sample block per event.
package perfscript

import (
	"fmt"
	"strings"

	"github.com/luxxxlucy/epost/internal/errorutil"
	"github.com/luxxxlucy/epost/internal/trace"
)

// Placeholders written in every block. They never depend on the input.
type Options struct {
	Program string
	PID     string
	Period  string
	Unit    string
	Address string
	Module  string
}

// DefaultOptions returns the placeholders used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Program: "egg-run-program",
		PID:     "1",
		Period:  "1",
		Unit:    "cycles",
		Address: "1234",
		Module:  "egg-func-lib",
	}
}

type Generator struct {
	Options Options

	// rendered frames, outermost first
	stack  []string
	blocks []string
}

// NewGenerator returns a generator writing blocks with the placeholders of o.
func NewGenerator(o Options) *Generator {
	return &Generator{Options: o}
}

// Generate replays records and returns one block per record, in order.
func (g *Generator) Generate(records []trace.LogRecord) ([]string, error) {
	g.stack = g.stack[:0]
	g.blocks = make([]string, 0, len(records))
	for i, r := range records {
		switch r.Kind {
		case trace.Start:
			g.stack = append(g.stack, r.Frame().String())
			g.snapshot(r.Time)
		case trace.End:
			if len(g.stack) == 0 {
				return nil, fmt.Errorf(
					"%w: record %d: %w: END of %q",
					errorutil.ErrDataIntegrity,
					i,
					errorutil.ErrStackUnderflow,
					r.FunctionName,
				)
			}
			g.stack = g.stack[:len(g.stack)-1]
			g.snapshot(r.Time)
		case trace.Point:
			// only visible in its own snapshot
			g.stack = append(g.stack, r.Frame().String())
			g.snapshot(r.Time)
			g.stack = g.stack[:len(g.stack)-1]
		default:
			return nil, fmt.Errorf("%w: record %d: unknown event kind %v", errorutil.ErrDataIntegrity, i, r.Kind)
		}
	}
	return g.blocks, nil
}

func (g *Generator) snapshot(time string) {
	var b strings.Builder
	o := g.Options
	fmt.Fprintf(&b, "%s %s   %s:   %s %s:\n", o.Program, o.PID, time, o.Period, o.Unit)
	for i := len(g.stack) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "\t%s %s ([%s])\n", o.Address, g.stack[i], o.Module)
	}
	b.WriteByte('\n')
	g.blocks = append(g.blocks, b.String())
}

// Generate is a shorthand for NewGenerator(o).Generate(records).
func Generate(records []trace.LogRecord, o Options) ([]string, error) {
	return NewGenerator(o).Generate(records)
}

