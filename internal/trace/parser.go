package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/luxxxlucy/epost/internal/errorutil"
	"github.com/luxxxlucy/epost/internal/frame"
)

const (
	DefaultSignature = "EPOST_LOG"

	actionStart = "START"
	actionEnd   = "END"

	maxLineSize = 64 * 1024 * 1024
)

// Parser turns instrumentation lines into a validated record sequence. Call
// NewParser() to create one, call Update() for each line in order, and then
// Finalize() once there are no more lines.
type Parser struct {
	Signature string

	records []LogRecord
	// names of the calls still open, outermost first
	stack       []string
	line        int
	IsFinalized bool
}

func NewParser(signature string) *Parser {
	if signature == "" {
		signature = DefaultSignature
	}
	return &Parser{Signature: signature}
}

// Update consumes the next input line. Lines not starting with the signature
// are skipped.
func (p *Parser) Update(line string) error {
	if p.IsFinalized {
		panic("trace: cannot call Update() after Finalize()")
	}
	p.line++
	if !strings.HasPrefix(line, p.Signature) {
		return nil
	}
	r, err := p.parseLine(line)
	if err == nil {
		err = p.validate(r)
	}
	if err != nil {
		return fmt.Errorf("line %d %q: %w", p.line, line, err)
	}
	p.records = append(p.records, r)
	return nil
}

// Finalize checks that every call was closed and returns the records.
func (p *Parser) Finalize() ([]LogRecord, error) {
	p.IsFinalized = true
	if len(p.stack) > 0 {
		return nil, fmt.Errorf("%w: %s", errorutil.ErrUnbalancedAtEOF, strings.Join(p.stack, ", "))
	}
	return p.records, nil
}

func (p *Parser) parseLine(line string) (LogRecord, error) {
	prefix, body, found := strings.Cut(line, ":")
	if !found {
		return LogRecord{}, fmt.Errorf("%w: missing ':' separator", errorutil.ErrMalformedPrefix)
	}

	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return LogRecord{}, fmt.Errorf("%w: missing signature", errorutil.ErrMalformedPrefix)
	}
	if fields[0] != p.Signature {
		return LogRecord{}, fmt.Errorf("%w: expected %q, found %q", errorutil.ErrSignatureMismatch, p.Signature, fields[0])
	}
	if len(fields) < 2 {
		return LogRecord{}, fmt.Errorf("%w: missing timestamp", errorutil.ErrMalformedPrefix)
	}

	tokens := strings.Fields(body)
	kind := Point
	if n := len(tokens); n > 0 {
		switch tokens[n-1] {
		case actionStart:
			kind = Start
			tokens = tokens[:n-1]
		case actionEnd:
			kind = End
			tokens = tokens[:n-1]
		}
	}

	name, args, err := parseCall(strings.Join(tokens, " "))
	if err != nil {
		return LogRecord{}, err
	}

	return LogRecord{
		Time:         strings.Trim(fields[1], "[]"),
		Kind:         kind,
		FunctionName: name,
		Arguments:    args,
	}, nil
}

// parseCall splits "name(k1=v1, k2=v2)" into its name and arguments. The
// parentheses are optional.
func parseCall(phrase string) (string, []frame.Argument, error) {
	parts := strings.Split(phrase, "(")
	var name string
	var args []frame.Argument
	switch len(parts) {
	case 1:
		name = strings.TrimSpace(phrase)
	case 2:
		name = strings.TrimSpace(parts[0])
		args = parseArguments(parts[1])
	default:
		return "", nil, fmt.Errorf("%w: %q has %d opening parentheses", errorutil.ErrMalformedCallSyntax, phrase, len(parts)-1)
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: missing function name", errorutil.ErrMalformedCallSyntax)
	}
	return name, args, nil
}

// parseArguments drops every piece that isn't exactly one key=value pair.
func parseArguments(s string) []frame.Argument {
	s = strings.TrimSpace(strings.Trim(s, ")"))
	var args []frame.Argument
	for _, piece := range strings.Split(s, ", ") {
		kv := strings.Split(piece, "=")
		if len(kv) != 2 {
			continue
		}
		args = append(args, frame.Argument{Key: kv[0], Value: kv[1]})
	}
	return args
}

func (p *Parser) validate(r LogRecord) error {
	switch r.Kind {
	case Start:
		p.stack = append(p.stack, r.FunctionName)
	case End:
		if len(p.stack) == 0 {
			return fmt.Errorf("%w: END of %q with no open call", errorutil.ErrStackUnderflow, r.FunctionName)
		}
		last := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		if last != r.FunctionName {
			return fmt.Errorf("%w: expected END of %q but found END of %q", errorutil.ErrStackMismatch, last, r.FunctionName)
		}
	}
	return nil
}

// ParseLines parses and validates a whole trace held in memory.
func ParseLines(lines []string, signature string) ([]LogRecord, error) {
	p := NewParser(signature)
	for _, line := range lines {
		if err := p.Update(line); err != nil {
			return nil, err
		}
	}
	return p.Finalize()
}

// Parse reads r to the end and parses every line of it.
func Parse(r io.Reader, signature string) ([]LogRecord, error) {
	p := NewParser(signature)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := p.Update(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errorutil.ErrIO, err)
	}
	return p.Finalize()
}
