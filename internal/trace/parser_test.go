package trace

import (
	"errors"
	"strings"
	"testing"

	"github.com/luxxxlucy/epost/internal/errorutil"
	"github.com/luxxxlucy/epost/internal/frame"
	"github.com/luxxxlucy/epost/internal/testutil"
)

func TestParseLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []LogRecord
	}{
		{
			name: "start and end with arguments",
			lines: []string{
				"EPOST_LOG [100]: foo(a=1, b=2) START",
				"EPOST_LOG [105]: foo(a=1, b=2) END",
			},
			want: []LogRecord{
				{
					Time:         "100",
					Kind:         Start,
					FunctionName: "foo",
					Arguments:    []frame.Argument{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
				},
				{
					Time:         "105",
					Kind:         End,
					FunctionName: "foo",
					Arguments:    []frame.Argument{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
				},
			},
		},
		{
			name:  "point event without action",
			lines: []string{"EPOST_LOG [50]: bar()"},
			want:  []LogRecord{{Time: "50", Kind: Point, FunctionName: "bar"}},
		},
		{
			name:  "bare function name",
			lines: []string{"EPOST_LOG [7]: rebuild START", "EPOST_LOG [8]: rebuild END"},
			want: []LogRecord{
				{Time: "7", Kind: Start, FunctionName: "rebuild"},
				{Time: "8", Kind: End, FunctionName: "rebuild"},
			},
		},
		{
			name: "unrelated lines are skipped",
			lines: []string{
				"Running egg",
				"",
				"EPOST_LOG [1]: run() START",
				"  EPOST_LOG [2]: indented() START",
				"EPOST_LOG [3]: run() END",
				"Done",
			},
			want: []LogRecord{
				{Time: "1", Kind: Start, FunctionName: "run"},
				{Time: "3", Kind: End, FunctionName: "run"},
			},
		},
		{
			name: "nested calls with points",
			lines: []string{
				"EPOST_LOG [1]: run(iter=0) START",
				"EPOST_LOG [2]: search(rule=comm-add) START",
				"EPOST_LOG [3]: matched(n=4)",
				"EPOST_LOG [4]: search(rule=comm-add) END",
				"EPOST_LOG [5]: rebuild() START",
				"EPOST_LOG [6]: rebuild() END",
				"EPOST_LOG [7]: run(iter=0) END",
			},
			want: []LogRecord{
				{Time: "1", Kind: Start, FunctionName: "run", Arguments: []frame.Argument{{Key: "iter", Value: "0"}}},
				{Time: "2", Kind: Start, FunctionName: "search", Arguments: []frame.Argument{{Key: "rule", Value: "comm-add"}}},
				{Time: "3", Kind: Point, FunctionName: "matched", Arguments: []frame.Argument{{Key: "n", Value: "4"}}},
				{Time: "4", Kind: End, FunctionName: "search", Arguments: []frame.Argument{{Key: "rule", Value: "comm-add"}}},
				{Time: "5", Kind: Start, FunctionName: "rebuild"},
				{Time: "6", Kind: End, FunctionName: "rebuild"},
				{Time: "7", Kind: End, FunctionName: "run", Arguments: []frame.Argument{{Key: "iter", Value: "0"}}},
			},
		},
		{
			name:  "malformed argument pairs are dropped",
			lines: []string{"EPOST_LOG [1]: foo(a=1, junk, b=2=3, c=) "},
			want: []LogRecord{
				{
					Time:         "1",
					Kind:         Point,
					FunctionName: "foo",
					Arguments:    []frame.Argument{{Key: "a", Value: "1"}, {Key: "c", Value: ""}},
				},
			},
		},
		{
			name:  "whitespace inside the call is collapsed",
			lines: []string{"EPOST_LOG\t[9]:   foo  (x=1,   y=2)   START", "EPOST_LOG [10]: foo END"},
			want: []LogRecord{
				{
					Time:         "9",
					Kind:         Start,
					FunctionName: "foo",
					Arguments:    []frame.Argument{{Key: "x", Value: "1"}, {Key: "y", Value: "2"}},
				},
				{Time: "10", Kind: End, FunctionName: "foo"},
			},
		},
		{
			name:  "timestamp keeps colons after the first one",
			lines: []string{"EPOST_LOG [12]: f(t=a:b)"},
			want: []LogRecord{
				{Time: "12", Kind: Point, FunctionName: "f", Arguments: []frame.Argument{{Key: "t", Value: "a:b"}}},
			},
		},
		{
			name:  "no qualifying lines",
			lines: []string{"hello", "world"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLines(tt.lines, DefaultSignature)
			if err != nil {
				t.Fatalf("we should be able to parse: %v", err)
			}
			if diff := testutil.Diff(tt.want, got); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}

func TestParseLinesErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantErr  error
		mentions []string
	}{
		{
			name:     "signature mismatch",
			lines:    []string{"EPOST_LOGGER [1]: foo()"},
			wantErr:  errorutil.ErrSignatureMismatch,
			mentions: []string{"line 1", "EPOST_LOGGER"},
		},
		{
			name:    "missing separator",
			lines:   []string{"EPOST_LOG [1] foo()"},
			wantErr: errorutil.ErrMalformedPrefix,
		},
		{
			name:    "missing timestamp",
			lines:   []string{"EPOST_LOG: foo()"},
			wantErr: errorutil.ErrMalformedPrefix,
		},
		{
			name:     "too many parentheses",
			lines:    []string{"ok", "EPOST_LOG [1]: foo(a=(1)) START"},
			wantErr:  errorutil.ErrMalformedCallSyntax,
			mentions: []string{"line 2"},
		},
		{
			name:    "empty body",
			lines:   []string{"EPOST_LOG [1]:"},
			wantErr: errorutil.ErrMalformedCallSyntax,
		},
		{
			name:    "action without function",
			lines:   []string{"EPOST_LOG [1]: START"},
			wantErr: errorutil.ErrMalformedCallSyntax,
		},
		{
			name:     "end without start",
			lines:    []string{"EPOST_LOG [1]: foo() END"},
			wantErr:  errorutil.ErrStackUnderflow,
			mentions: []string{"foo"},
		},
		{
			name:     "end of another function",
			lines:    []string{"EPOST_LOG [1]: foo() START", "EPOST_LOG [2]: baz() END"},
			wantErr:  errorutil.ErrStackMismatch,
			mentions: []string{"foo", "baz", "line 2"},
		},
		{
			name: "end closes outer call first",
			lines: []string{
				"EPOST_LOG [1]: outer() START",
				"EPOST_LOG [2]: inner() START",
				"EPOST_LOG [3]: outer() END",
			},
			wantErr:  errorutil.ErrStackMismatch,
			mentions: []string{"inner", "outer"},
		},
		{
			name:     "unfinished call",
			lines:    []string{"EPOST_LOG [1]: foo() START"},
			wantErr:  errorutil.ErrUnbalancedAtEOF,
			mentions: []string{"foo"},
		},
		{
			name: "several unfinished calls",
			lines: []string{
				"EPOST_LOG [1]: run() START",
				"EPOST_LOG [2]: search() START",
				"EPOST_LOG [3]: apply() START",
				"EPOST_LOG [4]: apply() END",
			},
			wantErr:  errorutil.ErrUnbalancedAtEOF,
			mentions: []string{"run, search"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ParseLines(tt.lines, DefaultSignature)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got: %v", tt.wantErr, err)
			}
			if records != nil {
				t.Fatalf("no records should be returned on failure, got: %+v", records)
			}
			for _, m := range tt.mentions {
				if !strings.Contains(err.Error(), m) {
					t.Fatalf("error %q should mention %q", err.Error(), m)
				}
			}
		})
	}
}

func TestParseCountsRetainedLines(t *testing.T) {
	var b strings.Builder
	retained := 0
	for i := 0; i < 50; i++ {
		b.WriteString("noise\n")
		b.WriteString("EPOST_LOG [1]: outer(i=1) START\n")
		b.WriteString("EPOST_LOG [2]: inner() START\n")
		b.WriteString("EPOST_LOG [3]: tick()\n")
		b.WriteString("EPOST_LOG [4]: inner() END\n")
		b.WriteString("EPOST_LOG [5]: outer(i=1) END\n")
		retained += 5
	}

	records, err := Parse(strings.NewReader(b.String()), DefaultSignature)
	if err != nil {
		t.Fatalf("we should be able to parse: %v", err)
	}
	if len(records) != retained {
		t.Fatalf("wanted: %d records, got: %d", retained, len(records))
	}
}

func TestParseCustomSignature(t *testing.T) {
	records, err := Parse(strings.NewReader("TRACE [1]: foo()\r\nEPOST_LOG [2]: bar()\n"), "TRACE")
	if err != nil {
		t.Fatalf("we should be able to parse: %v", err)
	}
	want := []LogRecord{{Time: "1", Kind: Point, FunctionName: "foo"}}
	if diff := testutil.Diff(want, records); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestUpdateAfterFinalize(t *testing.T) {
	p := NewParser("")
	if _, err := p.Finalize(); err != nil {
		t.Fatalf("an empty trace should be balanced: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("Update() after Finalize() should panic")
		}
	}()
	_ = p.Update("EPOST_LOG [1]: foo()")
}

func TestEventKindText(t *testing.T) {
	for _, k := range []EventKind{Start, End, Point} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("we should be able to marshal %v: %v", k, err)
		}
		var got EventKind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("we should be able to unmarshal %q: %v", b, err)
		}
		if got != k {
			t.Fatalf("wanted: %v, got: %v", k, got)
		}
	}
	if _, err := EventKind(42).MarshalText(); err == nil {
		t.Fatal("unknown kinds should not marshal")
	}
}
