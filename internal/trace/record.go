package trace

import (
	"fmt"

	"github.com/luxxxlucy/epost/internal/frame"
)

const (
	// Start opens a call, End closes the innermost open call and Point is an
	// instantaneous event that never nests.
	Start EventKind = iota
	End
	Point
)

type (
	// EventKind tells whether a record opens, closes or marks a call.
	EventKind int

	// LogRecord is one parsed instrumentation event. Records are never
	// mutated once the parser emits them.
	LogRecord struct {
		Time         string           `json:"time"`
		Kind         EventKind        `json:"kind"`
		FunctionName string           `json:"function"`
		Arguments    []frame.Argument `json:"arguments"`
	}
)

func (k EventKind) String() string {
	switch k {
	case Start:
		return "START"
	case End:
		return "END"
	case Point:
		return "POINT"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	switch k {
	case Start, End, Point:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown event kind %d", int(k))
}

func (k *EventKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "START":
		*k = Start
	case "END":
		*k = End
	case "POINT":
		*k = Point
	default:
		return fmt.Errorf("unknown event kind %q", string(b))
	}
	return nil
}

// Frame returns the call this record refers to.
func (r LogRecord) Frame() frame.Frame {
	return frame.Frame{
		Function:  r.FunctionName,
		Arguments: r.Arguments,
	}
}
