package frame

import "strings"

type (
	// Argument is a single call argument, kept in the order it was logged.
	Argument struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	Frame struct {
		Function  string     `json:"function"`
		Arguments []Argument `json:"arguments,omitempty"`
	}
)

// String renders the frame as "function(k1=v1, k2=v2)", with empty
// parentheses when there are no arguments.
func (f Frame) String() string {
	var b strings.Builder
	b.WriteString(f.Function)
	b.WriteByte('(')
	for i, a := range f.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value)
	}
	b.WriteByte(')')
	return b.String()
}
