package errorutil

import "errors"

// ErrDataIntegrity is a base error type to use for failures that are due to
// unrecoverable data integrity issues.
var ErrDataIntegrity = errors.New("data integrity error")

// ErrSignatureMismatch is returned when a retained line carries a signature
// other than the expected one, e.g. "EPOST_LOGGER" for "EPOST_LOG".
var ErrSignatureMismatch = errors.New("signature mismatch")

// ErrMalformedPrefix is returned when a retained line has no ':' separator or
// no bracketed timestamp before it.
var ErrMalformedPrefix = errors.New("malformed line prefix")

// ErrMalformedCallSyntax is returned when the call phrase of a line can't be
// split into a function name and an optional argument list.
var ErrMalformedCallSyntax = errors.New("malformed call syntax")

// ErrStackUnderflow is returned when an END event is found with no open call.
var ErrStackUnderflow = errors.New("stack underflow")

// ErrStackMismatch is returned when an END event doesn't close the innermost open call.
var ErrStackMismatch = errors.New("stack mismatch")

// ErrUnbalancedAtEOF is returned when calls are still open after the last record.
var ErrUnbalancedAtEOF = errors.New("unfinished calls remain in the stack")

// ErrIO wraps read and write failures of inputs and outputs.
var ErrIO = errors.New("i/o failure")
