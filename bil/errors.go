package bil

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrFileNotFound           = errors.New("file not found")
	ErrMalformedHeader        = errors.New("malformed header")
	ErrMissingField           = errors.New("missing header field")
	ErrUnsupportedSampleWidth = errors.New("unsupported sample width")
	ErrTruncatedData          = errors.New("truncated data")
)

// HeaderError describes a header failure. Err is one of ErrMalformedHeader,
// ErrMissingField or ErrUnsupportedSampleWidth.
type HeaderError struct {
	Field Field  // zero when the failure is not tied to a known field
	Token string // offending token, if any
	Line  int    // 1-based line, 0 when not applicable
	Err   error
	Cause error // underlying parse error, if any
}

func (e *HeaderError) Error() string {
	msg := e.Err.Error()
	if e.Field != 0 {
		msg += " " + e.Field.String()
	}
	if e.Token != "" {
		msg += fmt.Sprintf(" %q", e.Token)
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *HeaderError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// TruncatedError reports a payload that ended before the geometry was
// satisfied. Row, Band and Column are -1 when the shortfall is not tied to
// a cell: the stream ended inside the leading skip bytes, or a payload file
// is smaller than the geometry requires.
type TruncatedError struct {
	Offset int64 // payload offset where the short span started
	Want   int64 // bytes required
	Got    int64 // bytes available
	Row    int
	Band   int
	Column int
}

func (e *TruncatedError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("truncated data: offset %d need %d bytes, %d available",
			e.Offset, e.Want, e.Got)
	}
	return fmt.Sprintf("truncated data: row %d band %d column %d at offset %d need %d bytes, %d available",
		e.Row, e.Band, e.Column, e.Offset, e.Want, e.Got)
}

func (e *TruncatedError) Unwrap() error { return ErrTruncatedData }

// notFound wraps a file-open failure so it matches both ErrFileNotFound and
// the underlying *fs.PathError.
func notFound(err error) error {
	return fmt.Errorf("%w: %w", ErrFileNotFound, err)
}
