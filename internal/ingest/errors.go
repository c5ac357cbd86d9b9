package ingest

import "fmt"

const (
	KindParseError  = "parse_error"
	KindDecodeError = "decode_error"
)

// ParseError reports malformed CSV or JSON content.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecodeError reports text content that is not valid UTF-8.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode text as utf-8 at byte %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
