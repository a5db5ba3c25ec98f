package parser

import "fmt"

// Error codes for prompt parsing failures
//
// P001-P099: prompt structure errors
const (
	ErrMissingApplicationName = "P001"
	ErrMissingDocTypeSection  = "P002"
	ErrNoRecordTypesFound     = "P003"
	ErrNoFieldsFound          = "P004"
	ErrNoRecordTypesParsed    = "P005"
)

// ParseError represents a fatal prompt parsing error. A failed parse never
// returns a partial Descriptor; callers surface the message verbatim and
// stop.
type ParseError struct {
	Code    string
	Message string
	DocType string // Set for ErrNoFieldsFound: the offending record type
}

// Error implements the error interface
func (e ParseError) Error() string {
	return e.Message
}

// ErrorCode returns the unique code for this error kind
func (e ParseError) ErrorCode() string {
	return e.Code
}

// Is matches two ParseErrors by code, so errors.Is can test for a kind:
// errors.Is(err, ParseError{Code: ErrNoFieldsFound})
func (e ParseError) Is(target error) bool {
	t, ok := target.(ParseError)
	return ok && t.Code == e.Code
}

// Code extracts the parse error code from an error, or "" if the error is
// not a ParseError
func Code(err error) string {
	if pe, ok := err.(ParseError); ok {
		return pe.Code
	}
	return ""
}

func errorf(code string, format string, args ...interface{}) ParseError {
	return ParseError{Code: code, Message: fmt.Sprintf(format, args...)}
}
