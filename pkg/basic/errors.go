package basic

import (
	"fmt"

	"github.com/pkg/errors"
)

// Classic BASIC error codes, matching the historical numeric table
// where GW-BASIC programs test ERR directly.
const (
	ErrCodeSyntax              = 2
	ErrCodeNextWithoutFor      = 1
	ErrCodeReturnWithoutGosub  = 3
	ErrCodeOutOfData           = 4
	ErrCodeIllegalFunctionCall = 5
	ErrCodeOverflow            = 6
	ErrCodeOutOfMemory         = 7 // backs the GOSUB/FOR depth guards, not host allocation failure
	ErrCodeUndefinedLine       = 8
	ErrCodeSubscriptOutOfRange = 9
	ErrCodeDivisionByZero      = 11
	ErrCodeTypeMismatch        = 13
	ErrCodeNoResume            = 19
	ErrCodeResumeWithoutError  = 20
	ErrCodeFileNotFound        = 53
	ErrCodeFileAlreadyOpen     = 55
	ErrCodeInputPastEnd        = 62
	ErrCodePathNotFound        = 76
)

// BASICError is the structured runtime/parse fault surfaced to callers,
// carrying the classic numeric Code so ERR can read it back.
type BASICError struct {
	Code       int
	Category   string
	Message    string
	Command    string
	LineNumber int
	DirectMode bool
}

func (e *BASICError) Error() string {
	if e.DirectMode {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	if e.LineNumber > 0 {
		return fmt.Sprintf("%s IN LINE %d: %s", e.Category, e.LineNumber, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func NewRuntimeError(code int, message string, line int) *BASICError {
	return &BASICError{Code: code, Category: "RUNTIME ERROR", Message: message, LineNumber: line}
}

func NewSyntaxError(message string, line int) *BASICError {
	return &BASICError{Code: ErrCodeSyntax, Category: "SYNTAX ERROR", Message: message, LineNumber: line}
}

// wrapHostFault wraps I/O or other host-boundary failures with
// github.com/pkg/errors so a %+v on a surfaced driver error keeps the
// originating stack, distinct from the user-visible classic numeric code
// which the BASICError above already carries separately.
func wrapHostFault(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, context)
}

// Fresh error values per fault: handleRuntimeError stamps the faulting
// line onto the error, so these must not be shared singletons.
func errNextWithoutFor(line int) *BASICError {
	return NewRuntimeError(ErrCodeNextWithoutFor, "NEXT without FOR", line)
}

func errReturnWithoutGosub(line int) *BASICError {
	return NewRuntimeError(ErrCodeReturnWithoutGosub, "RETURN without GOSUB", line)
}

func errStackOverflow(line int) *BASICError {
	return NewRuntimeError(ErrCodeOutOfMemory, "Out of memory", line)
}
