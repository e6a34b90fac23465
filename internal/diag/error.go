package diag

import (
	"errors"
	"fmt"
)

// Class sentinels for errors.Is checks.
var (
	ErrTemplate  = errors.New("template contract violation")
	ErrStructure = errors.New("structural contract violation")
	ErrSymbol    = errors.New("symbol shape violation")
	ErrIO        = errors.New("i/o failure")
	ErrConfig    = errors.New("invalid configuration")
	ErrUnit      = errors.New("invalid unit description")
)

// Error is the error value produced by every kpoet package. Message is the
// exact text callers and tests assert on; the code is not part of it.
type Error struct {
	Code    Code
	Message string
	Path    string
	Line    int
	Err     error
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that keeps err as its cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the class sentinel of the error code.
func (e *Error) Is(target error) bool {
	switch e.Code.Class() {
	case ClassTemplate:
		return target == ErrTemplate
	case ClassStructure:
		return target == ErrStructure
	case ClassSymbol:
		return target == ErrSymbol
	case ClassIO:
		return target == ErrIO
	case ClassConfig:
		return target == ErrConfig
	case ClassUnit:
		return target == ErrUnit
	}
	return false
}

// At returns a copy of e located at path:line.
func (e *Error) At(path string, line int) *Error {
	cp := *e
	cp.Path = path
	cp.Line = line
	return &cp
}

// Diagnostic converts e into an error diagnostic.
func (e *Error) Diagnostic() Diagnostic {
	return NewError(e.Code, e.Error()).At(e.Path, e.Line)
}

// AsDiagnostic converts any error into a diagnostic. Errors that are not
// *Error are reported under fallback.
func AsDiagnostic(err error, fallback Code) Diagnostic {
	var de *Error
	if errors.As(err, &de) {
		return de.Diagnostic()
	}
	return NewError(fallback, err.Error())
}
