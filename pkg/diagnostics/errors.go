package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baila-lang/baila/pkg/ast"
)

// Error wraps the diagnostics collected by one pass as an error.
type Error struct {
	Diagnostics []Diagnostic
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return strings.Join(msgs, "; ")
}

// Wrap returns nil for an empty list and an *Error otherwise.
func Wrap(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	return &Error{Diagnostics: diags}
}

// RuntimeError is a semantic error raised while evaluating a program.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Code + ": " + e.Message
}

// Diagnostic converts the error into a diagnostic record.
func (e *RuntimeError) Diagnostic() Diagnostic {
	return MakeDiag(e.Code, e.Message, e.Span, "")
}

// Errorf builds a RuntimeError with a formatted message.
func Errorf(code string, span *ast.Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// At returns a copy of the span suitable for attaching to a diagnostic.
func At(s ast.Span) *ast.Span {
	return &s
}

// FromError extracts diagnostics from err. Errors that carry no diagnostic
// information are reported with an empty code.
func FromError(err error) []Diagnostic {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Diagnostics
	}
	var re *RuntimeError
	if errors.As(err, &re) {
		return []Diagnostic{re.Diagnostic()}
	}
	return []Diagnostic{{Message: err.Error()}}
}

// CodeOf returns the diagnostic code carried by err, or "" when err is not a
// Baila error.
func CodeOf(err error) string {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	var de *Error
	if errors.As(err, &de) && len(de.Diagnostics) > 0 {
		return de.Diagnostics[0].Code
	}
	return ""
}

// Locate attaches span to err when it is a RuntimeError without a
// position. Other errors are returned unchanged.
func Locate(err error, span ast.Span) error {
	var re *RuntimeError
	if !errors.As(err, &re) || re.Span != nil {
		return err
	}
	located := *re
	located.Span = &span
	return &located
}
