// Package cancel provides the cooperative cancellation token polled by the
// lexer, parser and evaluator.
package cancel

import (
	"context"

	"github.com/baila-lang/baila/pkg/ast"
	"github.com/baila-lang/baila/pkg/diagnostics"
	"github.com/tevino/abool/v2"
)

// Token signals cancellation. A nil *Token is valid and never cancels.
type Token struct {
	flag *abool.AtomicBool
	ctx  context.Context
}

// New returns a token that is cancelled by Cancel or when ctx is done.
// ctx may be nil.
func New(ctx context.Context) *Token {
	return &Token{flag: abool.New(), ctx: ctx}
}

// Cancel requests cancellation.
func (t *Token) Cancel() {
	if t != nil {
		t.flag.Set()
	}
}

// Reset clears a previous Cancel. Context cancellation cannot be undone.
func (t *Token) Reset() {
	if t != nil {
		t.flag.UnSet()
	}
}

// Cancelled reports whether cancellation was requested.
func (t *Token) Cancelled() bool {
	if t == nil {
		return false
	}
	if t.flag.IsSet() {
		return true
	}
	if t.ctx != nil && t.ctx.Err() != nil {
		t.flag.Set()
		return true
	}
	return false
}

// Check returns a CancelledError positioned at span once cancellation has
// been requested.
func (t *Token) Check(span ast.Span) error {
	if !t.Cancelled() {
		return nil
	}
	return diagnostics.Errorf(diagnostics.CancelledError, diagnostics.At(span), "operation was cancelled")
}

// WithContext returns a token sharing t's flag that also observes ctx.
func (t *Token) WithContext(ctx context.Context) *Token {
	if t == nil {
		return New(ctx)
	}
	return &Token{flag: t.flag, ctx: ctx}
}
