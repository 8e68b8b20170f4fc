package runtime

import (
	"errors"

	"github.com/baila-lang/baila/pkg/diagnostics"
)

// Process exit statuses used by hosts.
const (
	ExitOK          = 0
	ExitUsage       = 1 // bad arguments or unreadable input
	ExitDiagnostics = 2 // the program did not compile
	ExitAborted     = 3 // cancelled or over a resource limit
	ExitRuntime     = 4
)

// ExitCode maps the error from Compile or Execute to an exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var de *diagnostics.Error
	if errors.As(err, &de) {
		return ExitDiagnostics
	}
	switch diagnostics.CodeOf(err) {
	case diagnostics.CancelledError, diagnostics.LimitError:
		return ExitAborted
	}
	return ExitRuntime
}
