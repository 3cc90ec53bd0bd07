package output

import "errors"

// Exit codes:
// 0 = Success
// 1 = User error (bad arguments, missing input)
// 2 = System error (network failure, unexpected remote response, local I/O)
// 3 = Authentication failed (credentials rejected or session expired)
// 4 = Verification required (a challenge the tool cannot answer)
const (
	ExitSuccess      = 0
	ExitUserError    = 1
	ExitSystemError  = 2
	ExitAuthError    = 3
	ExitVerification = 4
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
// Use for: bad arguments, empty required input, unusable flag combinations.
func NewUserError(message string) *ExitError {
	return &ExitError{
		Code:    ExitUserError,
		Message: message,
	}
}

// NewNetworkError creates an error for transport-level failures (exit code 2).
// Use for: unreachable host, timeouts, connection resets.
func NewNetworkError(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
		Cause:   cause,
	}
}

// NewProtocolError creates an error for unexpected remote responses
// (exit code 2). Use for: bad status codes, pages missing expected markup.
func NewProtocolError(message string) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
	}
}

// NewIOError creates an error for local filesystem failures (exit code 2).
// Use for: permission denied, disk full, failed writes.
func NewIOError(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
		Cause:   cause,
	}
}

// NewAuthError creates an error for rejected credentials or an expired
// session (exit code 3).
func NewAuthError(message string) *ExitError {
	return &ExitError{
		Code:    ExitAuthError,
		Message: message,
	}
}

// NewVerificationError creates an error for a verification challenge the
// tool cannot answer, such as a second factor (exit code 4). The user must
// complete the challenge out of band and rerun.
func NewVerificationError(message string) *ExitError {
	return &ExitError{
		Code:    ExitVerification,
		Message: message,
	}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitUserError for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Default to user error for untyped errors
	return ExitUserError
}
