package cli

import "errors"

const (
	exitCodeSuccess       = 0
	exitCodeUsage         = 64
	exitCodeSoftware      = 70
	exitCodeConfiguration = 78
)

// ExitError carries the process exit code for a failed run.
// Reported marks errors whose message has already been written to the report stream.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func newExitError(code int, err error, reported bool) *ExitError {
	return &ExitError{Code: code, Err: err, Reported: reported}
}

func (exitError *ExitError) Error() string {
	if exitError.Err == nil {
		return ""
	}
	return exitError.Err.Error()
}

func (exitError *ExitError) Unwrap() error {
	return exitError.Err
}

// ExitCode maps an execution error to a process exit code.
// Errors raised by Cobra itself before the report runs are command-line misuse.
func ExitCode(err error) int {
	if err == nil {
		return exitCodeSuccess
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		return exitError.Code
	}
	return exitCodeUsage
}

// IsReported reports whether the error message was already printed by the command.
func IsReported(err error) bool {
	var exitError *ExitError
	return errors.As(err, &exitError) && exitError.Reported
}
