package cli

import "fmt"

// UsageExitCode is the process status for command-line misuse.
const UsageExitCode = 2

// UsageError reports malformed or unsupported flags and values. Usage holds a
// usage summary suitable for printing after the message.
type UsageError struct {
	Err   error
	Usage string
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(usage, format string, args ...any) *UsageError {
	return &UsageError{Err: fmt.Errorf(format, args...), Usage: usage}
}
