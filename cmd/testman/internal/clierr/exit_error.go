// SPDX-License-Identifier: AGPL-3.0-or-later

package clierr

import (
	"errors"
	"fmt"

	"github.com/bartekus/testman/internal/harnesserr"
)

// Process exit codes.
const (
	Success     = 0 // every fixture passed, or extraction completed
	TestFailure = 1 // at least one fixture failed verification
	RuntimeErr  = 2 // setup or infrastructure failure
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
// It supports wrapping via Unwrap so errors.Is/As work as expected.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

// Unwrap enables errors.Is/As to traverse the underlying cause.
func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Newf is a formatted variant.
func Newf(code int, format string, args ...any) error {
	return &ExitError{code: normalize(code), msg: fmt.Sprintf(format, args...)}
}

// Silent creates an ExitError whose diagnostics were already printed.
func Silent(code int) error {
	return &ExitError{code: normalize(code)}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Fatal wraps an infrastructure failure from the operation op.
func Fatal(op string, cause error) error {
	return Wrap(RuntimeErr, op, cause)
}

// ExitCodeOf extracts an exit code from any error.
// Infrastructure errors without an explicit code map to RuntimeErr; anything else to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return Success
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if harnesserr.IsInfrastructure(err) {
		return RuntimeErr
	}
	return TestFailure
}

func normalize(code int) int {
	// Exit code 0 means success; errors should never be 0.
	if code <= 0 {
		return 1
	}
	return code
}
