// SPDX-License-Identifier: AGPL-3.0-or-later

// Package harnesserr defines the infrastructure failures that abort a testman
// invocation. Verification failures are not errors: they are failed runs.
package harnesserr

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork reports a failed archive fetch.
	ErrNetwork = errors.New("network error")
	// ErrArchive reports archive bytes that are not a valid zip.
	ErrArchive = errors.New("archive error")
	// ErrIO reports a filesystem write, move or delete failure.
	ErrIO = errors.New("io error")
	// ErrLaunch reports a processor that cannot be started at all.
	ErrLaunch = errors.New("launch error")
	// ErrConfig reports an invalid configuration or flag value.
	ErrConfig = errors.New("config error")
)

// Network wraps err as an ErrNetwork with the operation that failed.
func Network(op string, err error) error { return wrap(ErrNetwork, op, err) }

// Archive wraps err as an ErrArchive.
func Archive(op string, err error) error { return wrap(ErrArchive, op, err) }

// IO wraps err as an ErrIO.
func IO(op string, err error) error { return wrap(ErrIO, op, err) }

// Launch wraps err as an ErrLaunch.
func Launch(op string, err error) error { return wrap(ErrLaunch, op, err) }

// Config wraps err as an ErrConfig.
func Config(op string, err error) error { return wrap(ErrConfig, op, err) }

// Configf builds an ErrConfig from a message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// IsInfrastructure reports whether err belongs to the fatal taxonomy above.
func IsInfrastructure(err error) bool {
	for _, target := range []error{ErrNetwork, ErrArchive, ErrIO, ErrLaunch, ErrConfig} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func wrap(kind error, op string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", kind, op)
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}
