// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode defines the verification modes testman can run in.
package mode

import (
	"fmt"
	"strings"

	"github.com/bartekus/testman/internal/harnesserr"
)

// Mode selects what a testman invocation does.
type Mode int

const (
	// Compare asks the processor to re-parse a fixture and compare it against its sidecar.
	Compare Mode = iota
	// Check asks the processor whether the fixture matches its recorded ranges.
	Check
	// Emit asks the processor to parse the fixture and write its sidecar.
	Emit
	// Extract refreshes the corpus. It never reaches the processor directly.
	Extract
)

// Default is the mode used when none is given.
const Default = Compare

// All lists every mode in flag order.
var All = []Mode{Compare, Check, Emit, Extract}

func (m Mode) String() string {
	switch m {
	case Compare:
		return "compare"
	case Check:
		return "check"
	case Emit:
		return "emit"
	case Extract:
		return "extract"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Processor reports whether m is passed to the processor as `-m <mode>`.
func (m Mode) Processor() bool {
	switch m {
	case Compare, Check, Emit:
		return true
	case Extract:
		return false
	}
	return false
}

// Parse maps a flag value to a Mode.
func Parse(s string) (Mode, error) {
	for _, m := range All {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, harnesserr.Configf("unknown mode %q (want one of %s)", s, Names())
}

// Names returns the flag values joined for help text.
func Names() string {
	names := make([]string, 0, len(All))
	for _, m := range All {
		names = append(names, m.String())
	}
	return strings.Join(names, "|")
}

// Set implements pflag.Value so the mode can be bound directly to a flag.
func (m *Mode) Set(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string { return "mode" }
