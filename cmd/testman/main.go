// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/bartekus/testman/cmd/testman/commands"
	"github.com/bartekus/testman/cmd/testman/internal/clierr"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(clierr.ExitCodeOf(err))
	}
}
