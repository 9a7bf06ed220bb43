// SPDX-License-Identifier: AGPL-3.0-or-later

package invoker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bartekus/testman/internal/harnesserr"
)

const buildTailLines = 20

// Build runs the processor build command in dir.
// A failing build returns an ErrLaunch carrying the tail of its output.
func Build(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return harnesserr.Configf("empty build command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return harnesserr.Launch("start "+argv[0], err)
	}
	return harnesserr.Launch(
		fmt.Sprintf("%s exited %d", strings.Join(argv, " "), exitErr.ExitCode()),
		errors.New(tail(string(out), buildTailLines)),
	)
}

// tail keeps the last n lines of output.
func tail(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
		return "...(truncated)...\n" + strings.Join(lines, "\n")
	}
	return strings.TrimSpace(output)
}
