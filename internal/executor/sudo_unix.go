//go:build !windows

package executor

import (
	"os"
	"os/exec"
)

// isRoot reports whether the process already runs with full privileges, in
// which case elevation and probing are both unnecessary.
func isRoot() bool {
	return os.Geteuid() == 0
}

// hasSudo reports whether sudo exists on PATH. Without it every privileged
// candidate is skippable, never executable.
func hasSudo() bool {
	_, err := exec.LookPath("sudo")
	return err == nil
}
