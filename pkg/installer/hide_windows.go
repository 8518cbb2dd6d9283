//go:build windows

package installer

import (
	"os/exec"
	"syscall"
)

// hideConsoleWindow keeps installer child processes from flashing a console.
func hideConsoleWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: true,
	}
}
