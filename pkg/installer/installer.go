// pkg/installer/installer.go - synchronous installer execution.

package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/windowsadmins/hostprep/pkg/config"
	"github.com/windowsadmins/hostprep/pkg/logging"
)

// DefaultTimeout bounds a single installer run.
const DefaultTimeout = 15 * time.Minute

// ExitError reports an installer that ran to completion with a non-zero
// exit code.
type ExitError struct {
	Tool   string
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("installer for %s exited with code %d", e.Tool, e.Code)
}

// BlockedError reports an installer refused because a conflicting process
// was running.
type BlockedError struct {
	Tool    string
	Process string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("installer for %s blocked by running process %s", e.Tool, e.Process)
}

// Runner executes installers as child processes.
type Runner struct {
	// Timeout per installer run; DefaultTimeout when zero.
	Timeout time.Duration
}

// Run launches the artifact with the tool's configured arguments and waits
// for completion. A non-zero exit code comes back as *ExitError; the queue
// policy for that is the caller's concern.
func (r *Runner) Run(ctx context.Context, tool config.Tool, artifact string) error {
	if proc := runningBlockingProcess(tool.BlockingProcesses); proc != "" {
		return &BlockedError{Tool: tool.Name, Process: proc}
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.Info("Running installer",
		"tool", tool.Name,
		"installer", artifact,
		"arguments", strings.Join(tool.Arguments, " "),
	)

	cmd := exec.CommandContext(ctx, artifact, tool.Arguments...)
	hideConsoleWindow(cmd)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{
				Tool:   tool.Name,
				Code:   exitErr.ExitCode(),
				Output: stderr.String(),
			}
		}
		return fmt.Errorf("launching installer for %s: %w | stderr: %s", tool.Name, err, stderr.String())
	}

	logging.Info("Installer finished successfully", "tool", tool.Name)
	logging.Debug("Installer output", "tool", tool.Name, "output", out.String())
	return nil
}

// runningBlockingProcess returns the first configured process name that is
// currently running, or "" when none is.
func runningBlockingProcess(names []string) string {
	if len(names) == 0 {
		return ""
	}

	procs, err := process.Processes()
	if err != nil {
		logging.Warn("Failed to get process list", "error", err)
		return ""
	}

	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil {
			continue
		}
		for _, blocked := range names {
			if strings.EqualFold(name, blocked) || strings.EqualFold(name, blocked+".exe") {
				return name
			}
		}
	}
	return ""
}
