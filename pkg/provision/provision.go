// pkg/provision/provision.go - the sequential provisioning pipeline.
//
// Each tool in the selected category is processed to completion before the
// next begins: installed-state check, artifact download, optional image
// mount, installer execution. Failure policy is asymmetric on purpose:
// a download or mount failure aborts the remaining queue, while a non-zero
// installer exit only records the tool and moves on.

package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/windowsadmins/hostprep/pkg/config"
	"github.com/windowsadmins/hostprep/pkg/isomount"
	"github.com/windowsadmins/hostprep/pkg/logging"
	"github.com/windowsadmins/hostprep/pkg/status"
)

// State is a tool's terminal outcome within one run.
type State string

const (
	// StateAlreadyInstalled - the installed-state check was satisfied.
	StateAlreadyInstalled State = "already-installed"
	// StateMissing - check-only mode found the tool absent.
	StateMissing State = "missing"
	// StateInstalled - installer ran and exited zero.
	StateInstalled State = "installed"
	// StateFailed - download, mount, or installer failed.
	StateFailed State = "failed"
	// StateSkipped - never processed because an earlier failure aborted the queue.
	StateSkipped State = "skipped"
)

// Fetcher downloads an artifact to a destination path.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Installer executes a tool's installer synchronously.
type Installer interface {
	Run(ctx context.Context, tool config.Tool, artifact string) error
}

// ToolStatus records one tool's outcome.
type ToolStatus struct {
	Name  string
	State State
	Err   error
}

// Result is the outcome of one provisioning run.
type Result struct {
	Statuses      []ToolStatus
	Failed        []string
	RestartNeeded bool
	ScratchDir    string
	Aborted       bool

	errs *multierror.Error
}

// Err returns the aggregated per-tool errors, or nil when everything succeeded.
func (r *Result) Err() error {
	return r.errs.ErrorOrNil()
}

func (r *Result) record(tool config.Tool, state State, err error) {
	r.Statuses = append(r.Statuses, ToolStatus{Name: tool.Name, State: state, Err: err})
	if state == StateFailed {
		r.Failed = append(r.Failed, tool.Name)
		r.errs = multierror.Append(r.errs, fmt.Errorf("%s: %w", tool.Name, err))
	}
}

// Runner wires the pipeline's collaborators together.
type Runner struct {
	Probe     status.Probe
	Fetcher   Fetcher
	Mounter   isomount.Mounter
	Installer Installer

	// WorkDir is the parent of the per-run scratch directory.
	// Defaults to the current working directory.
	WorkDir string

	// CheckOnly reports missing tools without downloading or installing.
	CheckOnly bool
}

// Run processes the tools in order and returns the accumulated result.
// The scratch directory is created fresh and is not cleaned up afterwards,
// so failed installers can be re-run by hand.
func (r *Runner) Run(ctx context.Context, tools []config.Tool) (*Result, error) {
	scratch, err := r.createScratchDir()
	if err != nil {
		return nil, err
	}

	result := &Result{ScratchDir: scratch}

	for i, tool := range tools {
		if status.Installed(r.Probe, tool) {
			logging.Info("Tool already installed, skipping", "tool", tool.Name)
			result.record(tool, StateAlreadyInstalled, nil)
			continue
		}

		if r.CheckOnly {
			logging.Info("Tool missing (check-only)", "tool", tool.Name)
			result.record(tool, StateMissing, nil)
			continue
		}

		if err := r.provisionTool(ctx, tool, scratch, result); err != nil {
			// Download/mount failures are fail-fast: the rest of the
			// queue is almost certainly hitting the same broken host
			// or network, so stop rather than churn.
			result.record(tool, StateFailed, err)
			result.Aborted = true
			for _, remaining := range tools[i+1:] {
				result.record(remaining, StateSkipped, nil)
			}
			logging.Error("Aborting remaining tools after failure",
				"tool", tool.Name,
				"error", err,
				"remaining", len(tools)-i-1,
			)
			break
		}
	}

	return result, nil
}

// provisionTool downloads, optionally mounts, and installs one tool.
// A returned error means the queue must abort; installer failures are
// recorded in result and return nil.
func (r *Runner) provisionTool(ctx context.Context, tool config.Tool, scratch string, result *Result) error {
	artifact := filepath.Join(scratch, tool.FileName)
	if err := r.Fetcher.Fetch(ctx, tool.URL, artifact); err != nil {
		return err
	}

	installerPath := artifact
	if tool.IsImage() {
		root, err := r.Mounter.Mount(artifact)
		if err != nil {
			return err
		}
		defer func() {
			if err := r.Mounter.Unmount(artifact); err != nil {
				logging.Warn("Best-effort unmount failed", "image", artifact, "error", err)
			}
		}()

		installerPath, err = isomount.FindInstaller(root, tool.InstallerFileName)
		if err != nil {
			return err
		}
	}

	if err := r.Installer.Run(ctx, tool, installerPath); err != nil {
		// Installer failures do not poison the rest of the queue;
		// record and keep going.
		logging.Error("Installer failed", "tool", tool.Name, "error", err)
		result.record(tool, StateFailed, err)
		return nil
	}

	logging.Info("Tool installed", "tool", tool.Name, "restart_required", tool.RestartRequired)
	result.record(tool, StateInstalled, nil)
	if tool.RestartRequired {
		result.RestartNeeded = true
	}
	return nil
}

// createScratchDir makes a fresh uniquely named directory for this run's
// downloads under WorkDir.
func (r *Runner) createScratchDir() (string, error) {
	base := r.WorkDir
	if base == "" {
		base = "."
	}

	prefix := fmt.Sprintf("hostprep-%s-", time.Now().Format("2006-01-02-150405"))
	scratch, err := os.MkdirTemp(base, prefix)
	if err != nil {
		return "", fmt.Errorf("creating scratch directory under %s: %w", base, err)
	}
	logging.Debug("Created scratch directory", "path", scratch)
	return scratch, nil
}

// IsNotFound reports whether err is a missing-file-in-image failure.
// Exposed for callers that distinguish packaging mistakes from transport
// problems in their operator output.
func IsNotFound(err error) bool {
	var nfe *isomount.NotFoundError
	return errors.As(err, &nfe)
}
