//go:build windows

// pkg/isomount/isomount_windows.go - Mount-DiskImage backed Mounter.

package isomount

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/windowsadmins/hostprep/pkg/logging"
	"github.com/yusufpapurcu/wmi"
)

var commandPs1 = filepath.Join(os.Getenv("WINDIR"), "system32", "WindowsPowershell", "v1.0", "powershell.exe")

// execCommand is abstracted for testing
var execCommand = exec.Command

// win32CDROMDrive is the WMI projection used to discover mounted image volumes.
type win32CDROMDrive struct {
	Drive       string
	MediaLoaded bool
}

// DiskImageMounter mounts ISO images through the OS disk-image facilities
// and resolves the resulting volume via WMI.
type DiskImageMounter struct{}

// NewDiskImageMounter returns the default Windows Mounter.
func NewDiskImageMounter() *DiskImageMounter {
	return &DiskImageMounter{}
}

// Mount attaches the image read-only and returns the root of the new
// volume, discovered by diffing loaded optical drives before and after.
func (m *DiskImageMounter) Mount(image string) (string, error) {
	abs, err := filepath.Abs(image)
	if err != nil {
		return "", fmt.Errorf("resolving image path %s: %w", image, err)
	}

	before, err := loadedOpticalDrives()
	if err != nil {
		return "", fmt.Errorf("querying optical drives: %w", err)
	}

	if out, err := runPowerShell("Mount-DiskImage", "-ImagePath", quotePs(abs), "-StorageType", "ISO"); err != nil {
		return "", fmt.Errorf("mounting image %s: %w (output: %s)", abs, err, out)
	}
	logging.Info("Mounted disc image", "image", abs)

	after, err := loadedOpticalDrives()
	if err != nil {
		return "", fmt.Errorf("querying optical drives after mount: %w", err)
	}

	for drive := range after {
		if !before[drive] {
			return drive + `\`, nil
		}
	}
	return "", fmt.Errorf("mounted image %s but found no new volume", abs)
}

// Unmount ejects the image's volume. Failures are logged, not fatal; some
// hosts hold the volume open briefly after installer exit.
func (m *DiskImageMounter) Unmount(image string) error {
	abs, err := filepath.Abs(image)
	if err != nil {
		return fmt.Errorf("resolving image path %s: %w", image, err)
	}

	if out, err := runPowerShell("Dismount-DiskImage", "-ImagePath", quotePs(abs)); err != nil {
		logging.Warn("Failed to dismount image", "image", abs, "error", err, "output", out)
		return fmt.Errorf("dismounting image %s: %w", abs, err)
	}
	logging.Debug("Dismounted disc image", "image", abs)
	return nil
}

func loadedOpticalDrives() (map[string]bool, error) {
	var drives []win32CDROMDrive
	if err := wmi.Query("SELECT Drive, MediaLoaded FROM Win32_CDROMDrive", &drives); err != nil {
		return nil, err
	}

	loaded := make(map[string]bool, len(drives))
	for _, d := range drives {
		if d.MediaLoaded && d.Drive != "" {
			loaded[d.Drive] = true
		}
	}
	return loaded, nil
}

func runPowerShell(args ...string) (string, error) {
	psArgs := append([]string{"-NoProfile", "-NonInteractive", "-Command"}, args...)
	cmd := execCommand(commandPs1, psArgs...)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("powershell failed: %w | stderr: %s", err, stderr.String())
	}
	return out.String(), nil
}

func quotePs(s string) string {
	return "'" + s + "'"
}
