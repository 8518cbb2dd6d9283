//go:build windows

// pkg/status/registry_windows.go - registry-backed Probe implementation.

package status

import (
	"github.com/windowsadmins/hostprep/pkg/logging"
	"golang.org/x/sys/windows/registry"
)

// netFrameworkKey is the full-install key for .NET Framework v4.
const netFrameworkKey = `SOFTWARE\Microsoft\NET Framework Setup\NDP\v4\Full`

// uninstallKeys cover the native view and, on 64-bit hosts, the 32-bit
// compatibility view.
var uninstallKeys = []string{
	`Software\Microsoft\Windows\CurrentVersion\Uninstall`,
	`Software\Wow6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// RegistryProbe reads installed-software state from the local machine registry.
type RegistryProbe struct{}

// NewRegistryProbe returns the default Windows Probe.
func NewRegistryProbe() *RegistryProbe {
	return &RegistryProbe{}
}

// InstalledApps enumerates the uninstall registry for installed applications.
// Subkeys missing a DisplayName or DisplayVersion are skipped.
func (p *RegistryProbe) InstalledApps() ([]App, error) {
	var apps []App

	for _, rPath := range uninstallKeys {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, rPath, registry.READ)
		if err != nil {
			logging.Warn("Unable to read registry key", "key", rPath, "error", err)
			continue
		}

		subKeys, err := key.ReadSubKeyNames(0)
		key.Close()
		if err != nil {
			logging.Warn("Unable to read sub keys", "key", rPath, "error", err)
			continue
		}

		for _, subKey := range subKeys {
			fullPath := rPath + `\` + subKey
			app, ok := readAppKey(fullPath)
			if ok {
				apps = append(apps, app)
			}
		}
	}

	return apps, nil
}

func readAppKey(fullPath string) (App, bool) {
	subKeyObj, err := registry.OpenKey(registry.LOCAL_MACHINE, fullPath, registry.READ)
	if err != nil {
		logging.Debug("Unable to open subKey", "key", fullPath, "error", err)
		return App{}, false
	}
	defer subKeyObj.Close()

	app := App{Key: fullPath}
	if name, _, err := subKeyObj.GetStringValue("DisplayName"); err == nil {
		app.Name = name
	}
	if versionStr, _, err := subKeyObj.GetStringValue("DisplayVersion"); err == nil {
		app.Version = versionStr
	}
	if uninstallStr, _, err := subKeyObj.GetStringValue("UninstallString"); err == nil {
		app.Uninstall = uninstallStr
	}

	if app.Name == "" || app.Version == "" {
		return App{}, false
	}
	return app, true
}

// NetFrameworkVersion reads the framework's Version value. A missing key or
// value yields "" with no error, matching the "absent, not broken" policy.
func (p *RegistryProbe) NetFrameworkVersion() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, netFrameworkKey, registry.QUERY_VALUE)
	if err != nil {
		return "", nil
	}
	defer k.Close()

	ver, _, err := k.GetStringValue("Version")
	if err != nil {
		return "", nil
	}
	return ver, nil
}
