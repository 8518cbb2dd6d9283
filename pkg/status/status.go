// pkg/status/status.go - installed-state checks for configured tools.

package status

import (
	"strings"

	version "github.com/hashicorp/go-version"
	"github.com/windowsadmins/hostprep/pkg/config"
	"github.com/windowsadmins/hostprep/pkg/logging"
)

// App is one entry from the installed-applications registry view.
type App struct {
	Key       string
	Name      string
	Version   string
	Uninstall string
}

// Probe supplies installed-software state. The Windows implementation reads
// the registry; tests substitute fakes.
type Probe interface {
	// InstalledApps lists applications from the uninstall registry,
	// covering both the native and the 32-bit compatibility views.
	InstalledApps() ([]App, error)

	// NetFrameworkVersion returns the .NET Framework v4 full-install
	// version string, or "" when the framework is absent.
	NetFrameworkVersion() (string, error)
}

// Installed reports whether the tool already satisfies its install
// requirement. It never fails: probe errors and malformed registry data
// degrade to "not installed".
func Installed(probe Probe, tool config.Tool) bool {
	if isNetFramework(tool) {
		return netFrameworkSatisfied(probe)
	}

	apps, err := probe.InstalledApps()
	if err != nil {
		logging.Warn("Unable to enumerate installed applications", "error", err)
		return false
	}

	for _, app := range apps {
		if !matchesDisplayName(app.Name, tool.DisplayName) {
			continue
		}
		if versionSatisfied(app.Version, tool.Version, tool.BackwardCompatible) {
			logging.Debug("Registry match satisfies requirement",
				"tool", tool.Name,
				"registryName", app.Name,
				"registryVersion", app.Version,
			)
			return true
		}
		logging.Debug("Registry match with unsatisfying version",
			"tool", tool.Name,
			"registryName", app.Name,
			"registryVersion", app.Version,
			"wantVersion", tool.Version,
		)
	}

	if testAgentSatisfiedByIDE(apps, tool) {
		logging.Info("Accepting installed Visual Studio in place of its test agent",
			"tool", tool.Name,
		)
		return true
	}

	return false
}

func matchesDisplayName(installed, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(installed, want)
}

// versionSatisfied compares an installed version string against the
// expected one. Backward-compatible mode accepts installed >= expected;
// otherwise only exact equality counts. Unparseable versions never satisfy.
func versionSatisfied(installed, expected string, backwardCompatible bool) bool {
	have, err := version.NewVersion(installed)
	if err != nil {
		logging.Warn("Unable to parse installed version", "version", installed, "error", err)
		return false
	}
	want, err := version.NewVersion(expected)
	if err != nil {
		logging.Warn("Unable to parse expected version", "version", expected, "error", err)
		return false
	}

	if backwardCompatible {
		return !have.LessThan(want)
	}
	return have.Equal(want)
}

// ideDisplayName is the parent IDE accepted in place of its test agent.
const ideDisplayName = "Visual Studio"

// testAgentSatisfiedByIDE implements the test-agent proxy rule: a Visual
// Studio test agent with no registry entry of its own is considered
// installed when the parent IDE is present, since the IDE ships the agent's
// functionality.
func testAgentSatisfiedByIDE(apps []App, tool config.Tool) bool {
	if !isTestAgent(tool) {
		return false
	}
	for _, app := range apps {
		if strings.Contains(app.Name, ideDisplayName) {
			return true
		}
	}
	return false
}

func isTestAgent(tool config.Tool) bool {
	name := strings.ToLower(tool.Name + " " + tool.DisplayName)
	return strings.Contains(name, "test agent") || strings.Contains(name, "testagent")
}

// isNetFramework selects the framework-specific check by tool identity.
func isNetFramework(tool config.Tool) bool {
	name := strings.ToLower(tool.Name + " " + tool.DisplayName)
	return strings.Contains(name, ".net framework") || strings.Contains(name, "netfx")
}

// netFrameworkSatisfied applies the fixed framework rule: major > 4, or
// major == 4 with minor >= 7.
func netFrameworkSatisfied(probe Probe) bool {
	ver, err := probe.NetFrameworkVersion()
	if err != nil || ver == "" {
		logging.Debug("No .NET Framework version found", "error", err)
		return false
	}

	parsed, err := version.NewVersion(ver)
	if err != nil {
		logging.Warn("Unable to parse .NET Framework version", "version", ver, "error", err)
		return false
	}

	segments := parsed.Segments()
	major := segments[0]
	minor := 0
	if len(segments) > 1 {
		minor = segments[1]
	}
	return major > 4 || (major == 4 && minor >= 7)
}
