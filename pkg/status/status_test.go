package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/windowsadmins/hostprep/pkg/config"
)

type fakeProbe struct {
	apps       []App
	appsErr    error
	netVersion string
	netErr     error
}

func (f *fakeProbe) InstalledApps() ([]App, error) { return f.apps, f.appsErr }

func (f *fakeProbe) NetFrameworkVersion() (string, error) { return f.netVersion, f.netErr }

func TestInstalledVersionMatching(t *testing.T) {
	tests := []struct {
		name               string
		installedVersion   string
		expectedVersion    string
		backwardCompatible bool
		want               bool
	}{
		{"exact match accepted", "2.1.0", "2.1.0", false, true},
		{"exact mode rejects newer", "2.2.0", "2.1.0", false, false},
		{"exact mode rejects older", "2.0.0", "2.1.0", false, false},
		{"compatible accepts equal", "2.1.0", "2.1.0", true, true},
		{"compatible accepts newer", "3.0.0", "2.1.0", true, true},
		{"compatible rejects older", "2.0.9", "2.1.0", true, false},
		{"malformed installed version treated as missing", "not-a-version", "2.1.0", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			probe := &fakeProbe{apps: []App{
				{Name: "Build Agent", Version: tc.installedVersion},
			}}
			tool := config.Tool{
				Name:               "BuildAgent",
				DisplayName:        "Build Agent",
				Version:            tc.expectedVersion,
				BackwardCompatible: tc.backwardCompatible,
			}
			require.Equal(t, tc.want, Installed(probe, tool))
		})
	}
}

func TestInstalledMatchesBySubstring(t *testing.T) {
	probe := &fakeProbe{apps: []App{
		{Name: "Contoso Build Agent (x64)", Version: "2.1.0"},
	}}
	tool := config.Tool{
		Name:               "BuildAgent",
		DisplayName:        "Build Agent",
		Version:            "2.1.0",
		BackwardCompatible: true,
	}
	require.True(t, Installed(probe, tool))
}

func TestInstalledProbeErrorDegradesToNotInstalled(t *testing.T) {
	probe := &fakeProbe{appsErr: errors.New("registry unavailable")}
	tool := config.Tool{Name: "BuildAgent", DisplayName: "Build Agent", Version: "1.0"}
	require.False(t, Installed(probe, tool))
}

func TestTestAgentSatisfiedByIDE(t *testing.T) {
	agent := config.Tool{
		Name:               "VSTestAgent",
		DisplayName:        "Visual Studio Test Agent",
		Version:            "17.0",
		BackwardCompatible: true,
	}

	// No agent, no IDE => missing.
	require.False(t, Installed(&fakeProbe{}, agent))

	// No agent entry, but the parent IDE is present => satisfied.
	probe := &fakeProbe{apps: []App{
		{Name: "Microsoft Visual Studio Professional 2022", Version: "17.4"},
	}}
	require.True(t, Installed(probe, agent))

	// The proxy rule only applies to test agents.
	other := config.Tool{Name: "BuildAgent", DisplayName: "Build Agent", Version: "1.0"}
	require.False(t, Installed(probe, other))
}

func TestNetFrameworkRule(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"4.7.1", true},
		{"4.7", true},
		{"4.8.04084", true},
		{"4.6.2", false},
		{"5.0", true},
		{"3.5", false},
		{"", false},
		{"garbage", false},
	}

	tool := config.Tool{Name: "NetFramework", DisplayName: "Microsoft .NET Framework", Version: "4.7"}
	for _, tc := range tests {
		t.Run("version "+tc.version, func(t *testing.T) {
			probe := &fakeProbe{netVersion: tc.version}
			require.Equal(t, tc.want, Installed(probe, tool))
		})
	}
}

func TestNetFrameworkProbeErrorDegrades(t *testing.T) {
	probe := &fakeProbe{netErr: errors.New("bad registry data")}
	tool := config.Tool{Name: "NetFramework", DisplayName: "Microsoft .NET Framework"}
	require.False(t, Installed(probe, tool))
}
