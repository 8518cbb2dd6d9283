package installer

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/windowsadmins/hostprep/pkg/config"
)

// TestHelperProcess stands in for an installer binary. It exits with the
// code requested through the environment.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	code, _ := strconv.Atoi(os.Getenv("HELPER_EXIT_CODE"))
	os.Exit(code)
}

func runFakeInstaller(t *testing.T, exitCode int) error {
	t.Helper()
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("HELPER_EXIT_CODE", strconv.Itoa(exitCode))

	tool := config.Tool{
		Name:      "FakeTool",
		Arguments: []string{"-test.run=TestHelperProcess"},
	}
	r := &Runner{}
	return r.Run(context.Background(), tool, os.Args[0])
}

func TestRunSuccess(t *testing.T) {
	require.NoError(t, runFakeInstaller(t, 0))
}

func TestRunNonZeroExitCode(t *testing.T) {
	err := runFakeInstaller(t, 3)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Code)
	require.Equal(t, "FakeTool", exitErr.Tool)
}

func TestRunMissingBinary(t *testing.T) {
	tool := config.Tool{Name: "Ghost"}
	r := &Runner{}
	err := r.Run(context.Background(), tool, "this-binary-does-not-exist")
	require.Error(t, err)

	// A launch failure is not an ExitError; the installer never ran.
	var exitErr *ExitError
	require.False(t, errors.As(err, &exitErr))
}

func TestRunningBlockingProcess(t *testing.T) {
	// Nothing configured => never blocked.
	require.Empty(t, runningBlockingProcess(nil))
	// A name that cannot exist on any host.
	require.Empty(t, runningBlockingProcess([]string{"no-such-process-3f9c1"}))
}
