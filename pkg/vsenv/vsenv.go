// pkg/vsenv/vsenv.go - locating an installed Visual Studio's tools directory.
//
// Visual Studio installers set a VS###COMNTOOLS environment variable per
// release (VS140COMNTOOLS for 2015, and so on). The newest release wins.

package vsenv

import (
	"os"
)

// comnToolsVars in newest-first order.
var comnToolsVars = []string{
	"VS170COMNTOOLS",
	"VS160COMNTOOLS",
	"VS150COMNTOOLS",
	"VS140COMNTOOLS",
	"VS120COMNTOOLS",
	"VS110COMNTOOLS",
	"VS100COMNTOOLS",
}

// NotFoundError reports that no Visual Studio installation could be located.
type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "no Visual Studio installation found (no VS###COMNTOOLS variable set)"
}

// LocateTools returns the tools directory of the newest installed Visual
// Studio, verified to exist on disk.
func LocateTools() (string, error) {
	for _, name := range comnToolsVars {
		dir := os.Getenv(name)
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", &NotFoundError{}
}
