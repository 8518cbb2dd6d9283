// pkg/isomount/isomount.go - disc-image mounting and installer discovery.

package isomount

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/hostprep/pkg/logging"
)

// NotFoundError reports a filename absent from a mounted image.
type NotFoundError struct {
	Root     string
	FileName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file %q not found under %s", e.FileName, e.Root)
}

// Mounter mounts disc images as read-only volumes. The Windows
// implementation shells out to the OS disk-image facilities; tests
// substitute fakes.
type Mounter interface {
	// Mount attaches the image and returns the root of the mounted volume.
	Mount(image string) (string, error)

	// Unmount detaches a previously mounted image. Best effort: a failed
	// eject leaves the volume attached but does not fail the run.
	Unmount(image string) error
}

// FindInstaller recursively searches the mounted volume for fileName and
// returns its full path. Matching is case-insensitive, as the target
// volume's filesystem is.
func FindInstaller(root, fileName string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Debug("Skipping unreadable path in image", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(d.Name(), fileName) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking mounted image %s: %w", root, err)
	}

	if found == "" {
		return "", &NotFoundError{Root: root, FileName: fileName}
	}
	logging.Debug("Located installer inside image", "path", found)
	return found, nil
}
