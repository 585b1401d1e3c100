//go:build !linux

package preflight

import "os"

// Non-Linux stub: only check that the path exists.
func CharDevice(path string) error {
	_, err := os.Stat(path)
	return err
}
