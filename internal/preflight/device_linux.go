//go:build linux

package preflight

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CharDevice verifies that path exists and is a character device, which is
// what a USB or UART attached receiver presents as.
func CharDevice(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fmt.Errorf("receiver device %s: %v", path, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return fmt.Errorf("receiver device %s is not a character device", path)
	}
	return nil
}
