//go:build unix

package watch

import (
	"os"

	"golang.org/x/sys/unix"
)

// ExclusiveProbe opens path read-write and tries a non-blocking exclusive flock
func ExclusiveProbe(path string) bool {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return false
	}
	_ = unix.Flock(fd, unix.LOCK_UN)
	return true
}
