//go:build !unix

package watch

import "os"

// ExclusiveProbe falls back to a read-write open where flock is unavailable
func ExclusiveProbe(path string) bool {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
