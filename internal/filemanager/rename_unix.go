//go:build !windows

package filemanager

import "os"

// replaceFile moves src over dst; rename is atomic on POSIX filesystems.
func replaceFile(src, dst string) error {
	return os.Rename(src, dst)
}
