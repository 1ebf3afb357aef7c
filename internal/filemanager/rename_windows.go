//go:build windows

package filemanager

import (
	"errors"
	"os"
	"syscall"
	"time"
)

const (
	errAccessDenied  syscall.Errno = 5
	errAlreadyExists syscall.Errno = 183
)

// replaceFile moves src over dst. Windows refuses to rename onto a file
// another process still has open, so the destination is removed and the
// rename retried once.
func replaceFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && (errno == errAccessDenied || errno == errAlreadyExists) {
		_ = os.Remove(dst)
		time.Sleep(10 * time.Millisecond)
		return os.Rename(src, dst)
	}
	return err
}
