//go:build unix

package atomicfile

import "golang.org/x/sys/unix"

// syncDir flushes the directory entry of a rename to disk.
func syncDir(dir string) error {
	fd, err := unix.Open(dir, unix.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return unix.Fsync(fd)
}
