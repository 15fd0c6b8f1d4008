//go:build !unix

package atomicfile

// syncDir is a no-op where directories can't be opened for syncing.
func syncDir(string) error {
	return nil
}
