//go:build unix

package plan

import "golang.org/x/sys/unix"

// writable reports whether files can be created in dir.
func writable(dir string) bool {
	return unix.Access(dir, unix.W_OK|unix.X_OK) == nil
}
