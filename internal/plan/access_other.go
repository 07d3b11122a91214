//go:build !unix

package plan

import "os"

// writable reports whether files can be created in dir by creating and
// removing a probe file.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".depends-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
