//go:build !unix

package helpers

// setReuseAddr is a no-op: on Windows SO_REUSEADDR lets a second process
// steal the port, and a closed listener can be rebound without it.
func setReuseAddr(fd uintptr) error {
	return nil
}
