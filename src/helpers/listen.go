package helpers

import (
	"context"
	"net"
	"syscall"
)

// Listen binds a TCP listener with address reuse enabled, so a restarted
// process can bind while the old socket is still in TIME_WAIT.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var opErr error
			if err := c.Control(func(fd uintptr) {
				opErr = setReuseAddr(fd)
			}); err != nil {
				return err
			}
			return opErr
		},
	}
	return lc.Listen(ctx, "tcp", address)
}
