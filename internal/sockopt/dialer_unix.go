//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package sockopt

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// NewDialer returns a *net.Dialer configured to set SO_RCVBUF, SO_SNDBUF,
// SO_LINGER and SO_REUSEADDR/SO_REUSEPORT on every socket it creates. Every
// option is attempted even after one fails; the first setsockopt failure is
// returned from Control, which makes net.Dialer abort that dial, so the
// replica reports a connect failure.
func NewDialer() *net.Dialer {
	return &net.Dialer{
		Timeout: DialTimeout,
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = applySocketOptions(int(fd))
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}
}

func applySocketOptions(fd int) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, RecvBufSize))
	record(unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, SendBufSize))
	record(unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{
		Onoff:  1,
		Linger: LingerSeconds,
	}))
	record(unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1))
	record(setReusePort(fd))

	return firstErr
}
