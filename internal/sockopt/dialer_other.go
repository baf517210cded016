//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package sockopt

import "net"

// NewDialer returns a plain *net.Dialer on platforms without a portable
// golang.org/x/sys/unix setsockopt surface (e.g. windows). The fixed buffer
// sizes, linger and reuse options of §4.B are a best-effort tuning, not a
// correctness requirement, so falling back to the platform default here is
// safe: the client still connects, it just accepts the OS default buffer
// sizes and close behavior.
func NewDialer() *net.Dialer {
	return &net.Dialer{Timeout: DialTimeout}
}
