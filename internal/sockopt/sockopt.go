// Package sockopt builds the net.Dialer used for every replica connection,
// applying the socket options the memcached binary protocol client needs:
// fixed-size send/receive buffers, a lingering close, and address reuse so a
// reconnect storm against a just-restarted backend does not pile up in
// TIME_WAIT.
package sockopt

import "time"

// RecvBufSize and SendBufSize are the fixed SO_RCVBUF/SO_SNDBUF sizes applied
// to every replica socket.
const (
	RecvBufSize = 8192
	SendBufSize = 8192
)

// LingerSeconds is the SO_LINGER timeout applied on close so a torn-down
// connection's last writes are not silently dropped.
const LingerSeconds = 7

// DialTimeout bounds how long a single connect() attempt may block.
const DialTimeout = 10 * time.Second
