package client

import (
	"context"
	"fmt"
	"net"
)

// connectReplica dials backendIndex and binds it to replica i, closing
// whatever connection that replica previously held. It is the single place
// that actually opens a socket, serialized per-replica by mutexConnect so a
// slow DNS lookup on one replica never blocks another replica's connect.
func (c *Client) connectReplica(i, backendIndex int) error {
	rep := c.replicas[i]
	rep.mutexConnect.Lock()
	defer rep.mutexConnect.Unlock()

	if !rep.needsReconnect(backendIndex) {
		// Already connected to the requested backend: leave the healthy
		// connection alone instead of tearing it down and redialing.
		return nil
	}

	if rep.fd.IsOpen() {
		rep.markDisconnected()
	}

	if err := c.reconnLimiter.wait(context.Background()); err != nil {
		return opErr(KindConnect, i, err)
	}

	backend := c.backends[backendIndex]
	addr := net.JoinHostPort(backend.Host, backend.Port)
	conn, err := c.dialer.Dial("tcp", addr)
	if err != nil {
		c.logger.Debug("replica connect failed", "replica", i, "backend", addr, "error", err)
		return opErr(KindConnect, i, err)
	}

	rep.markConnected(OpenFD(conn), backendIndex)
	return nil
}

// Init binds and connects all R replicas, one after another, to their ring
// positions after the current starting index (the same backends Connect
// targets), under initMtx so that two concurrent Init/Reinit calls cannot race
// each other's replica bindings. A per-replica connect failure is tolerated;
// Init only fails outright if every replica failed to connect, mirroring the
// source's "at least one usable replica" tolerance.
func (c *Client) Init() error {
	c.initMtx.Lock()
	defer c.initMtx.Unlock()

	c.startingIndexMu.Lock()
	start := c.startingIndex
	c.startingIndexMu.Unlock()

	var anySuccess bool
	smallest := KindNone
	for i := 0; i < c.r; i++ {
		if err := c.connectReplica(i, (start+i+1)%c.n); err != nil {
			if oe, ok := err.(*OpError); ok {
				if smallest == KindNone || oe.Kind < smallest {
					smallest = oe.Kind
				}
			}
			continue
		}
		anySuccess = true
	}

	if !anySuccess {
		if smallest == KindNone {
			smallest = KindSocket
		}
		return opErr(smallest, -1, fmt.Errorf("all %d replicas failed to connect", c.r))
	}
	return nil
}
