package client

import (
	"github.com/nbclient/memcring/internal/wire"
)

// Quit fans QUIT out to every replica that currently holds an open
// connection: send QUIT, read the status, then close the socket and mark the
// replica disconnected. Idempotent — a replica with no open connection is
// silently skipped, so calling Quit twice in a row is harmless.
func (c *Client) Quit() error {
	// quitMtx serializes same-class workers, matching the source's
	// pthread_mutex_lock(&cm.quit) around the whole QUIT worker body.
	c.quitMtx.Lock()
	defer c.quitMtx.Unlock()

	c.joinBarrier()

	for i, rep := range c.replicas {
		if !rep.Connected() {
			continue
		}
		done := rep.beginWork()
		go c.quitWorker(i, rep, done)
	}
	c.joinBarrier()

	return nil
}

func (c *Client) quitWorker(i int, rep *ConnRecord, done chan struct{}) {
	defer close(done)

	conn := rep.fd.Conn()
	if conn == nil {
		rep.endWork(KindConnect, KindNone)
		return
	}

	hdr := wire.Header{
		Magic:    wire.MagicRequest,
		Opcode:   wire.OpQuit,
		DataType: wire.DataType,
		Opaque:   requestOpaque,
	}

	sendErr := c.sendFrame(conn, frame{header: hdr})
	if sendErr == nil {
		c.recvFrame(conn, recvOptions{})
	}

	rep.markDisconnected()
	rep.endWork(KindNone, KindNone)
}
