package client

import (
	"fmt"

	"github.com/nbclient/memcring/internal/wire"
)

// Delete fans a DELETE out to every connected replica, same shape as Set but
// with no value or extras (SPEC_FULL.md §4.D).
func (c *Client) Delete(key []byte) error {
	if len(key) == 0 {
		return opErr(KindSendKeyErr, -1, nil)
	}

	// deleteMtx serializes same-class workers, matching the source's
	// pthread_mutex_lock(&cm.delete) around the whole DELETE worker body.
	c.deleteMtx.Lock()
	defer c.deleteMtx.Unlock()

	c.joinBarrier()

	var lastErr error
	for attempt := 1; attempt <= 4; attempt++ {
		if attempt == 3 {
			if err := c.Reinit(); err != nil {
				lastErr = err
				continue
			}
		}
		if attempt > 1 {
			c.joinBarrier()
		}

		spawned := c.dispatchDelete(key)
		if spawned > 0 {
			return nil
		}
		lastErr = opErr(KindConnect, -1, fmt.Errorf("delete: no connected replica to dispatch to"))
	}
	return lastErr
}

func (c *Client) dispatchDelete(key []byte) int {
	spawned := 0
	for i, rep := range c.replicas {
		if !rep.Connected() {
			continue
		}
		done := rep.beginWork()
		spawned++
		go c.deleteWorker(i, rep, done, key)
	}
	return spawned
}

func (c *Client) deleteWorker(i int, rep *ConnRecord, done chan struct{}, key []byte) {
	defer close(done)

	conn := rep.fd.Conn()
	if conn == nil {
		rep.endWork(KindConnect, KindNone)
		return
	}

	hdr := wire.Header{
		Magic:      wire.MagicRequest,
		Opcode:     wire.OpDelete,
		KeyLength:  uint16(len(key)),
		DataType:   wire.DataType,
		BodyLength: uint32(len(key)),
		Opaque:     requestOpaque,
	}

	if err := c.sendFrame(conn, frame{header: hdr, key: key}); err != nil {
		kind := KindSendInvalidHdr
		if oe, ok := err.(*OpError); ok {
			kind = oe.Kind
		}
		rep.endWork(kind, KindNone)
		return
	}

	resp, err := c.recvFrame(conn, recvOptions{})
	if err != nil {
		kind := KindRecvInvalidHdr
		if oe, ok := err.(*OpError); ok {
			kind = oe.Kind
		}
		rep.endWork(kind, KindNone)
		return
	}

	if resp.header.Opaque != requestOpaque {
		rep.endWork(KindRecvOpaqueMismatch, KindNone)
		return
	}

	statusKind := KindNone
	if resp.header.Status() != wire.StatusSuccess {
		statusKind = KindRecvInvalidMsg
	}
	rep.endWork(KindNone, statusKind)
}
