package client

import (
	"fmt"

	"github.com/nbclient/memcring/internal/wire"
)

// SetParams bundles the caller-supplied fields for a SET/REPLACE dispatch.
type SetParams struct {
	Key        []byte
	Value      []byte
	Cas        uint64
	Expiration uint32
	VbucketID  uint16
}

// Set fans SET out to every connected replica in parallel and returns once
// dispatch has been spawned; results land on replicas[i].lastError/lastStatus
// and are observed by the next public call's join-barrier (SPEC_FULL.md §4.D).
func (c *Client) Set(p SetParams) error {
	return c.setCommon(p, wire.OpSet)
}

// Replace is Set with the REPLACE opcode, refusing to create a key that does
// not already exist on a given replica.
func (c *Client) Replace(p SetParams) error {
	return c.setCommon(p, wire.OpReplace)
}

func (c *Client) setCommon(p SetParams, opcode byte) error {
	if len(p.Key) == 0 {
		return opErr(KindSendKeyErr, -1, nil)
	}

	// setMtx serializes same-class workers: two concurrent SET/REPLACE
	// callers must not interleave their dispatch+join passes, matching the
	// source's pthread_mutex_lock(&cm.set) around the whole SET worker body.
	c.setMtx.Lock()
	defer c.setMtx.Unlock()

	c.joinBarrier()

	// Four-attempt escalation: dispatch, join+retry, full Reinit, final retry.
	// This mirrors the source's "none succeeded" recovery ladder, collapsed
	// into one loop since Go's join-barrier already does what each of the
	// source's repeated join calls did by hand.
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

		spawned, err := c.dispatchFanOut(p, opcode)
		if err != nil {
			return err
		}
		if spawned > 0 {
			return nil
		}
		lastErr = opErr(KindConnect, -1, fmt.Errorf("set: no connected replica to dispatch to"))
	}
	return lastErr
}

// dispatchFanOut spawns one worker per connected replica and returns
// immediately; it does not wait for any of them to finish.
func (c *Client) dispatchFanOut(p SetParams, opcode byte) (int, error) {
	value, compressed, err := c.codec.MaybeCompress(p.Value)
	if err != nil {
		return 0, opErr(KindSendInvalidMsg, -1, err)
	}
	flags := uint32(0)
	if compressed {
		flags |= wire.FlagCompressed
	}

	spawned := 0
	for i, rep := range c.replicas {
		if !rep.Connected() {
			continue
		}
		done := rep.beginWork()
		spawned++
		go c.setWorker(i, rep, done, p, value, flags, opcode)
	}
	return spawned, nil
}

func (c *Client) setWorker(i int, rep *ConnRecord, done chan struct{}, p SetParams, value []byte, flags uint32, opcode byte) {
	defer close(done)

	conn := rep.fd.Conn()
	if conn == nil {
		rep.endWork(KindConnect, KindNone)
		return
	}

	extras := wire.SetExtras{Flags: flags, Expiration: p.Expiration}.Encode()
	bodyLen := uint32(len(extras)) + uint32(len(p.Key)) + uint32(len(value))
	hdr := wire.Header{
		Magic:           wire.MagicRequest,
		Opcode:          opcode,
		KeyLength:       uint16(len(p.Key)),
		ExtrasLength:    byte(len(extras)),
		DataType:        wire.DataType,
		VbucketOrStatus: p.VbucketID,
		BodyLength:      bodyLen,
		Opaque:          requestOpaque,
		Cas:             p.Cas,
	}

	if err := c.sendFrame(conn, frame{header: hdr, extras: extras[:], key: p.Key, value: value}); err != nil {
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
