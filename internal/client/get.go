package client

import (
	"github.com/nbclient/memcring/internal/wire"
)

// Result is the outcome of a successful GET.
type Result struct {
	Value []byte
	Cas   uint64
}

// Get performs the single-winner read described in SPEC_FULL.md §4.D: it
// picks a starting replica, walks the ring of R replicas modularly until one
// responds SUCCESS, and returns that replica's value and cas. Any other
// status (including key-not-found) advances the walk; only after every
// replica has been tried does Get report the last error observed.
func (c *Client) Get(key []byte) (Result, error) {
	if len(key) == 0 {
		return Result{}, opErr(KindSendKeyErr, -1, nil)
	}

	c.joinBarrier()

	c0, err := c.pickStartingReplica()
	if err != nil {
		return Result{}, err
	}

	var lastErr error = opErr(KindConnect, -1, nil)
	for step := 0; step < c.r; step++ {
		i := (c0 + step) % c.r
		res, err := c.getOnReplica(i, key)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return Result{}, lastErr
}

// pickStartingReplica selects any connected replica to begin the ring walk
// from; joinBarrier above has already drained any worker that might have
// been mutating connection state.
func (c *Client) pickStartingReplica() (int, error) {
	for i, rep := range c.replicas {
		if rep.Connected() {
			return i, nil
		}
	}
	return -1, opErr(KindConnect, -1, nil)
}

func (c *Client) getOnReplica(i int, key []byte) (Result, error) {
	rep := c.replicas[i]
	if !rep.Connected() {
		return Result{}, opErr(KindConnect, i, nil)
	}
	conn := rep.fd.Conn()
	if conn == nil {
		return Result{}, opErr(KindConnect, i, nil)
	}

	hdr := wire.Header{
		Magic:      wire.MagicRequest,
		Opcode:     wire.OpGet,
		KeyLength:  uint16(len(key)),
		DataType:   wire.DataType,
		BodyLength: uint32(len(key)),
		Opaque:     requestOpaque,
	}

	if err := c.sendFrame(conn, frame{header: hdr, key: key}); err != nil {
		oe, _ := err.(*OpError)
		if oe != nil && oe.Kind == KindSendExt {
			rep.recordStatus(KindNone, KindRecvKeyNotFound)
			return Result{}, opErr(KindRecvKeyNotFound, i, nil)
		}
		kind := KindConnect
		if oe != nil {
			kind = oe.Kind
		}
		rep.recordStatus(kind, KindNone)
		return Result{}, err
	}

	resp, err := c.recvFrame(conn, recvOptions{wantExtras: true, wantValue: true, maxValueSize: DefaultMaxValueSize})
	if err != nil {
		kind := KindConnect
		if oe, ok := err.(*OpError); ok {
			kind = oe.Kind
		}
		rep.recordStatus(kind, KindNone)
		return Result{}, err
	}

	if resp.header.Opaque != requestOpaque {
		rep.recordStatus(KindRecvOpaqueMismatch, KindNone)
		return Result{}, opErr(KindRecvOpaqueMismatch, i, nil)
	}

	if resp.header.Status() != wire.StatusSuccess {
		rep.recordStatus(KindNone, KindRecvKeyNotFound)
		return Result{}, opErr(KindRecvKeyNotFound, i, nil)
	}

	value := resp.value
	if len(resp.extras) >= 4 {
		extras, _ := wire.DecodeGetExtras(resp.extras)
		if extras.Flags&wire.FlagCompressed != 0 {
			decompressed, derr := c.codec.Decompress(value)
			if derr != nil {
				rep.recordStatus(KindRecvInvalidMsg, KindNone)
				return Result{}, opErr(KindRecvInvalidMsg, i, derr)
			}
			value = decompressed
		}
	}

	rep.recordStatus(KindNone, KindNone)
	return Result{Value: value, Cas: resp.header.Cas}, nil
}
