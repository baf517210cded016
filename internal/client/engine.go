package client

import (
	"io"
	"net"

	"github.com/nbclient/memcring/internal/wire"
)

// DefaultMaxValueSize bounds how large a GET response value this client will
// read, guarding against a misbehaving server claiming an enormous body
// length. SPEC_FULL.md §8 calls out the boundary at exactly this size: a
// value of DefaultMaxValueSize-1 bytes succeeds, one of exactly
// DefaultMaxValueSize bytes fails with KindOverflow.
const DefaultMaxValueSize = 64 * 1024 * 1024

// maxWireBodyLength is the 2 GiB overflow bound from the wire format itself
// (body_length is a 32-bit field, but the protocol reserves the top bit).
const maxWireBodyLength = 2 * 1024 * 1024 * 1024

// frame bundles everything one send/recv pair might carry.
type frame struct {
	header wire.Header
	extras []byte
	key    []byte
	value  []byte
}

// sendFrame writes f to conn under the client's shared send mutex
// (SPEC_FULL.md §4.C, §5: sendMtx is shared across all replicas so that sends
// across different replicas are still serialized relative to each other,
// even while a different replica's receive proceeds concurrently).
func (c *Client) sendFrame(conn net.Conn, f frame) error {
	c.sendMtx.Lock()
	defer c.sendMtx.Unlock()

	enc := f.header.Encode()
	if n, err := conn.Write(enc[:]); err != nil || n != len(enc) {
		return opErr(KindSendInvalidHdr, -1, err)
	}

	if f.extras != nil {
		if f.header.ExtrasLength == 0 {
			return opErr(KindSendHdr, -1, nil)
		}
		if n, err := conn.Write(f.extras); err != nil || n != len(f.extras) {
			return opErr(KindSendExt, -1, err)
		}
	}

	if f.header.KeyLength > 0 && len(f.key) > 0 {
		if n, err := conn.Write(f.key); err != nil || n != len(f.key) {
			return opErr(KindSendInvalidKey, -1, err)
		}
	}

	if len(f.value) > 0 {
		if n, err := conn.Write(f.value); err != nil || n != len(f.value) {
			return opErr(KindSendInvalidMsg, -1, err)
		}
	}

	return nil
}

// recvOptions controls which body segments recvFrame attempts to parse, and
// the maximum value length it will accept.
type recvOptions struct {
	wantExtras   bool
	wantKey      bool
	wantValue    bool
	maxValueSize int
}

// recvFrame reads one response from conn under the client's shared recv
// mutex and decodes it according to opts.
func (c *Client) recvFrame(conn net.Conn, opts recvOptions) (frame, error) {
	c.recvMtx.Lock()
	defer c.recvMtx.Unlock()

	var hdrBuf [wire.HeaderSize]byte
	if _, err := io.ReadFull(conn, hdrBuf[:]); err != nil {
		return frame{}, opErr(KindRecvInvalidHdr, -1, err)
	}
	hdr, err := wire.Decode(hdrBuf[:])
	if err != nil {
		return frame{}, opErr(KindRecvInvalidHdr, -1, err)
	}

	var out frame
	out.header = hdr

	if opts.wantExtras && hdr.ExtrasLength > 0 {
		buf := make([]byte, hdr.ExtrasLength)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return frame{}, opErr(KindRecvInvalidExt, -1, err)
		}
		out.extras = buf
	}

	if opts.wantKey && hdr.KeyLength > 0 {
		buf := make([]byte, hdr.KeyLength)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return frame{}, opErr(KindRecvInvalidKey, -1, err)
		}
		out.key = buf
	}

	if opts.wantValue {
		consumed := uint32(hdr.ExtrasLength) + uint32(hdr.KeyLength)
		if hdr.BodyLength < consumed {
			return frame{}, opErr(KindRecvInvalidMsg, -1, nil)
		}
		valueLen := hdr.BodyLength - consumed
		maxLen := opts.maxValueSize
		if maxLen <= 0 {
			maxLen = DefaultMaxValueSize
		}
		if valueLen >= uint32(maxLen) || valueLen >= maxWireBodyLength {
			return frame{}, opErr(KindOverflow, -1, nil)
		}
		if valueLen > 0 {
			buf := make([]byte, valueLen)
			if _, err := io.ReadFull(conn, buf); err != nil {
				return frame{}, opErr(KindRecvInvalidMsg, -1, err)
			}
			out.value = buf
		}
	}

	return out, nil
}
