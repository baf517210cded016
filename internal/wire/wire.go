// Package wire implements the memcached binary protocol's wire-exact framing:
// the fixed 24-byte header, the SET/REPLACE/GET extras, and the big-endian
// conversions between host order and wire order.
package wire

import (
	"encoding/binary"
	"errors"
)

// Magic bytes distinguishing requests from responses.
const (
	MagicRequest  byte = 0x80
	MagicResponse byte = 0x81
)

// DataType is always zero for the opcodes this client speaks.
const DataType byte = 0x00

// Opcodes supported by this client.
const (
	OpGet     byte = 0x00
	OpSet     byte = 0x01
	OpReplace byte = 0x03
	OpDelete  byte = 0x04
	OpQuit    byte = 0x07
)

// Status is the 16-bit response status carried in bytes 6-7 of a response header.
type Status uint16

// Status codes, 1:1 with the memcached binary protocol.
const (
	StatusSuccess          Status = 0x0000
	StatusKeyNotFound      Status = 0x0001
	StatusKeyExists        Status = 0x0002
	StatusValueTooLarge    Status = 0x0003
	StatusInvalidArguments Status = 0x0004
	StatusItemNotStored    Status = 0x0005
	StatusNonNumericValue  Status = 0x0006
	StatusAuthError        Status = 0x0008
	StatusUnknownCommand   Status = 0x0081
	StatusOutOfMemory      Status = 0x0082
	StatusNotSupported     Status = 0x0083
	StatusInternalError    Status = 0x0084
	StatusBusy             Status = 0x0085
	StatusTemporaryFailure Status = 0x0086
)

// HeaderSize is the fixed size in bytes of every memcached binary protocol header.
const HeaderSize = 24

// ErrTruncatedHeader is returned when fewer than HeaderSize bytes could be decoded.
var ErrTruncatedHeader = errors.New("wire: truncated header")

// Header is the 24-byte memcached binary protocol header, held in host byte
// order. VbucketOrStatus carries the vbucket id on a request and the status
// on a response; the two are distinguished only by which direction the
// header travels, matching the wire format itself.
type Header struct {
	Magic           byte
	Opcode          byte
	KeyLength       uint16
	ExtrasLength    byte
	DataType        byte
	VbucketOrStatus uint16
	BodyLength      uint32
	Opaque          uint32
	Cas             uint64
}

// Status interprets VbucketOrStatus as a response status code.
func (h Header) Status() Status {
	return Status(h.VbucketOrStatus)
}

// Encode writes the header to the wire in big-endian order into a 24-byte
// buffer. Encode and Decode are exact inverses of one another: a byte-order
// swap is its own inverse, so Decode(Encode(h)) == h for every header and
// Encode(Decode(b)) == b for every well-formed 24-byte buffer. On a
// big-endian host the conversion is a pure relabeling, never a reorder.
func (h Header) Encode() [HeaderSize]byte {
	var b [HeaderSize]byte
	b[0] = h.Magic
	b[1] = h.Opcode
	binary.BigEndian.PutUint16(b[2:4], h.KeyLength)
	b[4] = h.ExtrasLength
	b[5] = h.DataType
	binary.BigEndian.PutUint16(b[6:8], h.VbucketOrStatus)
	binary.BigEndian.PutUint32(b[8:12], h.BodyLength)
	binary.BigEndian.PutUint32(b[12:16], h.Opaque)
	binary.BigEndian.PutUint64(b[16:24], h.Cas)
	return b
}

// Decode parses a 24-byte wire buffer into a Header in host order.
func Decode(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrTruncatedHeader
	}
	return Header{
		Magic:           b[0],
		Opcode:          b[1],
		KeyLength:       binary.BigEndian.Uint16(b[2:4]),
		ExtrasLength:    b[4],
		DataType:        b[5],
		VbucketOrStatus: binary.BigEndian.Uint16(b[6:8]),
		BodyLength:      binary.BigEndian.Uint32(b[8:12]),
		Opaque:          binary.BigEndian.Uint32(b[12:16]),
		Cas:             binary.BigEndian.Uint64(b[16:24]),
	}, nil
}

// SetExtras are the SET/REPLACE extras: flags then expiration, 8 bytes total.
type SetExtras struct {
	Flags      uint32
	Expiration uint32
}

// Encode serializes the SET/REPLACE extras in big-endian wire order.
func (e SetExtras) Encode() [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint32(b[0:4], e.Flags)
	binary.BigEndian.PutUint32(b[4:8], e.Expiration)
	return b
}

// DecodeSetExtras parses an 8-byte SET/REPLACE extras block.
func DecodeSetExtras(b []byte) (SetExtras, error) {
	if len(b) < 8 {
		return SetExtras{}, ErrTruncatedHeader
	}
	return SetExtras{
		Flags:      binary.BigEndian.Uint32(b[0:4]),
		Expiration: binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// GetExtras are the extras attached to a successful GET response: flags only.
type GetExtras struct {
	Flags uint32
}

// Encode serializes the GET response extras in big-endian wire order.
func (e GetExtras) Encode() [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[0:4], e.Flags)
	return b
}

// DecodeGetExtras parses a 4-byte GET response extras block.
func DecodeGetExtras(b []byte) (GetExtras, error) {
	if len(b) < 4 {
		return GetExtras{}, ErrTruncatedHeader
	}
	return GetExtras{Flags: binary.BigEndian.Uint32(b[0:4])}, nil
}

// FlagCompressed, set in a GetExtras/SetExtras Flags field, indicates that the
// value bytes are gzip-compressed by the client, not by the server. See
// internal/valuecodec.
const FlagCompressed uint32 = 0x1
