package client

import "fmt"

// ErrorKind is the closed taxonomy of error kinds from SPEC_FULL.md §7. Kinds
// are ordered so that the zero value is "no error" and so that "most
// specific" failures sort lowest — total-failure paths return the smallest
// kind observed across replicas, matching the source's "smallest error wins"
// propagation rule.
type ErrorKind int

const (
	// KindNone means no error occurred.
	KindNone ErrorKind = iota

	// KindAllocation: failure to allocate core client records.
	KindAllocation
	// KindUninitialized: the client has not been Init'd yet.
	KindUninitialized
	// KindAddressMissing: no backend address could be resolved.
	KindAddressMissing
	// KindSocket: socket creation/option failure, tolerated per-replica.
	KindSocket
	// KindConnect: connect() failed on a replica.
	KindConnect
	// KindSendInvalidHdr: a short write while sending the header.
	KindSendInvalidHdr
	// KindSendHdr: a caller-supplied zero-length extras block.
	KindSendHdr
	// KindSendInvalidKey: a short write while sending the key.
	KindSendInvalidKey
	// KindSendInvalidMsg: a short write while sending the value.
	KindSendInvalidMsg
	// KindSendExt: a short write while sending extras (translated to
	// KindRecvKeyNotFound on the GET path, per the wire quirk in §4.D).
	KindSendExt
	// KindRecvInvalidHdr: the response header could not be read/decoded.
	KindRecvInvalidHdr
	// KindRecvInvalidExt: the response extras length did not match.
	KindRecvInvalidExt
	// KindRecvInvalidKey: the response key length did not match.
	KindRecvInvalidKey
	// KindRecvInvalidMsg: the response value length did not match, or the
	// body length was smaller than extras+key length, or decompression of a
	// compressed value failed.
	KindRecvInvalidMsg
	// KindRecvKeyNotFound: the key does not exist on this replica.
	KindRecvKeyNotFound
	// KindRecvOpaqueMismatch: the response's opaque did not echo the request's.
	KindRecvOpaqueMismatch
	// KindThread: a worker could not be launched. Goroutine launch does not
	// fail and the client has no worker budget, so no code path returns it.
	KindThread
	// KindOverflow: a length exceeds the wire format's bounds.
	KindOverflow
	// KindSendKeyErr: the caller supplied an empty key.
	KindSendKeyErr
	// KindNothingToJoin: join-barrier had nothing to wait on. Not an error
	// condition; no operation returns it, and it keeps its place in the
	// numbering only for parity with the source.
	KindNothingToJoin
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAllocation:
		return "allocation"
	case KindUninitialized:
		return "uninitialized"
	case KindAddressMissing:
		return "address missing"
	case KindSocket:
		return "socket"
	case KindConnect:
		return "connect"
	case KindSendInvalidHdr:
		return "send invalid header"
	case KindSendHdr:
		return "send header"
	case KindSendInvalidKey:
		return "send invalid key"
	case KindSendInvalidMsg:
		return "send invalid value"
	case KindSendExt:
		return "send extras"
	case KindRecvInvalidHdr:
		return "recv invalid header"
	case KindRecvInvalidExt:
		return "recv invalid extras"
	case KindRecvInvalidKey:
		return "recv invalid key"
	case KindRecvInvalidMsg:
		return "recv invalid value"
	case KindRecvKeyNotFound:
		return "key not found"
	case KindRecvOpaqueMismatch:
		return "opaque mismatch"
	case KindThread:
		return "worker spawn failed"
	case KindOverflow:
		return "length overflow"
	case KindSendKeyErr:
		return "empty key"
	case KindNothingToJoin:
		return "nothing to join"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// OpError wraps an ErrorKind with the replica index and underlying cause, if
// any, that produced it.
type OpError struct {
	Kind    ErrorKind
	Replica int
	Err     error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memcring: replica %d: %s: %v", e.Replica, e.Kind, e.Err)
	}
	return fmt.Sprintf("memcring: replica %d: %s", e.Replica, e.Kind)
}

func (e *OpError) Unwrap() error { return e.Err }

// Is reports whether target is an *OpError with the same Kind, so callers can
// write errors.Is(err, &client.OpError{Kind: client.KindConnect}).
func (e *OpError) Is(target error) bool {
	oe, ok := target.(*OpError)
	if !ok {
		return false
	}
	return e.Kind == oe.Kind
}

func opErr(kind ErrorKind, replica int, cause error) *OpError {
	return &OpError{Kind: kind, Replica: replica, Err: cause}
}
