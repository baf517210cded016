package client

import (
	"net"
	"sync"

	"github.com/nbclient/memcring/internal/wire"
)

// fakeServer is a minimal in-memory memcached binary protocol server used to
// exercise the client end to end, in lieu of a real memcached instance.
type fakeServer struct {
	ln net.Listener

	mu    sync.Mutex
	store map[string]fakeItem

	acceptFail bool // when true, refuses new connections after listener setup
}

type fakeItem struct {
	value []byte
	flags uint32
	cas   uint64
}

func newFakeServer() (*fakeServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &fakeServer{ln: ln, store: make(map[string]fakeItem)}
	go s.acceptLoop()
	return s, nil
}

func (s *fakeServer) addr() (string, string) {
	host, port, _ := net.SplitHostPort(s.ln.Addr().String())
	return host, port
}

func (s *fakeServer) close() {
	s.ln.Close()
}

// seedSuccess preloads an item directly into the store, bypassing the wire
// protocol, so a test can assert on a pre-existing key without a prior SET.
func (s *fakeServer) seedSuccess(key, value string) error {
	fakeCasCounter++
	s.mu.Lock()
	s.store[key] = fakeItem{value: []byte(value), cas: fakeCasCounter}
	s.mu.Unlock()
	return nil
}

func (s *fakeServer) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		refuse := s.acceptFail
		s.mu.Unlock()
		if refuse {
			conn.Close()
			continue
		}
		go s.serve(conn)
	}
}

var fakeCasCounter uint64

func (s *fakeServer) serve(conn net.Conn) {
	defer conn.Close()
	for {
		var hdrBuf [wire.HeaderSize]byte
		if _, err := readFull(conn, hdrBuf[:]); err != nil {
			return
		}
		hdr, err := wire.Decode(hdrBuf[:])
		if err != nil {
			return
		}

		extras := make([]byte, hdr.ExtrasLength)
		if len(extras) > 0 {
			if _, err := readFull(conn, extras); err != nil {
				return
			}
		}
		key := make([]byte, hdr.KeyLength)
		if len(key) > 0 {
			if _, err := readFull(conn, key); err != nil {
				return
			}
		}
		valueLen := int(hdr.BodyLength) - int(hdr.ExtrasLength) - int(hdr.KeyLength)
		var value []byte
		if valueLen > 0 {
			value = make([]byte, valueLen)
			if _, err := readFull(conn, value); err != nil {
				return
			}
		}

		switch hdr.Opcode {
		case wire.OpGet:
			s.handleGet(conn, hdr, key)
		case wire.OpSet, wire.OpReplace:
			s.handleSet(conn, hdr, extras, key, value)
		case wire.OpDelete:
			s.handleDelete(conn, hdr, key)
		case wire.OpQuit:
			s.handleQuit(conn, hdr)
			return
		default:
			return
		}
	}
}

func (s *fakeServer) handleGet(conn net.Conn, hdr wire.Header, key []byte) {
	s.mu.Lock()
	item, ok := s.store[string(key)]
	s.mu.Unlock()

	if !ok {
		writeResponse(conn, wire.OpGet, hdr.Opaque, wire.StatusKeyNotFound, 0, nil, nil)
		return
	}
	extras := wire.GetExtras{Flags: item.flags}.Encode()
	writeResponseCas(conn, wire.OpGet, hdr.Opaque, wire.StatusSuccess, item.cas, extras[:], item.value)
}

func (s *fakeServer) handleSet(conn net.Conn, hdr wire.Header, extras, key, value []byte) {
	se, _ := wire.DecodeSetExtras(extras)
	fakeCasCounter++
	cas := fakeCasCounter

	s.mu.Lock()
	s.store[string(key)] = fakeItem{value: append([]byte(nil), value...), flags: se.Flags, cas: cas}
	s.mu.Unlock()

	writeResponseCas(conn, hdr.Opcode, hdr.Opaque, wire.StatusSuccess, cas, nil, nil)
}

func (s *fakeServer) handleDelete(conn net.Conn, hdr wire.Header, key []byte) {
	s.mu.Lock()
	delete(s.store, string(key))
	s.mu.Unlock()
	writeResponse(conn, wire.OpDelete, hdr.Opaque, wire.StatusSuccess, 0, nil, nil)
}

func (s *fakeServer) handleQuit(conn net.Conn, hdr wire.Header) {
	writeResponse(conn, wire.OpQuit, hdr.Opaque, wire.StatusSuccess, 0, nil, nil)
}

func writeResponse(conn net.Conn, opcode byte, opaque uint32, status wire.Status, cas uint64, extras, value []byte) {
	writeResponseCas(conn, opcode, opaque, status, cas, extras, value)
}

func writeResponseCas(conn net.Conn, opcode byte, opaque uint32, status wire.Status, cas uint64, extras, value []byte) {
	hdr := wire.Header{
		Magic:           wire.MagicResponse,
		Opcode:          opcode,
		KeyLength:       0,
		ExtrasLength:    byte(len(extras)),
		DataType:        wire.DataType,
		VbucketOrStatus: uint16(status),
		BodyLength:      uint32(len(extras) + len(value)),
		Opaque:          opaque,
		Cas:             cas,
	}
	enc := hdr.Encode()
	conn.Write(enc[:])
	if len(extras) > 0 {
		conn.Write(extras)
	}
	if len(value) > 0 {
		conn.Write(value)
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
