package wire

import (
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Magic:           MagicRequest,
		Opcode:          OpSet,
		KeyLength:       5,
		ExtrasLength:    8,
		DataType:        DataType,
		VbucketOrStatus: 0,
		BodyLength:      13,
		Opaque:          0x02,
		Cas:             0xdeadbeefcafebabe,
	}

	encoded := h.Encode()
	decoded, err := Decode(encoded[:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, h)
	}

	reencoded := decoded.Encode()
	if reencoded != encoded {
		t.Fatalf("re-encode mismatch: got %x, want %x", reencoded, encoded)
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(make([]byte, HeaderSize-1))
	if err != ErrTruncatedHeader {
		t.Fatalf("expected ErrTruncatedHeader, got %v", err)
	}
}

func TestGetMissWireBytes(t *testing.T) {
	// Request header from the spec's literal GET-miss scenario.
	want := []byte{
		0x80, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	h := Header{
		Magic:        MagicRequest,
		Opcode:       OpGet,
		KeyLength:    3,
		ExtrasLength: 0,
		DataType:     DataType,
		BodyLength:   3,
		Opaque:       0x02,
		Cas:          0,
	}
	got := h.Encode()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#02x, want %#02x", i, got[i], want[i])
		}
	}
}

func TestSetExtrasRoundTrip(t *testing.T) {
	e := SetExtras{Flags: FlagCompressed, Expiration: 120}
	enc := e.Encode()
	dec, err := DecodeSetExtras(enc[:])
	if err != nil {
		t.Fatalf("DecodeSetExtras: %v", err)
	}
	if dec != e {
		t.Fatalf("got %+v, want %+v", dec, e)
	}
}

func TestGetExtrasRoundTrip(t *testing.T) {
	e := GetExtras{Flags: 0xabcdef01}
	enc := e.Encode()
	dec, err := DecodeGetExtras(enc[:])
	if err != nil {
		t.Fatalf("DecodeGetExtras: %v", err)
	}
	if dec != e {
		t.Fatalf("got %+v, want %+v", dec, e)
	}
}

func TestDecodeSetExtrasTruncated(t *testing.T) {
	if _, err := DecodeSetExtras(make([]byte, 7)); err != ErrTruncatedHeader {
		t.Fatalf("expected ErrTruncatedHeader, got %v", err)
	}
}

func TestDecodeGetExtrasTruncated(t *testing.T) {
	if _, err := DecodeGetExtras(make([]byte, 3)); err != ErrTruncatedHeader {
		t.Fatalf("expected ErrTruncatedHeader, got %v", err)
	}
}
