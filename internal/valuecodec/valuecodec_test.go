package valuecodec

import (
	"bytes"
	"testing"
)

func TestMaybeCompressDisabled(t *testing.T) {
	c := New(false, 0, false)
	value := bytes.Repeat([]byte("x"), 1024)
	out, compressed, err := c.MaybeCompress(value)
	if err != nil {
		t.Fatalf("MaybeCompress: %v", err)
	}
	if compressed {
		t.Fatal("expected no compression when disabled")
	}
	if !bytes.Equal(out, value) {
		t.Fatal("expected value unchanged when disabled")
	}
}

func TestMaybeCompressBelowMinSize(t *testing.T) {
	c := New(true, 4096, false)
	value := []byte("small")
	out, compressed, err := c.MaybeCompress(value)
	if err != nil {
		t.Fatalf("MaybeCompress: %v", err)
	}
	if compressed {
		t.Fatal("expected no compression below MinSize")
	}
	if !bytes.Equal(out, value) {
		t.Fatal("expected value unchanged below MinSize")
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		c := New(true, 8, parallel)
		value := bytes.Repeat([]byte("hello world "), 200)

		compressed, did, err := c.MaybeCompress(value)
		if err != nil {
			t.Fatalf("MaybeCompress: %v", err)
		}
		if !did {
			t.Fatal("expected compression to be applied")
		}
		if bytes.Equal(compressed, value) {
			t.Fatal("expected compressed bytes to differ from input")
		}

		restored, err := c.Decompress(compressed)
		if err != nil {
			t.Fatalf("Decompress: %v", err)
		}
		if !bytes.Equal(restored, value) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(restored), len(value))
		}
	}
}

func TestDecompressInvalidData(t *testing.T) {
	c := New(true, 0, false)
	if _, err := c.Decompress([]byte("not gzip data")); err == nil {
		t.Fatal("expected error decompressing invalid data")
	}
}
