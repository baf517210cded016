// Package valuecodec implements the optional, client-local value compression
// described in SPEC_FULL.md §4.J: values of at least a configured size are
// gzip-compressed before SET/REPLACE and transparently restored on GET, with
// the compression bit stashed in the wire `flags` extras field.
package valuecodec

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/pgzip"
)

// Codec compresses and decompresses SET/GET value payloads according to a
// fixed policy: values shorter than MinSize are left alone (compressing a
// tiny value usually grows it once gzip's framing overhead is counted).
type Codec struct {
	Enabled  bool
	MinSize  int
	Parallel bool
}

// New builds a Codec. A zero-value Codec is a valid, fully-disabled codec.
func New(enabled bool, minSize int, parallel bool) Codec {
	return Codec{Enabled: enabled, MinSize: minSize, Parallel: parallel}
}

// MaybeCompress compresses value if the codec is enabled and value is at
// least MinSize bytes long. It returns the (possibly unchanged) bytes and
// whether compression was applied; the caller uses the latter to set
// wire.FlagCompressed in the outgoing extras.
func (c Codec) MaybeCompress(value []byte) ([]byte, bool, error) {
	if !c.Enabled || len(value) < c.MinSize {
		return value, false, nil
	}

	var buf bytes.Buffer
	w, err := c.newWriter(&buf)
	if err != nil {
		return nil, false, fmt.Errorf("valuecodec: creating compressor: %w", err)
	}
	if _, err := w.Write(value); err != nil {
		return nil, false, fmt.Errorf("valuecodec: compressing value: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, false, fmt.Errorf("valuecodec: closing compressor: %w", err)
	}

	return buf.Bytes(), true, nil
}

// Decompress gunzips value. It is used whenever a GET response's flags carry
// wire.FlagCompressed, regardless of the codec's own Enabled setting: a
// replica wrote the value while compression was on, and the value must be
// restored even if the caller has since turned the feature off.
func (c Codec) Decompress(value []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(value))
	if err != nil {
		return nil, fmt.Errorf("valuecodec: opening compressed value: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("valuecodec: decompressing value: %w", err)
	}
	return out, nil
}

func (c Codec) newWriter(w io.Writer) (io.WriteCloser, error) {
	if c.Parallel {
		return pgzip.NewWriterLevel(w, flate.BestSpeed)
	}
	return gzip.NewWriterLevel(w, flate.BestSpeed)
}
