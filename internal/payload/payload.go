// Package payload holds the pre-rendered response body in raw and
// gzip-compressed form. A Payload is built once at worker startup and is
// read-only afterwards, so handlers may share it without locking.
package payload

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

type Payload struct {
	raw  []byte
	gzip []byte
	etag string
}

// Build renders the immutable payload pair from a UTF-8 document. The ETag is
// derived from the raw byte length, mirroring the cache-validation contract of
// the serving layer.
func Build(doc string) (*Payload, error) {
	raw := []byte(doc)

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flush payload: %w", err)
	}

	return &Payload{
		raw:  raw,
		gzip: buf.Bytes(),
		etag: fmt.Sprintf("\"ng-%d\"", len(raw)),
	}, nil
}

// Raw returns the uncompressed body. Callers must not mutate it.
func (p *Payload) Raw() []byte { return p.raw }

// Gzip returns the pre-compressed body. Callers must not mutate it.
func (p *Payload) Gzip() []byte { return p.gzip }

func (p *Payload) ETag() string { return p.etag }
