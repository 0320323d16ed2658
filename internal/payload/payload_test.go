package payload

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/nightglow-io/nightglow/internal/page"
)

func TestBuildRoundTrip(t *testing.T) {
	doc := page.Document()
	p, err := Build(doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if string(p.Raw()) != doc {
		t.Fatal("raw payload does not match document")
	}

	zr, err := gzip.NewReader(bytes.NewReader(p.Gzip()))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer zr.Close()
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(decoded, p.Raw()) {
		t.Fatal("compressed payload does not round-trip to raw")
	}
}

func TestBuildCompressionShrinks(t *testing.T) {
	p, err := Build(page.Document())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Gzip()) >= len(p.Raw()) {
		t.Fatalf("gzip body (%d bytes) not smaller than raw body (%d bytes)", len(p.Gzip()), len(p.Raw()))
	}
}

func TestETagDerivedFromSize(t *testing.T) {
	p, err := Build("hello world")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.ETag() != "\"ng-11\"" {
		t.Fatalf("etag = %s, want \"ng-11\"", p.ETag())
	}
	if !strings.HasPrefix(p.ETag(), "\"") || !strings.HasSuffix(p.ETag(), "\"") {
		t.Fatalf("etag %s is not quoted", p.ETag())
	}
}
