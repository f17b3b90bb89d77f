package s3

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"assemblycore/internal/blob/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv(EnvBucket, "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestMockRoundTrip(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if store.Bucket() != mockBucket {
		t.Fatalf("unexpected bucket %s", store.Bucket())
	}
	info, err := store.Put(ctx, "runs/r1/plan_bundle.json", strings.NewReader(`{"tipracks":1}`), core.PutOptions{ContentType: core.ContentTypeJSON})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ETag == "" || info.Size != int64(len(`{"tipracks":1}`)) {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "runs/r1/plan_bundle.json", strings.NewReader("{}"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := store.Get(ctx, "runs/r1/plan_bundle.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != `{"tipracks":1}` {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestPresignCarriesExpiry(t *testing.T) {
	store := NewMockForTests()
	raw, err := store.PresignURL(context.Background(), "runs/r1/x.csv", core.SignedURLOptions{Expiry: 2 * time.Minute})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Query().Get("X-Amz-Expires") != "120" {
		t.Fatalf("unexpected expiry in %s", raw)
	}
	if !strings.Contains(u.Path, "/"+mockBucket+"/runs/r1/x.csv") {
		t.Fatalf("expected path-style url, got %s", raw)
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	raw := []byte("5;chunk-signature=abc\r\nhello\r\n6\r\n world\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n")
	out, err := decodeAWSChunked(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out) != "hello world" {
		t.Fatalf("unexpected payload %q", out)
	}
	if _, err := decodeAWSChunked([]byte("zz\r\n")); err == nil {
		t.Fatalf("expected size error")
	}
}
