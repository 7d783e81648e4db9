package compressstore

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/arcbridge/httpcache/store/memstore"
)

func TestGzipRoundTrip(t *testing.T) {
	manager, err := NewGzip(GzipConfig{Manager: memstore.New()})
	if err != nil {
		t.Fatalf("NewGzip: %v", err)
	}

	ctx := context.Background()
	payload := []byte(strings.Repeat("hello world ", 100))

	if err := manager.Put(ctx, "k", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := manager.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected entry to be present")
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round-tripped value does not match original")
	}

	stats := manager.Stats()
	if stats.CompressedCount != 1 {
		t.Fatalf("expected one compressed entry, got %d", stats.CompressedCount)
	}
	if stats.CompressedBytes >= stats.UncompressedBytes {
		t.Fatalf("expected repetitive payload to compress smaller: compressed=%d uncompressed=%d",
			stats.CompressedBytes, stats.UncompressedBytes)
	}
}

func TestBrotliRoundTrip(t *testing.T) {
	manager, err := NewBrotli(BrotliConfig{Manager: memstore.New()})
	if err != nil {
		t.Fatalf("NewBrotli: %v", err)
	}

	ctx := context.Background()
	payload := []byte(strings.Repeat("abcdefg", 50))

	if err := manager.Put(ctx, "k", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := manager.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round-tripped value does not match original")
	}
}

func TestSnappyRoundTrip(t *testing.T) {
	manager, err := NewSnappy(SnappyConfig{Manager: memstore.New()})
	if err != nil {
		t.Fatalf("NewSnappy: %v", err)
	}

	ctx := context.Background()
	payload := []byte("a small payload")

	if err := manager.Put(ctx, "k", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := manager.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("round-tripped value does not match original")
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	manager, err := NewGzip(GzipConfig{Manager: memstore.New()})
	if err != nil {
		t.Fatalf("NewGzip: %v", err)
	}

	ctx := context.Background()
	if err := manager.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := manager.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, err := manager.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss after delete, got ok=%v err=%v", ok, err)
	}
}
