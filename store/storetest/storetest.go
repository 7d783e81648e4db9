// Package storetest holds a shared conformance check for httpcache.Manager
// implementations, run by every store subpackage against its own backend.
package storetest

import (
	"bytes"
	"context"
	"testing"

	"github.com/arcbridge/httpcache"
)

// Manager exercises a fresh httpcache.Manager implementation through a
// basic get/put/delete round trip.
func Manager(t *testing.T, m httpcache.Manager) {
	t.Helper()
	ctx := context.Background()
	key := "testKey"

	if _, ok, err := m.Get(ctx, key); err != nil {
		t.Fatalf("error getting key: %v", err)
	} else if ok {
		t.Fatal("retrieved key before adding it")
	}

	val := []byte("some bytes")
	if err := m.Put(ctx, key, val); err != nil {
		t.Fatalf("error putting key: %v", err)
	}

	retVal, ok, err := m.Get(ctx, key)
	if err != nil {
		t.Fatalf("error getting key: %v", err)
	}
	if !ok {
		t.Fatal("could not retrieve an element we just added")
	}
	if !bytes.Equal(retVal, val) {
		t.Fatal("retrieved a different value than what we put in")
	}

	if err := m.Delete(ctx, key); err != nil {
		t.Fatalf("error deleting key: %v", err)
	}

	if _, ok, err := m.Get(ctx, key); err != nil {
		t.Fatalf("error getting key: %v", err)
	} else if ok {
		t.Fatal("deleted key still present")
	}

	if err := m.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("deleting an absent key should not error: %v", err)
	}
}
