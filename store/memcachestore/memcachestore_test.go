package memcachestore

import (
	"context"
	"testing"

	"github.com/arcbridge/httpcache/store/storetest"
)

func TestMemcacheStore(t *testing.T) {
	manager := New("localhost:11211")
	if err := manager.Put(context.Background(), "probe", []byte("1")); err != nil {
		t.Skipf("skipping test; no memcached running at localhost:11211: %v", err)
	}

	storetest.Manager(t, manager)
}
