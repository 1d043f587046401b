package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("empty cache must miss")
	}

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("got %v, %v", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("overwrite: got %v", v)
	}
	if c.Len() != 1 {
		t.Fatalf("len: got %d", c.Len())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should survive")
	}
	if c.Len() != 2 {
		t.Fatalf("len: got %d", c.Len())
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](4, time.Nanosecond)
	c.Set("a", 1)
	time.Sleep(time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry must miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be dropped, len=%d", c.Len())
	}
}
