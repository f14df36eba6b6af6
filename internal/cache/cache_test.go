package cache

import "testing"

func TestEvictMatching(t *testing.T) {
	c := New(0)
	c.Set("pack/P/tile/0", []byte("a"))
	c.Set("pack/P/tile/1", []byte("b"))
	c.Set("pack/Q/tile/0", []byte("c"))

	if n := c.EvictMatching("pack/P/"); n != 2 {
		t.Fatalf("evicted %d, want 2", n)
	}
	if _, ok := c.Get("pack/P/tile/0"); ok {
		t.Fatal("evicted entry still readable")
	}
	if _, ok := c.Get("pack/Q/tile/0"); !ok {
		t.Fatal("unrelated entry was evicted")
	}
}
