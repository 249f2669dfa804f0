package bigfloat

import "testing"

func TestAcquireReleaseRoundTrip(t *testing.T) {
	a := NewAllocator()
	before := a.InUseCount()
	bf := a.acquire(64)
	if a.InUseCount() != before+1 {
		t.Fatalf("in-use count after acquire = %d, want %d", a.InUseCount(), before+1)
	}
	a.release(bf)
	if a.InUseCount() != before {
		t.Fatalf("in-use count after release = %d, want %d", a.InUseCount(), before)
	}
	if a.CachedCount() != 0 {
		t.Fatalf("cached count changed unexpectedly: %d", a.CachedCount())
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	a := NewAllocator()
	bf := a.acquire(64)
	a.release(bf)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	a.release(bf)
}

func TestSentinelReleaseIsNoop(t *testing.T) {
	c := NewContext(64, 8, CheckNever, 0)
	before := c.Allocator().InUseCount()
	c.Release(NaN())
	c.Release(PosInf())
	c.Release(NegInf())
	if c.Allocator().InUseCount() != before {
		t.Fatalf("in-use count changed after releasing sentinels: %d -> %d", before, c.Allocator().InUseCount())
	}
}

func TestCacheDelta(t *testing.T) {
	a := NewAllocator()
	a.NoteCacheDelta(1)
	a.NoteCacheDelta(1)
	a.NoteCacheDelta(-1)
	if a.CachedCount() != 1 {
		t.Fatalf("cached count = %d, want 1", a.CachedCount())
	}
}
