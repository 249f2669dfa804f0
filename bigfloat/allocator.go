package bigfloat

import (
	"fmt"
	"math/big"
)

// bigFloat is the payload of a non-sentinel handle: a pooled *big.Float.
// Its pointer identity is what the allocator's free-list bookkeeping uses
// to detect a double release.
type bigFloat struct {
	v *big.Float
}

// Allocator is a pooled source of bigFloat payloads. It maintains a free
// list that grows geometrically (doubling) when exhausted, and tracks
// in-use vs. cached counts for leak diagnostics. It is not safe for use
// from multiple goroutines without external synchronization; the engine
// is single-threaded by design and the allocator mirrors that.
type Allocator struct {
	free      []*bigFloat
	available map[*bigFloat]bool
	inUse     int
	cached    int
	batch     int
}

// NewAllocator creates an empty allocator. The first acquire triggers the
// initial batch allocation.
func NewAllocator() *Allocator {
	return &Allocator{available: make(map[*bigFloat]bool)}
}

// grow appends a geometrically-growing batch of fresh payloads to the free
// list. The batch size doubles on every call, starting at 8.
func (a *Allocator) grow() {
	if a.batch == 0 {
		a.batch = 8
	} else {
		a.batch *= 2
	}
	for i := 0; i < a.batch; i++ {
		bf := &bigFloat{v: new(big.Float)}
		a.free = append(a.free, bf)
		a.available[bf] = true
	}
}

// acquire pops a payload off the free list (growing it first if empty),
// marks it in-use, and sets its precision to prec bits. The returned
// big.Float's value is unspecified (callers must set it before reading).
func (a *Allocator) acquire(prec uint) *bigFloat {
	if len(a.free) == 0 {
		a.grow()
	}
	n := len(a.free) - 1
	bf := a.free[n]
	a.free = a.free[:n]
	delete(a.available, bf)
	bf.v.SetPrec(prec)
	a.inUse++
	return bf
}

// release returns a payload to the free list. Releasing a payload that is
// already on the free list (a double release) is a program error and
// panics
func (a *Allocator) release(bf *bigFloat) {
	if bf == nil {
		return
	}
	if a.available[bf] {
		panic(fmt.Sprintf("bigfloat: double release of handle %p", bf))
	}
	a.available[bf] = true
	a.free = append(a.free, bf)
	a.inUse--
}

// InUseCount returns the number of non-sentinel handles currently acquired
// and not yet released.
func (a *Allocator) InUseCount() int { return a.inUse }

// CachedCount returns the advisory count of handles held by long-lived
// caches, as reported via NoteCacheDelta.
func (a *Allocator) CachedCount() int { return a.cached }

// NoteCacheDelta adjusts the advisory cached-handle count. Components that
// hold a long-lived F (cached pi/e, a function's scale vector, a rotation
// matrix) call NoteCacheDelta(+1) when they store a handle and
// NoteCacheDelta(-1) when they replace or discard it, so that
// InUseCount()-CachedCount() is a meaningful "live" handle count for leak
// detection.
func (a *Allocator) NoteCacheDelta(n int) { a.cached += n }
