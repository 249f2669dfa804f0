// Package bigfloat implements the arbitrary-precision numeric substrate of
// the swarm engine: a pooled allocator, algebraic and transcendental
// operations with adaptive precision-loss detection, and the textual
// serialization used by checkpoints. Every value is an owned handle (*F)
// drawn from a Context, with precision, margin, and pool state bundled
// into that explicit context rather than kept as process-globals.
package bigfloat

import (
	"math"
	"math/big"
	"math/rand"

	"github.com/shiblon/bigpso/rng"
)

// PrecisionCheckPolicy selects when the adaptive precision-loss check
// is allowed to fire.
type PrecisionCheckPolicy int

const (
	CheckAlways PrecisionCheckPolicy = iota
	CheckAlwaysExceptStatistics
	CheckNever
)

// precisionIncrement is the fixed per-escalation step, in bits.
const precisionIncrement = 10

// Context bundles the process-wide state a real reimplementation would
// otherwise keep as globals: the working precision, the safety margin, the
// allocator, the precision-check policy and its RNG, and the lazily
// recomputed constant cache. One Context belongs to one engine run; tests
// create their own so they don't interfere with each other.
type Context struct {
	alloc *Allocator

	precision uint // bits, mutated only via RaisePrecision
	margin    uint // safety-margin bits

	raisePending bool

	checkPolicy      PrecisionCheckPolicy
	checkProbability float64
	checkRand        *rand.Rand
	statsDepth       int

	pi    *F
	piAt  uint
	e     *F
	eAt   uint

	source *rng.Engine
}

// SetRandomSource installs the engine used by Uniform and Gaussian.
func (c *Context) SetRandomSource(e *rng.Engine) { c.source = e }

// RandomSource returns the currently installed random source, or nil.
func (c *Context) RandomSource() *rng.Engine { return c.source }

// NewContext creates a Context at the given initial precision and safety
// margin, with adaptive precision checks enabled per policy/probability.
func NewContext(initialPrecision, margin uint, policy PrecisionCheckPolicy, probability float64) *Context {
	return &Context{
		alloc:            NewAllocator(),
		precision:        initialPrecision,
		margin:           margin,
		checkPolicy:      policy,
		checkProbability: probability,
		checkRand:        rand.New(rand.NewSource(1)),
	}
}

// Precision returns the current working precision in bits.
func (c *Context) Precision() uint { return c.precision }

// Margin returns the configured safety-margin bits.
func (c *Context) Margin() uint { return c.margin }

// SetPrecision forcibly sets the working precision, e.g. when restoring a
// checkpoint. It does not itself invalidate cached constants; the cache
// accessors (Pi, E) compare their precision stamp with the current
// precision instead.
func (c *Context) SetPrecision(p uint) { c.precision = p }

// RaisePrecisionPending reports whether an operation has flagged a loss of
// precision since the last clear. The engine consults this only between
// particle updates and after applying pending global-attractor updates,
// never mid-operation.
func (c *Context) RaisePrecisionPending() bool { return c.raisePending }

// FlagPrecisionLoss sets the pending flag. Called by operations; never
// cleared by them.
func (c *Context) FlagPrecisionLoss() { c.raisePending = true }

// RaisePrecision increases the working precision by the fixed 10-bit
// increment and clears the pending flag. Must only be called by the engine
// at a safe point.
func (c *Context) RaisePrecision() {
	c.precision += precisionIncrement
	c.raisePending = false
}

// Allocator exposes the underlying pooled allocator for leak-diagnostic
// reporting (in_use - cached) by the engine.
func (c *Context) Allocator() *Allocator { return c.alloc }

// EnterStatisticalRegion marks entry into a (possibly nested) statistics
// evaluation. While depth > 0 and the policy is CheckAlwaysExceptStatistics,
// the adaptive precision check is suppressed. Returns a function that must
// be called to leave the region (defer c.EnterStatisticalRegion()()).
func (c *Context) EnterStatisticalRegion() func() {
	c.statsDepth++
	return func() { c.statsDepth-- }
}

func (c *Context) inStatisticalRegion() bool { return c.statsDepth > 0 }

// acquire pulls a finite handle of the current precision from the pool.
func (c *Context) acquire() *F {
	return &F{kind: kindFinite, val: c.alloc.acquire(c.precision)}
}

// Release returns f to the allocator. Releasing a sentinel is a no-op;
// releasing nil is also a no-op for caller convenience.
func (c *Context) Release(f *F) {
	if f == nil || IsSentinel(f) {
		return
	}
	c.alloc.release(f.val)
}

// Clone returns a deep copy of f: a new handle equal in sign, mantissa,
// exponent, and precision. Sentinels clone to themselves (they are
// immortal and non-owning).
func (c *Context) Clone(f *F) *F {
	if IsSentinel(f) {
		return f
	}
	out := c.acquire()
	out.val.v.Copy(f.val.v)
	return out
}

// FromFloat64 constructs a handle from a double, mapping NaN/+Inf/-Inf to
// the corresponding sentinels.
func (c *Context) FromFloat64(x float64) *F {
	switch {
	case x != x:
		return NaN()
	case math.IsInf(x, 1):
		return PosInf()
	case math.IsInf(x, -1):
		return NegInf()
	}
	out := c.acquire()
	out.val.v.SetFloat64(x)
	return out
}

// FromInt64 constructs a handle from an int64.
func (c *Context) FromInt64(x int64) *F {
	out := c.acquire()
	out.val.v.SetInt64(x)
	return out
}

// FromUint64 constructs a handle from a uint64.
func (c *Context) FromUint64(x uint64) *F {
	out := c.acquire()
	out.val.v.SetUint64(x)
	return out
}

// FromBigInt constructs a handle from an arbitrary-precision integer,
// chunking through the big.Int<->big.Float conversion the standard library
// already performs correctly.
func (c *Context) FromBigInt(x *big.Int) *F {
	out := c.acquire()
	out.val.v.SetInt(x)
	return out
}

// FromInt constructs a handle from a machine int.
func (c *Context) FromInt(x int) *F { return c.FromInt64(int64(x)) }

// ToFloat64 returns the nearest float64 to a finite handle (used only for
// cheap magnitude reporting, e.g. Log2AsFloat64). Sentinels convert to
// their IEEE-754 analogues.
func (c *Context) ToFloat64(f *F) float64 {
	switch {
	case IsNaN(f):
		return math.NaN()
	case IsPosInf(f):
		return math.Inf(1)
	case IsNegInf(f):
		return math.Inf(-1)
	}
	v, _ := f.val.v.Float64()
	return v
}
