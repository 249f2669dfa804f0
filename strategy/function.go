// Package strategy defines the small, closed set of plugin interfaces the
// iteration engine composes by indirection: the objective Function,
// BoundHandling, VelocityAdjustment, and PositionVelocityUpdater. The
// Neighborhood role is filled by topology.Topology; the two packages are
// kept separate only because the topology's attractor bookkeeping is
// substantial enough to deserve its own file set.
//
// The concrete catalog of objective functions and update policies is
// explicitly out of core scope; each interface here ships with exactly
// one reference implementation, in the style of fitness.Parabola, so the
// engine and its tests have something concrete to drive.
package strategy

import (
	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/vec"
)

// OutsideBoundsPolicy selects how a Function is queried when a position
// falls outside its declared bounds.
type OutsideBoundsPolicy int

const (
	// Normal passes the position through unchanged.
	Normal OutsideBoundsPolicy = iota
	// Infinity returns +Inf if any coordinate is out of bounds.
	Infinity
	// Periodic folds each coordinate into [lo, hi) before evaluating.
	Periodic
)

// Bounds holds the per-dimension [lo, hi) search-space bounds an objective
// function is evaluated within. Defaults to [-100, 100] per dimension
// until refined by FunctionBounds records.
type Bounds struct {
	Lo, Hi []float64
}

// NewDefaultBounds returns the [-100, 100], for
// the given dimensionality.
func NewDefaultBounds(dims int) Bounds {
	b := Bounds{Lo: make([]float64, dims), Hi: make([]float64, dims)}
	for i := range b.Lo {
		b.Lo[i] = -100
		b.Hi[i] = 100
	}
	return b
}

// Refine overwrites bounds for dimensions [from, to) with [lo, hi],
// applying FunctionBounds records in declaration order (later records
// refine earlier ones)
func (b *Bounds) Refine(from, to int, lo, hi float64) {
	for d := from; d < to; d++ {
		b.Lo[d] = lo
		b.Hi[d] = hi
	}
}

// Function is the abstract objective the engine optimizes: an evaluation
// operation plus a search-space-bounds query.
type Function interface {
	// Dimensions returns the number of inputs the function accepts.
	Dimensions() int
	// Bounds returns the function's search-space bounds.
	Bounds() Bounds
	// Evaluate queries the function at pos. Implementations are assumed
	// non-reentrant; the engine enforces this externally by wrapping the
	// objective in a guard that panics on a nested Evaluate (see
	// engine/reentrancy.go).
	Evaluate(ctx *bigfloat.Context, pos *vec.Vector) *bigfloat.F
}

// Sphere is the reference objective f(x) = sum((x_i - center_i)^2),
// grounded on fitness.Parabola and on the diagonal/norm function family
// with a unit diagonal.
type Sphere struct {
	Dims   int
	Center []float64
	B      Bounds
}

// NewSphere creates a Sphere centered at the origin with default bounds.
func NewSphere(dims int) *Sphere {
	return &Sphere{Dims: dims, Center: make([]float64, dims), B: NewDefaultBounds(dims)}
}

func (f *Sphere) Dimensions() int { return f.Dims }
func (f *Sphere) Bounds() Bounds  { return f.B }

func (f *Sphere) Evaluate(ctx *bigfloat.Context, pos *vec.Vector) *bigfloat.F {
	sum := ctx.FromInt64(0)
	for i, x := range pos.E {
		c := ctx.FromFloat64(f.Center[i])
		d := ctx.Sub(x, c)
		ctx.Release(c)
		sq := ctx.Multiply(d, d)
		ctx.Release(d)
		next := ctx.Add(sum, sq)
		ctx.Release(sq)
		ctx.Release(sum)
		sum = next
	}
	return sum
}

// BoundedFunction decorates an inner Function with the
// functionBehaviorOutsideOfBounds policy: the position is
// adjusted (or short-circuited to +Inf) before the inner function ever
// sees it.
type BoundedFunction struct {
	Inner  Function
	Policy OutsideBoundsPolicy
}

func (f *BoundedFunction) Dimensions() int { return f.Inner.Dimensions() }
func (f *BoundedFunction) Bounds() Bounds  { return f.Inner.Bounds() }

func (f *BoundedFunction) Evaluate(ctx *bigfloat.Context, pos *vec.Vector) *bigfloat.F {
	switch f.Policy {
	case Normal:
		return f.Inner.Evaluate(ctx, pos)
	case Infinity:
		b := f.Inner.Bounds()
		for i, x := range pos.E {
			lo := ctx.FromFloat64(b.Lo[i])
			hi := ctx.FromFloat64(b.Hi[i])
			out := ctx.Compare(x, lo) < 0 || ctx.Compare(x, hi) >= 0
			ctx.Release(lo)
			ctx.Release(hi)
			if out {
				return bigfloat.PosInf()
			}
		}
		return f.Inner.Evaluate(ctx, pos)
	case Periodic:
		folded := foldPeriodic(ctx, pos, f.Inner.Bounds())
		v := f.Inner.Evaluate(ctx, folded)
		folded.Release()
		return v
	default:
		return f.Inner.Evaluate(ctx, pos)
	}
}

// foldPeriodic reduces each coordinate into its [lo, hi) period, per
//: the interval
// is half-open, so the exact upper endpoint folds to lo. Reduction is
// floor((x-lo)/(hi-lo)) wrap counts followed by bounded corrective loops,
// matching original_source's bound_handling reduction style.
func foldPeriodic(ctx *bigfloat.Context, pos *vec.Vector, b Bounds) *vec.Vector {
	out := vec.New(ctx, pos.Len())
	for i, x := range pos.E {
		lo := ctx.FromFloat64(b.Lo[i])
		hi := ctx.FromFloat64(b.Hi[i])
		period := ctx.Sub(hi, lo)

		shifted := ctx.Sub(x, lo)
		q := ctx.Divide(shifted, period)
		qf := ctx.Floor(q)
		wrapped := ctx.Multiply(qf, period)
		folded := ctx.Sub(shifted, wrapped)
		result := ctx.Add(folded, lo)

		// Bounded corrective loop: floating-point boundary error can leave
		// result a representable ULP outside [lo, hi); nudge it back in,
		// at most a handful of times.
		for i := 0; i < 4 && ctx.Compare(result, hi) >= 0; i++ {
			fixed := ctx.Sub(result, period)
			ctx.Release(result)
			result = fixed
		}
		for i := 0; i < 4 && ctx.Compare(result, lo) < 0; i++ {
			fixed := ctx.Add(result, period)
			ctx.Release(result)
			result = fixed
		}

		out.Set(i, result)
		ctx.Release(lo)
		ctx.Release(hi)
		ctx.Release(period)
		ctx.Release(shifted)
		ctx.Release(q)
		ctx.Release(qf)
		ctx.Release(wrapped)
		ctx.Release(folded)
	}
	return out
}
