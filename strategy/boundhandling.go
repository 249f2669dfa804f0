package strategy

import (
	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/vec"
)

// BoundHandling reconciles a proposed position/velocity pair with the
// search-space bounds after a position update. It returns
// the corrected position and velocity; implementations own and may
// release their inputs, returning fresh handles.
type BoundHandling interface {
	Apply(ctx *bigfloat.Context, b Bounds, pos, vel *vec.Vector) (newPos, newVel *vec.Vector)
}

// Absorption clamps an out-of-bounds coordinate to the nearest edge and
// zeroes its velocity component, the classic "wall absorbs momentum"
// policy. Grounded on original_source's bound_handling clamp-and-zero
// variant.
type Absorption struct{}

func (Absorption) Apply(ctx *bigfloat.Context, b Bounds, pos, vel *vec.Vector) (*vec.Vector, *vec.Vector) {
	newPos := vec.New(ctx, pos.Len())
	newVel := vec.New(ctx, vel.Len())
	for i, x := range pos.E {
		lo := ctx.FromFloat64(b.Lo[i])
		hi := ctx.FromFloat64(b.Hi[i])
		switch {
		case ctx.Compare(x, lo) < 0:
			newPos.Set(i, ctx.Clone(lo))
			newVel.Set(i, ctx.FromInt64(0))
		case ctx.Compare(x, hi) >= 0:
			newPos.Set(i, ctx.Clone(hi))
			newVel.Set(i, ctx.FromInt64(0))
		default:
			newPos.Set(i, ctx.Clone(x))
			newVel.Set(i, ctx.Clone(vel.E[i]))
		}
		ctx.Release(lo)
		ctx.Release(hi)
	}
	return newPos, newVel
}

// Reflection reflects an out-of-bounds coordinate back across the
// boundary it crossed and negates its velocity component, matching
// original_source's reflect-and-bounce variant. A single reflection is
// applied; coordinates more than one period past the boundary are
// clamped to the far edge rather than bounced repeatedly.
type Reflection struct{}

func (Reflection) Apply(ctx *bigfloat.Context, b Bounds, pos, vel *vec.Vector) (*vec.Vector, *vec.Vector) {
	newPos := vec.New(ctx, pos.Len())
	newVel := vec.New(ctx, vel.Len())
	for i, x := range pos.E {
		lo := ctx.FromFloat64(b.Lo[i])
		hi := ctx.FromFloat64(b.Hi[i])
		switch {
		case ctx.Compare(x, lo) < 0:
			two := ctx.FromInt64(2)
			twoLo := ctx.Multiply(two, lo)
			reflected := ctx.Sub(twoLo, x)
			clamped := reflected
			if ctx.Compare(reflected, hi) >= 0 {
				clamped = ctx.Clone(hi)
				ctx.Release(reflected)
			}
			newPos.Set(i, clamped)
			newVel.Set(i, ctx.Negate(vel.E[i]))
			ctx.Release(two)
			ctx.Release(twoLo)
		case ctx.Compare(x, hi) >= 0:
			two := ctx.FromInt64(2)
			twoHi := ctx.Multiply(two, hi)
			reflected := ctx.Sub(twoHi, x)
			clamped := reflected
			if ctx.Compare(reflected, lo) < 0 {
				clamped = ctx.Clone(lo)
				ctx.Release(reflected)
			}
			newPos.Set(i, clamped)
			newVel.Set(i, ctx.Negate(vel.E[i]))
			ctx.Release(two)
			ctx.Release(twoHi)
		default:
			newPos.Set(i, ctx.Clone(x))
			newVel.Set(i, ctx.Clone(vel.E[i]))
		}
		ctx.Release(lo)
		ctx.Release(hi)
	}
	return newPos, newVel
}
