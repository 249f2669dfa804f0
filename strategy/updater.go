package strategy

import (
	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/vec"
)

// VelocityAdjustment is consulted when a particle's velocity component
// has been zeroed or reversed by BoundHandling and the swarm wants a
// chance to reinject exploration energy. It receives the
// velocity BoundHandling produced and returns a (possibly unchanged)
// replacement.
type VelocityAdjustment interface {
	Adjust(ctx *bigfloat.Context, vel *vec.Vector) *vec.Vector
}

// NoAdjustment passes the velocity through unchanged; the reference
// default.
type NoAdjustment struct{}

func (NoAdjustment) Adjust(ctx *bigfloat.Context, vel *vec.Vector) *vec.Vector {
	return vel.Clone()
}

// RandomReinjection replaces a zero velocity component with a small
// random kick, so a particle absorbed at a wall doesn't stall there
// permanently. Grounded on original_source's velocity-reinjection
// variant for wall-absorption bound handling.
type RandomReinjection struct {
	Scale float64
}

func (r RandomReinjection) Adjust(ctx *bigfloat.Context, vel *vec.Vector) *vec.Vector {
	out := vec.New(ctx, vel.Len())
	zero := ctx.FromInt64(0)
	defer ctx.Release(zero)
	for i, v := range vel.E {
		if ctx.Compare(v, zero) == 0 {
			u := ctx.Uniform()
			k := ctx.FromFloat64(r.Scale)
			kick := ctx.Multiply(u, k)
			ctx.Release(u)
			ctx.Release(k)
			out.Set(i, kick)
		} else {
			out.Set(i, ctx.Clone(v))
		}
	}
	return out
}

// PositionVelocityUpdater computes the next position and velocity for a
// single particle given its current state and the two attractors. chi is
// the constriction coefficient and cLocal/cGlobal the attraction
// coefficients.
type PositionVelocityUpdater interface {
	Update(ctx *bigfloat.Context, pos, vel, localAttractor, globalAttractor *vec.Vector, chi, cLocal, cGlobal float64) (newPos, newVel *vec.Vector)
}

// Standard implements the canonical constriction-coefficient PSO update:
//
//	vel' = chi * (vel + cLocal*rand()*(localAttractor-pos) + cGlobal*rand()*(globalAttractor-pos))
//	pos' = pos + vel'
//
// grounded on the pso package's velocity-update step and its
// constriction-factor formulation, generalized to arbitrary precision via
// vec.Vector and bigfloat.Context throughout.
type Standard struct{}

func (Standard) Update(ctx *bigfloat.Context, pos, vel, localAttractor, globalAttractor *vec.Vector, chi, cLocal, cGlobal float64) (*vec.Vector, *vec.Vector) {
	toLocal := localAttractor.Sub(pos)
	localPull := toLocal.RandomScale()
	localPull2 := localPull.ScaleFloat64(cLocal)
	toLocal.Release()
	localPull.Release()

	toGlobal := globalAttractor.Sub(pos)
	globalPull := toGlobal.RandomScale()
	globalPull2 := globalPull.ScaleFloat64(cGlobal)
	toGlobal.Release()
	globalPull.Release()

	sum := vel.Add(localPull2)
	sum2 := sum.Add(globalPull2)
	localPull2.Release()
	globalPull2.Release()
	sum.Release()

	newVel := sum2.ScaleFloat64(chi)
	sum2.Release()

	newPos := pos.Add(newVel)

	return newPos, newVel
}
