// Package stats implements the composable statistics pipeline:
// matrix-producing "specific" evaluations over swarm state, and
// vector-producing statistics built from reductions, combines, and
// elementwise operations over those specifics. Every node is a tagged
// variant with a uniform Evaluate contract; the specifics read the same
// Position/Velocity/per-particle state pso's Swarm exposes, though the
// composable AST itself has no direct precedent since pso has no
// statistics subsystem of its own.
package stats

import (
	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/particle"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
	"github.com/shiblon/bigpso/vec"
)

// Matrix is an N (particles) by D (dimensions) grid of owned handles.
type Matrix [][]*bigfloat.F

// Release releases every handle in the matrix.
func (m Matrix) Release(ctx *bigfloat.Context) {
	for _, row := range m {
		for _, f := range row {
			ctx.Release(f)
		}
	}
}

// Dims returns (N, D). D is 0 for an empty matrix.
func (m Matrix) Dims() (int, int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Specific is a matrix-producing evaluation over the swarm's current
// state.
type Specific interface {
	Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix
}

// PositionSpecific yields each particle's current position.
type PositionSpecific struct{}

func (PositionSpecific) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix {
	m := make(Matrix, len(particles))
	for i, p := range particles {
		m[i] = cloneRow(ctx, p.Position.E)
	}
	return m
}

// VelocitySpecific yields each particle's current velocity.
type VelocitySpecific struct{}

func (VelocitySpecific) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix {
	m := make(Matrix, len(particles))
	for i, p := range particles {
		m[i] = cloneRow(ctx, p.Velocity.E)
	}
	return m
}

// LocalAttractorSpecific yields each particle's local attractor position.
type LocalAttractorSpecific struct{}

func (LocalAttractorSpecific) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix {
	m := make(Matrix, len(particles))
	for i, p := range particles {
		m[i] = cloneRow(ctx, p.LocalAttractor.E)
	}
	return m
}

// GlobalAttractorSpecific yields the global attractor position each
// particle currently observes (these may differ under a non-gbest
// topology).
type GlobalAttractorSpecific struct{}

func (GlobalAttractorSpecific) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix {
	m := make(Matrix, len(particles))
	for i, p := range particles {
		v := topo.GlobalAttractorPosition(ctx, p.ID)
		m[i] = v.E
	}
	return m
}

// NamedConstant identifies one of the well-known constants a
// ConstantSpecific can broadcast.
type NamedConstant int

const (
	ConstantPi NamedConstant = iota
	ConstantE
	ConstantPosInf
	ConstantNegInf
	ConstantLiteral
)

// ConstantSpecific broadcasts a single scalar to every cell of an N×D
// matrix matching the shape of another specific.
type ConstantSpecific struct {
	Which   NamedConstant
	Literal float64
	Shape   Specific
}

func (c ConstantSpecific) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix {
	shape := c.Shape.Evaluate(ctx, particles, topo)
	n, d := shape.Dims()
	shape.Release(ctx)

	val := c.constant(ctx)
	defer ctx.Release(val)

	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]*bigfloat.F, d)
		for j := range m[i] {
			m[i][j] = ctx.Clone(val)
		}
	}
	return m
}

func (c ConstantSpecific) constant(ctx *bigfloat.Context) *bigfloat.F {
	switch c.Which {
	case ConstantPi:
		return ctx.Pi()
	case ConstantE:
		return ctx.E()
	case ConstantPosInf:
		return bigfloat.PosInf()
	case ConstantNegInf:
		return bigfloat.NegInf()
	default:
		return ctx.FromFloat64(c.Literal)
	}
}

// ElementwiseOp names a unary elementwise operation shared by
// ElementwiseSpecific and the vector-level elementwise statistic.
type ElementwiseOp int

const (
	OpSqrt ElementwiseOp = iota
	OpAbs
	OpExp
	OpLogE
	OpLog2
	OpLog2AsFloat64
	OpSin
	OpCos
	OpTan
	OpArcsin
	OpArccos
	OpArctan
	OpPow
)

func applyElementwise(ctx *bigfloat.Context, op ElementwiseOp, powExponent float64, x *bigfloat.F) *bigfloat.F {
	switch op {
	case OpSqrt:
		return ctx.Sqrt(x)
	case OpAbs:
		return ctx.Abs(x)
	case OpExp:
		return ctx.Exp(x)
	case OpLogE:
		return ctx.LogE(x)
	case OpLog2:
		lnX := ctx.LogE(x)
		two := ctx.FromInt64(2)
		ln2 := ctx.LogE(two)
		ctx.Release(two)
		out := ctx.Divide(lnX, ln2)
		ctx.Release(lnX)
		ctx.Release(ln2)
		return out
	case OpLog2AsFloat64:
		return ctx.FromFloat64(ctx.Log2AsFloat64(x))
	case OpSin:
		return ctx.Sin(x)
	case OpCos:
		return ctx.Cos(x)
	case OpTan:
		return ctx.Tan(x)
	case OpArcsin:
		return ctx.Arcsin(x)
	case OpArccos:
		return ctx.Arccos(x)
	case OpArctan:
		return ctx.Arctan(x)
	case OpPow:
		return ctx.PowFloat64(x, powExponent)
	default:
		panic("stats: unknown elementwise op")
	}
}

// ElementwiseSpecific applies a unary op to every cell of an inner
// specific's matrix.
type ElementwiseSpecific struct {
	Inner    Specific
	Op       ElementwiseOp
	Exponent float64 // used only by OpPow
}

func (e ElementwiseSpecific) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix {
	in := e.Inner.Evaluate(ctx, particles, topo)
	out := make(Matrix, len(in))
	for i, row := range in {
		out[i] = make([]*bigfloat.F, len(row))
		for j, x := range row {
			out[i][j] = applyElementwise(ctx, e.Op, e.Exponent, x)
		}
	}
	in.Release(ctx)
	return out
}

// DistanceToNearestOptimumSpecific reports, for each particle's position
// and each dimension, the distance to the nearest local optimum found by
// varying only that dimension. Since strategy.Function
// exposes no closed-form optimum, the distance is computed generically
// via bounded ternary search, which converges on the optimum of any
// objective unimodal along that dimension (the reference Sphere included);
// the result is the midpoint of the final bracket, not the exact optimum.
type DistanceToNearestOptimumSpecific struct {
	Fn   strategy.Function
	Iter int // ternary-search iteration count; 0 selects a sane default
}

func (d DistanceToNearestOptimumSpecific) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) Matrix {
	iters := d.Iter
	if iters <= 0 {
		iters = 64
	}
	bounds := d.Fn.Bounds()
	m := make(Matrix, len(particles))
	for i, p := range particles {
		m[i] = make([]*bigfloat.F, p.Position.Len())
		for dim := range m[i] {
			opt := ternarySearchMinimum(ctx, d.Fn, p.Position, dim, bounds.Lo[dim], bounds.Hi[dim], iters)
			diff := ctx.Sub(p.Position.E[dim], opt)
			ctx.Release(opt)
			m[i][dim] = ctx.Abs(diff)
			ctx.Release(diff)
		}
	}
	return m
}

// ternarySearchMinimum finds the coordinate in [lo, hi] along dimension
// dim that minimizes fn, holding every other coordinate of base fixed.
// Assumes unimodality over the interval.
func ternarySearchMinimum(ctx *bigfloat.Context, fn strategy.Function, base *vec.Vector, dim int, lo, hi float64, iters int) *bigfloat.F {
	loF := ctx.FromFloat64(lo)
	hiF := ctx.FromFloat64(hi)
	three := ctx.FromFloat64(3)
	defer ctx.Release(three)

	probe := base.Clone()
	defer probe.Release()

	evalAt := func(x *bigfloat.F) *bigfloat.F {
		probe.Set(dim, ctx.Clone(x))
		return fn.Evaluate(ctx, probe)
	}

	for i := 0; i < iters; i++ {
		span := ctx.Sub(hiF, loF)
		third := ctx.Divide(span, three)
		ctx.Release(span)
		m1 := ctx.Add(loF, third)
		m2 := ctx.Sub(hiF, third)
		ctx.Release(third)

		v1 := evalAt(m1)
		v2 := evalAt(m2)
		if ctx.Compare(v1, v2) <= 0 {
			ctx.Release(hiF)
			hiF = m2
			ctx.Release(m1)
		} else {
			ctx.Release(loF)
			loF = m1
			ctx.Release(m2)
		}
		ctx.Release(v1)
		ctx.Release(v2)
	}

	mid := ctx.Add(loF, hiF)
	two := ctx.FromInt64(2)
	result := ctx.Divide(mid, two)
	ctx.Release(mid)
	ctx.Release(two)
	ctx.Release(loF)
	ctx.Release(hiF)
	return result
}

func cloneRow(ctx *bigfloat.Context, row []*bigfloat.F) []*bigfloat.F {
	out := make([]*bigfloat.F, len(row))
	for i, f := range row {
		out[i] = ctx.Clone(f)
	}
	return out
}
