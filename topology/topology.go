// Package topology implements the attractor service: the pluggable
// mapping from "a particle proposed a candidate" to "which attractor
// views get updated". Grounded on pso/topology.Topology
// (Size/Tick/BestNeighbor) but reshaped around owned bigfloat attractor
// state instead of a float64 fitness comparator, and extended with the
// queue-vs-instant propagation split and a lazy, precision-stamped value
// cache.
package topology

import (
	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/vec"
)

// PropagationMode selects when a Propose call takes effect.
type PropagationMode int

const (
	// EachParticle applies every proposal instantly.
	EachParticle PropagationMode = iota
	// EachIteration enqueues proposals and only applies them when
	// ApplyPendingUpdates is called, so every particle in an iteration
	// observes the same attractor state.
	EachIteration
)

// Topology is the attractor service every neighborhood strategy
// implements.
type Topology interface {
	// Size returns the number of particles this topology was built for.
	Size() int

	// Propose offers a candidate position/value pair from particleID. The
	// topology takes ownership of neither pos nor value; it clones
	// whatever it retains. Depending on the configured PropagationMode
	// this either applies immediately or is queued for
	// ApplyPendingUpdates.
	Propose(ctx *bigfloat.Context, particleID int, pos *vec.Vector, value *bigfloat.F)

	// ApplyPendingUpdates drains the queue built up by Propose calls made
	// under EachIteration mode. A no-op under EachParticle mode.
	ApplyPendingUpdates(ctx *bigfloat.Context)

	// GlobalAttractorPosition returns a clone of the attractor position
	// particleID currently observes.
	GlobalAttractorPosition(ctx *bigfloat.Context, particleID int) *vec.Vector

	// GlobalAttractorValue returns a clone of the attractor value
	// particleID currently observes, lazily re-evaluated at the context's
	// current precision if the cached value was stamped at a lower one.
	GlobalAttractorValue(ctx *bigfloat.Context, particleID int) *bigfloat.F

	// OverallAttractorPosition returns a clone of the best position across
	// every view the topology maintains.
	OverallAttractorPosition(ctx *bigfloat.Context) *vec.Vector

	// OverallAttractorValue returns a clone of the best value across every
	// view the topology maintains.
	OverallAttractorValue(ctx *bigfloat.Context) *bigfloat.F

	// GlobalAttractorUpdateCount returns the number of times particleID's
	// proposals have replaced a view they reached, attributed to the
	// proposing particle rather than the view's owner.
	GlobalAttractorUpdateCount(particleID int) int

	// SetGlobalAttractorUpdateCounts installs previously-persisted
	// per-particle counts, restoring the bookkeeping a checkpoint captured.
	SetGlobalAttractorUpdateCounts(counts []int)
}

// view is one maintained attractor: a position, its value, and the
// precision (in bits) the value was last evaluated at.
type view struct {
	pos     *vec.Vector
	value   *bigfloat.F
	valueAt uint
}

func newView(ctx *bigfloat.Context, dims int) *view {
	return &view{
		pos:     vec.New(ctx, dims),
		value:   bigfloat.PosInf(),
		valueAt: ctx.Precision(),
	}
}

// replace installs pos/value as v's new attractor if value <= v's current
// value.
// Returns whether the replacement happened.
func (v *view) replace(ctx *bigfloat.Context, pos *vec.Vector, value *bigfloat.F) bool {
	if ctx.Compare(value, v.value) > 0 {
		return false
	}
	ctx.Release(v.value)
	v.value = ctx.Clone(value)
	v.valueAt = ctx.Precision()
	v.pos.Replace(pos)
	return true
}

// valueFor returns a clone of v's value, re-evaluating it against fn at
// the context's current precision first if the cached value is stale.
func (v *view) valueFor(ctx *bigfloat.Context, fn strategy.Function) *bigfloat.F {
	if fn != nil && v.valueAt != ctx.Precision() && !bigfloat.IsInfinite(v.value) {
		fresh := fn.Evaluate(ctx, v.pos)
		ctx.Release(v.value)
		v.value = fresh
		v.valueAt = ctx.Precision()
	}
	return ctx.Clone(v.value)
}

// proposal is one queued candidate under EachIteration mode.
type proposal struct {
	particleID int
	pos        *vec.Vector
	value      *bigfloat.F
}
