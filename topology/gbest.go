package topology

import (
	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/vec"
)

// GBest is the single shared-attractor topology: every particle observes
// the same view, grounded on the Star topology (a single swarm-wide
// best/second-best) collapsed to just the single best, since a shared
// attractor has no notion of "self" to exclude.
type GBest struct {
	num  int
	mode PropagationMode
	fn   strategy.Function

	v       *view
	pending []proposal

	updateCounts []int
}

// NewGBest creates a shared-attractor topology for numParticles particles
// of the given dimensionality. fn, if non-nil, is used to lazily
// re-evaluate the cached value when the context's precision has been
// raised since it was last computed.
func NewGBest(ctx *bigfloat.Context, numParticles, dims int, mode PropagationMode, fn strategy.Function) *GBest {
	return &GBest{
		num:          numParticles,
		mode:         mode,
		fn:           fn,
		v:            newView(ctx, dims),
		updateCounts: make([]int, numParticles),
	}
}

func (t *GBest) Size() int { return t.num }

func (t *GBest) Propose(ctx *bigfloat.Context, particleID int, pos *vec.Vector, value *bigfloat.F) {
	if t.mode == EachParticle {
		if t.v.replace(ctx, pos, value) {
			t.updateCounts[particleID]++
		}
		return
	}
	t.pending = append(t.pending, proposal{particleID, pos.Clone(), ctx.Clone(value)})
}

func (t *GBest) ApplyPendingUpdates(ctx *bigfloat.Context) {
	for _, p := range t.pending {
		if t.v.replace(ctx, p.pos, p.value) {
			t.updateCounts[p.particleID]++
		}
		p.pos.Release()
		ctx.Release(p.value)
	}
	t.pending = t.pending[:0]
}

// GlobalAttractorUpdateCount returns the number of times particleID's
// proposals have replaced the shared attractor.
func (t *GBest) GlobalAttractorUpdateCount(particleID int) int {
	return t.updateCounts[particleID]
}

// SetGlobalAttractorUpdateCounts installs previously-persisted counts,
// one per particle in ID order.
func (t *GBest) SetGlobalAttractorUpdateCounts(counts []int) {
	copy(t.updateCounts, counts)
}

func (t *GBest) GlobalAttractorPosition(ctx *bigfloat.Context, particleID int) *vec.Vector {
	return t.v.pos.Clone()
}

func (t *GBest) GlobalAttractorValue(ctx *bigfloat.Context, particleID int) *bigfloat.F {
	return t.v.valueFor(ctx, t.fn)
}

func (t *GBest) OverallAttractorPosition(ctx *bigfloat.Context) *vec.Vector {
	return t.v.pos.Clone()
}

func (t *GBest) OverallAttractorValue(ctx *bigfloat.Context) *bigfloat.F {
	return t.v.valueFor(ctx, t.fn)
}
