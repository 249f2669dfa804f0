package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/vec"
)

func newTestContext() *bigfloat.Context {
	return bigfloat.NewContext(80, 8, bigfloat.CheckNever, 0)
}

func TestGBestReplacesOnLowerValue(t *testing.T) {
	ctx := newTestContext()
	g := NewGBest(ctx, 4, 2, EachParticle, nil)
	pos := vec.NewFromFloat64s(ctx, []float64{1, 1})
	val := ctx.FromFloat64(5)
	g.Propose(ctx, 0, pos, val)
	got := g.GlobalAttractorValue(ctx, 0)
	require.Equal(t, 0, ctx.Compare(got, val), "expected attractor value to update to 5, got %s", ctx.String(got))

	worse := ctx.FromFloat64(10)
	g.Propose(ctx, 1, pos, worse)
	got2 := g.GlobalAttractorValue(ctx, 1)
	require.Equal(t, 0, ctx.Compare(got2, val), "worse proposal should not replace, got %s", ctx.String(got2))
}

func TestGBestTieReplaces(t *testing.T) {
	ctx := newTestContext()
	g := NewGBest(ctx, 2, 1, EachParticle, nil)
	posA := vec.NewFromFloat64s(ctx, []float64{1})
	posB := vec.NewFromFloat64s(ctx, []float64{2})
	val := ctx.FromFloat64(5)
	g.Propose(ctx, 0, posA, val)
	g.Propose(ctx, 1, posB, val)
	p := g.GlobalAttractorPosition(ctx, 1)
	two := ctx.FromFloat64(2)
	require.Equal(t, 0, ctx.Compare(p.E[0], two), "tied proposal from later particle should replace, got %s", p.String())
}

func TestRingPropagatesOnlyToNeighbors(t *testing.T) {
	ctx := newTestContext()
	n := 5
	r := NewRing(ctx, n, 1, EachParticle, nil)
	pos := vec.NewFromFloat64s(ctx, []float64{42})
	val := ctx.FromFloat64(-1)
	r.Propose(ctx, 0, pos, val)

	// particle 0's neighbors are {0,1,4}; particle 2 and 3 must be untouched.
	for _, id := range []int{0, 1, 4} {
		v := r.GlobalAttractorValue(ctx, id)
		require.Equal(t, 0, ctx.Compare(v, val), "particle %d should have seen the proposal, value=%s", id, ctx.String(v))
	}
	for _, id := range []int{2, 3} {
		v := r.GlobalAttractorValue(ctx, id)
		require.True(t, bigfloat.IsInfinite(v), "particle %d should be untouched (still +Inf), got %s", id, ctx.String(v))
	}
}

func TestGridNeighborsFiveConnected(t *testing.T) {
	nbrs := gridNeighbors(3, 3)
	require.Len(t, nbrs, 9)
	for i, list := range nbrs {
		require.Len(t, list, 5, "particle %d: expected self+4 distinct orthogonal neighbors on a 3x3 torus, got %v", i, list)
	}
}

func TestWheelHubConnectsToAll(t *testing.T) {
	nbrs := wheelNeighbors(5)
	require.Len(t, nbrs[0], 5, "hub should connect to all 5 particles")
	require.Len(t, nbrs[1], 2, "spoke particle should connect to itself and the hub only, got %v", nbrs[1])
}

func TestGBestUpdateCountAttributedToProposer(t *testing.T) {
	ctx := newTestContext()
	g := NewGBest(ctx, 2, 1, EachParticle, nil)
	posA := vec.NewFromFloat64s(ctx, []float64{1})
	posB := vec.NewFromFloat64s(ctx, []float64{2})
	best := ctx.FromFloat64(5)
	worse := ctx.FromFloat64(10)

	g.Propose(ctx, 0, posA, best)
	require.Equal(t, 1, g.GlobalAttractorUpdateCount(0), "accepted proposal should count toward the proposer")

	g.Propose(ctx, 1, posB, worse)
	require.Equal(t, 0, g.GlobalAttractorUpdateCount(1), "rejected proposal should not count")
}

func TestAdjacencyUpdateCountAttributedToProposer(t *testing.T) {
	ctx := newTestContext()
	n := 5
	r := NewRing(ctx, n, 1, EachParticle, nil)
	pos := vec.NewFromFloat64s(ctx, []float64{42})
	val := ctx.FromFloat64(-1)

	r.Propose(ctx, 0, pos, val)
	require.Equal(t, 3, r.GlobalAttractorUpdateCount(0), "particle 0's proposal replaced all 3 views in its neighborhood {0,1,4}")
	require.Equal(t, 0, r.GlobalAttractorUpdateCount(1), "particle 1 never proposed, so its counter stays at zero")
}

func TestEachIterationQueuesUntilApply(t *testing.T) {
	ctx := newTestContext()
	g := NewGBest(ctx, 2, 1, EachIteration, nil)
	pos := vec.NewFromFloat64s(ctx, []float64{7})
	val := ctx.FromFloat64(3)
	g.Propose(ctx, 0, pos, val)

	before := g.GlobalAttractorValue(ctx, 0)
	require.True(t, bigfloat.IsInfinite(before), "proposal should not apply before ApplyPendingUpdates, got %s", ctx.String(before))

	g.ApplyPendingUpdates(ctx)
	after := g.GlobalAttractorValue(ctx, 0)
	require.Equal(t, 0, ctx.Compare(after, val), "proposal should apply after ApplyPendingUpdates, got %s", ctx.String(after))
}
