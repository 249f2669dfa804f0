package stats

import (
	"testing"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/particle"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
	"github.com/shiblon/bigpso/vec"
)

func newTestContext() *bigfloat.Context {
	return bigfloat.NewContext(80, 8, bigfloat.CheckNever, 0)
}

func newSwarm(ctx *bigfloat.Context, positions [][]float64) ([]*particle.Particle, topology.Topology) {
	fn := strategy.NewSphere(len(positions[0]))
	topo := topology.NewGBest(ctx, len(positions), len(positions[0]), topology.EachParticle, fn)
	particles := make([]*particle.Particle, len(positions))
	for i, p := range positions {
		pos := vec.NewFromFloat64s(ctx, p)
		vel := vec.New(ctx, len(p))
		particles[i] = particle.New(ctx, i, fn, topo, pos, vel)
	}
	return particles, topo
}

func TestPositionSpecificMatchesParticles(t *testing.T) {
	ctx := newTestContext()
	particles, topo := newSwarm(ctx, [][]float64{{1, 2}, {3, 4}})
	m := PositionSpecific{}.Evaluate(ctx, particles, topo)
	two := ctx.FromFloat64(2)
	if ctx.Compare(m[0][1], two) != 0 {
		t.Fatalf("expected position[0][1] = 2, got %s", ctx.String(m[0][1]))
	}
}

func TestReductionSumOverDimensions(t *testing.T) {
	ctx := newTestContext()
	particles, topo := newSwarm(ctx, [][]float64{{1, 2}, {3, 4}})
	red := Reduction{Inner: PositionSpecific{}, Axis: AxisDimensions, Reducer: ReduceSum}
	out := red.Evaluate(ctx, particles, topo)
	three := ctx.FromFloat64(3)
	seven := ctx.FromFloat64(7)
	if ctx.Compare(out[0], three) != 0 || ctx.Compare(out[1], seven) != 0 {
		t.Fatalf("expected row sums [3, 7], got [%s, %s]", ctx.String(out[0]), ctx.String(out[1]))
	}
}

func TestCombineAdd(t *testing.T) {
	ctx := newTestContext()
	particles, topo := newSwarm(ctx, [][]float64{{1, 2}})
	a := Reduction{Inner: PositionSpecific{}, Axis: AxisParticles, Reducer: ReduceSum}
	b := Reduction{Inner: VelocitySpecific{}, Axis: AxisParticles, Reducer: ReduceSum}
	c := Combine{A: a, B: b, Op: CombineAdd}
	out := c.Evaluate(ctx, particles, topo)
	if len(out) != 2 {
		t.Fatalf("expected length-2 combine (D=2), got %d", len(out))
	}
}

func TestGlobalBestValueReflectsBestProposal(t *testing.T) {
	ctx := newTestContext()
	particles, topo := newSwarm(ctx, [][]float64{{10, 0}, {0, 10}})
	out := GlobalBestValue{}.Evaluate(ctx, particles, topo)
	hundred := ctx.FromFloat64(100)
	if ctx.Compare(out[0], hundred) != 0 {
		t.Fatalf("expected global best value 100, got %s", ctx.String(out[0]))
	}
}
