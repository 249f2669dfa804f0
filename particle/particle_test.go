package particle

import (
	"testing"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
	"github.com/shiblon/bigpso/vec"
)

func newTestContext() *bigfloat.Context {
	return bigfloat.NewContext(80, 8, bigfloat.CheckNever, 0)
}

func TestSetPositionAdoptsBetterLocalAttractor(t *testing.T) {
	ctx := newTestContext()
	fn := strategy.NewSphere(1)
	topo := topology.NewGBest(ctx, 1, 1, topology.EachParticle, fn)

	pos := vec.NewFromFloat64s(ctx, []float64{5})
	vel := vec.NewFromFloat64s(ctx, []float64{0})
	p := New(ctx, 0, fn, topo, pos, vel)

	better := vec.NewFromFloat64s(ctx, []float64{1})
	p.SetPosition(ctx, better)

	if p.LocalAttractorUpdateCount != 1 {
		t.Fatalf("expected one local-attractor update from the improving SetPosition call, got %d", p.LocalAttractorUpdateCount)
	}
	want := ctx.FromFloat64(1)
	if ctx.Compare(p.LocalAttractor.E[0], want) != 0 {
		t.Fatalf("local attractor should have moved to the better position, got %s", p.LocalAttractor.String())
	}
}

func TestSetPositionRejectsWorsePosition(t *testing.T) {
	ctx := newTestContext()
	fn := strategy.NewSphere(1)
	topo := topology.NewGBest(ctx, 1, 1, topology.EachParticle, fn)

	pos := vec.NewFromFloat64s(ctx, []float64{1})
	vel := vec.NewFromFloat64s(ctx, []float64{0})
	p := New(ctx, 0, fn, topo, pos, vel)
	countBefore := p.LocalAttractorUpdateCount

	worse := vec.NewFromFloat64s(ctx, []float64{5})
	p.SetPosition(ctx, worse)

	if p.LocalAttractorUpdateCount != countBefore {
		t.Fatalf("worse position should not update local attractor, count changed from %d to %d", countBefore, p.LocalAttractorUpdateCount)
	}
	want := ctx.FromFloat64(1)
	if ctx.Compare(p.LocalAttractor.E[0], want) != 0 {
		t.Fatalf("local attractor should remain at 1, got %s", p.LocalAttractor.String())
	}
}

func TestGetLocalAttractorValueLazyRecompute(t *testing.T) {
	ctx := newTestContext()
	fn := strategy.NewSphere(1)
	topo := topology.NewGBest(ctx, 1, 1, topology.EachParticle, fn)
	pos := vec.NewFromFloat64s(ctx, []float64{3})
	vel := vec.NewFromFloat64s(ctx, []float64{0})
	p := New(ctx, 0, fn, topo, pos, vel)

	v1 := p.GetLocalAttractorValue(ctx)
	nine := ctx.FromFloat64(9)
	if ctx.Compare(v1, nine) != 0 {
		t.Fatalf("expected local attractor value 9, got %s", ctx.String(v1))
	}

	ctx.RaisePrecision()
	v2 := p.GetLocalAttractorValue(ctx)
	if ctx.Compare(v2, nine) != 0 {
		t.Fatalf("value should still be 9 after precision raise, got %s", ctx.String(v2))
	}
}
