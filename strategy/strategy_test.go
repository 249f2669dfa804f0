package strategy

import (
	"testing"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/rng"
	"github.com/shiblon/bigpso/vec"
)

func newTestContext() *bigfloat.Context {
	return bigfloat.NewContext(80, 8, bigfloat.CheckNever, 0)
}

func TestSphereEvaluateAtCenterIsZero(t *testing.T) {
	ctx := newTestContext()
	f := NewSphere(3)
	pos := vec.New(ctx, 3)
	val := f.Evaluate(ctx, pos)
	zero := ctx.FromInt64(0)
	if ctx.Compare(val, zero) != 0 {
		t.Fatalf("sphere at origin = %s, want 0", ctx.String(val))
	}
}

func TestBoundedFunctionInfinityPolicy(t *testing.T) {
	ctx := newTestContext()
	inner := NewSphere(1)
	inner.B.Lo[0], inner.B.Hi[0] = -1, 1
	f := &BoundedFunction{Inner: inner, Policy: Infinity}
	pos := vec.NewFromFloat64s(ctx, []float64{5})
	val := f.Evaluate(ctx, pos)
	if !bigfloat.IsPosInf(val) {
		t.Fatalf("expected +Inf outside bounds, got %s", ctx.String(val))
	}
}

func TestBoundedFunctionPeriodicPolicyFolds(t *testing.T) {
	ctx := newTestContext()
	inner := NewSphere(1)
	inner.B.Lo[0], inner.B.Hi[0] = -1, 1
	f := &BoundedFunction{Inner: inner, Policy: Periodic}
	pos := vec.NewFromFloat64s(ctx, []float64{3}) // folds to -1 + ((3-(-1)) mod 2) = -1 + 0 = -1
	val := f.Evaluate(ctx, pos)
	// 3 folded into [-1,1): 3 - floor(4/2)*2 = -1, so the sphere value is 1.
	want := ctx.FromInt64(1)
	if bigfloat.IsNaN(val) || bigfloat.IsInfinite(val) {
		t.Fatalf("periodic fold should stay finite, got %s", ctx.String(val))
	}
	if ctx.Compare(val, want) != 0 {
		t.Fatalf("expected sphere value 1 at the folded position -1, got %s", ctx.String(val))
	}
}

func TestAbsorptionClampsAndZeroesVelocity(t *testing.T) {
	ctx := newTestContext()
	b := NewDefaultBounds(1)
	b.Lo[0], b.Hi[0] = -1, 1
	pos := vec.NewFromFloat64s(ctx, []float64{5})
	vel := vec.NewFromFloat64s(ctx, []float64{2})
	newPos, newVel := (Absorption{}).Apply(ctx, b, pos, vel)
	hi := ctx.FromFloat64(1)
	if ctx.Compare(newPos.E[0], hi) != 0 {
		t.Fatalf("expected clamp to hi=1, got %s", ctx.String(newPos.E[0]))
	}
	zero := ctx.FromInt64(0)
	if ctx.Compare(newVel.E[0], zero) != 0 {
		t.Fatalf("expected zeroed velocity, got %s", ctx.String(newVel.E[0]))
	}
}

func TestStandardUpdaterMovesTowardAttractors(t *testing.T) {
	ctx := newTestContext()
	ctx.SetRandomSource(rng.New63(42, false, 0, "test-stream"))
	pos := vec.NewFromFloat64s(ctx, []float64{0})
	vel := vec.NewFromFloat64s(ctx, []float64{0})
	local := vec.NewFromFloat64s(ctx, []float64{10})
	global := vec.NewFromFloat64s(ctx, []float64{10})
	newPos, newVel := (Standard{}).Update(ctx, pos, vel, local, global, 0.7, 1.5, 1.5)
	zero := ctx.FromInt64(0)
	if ctx.Compare(newPos.E[0], zero) <= 0 {
		t.Fatalf("expected particle to move toward positive attractors, got %s", ctx.String(newPos.E[0]))
	}
	_ = newVel
}
