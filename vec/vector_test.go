package vec

import (
	"testing"

	"github.com/shiblon/bigpso/bigfloat"
)

func newCtx() *bigfloat.Context {
	return bigfloat.NewContext(80, 8, bigfloat.CheckNever, 0)
}

func equalElements(ctx *bigfloat.Context, a, b *Vector) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.E {
		if ctx.Compare(a.E[i], b.E[i]) != 0 {
			return false
		}
	}
	return true
}

func TestAddSub(t *testing.T) {
	ctx := newCtx()
	a := NewFromFloat64s(ctx, []float64{1, 2, 3})
	b := NewFromFloat64s(ctx, []float64{4, 5, 6})
	sum := a.Add(b)
	want := NewFromFloat64s(ctx, []float64{5, 7, 9})
	if !equalElements(ctx, sum, want) {
		t.Fatalf("Add: got %s want %s", sum.String(), want.String())
	}
	back := sum.Sub(b)
	if !equalElements(ctx, back, a) {
		t.Fatalf("Sub did not invert Add: got %s want %s", back.String(), a.String())
	}
}

func TestDotAndLength(t *testing.T) {
	ctx := newCtx()
	v := NewFromFloat64s(ctx, []float64{3, 4})
	length := v.Length()
	five := ctx.FromInt64(5)
	if ctx.Compare(length, five) != 0 {
		t.Fatalf("|3,4| = %s, want 5", ctx.String(length))
	}
}

func TestProjectOntoZeroVector(t *testing.T) {
	ctx := newCtx()
	v := NewFromFloat64s(ctx, []float64{1, 1})
	zero := NewFromFloat64s(ctx, []float64{0, 0})
	p := v.Project(zero)
	if !equalElements(ctx, p, zero) {
		t.Fatalf("projection onto zero vector should be zero, got %s", p.String())
	}
}

func TestSortIsStableAscending(t *testing.T) {
	ctx := newCtx()
	v := NewFromFloat64s(ctx, []float64{3, 1, 2})
	v.Sort()
	want := NewFromFloat64s(ctx, []float64{1, 2, 3})
	if !equalElements(ctx, v, want) {
		t.Fatalf("Sort: got %s want %s", v.String(), want.String())
	}
}

func TestLengthMismatchPanics(t *testing.T) {
	ctx := newCtx()
	a := NewFromFloat64s(ctx, []float64{1, 2})
	b := NewFromFloat64s(ctx, []float64{1, 2, 3})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on length mismatch")
		}
	}()
	a.Add(b)
}
