package bigfloat

import (
	"math/rand"
	"testing"
)

func newTestContext() *Context {
	return NewContext(128, 16, CheckNever, 0)
}

func sample(c *Context, r *rand.Rand) *F {
	return c.FromFloat64(r.Float64()*200 - 100)
}

func TestAddCommutative(t *testing.T) {
	c := newTestContext()
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		a, b := sample(c, r), sample(c, r)
		ab := c.Add(a, b)
		ba := c.Add(b, a)
		if c.Compare(ab, ba) != 0 {
			t.Fatalf("add not commutative: %s vs %s", c.String(ab), c.String(ba))
		}
		c.Release(a)
		c.Release(b)
		c.Release(ab)
		c.Release(ba)
	}
}

func TestMultiplyCommutative(t *testing.T) {
	c := newTestContext()
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		a, b := sample(c, r), sample(c, r)
		ab := c.Multiply(a, b)
		ba := c.Multiply(b, a)
		if c.Compare(ab, ba) != 0 {
			t.Fatalf("multiply not commutative")
		}
		c.Release(a)
		c.Release(b)
		c.Release(ab)
		c.Release(ba)
	}
}

func TestSubSelfIsZero(t *testing.T) {
	c := newTestContext()
	a := c.FromFloat64(3.14159)
	z := c.Sub(a, a)
	if z.val.v.Sign() != 0 {
		t.Fatalf("a-a != 0: %s", c.String(z))
	}
	c.Release(a)
	c.Release(z)
}

func TestAddNegateIsZero(t *testing.T) {
	c := newTestContext()
	a := c.FromFloat64(2.71828)
	na := c.Negate(a)
	z := c.Add(a, na)
	if z.val.v.Sign() != 0 {
		t.Fatalf("a+(-a) != 0: %s", c.String(z))
	}
	c.Release(a)
	c.Release(na)
	c.Release(z)
}

func TestMultiplyByOneIdentity(t *testing.T) {
	c := newTestContext()
	a := c.FromFloat64(42.5)
	one := c.FromInt64(1)
	p := c.Multiply(a, one)
	if c.Compare(a, p) != 0 {
		t.Fatalf("a*1 != a")
	}
	c.Release(a)
	c.Release(one)
	c.Release(p)
}

func TestPowIntMatchesRepeatedMultiply(t *testing.T) {
	c := newTestContext()
	x := c.FromFloat64(1.5)
	x2 := c.Multiply(x, x)
	p2 := c.PowInt(x, 2)
	if c.Compare(x2, p2) != 0 {
		t.Fatalf("pow(x,2) != x*x: %s vs %s", c.String(p2), c.String(x2))
	}
	x3 := c.Multiply(x2, x)
	p3 := c.PowInt(x, 3)
	if c.Compare(x3, p3) != 0 {
		t.Fatalf("pow(x,3) != pow(x,2)*x")
	}
	for _, f := range []*F{x, x2, p2, x3, p3} {
		c.Release(f)
	}
}

func TestSqrtOfSquareIsAbs(t *testing.T) {
	c := newTestContext()
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		x := sample(c, r)
		if x.val.v.Sign() == 0 {
			c.Release(x)
			continue
		}
		sq := c.Multiply(x, x)
		root := c.Sqrt(sq)
		abs := c.Abs(x)
		if c.Compare(root, abs) != 0 {
			t.Fatalf("sqrt(x*x) != |x| for x=%s", c.String(x))
		}
		c.Release(x)
		c.Release(sq)
		c.Release(root)
		c.Release(abs)
	}
}

func TestSentinelAlgebra(t *testing.T) {
	c := newTestContext()
	if got := c.Add(PosInf(), NegInf()); !IsNaN(got) {
		t.Fatalf("+Inf + -Inf should be NaN, got %s", c.String(got))
	}
	five := c.FromInt64(5)
	if got := c.Add(PosInf(), five); !IsPosInf(got) {
		t.Fatalf("+Inf + x should be +Inf")
	}
	zero := c.FromInt64(0)
	if got := c.Multiply(PosInf(), zero); !IsNaN(got) {
		t.Fatalf("+Inf * 0 should be NaN")
	}
	if got := c.Divide(five, PosInf()); got.val.v.Sign() != 0 {
		t.Fatalf("x / +Inf should be 0")
	}
	if got := c.Divide(zero, zero); !IsNaN(got) {
		t.Fatalf("0/0 should be NaN")
	}
	if got := c.Divide(five, zero); !IsPosInf(got) {
		t.Fatalf("5/0 should be +Inf")
	}
	c.Release(five)
	c.Release(zero)
}

func TestCompareWithNaNPanics(t *testing.T) {
	c := newTestContext()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic comparing against NaN")
		}
	}()
	c.Compare(NaN(), c.FromInt64(1))
}
