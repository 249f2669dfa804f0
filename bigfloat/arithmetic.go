package bigfloat

import "math/big"

func isZero(f *F) bool { return !IsSentinel(f) && f.val.v.Sign() == 0 }
func signOf(f *F) int {
	if IsPosInf(f) {
		return 1
	}
	if IsNegInf(f) {
		return -1
	}
	return f.val.v.Sign()
}

// Add returns a+b, following the sentinel algebra of:
// Inf + -Inf = NaN, Inf + finite = Inf, NaN propagates. May flag
// precision loss per the adaptive check when enabled.
func (c *Context) Add(a, b *F) *F {
	if IsNaN(a) || IsNaN(b) {
		return NaN()
	}
	if IsInfinite(a) || IsInfinite(b) {
		switch {
		case IsInfinite(a) && IsInfinite(b):
			if signOf(a) != signOf(b) {
				return NaN()
			}
			return a
		case IsInfinite(a):
			return a
		default:
			return b
		}
	}
	out := c.acquire()
	out.val.v.Add(a.val.v, b.val.v)
	c.maybeCheckPrecision(a, b, out)
	return out
}

// Sub returns a-b.
func (c *Context) Sub(a, b *F) *F {
	nb := c.Negate(b)
	defer c.Release(nb)
	return c.Add(a, nb)
}

// Negate returns -a.
func (c *Context) Negate(a *F) *F {
	switch {
	case IsNaN(a):
		return NaN()
	case IsPosInf(a):
		return NegInf()
	case IsNegInf(a):
		return PosInf()
	}
	out := c.acquire()
	out.val.v.Neg(a.val.v)
	return out
}

// Abs returns |a|.
func (c *Context) Abs(a *F) *F {
	switch {
	case IsNaN(a):
		return NaN()
	case IsInfinite(a):
		return PosInf()
	}
	out := c.acquire()
	out.val.v.Abs(a.val.v)
	return out
}

// Multiply returns a*b, with Inf*0 = NaN
func (c *Context) Multiply(a, b *F) *F {
	if IsNaN(a) || IsNaN(b) {
		return NaN()
	}
	if IsInfinite(a) || IsInfinite(b) {
		if isZero(a) || isZero(b) {
			return NaN()
		}
		if signOf(a)*signOf(b) < 0 {
			return NegInf()
		}
		return PosInf()
	}
	out := c.acquire()
	out.val.v.Mul(a.val.v, b.val.v)
	return out
}

// Divide returns a/b. x/Inf = 0; 0/0 = NaN; nonzero/0 = signed Inf.
func (c *Context) Divide(a, b *F) *F {
	if IsNaN(a) || IsNaN(b) {
		return NaN()
	}
	if IsInfinite(b) {
		if IsInfinite(a) {
			return NaN()
		}
		out := c.acquire()
		out.val.v.SetInt64(0)
		return out
	}
	if IsInfinite(a) {
		if isZero(b) {
			return NaN()
		}
		if signOf(a)*signOf(b) < 0 {
			return NegInf()
		}
		return PosInf()
	}
	if isZero(b) {
		if isZero(a) {
			return NaN()
		}
		if signOf(a) < 0 {
			return NegInf()
		}
		return PosInf()
	}
	out := c.acquire()
	out.val.v.Quo(a.val.v, b.val.v)
	return out
}

// Multiply2Exp returns a*2^k (k may be negative).
func (c *Context) Multiply2Exp(a *F, k int) *F {
	if IsSentinel(a) {
		return a
	}
	out := c.acquire()
	out.val.v.SetMantExp(a.val.v, a.val.v.MantExp(nil)+k)
	return out
}

// Min returns the lesser of a and b, respecting sentinel ordering
// (-Inf < finite < +Inf).
func (c *Context) Min(a, b *F) *F {
	if c.Compare(a, b) <= 0 {
		return c.Clone(a)
	}
	return c.Clone(b)
}

// Max returns the greater of a and b.
func (c *Context) Max(a, b *F) *F {
	if c.Compare(a, b) >= 0 {
		return c.Clone(a)
	}
	return c.Clone(b)
}

// Floor returns the largest integer <= a.
func (c *Context) Floor(a *F) *F {
	if IsSentinel(a) {
		return a
	}
	out := c.acquire()
	i := new(big.Int)
	a.val.v.Int(i)
	out.val.v.SetInt(i)
	if out.val.v.Cmp(a.val.v) > 0 {
		out.val.v.Sub(out.val.v, big.NewFloat(1))
	}
	return out
}

// Ceil returns the smallest integer >= a.
func (c *Context) Ceil(a *F) *F {
	if IsSentinel(a) {
		return a
	}
	fl := c.Floor(a)
	defer c.Release(fl)
	if fl.val.v.Cmp(a.val.v) == 0 {
		return c.Clone(fl)
	}
	one := c.acquire()
	one.val.v.SetInt64(1)
	defer c.Release(one)
	return c.Add(fl, one)
}

// Sqrt returns sqrt(a); domain is [0, +Inf]. Negative inputs yield NaN.
func (c *Context) Sqrt(a *F) *F {
	switch {
	case IsNaN(a):
		return NaN()
	case IsPosInf(a):
		return PosInf()
	case IsNegInf(a):
		return NaN()
	}
	if a.val.v.Sign() < 0 {
		return NaN()
	}
	out := c.acquire()
	out.val.v.Sqrt(a.val.v)
	return out
}
