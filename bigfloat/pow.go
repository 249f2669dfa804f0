package bigfloat

import "math/big"

// PowInt raises base to an integer power via binary exponentiation.
func (c *Context) PowInt(base *F, n int) *F {
	if IsNaN(base) {
		return NaN()
	}
	if n == 0 {
		return c.FromInt64(1)
	}
	neg := n < 0
	if neg {
		n = -n
	}
	result := c.FromInt64(1)
	b := c.Clone(base)
	for n > 0 {
		if n&1 == 1 {
			nr := c.Multiply(result, b)
			c.Release(result)
			result = nr
		}
		n >>= 1
		if n > 0 {
			nb := c.Multiply(b, b)
			c.Release(b)
			b = nb
		}
	}
	c.Release(b)
	if neg {
		one := c.FromInt64(1)
		inv := c.Divide(one, result)
		c.Release(one)
		c.Release(result)
		return inv
	}
	return result
}

// PowFloat64 raises base to a native double exponent.
func (c *Context) PowFloat64(base *F, exponent float64) *F {
	e := c.FromFloat64(exponent)
	defer c.Release(e)
	return c.Pow(base, e)
}

func isIntegerValued(f *F) bool {
	return !IsSentinel(f) && f.val.v.IsInt()
}

func exponentAsInt(f *F) (int, bool) {
	i := new(big.Int)
	f.val.v.Int(i)
	if !i.IsInt64() {
		return 0, false
	}
	v := i.Int64()
	if v > 1<<30 || v < -(1<<30) {
		return 0, false
	}
	return int(v), true
}

// Pow raises base to an arbitrary-precision exponent: base=1 -> 1;
// exponent=0 -> 1; base=0 follows the sign of the exponent; negative base
// with a non-integer exponent is NaN; integer exponents use the
// binary-exponentiation fast path; everything else reduces to
// exp(exponent*log(base)), which itself performs the sqrt-doubling /
// Taylor reduction Exp and Log use.
func (c *Context) Pow(base, exponent *F) *F {
	if IsNaN(base) || IsNaN(exponent) {
		return NaN()
	}

	one := c.FromInt64(1)
	defer c.Release(one)
	if !IsSentinel(base) && c.Compare(base, one) == 0 {
		return c.Clone(one)
	}
	if !IsSentinel(exponent) && exponent.val.v.Sign() == 0 {
		return c.Clone(one)
	}

	zero := c.FromInt64(0)
	defer c.Release(zero)
	if !IsSentinel(base) && base.val.v.Sign() == 0 {
		if c.Compare(exponent, zero) > 0 {
			return c.Clone(zero)
		}
		return PosInf()
	}

	if IsInfinite(base) {
		// +-Inf raised to a positive power is Inf (signed by parity for
		// negative base and integer exponent); to a negative power is 0.
		if c.Compare(exponent, zero) < 0 {
			return c.Clone(zero)
		}
		if IsNegInf(base) && isIntegerValued(exponent) {
			if n, ok := exponentAsInt(exponent); ok && n%2 != 0 {
				return NegInf()
			}
		}
		return PosInf()
	}

	if isIntegerValued(exponent) {
		if n, ok := exponentAsInt(exponent); ok {
			return c.PowInt(base, n)
		}
	}

	if base.val.v.Sign() < 0 {
		return NaN()
	}

	l := c.LogE(base)
	defer c.Release(l)
	p := c.Multiply(exponent, l)
	defer c.Release(p)
	return c.Exp(p)
}
