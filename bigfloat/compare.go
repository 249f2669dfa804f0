package bigfloat

// Compare returns -1, 0, or +1 for a<b, a==b, a>b, honoring sentinel
// ordering (-Inf < finite < +Inf). Comparing against NaN is a program
// error and panics.
//
// When both operands are finite, nonzero and close (their binary exponents
// differ by at most one, so every pair within a factor of 2 of each other
// qualifies), the comparison is performed by computing
// a-b and testing its sign, rather than comparing mantissas directly, so
// that the adaptive precision check attached to Sub can fire.
func (c *Context) Compare(a, b *F) int {
	if IsNaN(a) || IsNaN(b) {
		panic("bigfloat: comparison with NaN")
	}
	switch {
	case a == b && IsSentinel(a):
		return 0
	case IsNegInf(a):
		if IsNegInf(b) {
			return 0
		}
		return -1
	case IsPosInf(a):
		if IsPosInf(b) {
			return 0
		}
		return 1
	case IsNegInf(b):
		return 1
	case IsPosInf(b):
		return -1
	}

	if closeEnoughToCancel(a, b) {
		d := c.Sub(a, b)
		defer c.Release(d)
		return d.val.v.Sign()
	}
	return a.val.v.Cmp(b.val.v)
}

// closeEnoughToCancel reports whether a and b are both nonzero finite
// values whose binary exponents differ by at most one, i.e.
// where a direct mantissa comparison could hide the cancellation that the
// adaptive precision check is designed to catch.
func closeEnoughToCancel(a, b *F) bool {
	if a.val.v.Sign() == 0 || b.val.v.Sign() == 0 {
		return false
	}
	ea := a.val.v.MantExp(nil)
	eb := b.val.v.MantExp(nil)
	d := ea - eb
	return d >= -1 && d <= 1
}

// Equal reports whether a and b compare equal.
func (c *Context) Equal(a, b *F) bool { return c.Compare(a, b) == 0 }

// Sign returns the sign of a finite, non-sentinel handle as -1, 0, or +1.
func (c *Context) Sign(a *F) int { return signOf(a) }
