package bigfloat

import "math/big"

// Internal transcendental helpers operate on raw *big.Float scratch values
// at a guard-bit-extended precision rather than routing every intermediate
// term of a Taylor series through the pooled allocator. The public
// operation contract (ownership of the *F arguments and result) still
// fully honors allocator discipline; only private series scratch is
// exempted.

func (c *Context) workPrec() uint { return c.precision + c.margin + 32 }

func rawFromF(c *Context, f *F, prec uint) *big.Float {
	v := new(big.Float).SetPrec(prec)
	switch {
	case IsPosInf(f):
		v.SetInf(false)
	case IsNegInf(f):
		v.SetInf(true)
	default:
		v.Set(f.val.v)
	}
	return v
}

func (c *Context) wrap(v *big.Float) *F {
	out := c.acquire()
	out.val.v.Set(v)
	return out
}

// ---- exp ----

func expRaw(x *big.Float, prec uint) *big.Float {
	one := big.NewFloat(1).SetPrec(prec)
	if x.Sign() == 0 {
		return new(big.Float).SetPrec(prec).Set(one)
	}
	// Reduce |x| below 1 by halving, track number of halvings.
	reduced := new(big.Float).SetPrec(prec).Set(x)
	shifts := 0
	boundHi := big.NewFloat(1).SetPrec(prec)
	absReduced := new(big.Float)
	for absReduced.Abs(reduced).Cmp(boundHi) > 0 {
		reduced.SetMantExp(reduced, reduced.MantExp(nil)-1)
		shifts++
	}
	// Taylor series for e^reduced.
	sum := new(big.Float).SetPrec(prec).Set(one)
	term := new(big.Float).SetPrec(prec).Set(one)
	tmp := new(big.Float).SetPrec(prec)
	for n := 1; n < 4*int(prec)+32; n++ {
		term.Mul(term, reduced)
		term.Quo(term, tmp.SetInt64(int64(n)))
		next := new(big.Float).SetPrec(prec).Add(sum, term)
		if next.Cmp(sum) == 0 {
			sum = next
			break
		}
		sum = next
	}
	// Undo the halving by repeated squaring.
	for i := 0; i < shifts; i++ {
		sum.Mul(sum, sum)
	}
	return sum
}

// Exp returns e^x. -Inf -> 0, +Inf -> +Inf.
func (c *Context) Exp(x *F) *F {
	switch {
	case IsNaN(x):
		return NaN()
	case IsPosInf(x):
		return PosInf()
	case IsNegInf(x):
		out := c.acquire()
		out.val.v.SetInt64(0)
		return out
	}
	prec := c.workPrec()
	r := expRaw(rawFromF(c, x, prec), prec)
	r.SetPrec(c.precision)
	return c.wrap(r)
}

// ---- log ----

func logRaw(x *big.Float, prec uint) *big.Float {
	// x assumed > 0, finite.
	one := big.NewFloat(1).SetPrec(prec)
	lo := big.NewFloat(0.99).SetPrec(prec)
	hi := big.NewFloat(1.01).SetPrec(prec)
	reduced := new(big.Float).SetPrec(prec).Set(x)
	shifts := 0
	for reduced.Cmp(lo) < 0 || reduced.Cmp(hi) > 0 {
		reduced.Sqrt(reduced)
		shifts++
		if shifts > 4*int(prec)+64 {
			break // pathological input; bail rather than loop forever
		}
	}
	// Taylor series for log(1+u), u = reduced-1, centered at 1.
	u := new(big.Float).SetPrec(prec).Sub(reduced, one)
	sum := new(big.Float).SetPrec(prec)
	term := new(big.Float).SetPrec(prec).Set(u)
	sum.Set(u)
	tmp := new(big.Float).SetPrec(prec)
	neg := new(big.Float).SetPrec(prec)
	for n := 2; n < 4*int(prec)+32; n++ {
		term.Mul(term, u)
		frac := new(big.Float).SetPrec(prec).Quo(term, tmp.SetInt64(int64(n)))
		if n%2 == 0 {
			frac.Neg(frac)
		}
		next := new(big.Float).SetPrec(prec).Add(sum, frac)
		if next.Cmp(sum) == 0 {
			sum = next
			break
		}
		sum = next
	}
	_ = neg
	// Undo sqrt reductions: log(x) = 2^shifts * log(reduced).
	out := new(big.Float).SetPrec(prec).SetMantExp(sum, sum.MantExp(nil)+shifts)
	return out
}

// LogE returns the natural log of x. Domain (0, +Inf]; 0 -> -Inf;
// negative -> NaN.
func (c *Context) LogE(x *F) *F {
	switch {
	case IsNaN(x):
		return NaN()
	case IsPosInf(x):
		return PosInf()
	case IsNegInf(x):
		return NaN()
	}
	if x.val.v.Sign() < 0 {
		return NaN()
	}
	if x.val.v.Sign() == 0 {
		return NegInf()
	}
	prec := c.workPrec()
	r := logRaw(rawFromF(c, x, prec), prec)
	r.SetPrec(c.precision)
	return c.wrap(r)
}

// Log2AsFloat64 reports an approximate base-2 logarithm of x as a native
// double, for cheap magnitude reporting. It reduces via repeated sqrt into
// the representable double range then defers to math.Log2.
func (c *Context) Log2AsFloat64(x *F) float64 {
	switch {
	case IsNaN(x):
		return nan()
	case IsPosInf(x):
		return inf(1)
	case IsNegInf(x):
		return nan()
	}
	if x.val.v.Sign() <= 0 {
		if x.val.v.Sign() == 0 {
			return inf(-1)
		}
		return nan()
	}
	v, _ := x.val.v.Float64()
	return log2(v)
}

// ---- pi / e ----

func arctanSmallRaw(x *big.Float, prec uint) *big.Float {
	// Taylor series valid for |x| <= ~0.5.
	x2 := new(big.Float).SetPrec(prec).Mul(x, x)
	term := new(big.Float).SetPrec(prec).Set(x)
	sum := new(big.Float).SetPrec(prec).Set(x)
	tmp := new(big.Float).SetPrec(prec)
	for n := 1; n < 4*int(prec)+32; n++ {
		term.Mul(term, x2)
		denom := int64(2*n + 1)
		frac := new(big.Float).SetPrec(prec).Quo(term, tmp.SetInt64(denom))
		if n%2 == 1 {
			frac.Neg(frac)
		}
		next := new(big.Float).SetPrec(prec).Add(sum, frac)
		if next.Cmp(sum) == 0 {
			sum = next
			break
		}
		sum = next
	}
	return sum
}

func piRaw(prec uint) *big.Float {
	// Machin's formula: pi = 16*arctan(1/5) - 4*arctan(1/239).
	p := prec + 32
	fifth := new(big.Float).SetPrec(p).Quo(big.NewFloat(1), big.NewFloat(5))
	t239 := new(big.Float).SetPrec(p).Quo(big.NewFloat(1), big.NewFloat(239))
	a := arctanSmallRaw(fifth, p)
	b := arctanSmallRaw(t239, p)
	a.Mul(a, big.NewFloat(16))
	b.Mul(b, big.NewFloat(4))
	pi := new(big.Float).SetPrec(prec).Sub(a, b)
	return pi
}

// Pi returns the cached value of pi at the current precision, recomputing
// lazily when the precision has changed since it was last cached.
func (c *Context) Pi() *F {
	if c.pi == nil || c.piAt != c.precision {
		if c.pi != nil {
			c.alloc.release(c.pi.val)
			c.alloc.NoteCacheDelta(-1)
		}
		v := piRaw(c.precision)
		c.pi = c.acquire()
		c.pi.val.v.Set(v)
		c.alloc.NoteCacheDelta(1)
		c.piAt = c.precision
	}
	return c.Clone(c.pi)
}

// E returns the cached value of e at the current precision.
func (c *Context) E() *F {
	if c.e == nil || c.eAt != c.precision {
		if c.e != nil {
			c.alloc.release(c.e.val)
			c.alloc.NoteCacheDelta(-1)
		}
		prec := c.workPrec()
		v := expRaw(big.NewFloat(1).SetPrec(prec), prec)
		v.SetPrec(c.precision)
		c.e = c.acquire()
		c.e.val.v.Set(v)
		c.alloc.NoteCacheDelta(1)
		c.eAt = c.precision
	}
	return c.Clone(c.e)
}

// ---- sin/cos/tan ----

// reduceAngle folds x into (-pi, pi], returning the folded raw value and
// the pi value used (so callers doing further reduction can reuse it).
func reduceAngle(x *big.Float, pi *big.Float, prec uint) *big.Float {
	twoPi := new(big.Float).SetPrec(prec).Mul(pi, big.NewFloat(2))
	r := new(big.Float).SetPrec(prec).Set(x)
	q := new(big.Float).SetPrec(prec).Quo(r, twoPi)
	qi := new(big.Int)
	q.Int(qi)
	qf := new(big.Float).SetPrec(prec).SetInt(qi)
	r.Sub(r, new(big.Float).SetPrec(prec).Mul(qf, twoPi))
	if r.Cmp(pi) > 0 {
		r.Sub(r, twoPi)
	}
	negPi := new(big.Float).SetPrec(prec).Neg(pi)
	if r.Cmp(negPi) <= 0 {
		r.Add(r, twoPi)
	}
	return r
}

// sinCosSmallRaw computes sin and cos via Taylor series for x already
// reduced into [0, pi/4].
func sinCosSmallRaw(x *big.Float, prec uint) (sin, cos *big.Float) {
	x2 := new(big.Float).SetPrec(prec).Mul(x, x)

	sinSum := new(big.Float).SetPrec(prec).Set(x)
	sinTerm := new(big.Float).SetPrec(prec).Set(x)
	cosSum := big.NewFloat(1).SetPrec(prec)
	cosTerm := big.NewFloat(1).SetPrec(prec)
	tmp := new(big.Float).SetPrec(prec)

	for n := 1; n < 4*int(prec)+32; n++ {
		// sin term: x^(2n+1)/(2n+1)!, alternating sign
		sinTerm.Mul(sinTerm, x2)
		sinTerm.Quo(sinTerm, tmp.SetInt64(int64(2*n)))
		sinTerm.Quo(sinTerm, tmp.SetInt64(int64(2*n+1)))
		sinFrac := new(big.Float).SetPrec(prec).Set(sinTerm)
		if n%2 == 1 {
			sinFrac.Neg(sinFrac)
		}
		nextSin := new(big.Float).SetPrec(prec).Add(sinSum, sinFrac)

		// cos term: x^(2n)/(2n)!, alternating sign
		cosTerm.Mul(cosTerm, x2)
		cosTerm.Quo(cosTerm, tmp.SetInt64(int64(2*n-1)))
		cosTerm.Quo(cosTerm, tmp.SetInt64(int64(2*n)))
		cosFrac := new(big.Float).SetPrec(prec).Set(cosTerm)
		if n%2 == 1 {
			cosFrac.Neg(cosFrac)
		}
		nextCos := new(big.Float).SetPrec(prec).Add(cosSum, cosFrac)

		converged := nextSin.Cmp(sinSum) == 0 && nextCos.Cmp(cosSum) == 0
		sinSum, cosSum = nextSin, nextCos
		if converged {
			break
		}
	}
	return sinSum, cosSum
}

// sinCosRaw reduces x fully (mod 2pi, then into [0, pi/4] via the standard
// symmetry identities) and returns sin(x), cos(x).
func sinCosRaw(x *big.Float, pi *big.Float, prec uint) (sin, cos *big.Float) {
	r := reduceAngle(x, pi, prec)

	negate := false
	if r.Sign() < 0 {
		r.Neg(r)
		negate = true // sin(-x) = -sin(x); cos(-x) = cos(x), handled below
	}
	negCos := false
	halfPi := new(big.Float).SetPrec(prec).Quo(pi, big.NewFloat(2))
	if r.Cmp(halfPi) > 0 {
		// sin(pi - x) = sin(x); cos(pi - x) = -cos(x)
		r.Sub(pi, r)
		negCos = true
	}
	swap := false
	quarterPi := new(big.Float).SetPrec(prec).Quo(pi, big.NewFloat(4))
	if r.Cmp(quarterPi) > 0 {
		// sin(pi/2 - x) = cos(x); cos(pi/2 - x) = sin(x)
		r.Sub(halfPi, r)
		swap = true
	}

	s, cosv := sinCosSmallRaw(r, prec)
	if swap {
		s, cosv = cosv, s
	}
	if negCos {
		cosv.Neg(cosv)
	}
	if negate {
		s.Neg(s)
	}
	return s, cosv
}

// Sin returns sin(x).
func (c *Context) Sin(x *F) *F {
	if IsSentinel(x) {
		return NaN()
	}
	prec := c.workPrec()
	pi := piRaw(prec)
	s, _ := sinCosRaw(rawFromF(c, x, prec), pi, prec)
	s.SetPrec(c.precision)
	return c.wrap(s)
}

// Cos returns cos(x).
func (c *Context) Cos(x *F) *F {
	if IsSentinel(x) {
		return NaN()
	}
	prec := c.workPrec()
	pi := piRaw(prec)
	_, cs := sinCosRaw(rawFromF(c, x, prec), pi, prec)
	cs.SetPrec(c.precision)
	return c.wrap(cs)
}

// Tan returns sin(x)/cos(x); division by zero yields NaN.
func (c *Context) Tan(x *F) *F {
	s := c.Sin(x)
	defer c.Release(s)
	cs := c.Cos(x)
	defer c.Release(cs)
	return c.Divide(s, cs)
}

// ---- inverse trig ----

// Arctan reduces large arguments via arctan(x) = 2*arctan(x/(1+sqrt(1+x^2)))
// into (0, 1/2], then uses the Taylor series, extending by symmetry.
// Arctan(+Inf) = pi/2, Arctan(-Inf) = -pi/2 by convention ().
func (c *Context) Arctan(x *F) *F {
	if IsNaN(x) {
		return NaN()
	}
	if IsPosInf(x) || IsNegInf(x) {
		half := c.Multiply2Exp(c.Pi(), -1)
		if IsNegInf(x) {
			n := c.Negate(half)
			c.Release(half)
			return n
		}
		return half
	}
	prec := c.workPrec()
	raw := rawFromF(c, x, prec)
	neg := raw.Sign() < 0
	if neg {
		raw.Neg(raw)
	}
	// Repeatedly halve the effective argument via the doubling identity
	// until it's small enough for the Taylor series to converge fast.
	doublings := 0
	half := big.NewFloat(0.5).SetPrec(prec)
	for raw.Cmp(half) > 0 {
		x2 := new(big.Float).SetPrec(prec).Mul(raw, raw)
		one := big.NewFloat(1).SetPrec(prec)
		inner := new(big.Float).SetPrec(prec).Add(one, x2)
		inner.Sqrt(inner)
		inner.Add(inner, one)
		raw.Quo(raw, inner)
		doublings++
		if doublings > 64 {
			break
		}
	}
	r := arctanSmallRaw(raw, prec)
	for i := 0; i < doublings; i++ {
		r.Mul(r, big.NewFloat(2))
	}
	if neg {
		r.Neg(r)
	}
	r.SetPrec(c.precision)
	return c.wrap(r)
}

// Arcsin composes as arctan(x/sqrt(1-x^2)), with +-1 handled exactly as
// +-pi/2.
func (c *Context) Arcsin(x *F) *F {
	if IsSentinel(x) {
		return NaN()
	}
	one := c.FromInt64(1)
	defer c.Release(one)
	cmp1 := c.Compare(x, one)
	negOne := c.FromInt64(-1)
	defer c.Release(negOne)
	cmpNeg1 := c.Compare(x, negOne)
	if cmp1 == 0 {
		return c.Multiply2Exp(c.Pi(), -1)
	}
	if cmpNeg1 == 0 {
		p := c.Multiply2Exp(c.Pi(), -1)
		n := c.Negate(p)
		c.Release(p)
		return n
	}
	if cmp1 > 0 || cmpNeg1 < 0 {
		return NaN()
	}
	x2 := c.Multiply(x, x)
	defer c.Release(x2)
	d := c.Sub(one, x2)
	defer c.Release(d)
	s := c.Sqrt(d)
	defer c.Release(s)
	ratio := c.Divide(x, s)
	defer c.Release(ratio)
	return c.Arctan(ratio)
}

// Arccos returns pi/2 - Arcsin(x).
func (c *Context) Arccos(x *F) *F {
	asin := c.Arcsin(x)
	defer c.Release(asin)
	if IsNaN(asin) {
		return NaN()
	}
	half := c.Multiply2Exp(c.Pi(), -1)
	defer c.Release(half)
	return c.Sub(half, asin)
}
