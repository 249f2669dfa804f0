package bigfloat

import "math/big"

// uniformEpsilonBits is the margin of extra random bits drawn beyond the
// working precision when filling a bignum uniform sample").
const uniformEpsilonBits = 16

// Uniform draws a value uniformly distributed in [0, 1), built from the
// installed random source by concatenating enough bits to fill the
// current precision plus a margin. Panics if no
// random source has been installed.
func (c *Context) Uniform() *F {
	if c.source == nil {
		panic("bigfloat: Uniform called with no random source installed")
	}
	bits := int(c.precision) + uniformEpsilonBits
	n := c.source.DrawBits(bits)
	out := c.acquire()
	out.val.v.SetInt(n)
	scale := new(big.Float).SetPrec(c.precision + uniformEpsilonBits + 8)
	scale.SetMantExp(big.NewFloat(1), -bits)
	out.val.v.Mul(out.val.v, scale)
	return out
}

// Gaussian draws from N(mu, sigma) via Box-Muller, sampling a uniform
// point in the unit disk by rejection from the unit square, combined with
// an independent uniform in (0, 1].
func (c *Context) Gaussian(mu, sigma *F) *F {
	var x, y, s *F
	for {
		u1 := c.Uniform()
		u2 := c.Uniform()
		two := c.FromInt64(2)
		x = c.Multiply(u1, two)
		c.Release(u1)
		one := c.FromInt64(1)
		nx := c.Sub(x, one)
		c.Release(x)
		x = nx
		y = c.Multiply(u2, two)
		c.Release(u2)
		c.Release(two)
		ny := c.Sub(y, one)
		c.Release(one)
		c.Release(y)
		y = ny

		x2 := c.Multiply(x, x)
		y2 := c.Multiply(y, y)
		s = c.Add(x2, y2)
		c.Release(x2)
		c.Release(y2)

		zero := c.FromInt64(0)
		inRange := c.Compare(s, zero) > 0
		oneF := c.FromInt64(1)
		inRange = inRange && c.Compare(s, oneF) < 0
		c.Release(zero)
		c.Release(oneF)
		if inRange {
			break
		}
		c.Release(x)
		c.Release(y)
		c.Release(s)
	}

	// r = sqrt(-2*log(u)/s) for an independent uniform u in (0, 1], so that
	// x*r = (x/sqrt(s)) * sqrt(-2*log(u)).
	u0 := c.Uniform()
	oneU := c.FromInt64(1)
	u := c.Sub(oneU, u0)
	c.Release(oneU)
	c.Release(u0)
	logU := c.LogE(u)
	c.Release(u)
	negTwo := c.FromInt64(-2)
	num := c.Multiply(negTwo, logU)
	c.Release(negTwo)
	c.Release(logU)
	ratio := c.Divide(num, s)
	c.Release(num)
	c.Release(s)
	r := c.Sqrt(ratio)
	c.Release(ratio)

	z := c.Multiply(x, r)
	c.Release(x)
	c.Release(y)
	c.Release(r)

	scaled := c.Multiply(z, sigma)
	c.Release(z)
	out := c.Add(scaled, mu)
	c.Release(scaled)
	return out
}
