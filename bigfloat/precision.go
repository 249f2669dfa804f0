package bigfloat

import "math/big"

// maybeCheckPrecision implements the adaptive precision-loss check run
// after Add (Sub routes through Negate+Add) and may set the context's
// raise-pending flag. It never itself raises the precision; only the
// engine does that, at a safe point.
func (c *Context) maybeCheckPrecision(a, b, sum *F) {
	if c.checkPolicy == CheckNever {
		return
	}
	if c.checkPolicy == CheckAlwaysExceptStatistics && c.inStatisticalRegion() {
		return
	}
	if c.checkProbability < 1 && c.checkRand.Float64() >= c.checkProbability {
		return
	}

	absA := new(big.Float).Abs(a.val.v)
	absB := new(big.Float).Abs(b.val.v)
	absSum := new(big.Float).Abs(sum.val.v)

	s, m, l := sortThree(absSum, absA, absB)

	if s.Sign() == 0 {
		if m.Cmp(l) != 0 {
			c.FlagPrecisionLoss()
		}
		return
	}

	scaled := new(big.Float).Copy(s)
	scaled.SetMantExp(scaled, scaled.MantExp(nil)-int(c.margin))

	candidate := new(big.Float).SetPrec(c.precision)
	candidate.Add(l, scaled)
	if candidate.Cmp(l) == 0 {
		c.FlagPrecisionLoss()
	}
}

// sortThree returns x, y, z reordered ascending.
func sortThree(x, y, z *big.Float) (s, m, l *big.Float) {
	vals := [3]*big.Float{x, y, z}
	if vals[0].Cmp(vals[1]) > 0 {
		vals[0], vals[1] = vals[1], vals[0]
	}
	if vals[1].Cmp(vals[2]) > 0 {
		vals[1], vals[2] = vals[2], vals[1]
	}
	if vals[0].Cmp(vals[1]) > 0 {
		vals[0], vals[1] = vals[1], vals[0]
	}
	return vals[0], vals[1], vals[2]
}
