package bigfloat

import (
	"bufio"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// String renders f in a compact canonical form: sufficient decimal digits
// for the current precision (p*log10(2)), trailing zeros trimmed before
// the exponent marker. Sentinels render as "nan", "inf", "-inf".
func (c *Context) String(f *F) string {
	switch {
	case IsNaN(f):
		return "nan"
	case IsPosInf(f):
		return "inf"
	case IsNegInf(f):
		return "-inf"
	}
	digits := int(math.Ceil(float64(c.precision) * math.Log10(2)))
	if digits < 1 {
		digits = 1
	}
	s := f.val.v.Text('e', digits)
	return trimTrailingZeros(s)
}

// trimTrailingZeros drops trailing zeros in the mantissa of a %e-style
// rendering, along with a now-superfluous decimal point, while leaving
// the exponent marker untouched.
func trimTrailingZeros(s string) string {
	idx := strings.IndexAny(s, "eE")
	mantissa, rest := s, ""
	if idx >= 0 {
		mantissa, rest = s[:idx], s[idx:]
	}
	if !strings.Contains(mantissa, ".") {
		return mantissa + rest
	}
	mantissa = strings.TrimRight(mantissa, "0")
	mantissa = strings.TrimRight(mantissa, ".")
	return mantissa + rest
}

// Store writes a textual serialization of f to w: sentinels as their
// names ("nan"/"inf"/"-inf"), "NULL" for a nil pointer, and finite values
// as declared-precision-tagged scientific notation sufficient to
// round-trip exactly.
func (c *Context) Store(w *bufio.Writer, f *F) error {
	if f == nil {
		_, err := w.WriteString("NULL\n")
		return err
	}
	switch {
	case IsNaN(f):
		_, err := w.WriteString("nan\n")
		return err
	case IsPosInf(f):
		_, err := w.WriteString("inf\n")
		return err
	case IsNegInf(f):
		_, err := w.WriteString("-inf\n")
		return err
	}
	_, err := fmt.Fprintf(w, "%d %s\n", f.val.v.Prec(), f.val.v.Text('x', -1))
	return err
}

// Load reads a value previously written by Store, acquiring a handle at
// the stored declared precision (a restore may therefore raise or lower
// the allocator's effective precision for that one handle independent of
// the context's current working precision; callers typically SetPrecision
// first so the two agree).
func (c *Context) Load(line string) (*F, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "NULL":
		return nil, nil
	case "nan":
		return NaN(), nil
	case "inf":
		return PosInf(), nil
	case "-inf":
		return NegInf(), nil
	}
	fields := strings.SplitN(line, " ", 2)
	if len(fields) != 2 {
		return nil, fmt.Errorf("bigfloat: corrupt value line %q", line)
	}
	prec, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bigfloat: corrupt precision in %q: %w", line, err)
	}
	v, _, err := big.ParseFloat(fields[1], 0, uint(prec), big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("bigfloat: corrupt mantissa in %q: %w", line, err)
	}
	out := &F{kind: kindFinite, val: c.alloc.acquire(uint(prec))}
	out.val.v.Set(v)
	return out, nil
}
