// Package vec implements elementwise arbitrary-precision vector
// operations, mirroring pso/vector.go's float64 Vec type but routing
// every intermediate through a bigfloat.Context so allocator accounting
// stays correct.
package vec

import (
	"fmt"

	"github.com/shiblon/bigpso/bigfloat"
)

// Vector is a fixed-length, owned sequence of bigfloat handles.
type Vector struct {
	ctx *bigfloat.Context
	E   []*bigfloat.F
}

func assertSameLen(a, b *Vector) {
	if len(a.E) != len(b.E) {
		panic(fmt.Sprintf("vec: length mismatch: %d != %d", len(a.E), len(b.E)))
	}
}

// New creates a Vector of the given dimensionality, all zero.
func New(ctx *bigfloat.Context, dims int) *Vector {
	v := &Vector{ctx: ctx, E: make([]*bigfloat.F, dims)}
	for i := range v.E {
		v.E[i] = ctx.FromInt64(0)
	}
	return v
}

// NewFromFloat64s creates a Vector from native doubles, useful for tests
// and for seeding initial swarm state from configuration bounds.
func NewFromFloat64s(ctx *bigfloat.Context, vals []float64) *Vector {
	v := &Vector{ctx: ctx, E: make([]*bigfloat.F, len(vals))}
	for i, x := range vals {
		v.E[i] = ctx.FromFloat64(x)
	}
	return v
}

// Len returns the vector's dimensionality.
func (v *Vector) Len() int { return len(v.E) }

// Release releases every component handle. The Vector must not be used
// afterward.
func (v *Vector) Release() {
	for _, f := range v.E {
		v.ctx.Release(f)
	}
	v.E = nil
}

// Clone returns a deep copy with independently owned components.
func (v *Vector) Clone() *Vector {
	out := &Vector{ctx: v.ctx, E: make([]*bigfloat.F, len(v.E))}
	for i, f := range v.E {
		out.E[i] = v.ctx.Clone(f)
	}
	return out
}

// Replace releases v's current components and replaces them with clones
// of other's, matching Vec.Replace's semantics.
func (v *Vector) Replace(other *Vector) *Vector {
	assertSameLen(v, other)
	for i := range v.E {
		v.ctx.Release(v.E[i])
		v.E[i] = v.ctx.Clone(other.E[i])
	}
	return v
}

// Set replaces component i, releasing the old value and taking ownership
// of f (no clone).
func (v *Vector) Set(i int, f *bigfloat.F) {
	v.ctx.Release(v.E[i])
	v.E[i] = f
}

func (v *Vector) elementwise(other *Vector, op func(a, b *bigfloat.F) *bigfloat.F) *Vector {
	assertSameLen(v, other)
	out := &Vector{ctx: v.ctx, E: make([]*bigfloat.F, len(v.E))}
	for i := range v.E {
		out.E[i] = op(v.E[i], other.E[i])
	}
	return out
}

// Add returns v+other, elementwise.
func (v *Vector) Add(other *Vector) *Vector { return v.elementwise(other, v.ctx.Add) }

// Sub returns v-other, elementwise.
func (v *Vector) Sub(other *Vector) *Vector { return v.elementwise(other, v.ctx.Sub) }

// Mul returns v*other, elementwise.
func (v *Vector) Mul(other *Vector) *Vector { return v.elementwise(other, v.ctx.Multiply) }

// Div returns v/other, elementwise.
func (v *Vector) Div(other *Vector) *Vector { return v.elementwise(other, v.ctx.Divide) }

// ScaleFloat64 multiplies every component by a native double.
func (v *Vector) ScaleFloat64(k float64) *Vector {
	s := v.ctx.FromFloat64(k)
	defer v.ctx.Release(s)
	out := &Vector{ctx: v.ctx, E: make([]*bigfloat.F, len(v.E))}
	for i, f := range v.E {
		out.E[i] = v.ctx.Multiply(f, s)
	}
	return out
}

// ScaleBig multiplies every component by a single bigfloat scalar.
func (v *Vector) ScaleBig(s *bigfloat.F) *Vector {
	out := &Vector{ctx: v.ctx, E: make([]*bigfloat.F, len(v.E))}
	for i, f := range v.E {
		out.E[i] = v.ctx.Multiply(f, s)
	}
	return out
}

// ScaleVecFloat64 multiplies each component by the matching entry of a
// native-double vector, e.g. a per-dimension step size.
func (v *Vector) ScaleVecFloat64(k []float64) *Vector {
	if len(k) != len(v.E) {
		panic(fmt.Sprintf("vec: length mismatch: %d != %d", len(v.E), len(k)))
	}
	out := &Vector{ctx: v.ctx, E: make([]*bigfloat.F, len(v.E))}
	for i, f := range v.E {
		s := v.ctx.FromFloat64(k[i])
		out.E[i] = v.ctx.Multiply(f, s)
		v.ctx.Release(s)
	}
	return out
}

// RandomScale multiplies each component by an independent uniform draw in
// [0, 1)
func (v *Vector) RandomScale() *Vector {
	out := &Vector{ctx: v.ctx, E: make([]*bigfloat.F, len(v.E))}
	for i, f := range v.E {
		u := v.ctx.Uniform()
		out.E[i] = v.ctx.Multiply(f, u)
		v.ctx.Release(u)
	}
	return out
}

// Dot returns the dot product <v, other>.
func (v *Vector) Dot(other *Vector) *bigfloat.F {
	assertSameLen(v, other)
	sum := v.ctx.FromInt64(0)
	for i := range v.E {
		p := v.ctx.Multiply(v.E[i], other.E[i])
		next := v.ctx.Add(sum, p)
		v.ctx.Release(p)
		v.ctx.Release(sum)
		sum = next
	}
	return sum
}

// Length returns the Euclidean norm sqrt(<v, v>).
func (v *Vector) Length() *bigfloat.F {
	d := v.Dot(v)
	defer v.ctx.Release(d)
	return v.ctx.Sqrt(d)
}

// Project returns the orthogonal projection of v onto u:
// (<v,u>/<u,u>)*u. If u is the zero vector, the result is u scaled by
// zero.
func (v *Vector) Project(u *Vector) *Vector {
	num := v.Dot(u)
	defer v.ctx.Release(num)
	denom := u.Dot(u)
	defer v.ctx.Release(denom)
	if Len0IsZero(v.ctx, denom) {
		return u.ScaleFloat64(0)
	}
	scale := v.ctx.Divide(num, denom)
	defer v.ctx.Release(scale)
	return u.ScaleBig(scale)
}

// Len0IsZero reports whether a scalar handle is exactly zero. Defined on
// *bigfloat.F via a tiny adapter so Project reads naturally; it is not
// part of the bigfloat package's own API because "zero" is only a
// meaningful vector-algebra concept here.
func Len0IsZero(ctx *bigfloat.Context, f *bigfloat.F) bool {
	zero := ctx.FromInt64(0)
	defer ctx.Release(zero)
	return ctx.Compare(f, zero) == 0
}

// Sort reorders v's components ascending by value, stably, using ctx's
// comparator.
func (v *Vector) Sort() {
	// Simple stable insertion sort: vectors here are small (particle
	// dimensionality), and stability under the bigfloat comparator (which
	// may trigger the adaptive precision check on close values) matters
	// more than asymptotic speed.
	for i := 1; i < len(v.E); i++ {
		j := i
		for j > 0 && v.ctx.Compare(v.E[j-1], v.E[j]) > 0 {
			v.E[j-1], v.E[j] = v.E[j], v.E[j-1]
			j--
		}
	}
}

// String renders each component via the owning context's canonical
// formatting, space-separated.
func (v *Vector) String() string {
	s := ""
	for i, f := range v.E {
		if i > 0 {
			s += " "
		}
		s += v.ctx.String(f)
	}
	return s
}
