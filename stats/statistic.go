package stats

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/particle"
	"github.com/shiblon/bigpso/topology"
)

// Statistic is a vector-producing node in the statistics AST: it yields a
// K-length vector of owned handles, usually K=D or K=N.
type Statistic interface {
	Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F
}

// Axis selects which dimension of a Specific's matrix a Reduction
// collapses.
type Axis int

const (
	AxisParticles Axis = iota // collapse over particles, yielding a D-vector
	AxisDimensions             // collapse over dimensions, yielding an N-vector
)

// Reducer names one of the catalog of column/row reducers
// allows a Reduction statistic to apply.
type Reducer int

const (
	ReduceSum Reducer = iota
	ReduceProduct
	ReduceArithmeticMean
	ReduceGeometricMean
	ReduceMin
	ReduceMax
	ReduceOrdinal // Nth smallest, 0-indexed, via K field
)

// Reduction collapses a Specific's matrix along Axis using Reducer.
type Reduction struct {
	Inner   Specific
	Axis    Axis
	Reducer Reducer
	K       int // ordinal index, used only by ReduceOrdinal
}

func (r Reduction) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	m := r.Inner.Evaluate(ctx, particles, topo)
	defer m.Release(ctx)

	n, d := m.Dims()
	if n == 0 {
		return nil
	}

	var out []*bigfloat.F
	if r.Axis == AxisDimensions {
		out = make([]*bigfloat.F, n)
		for i := 0; i < n; i++ {
			out[i] = reduceSlice(ctx, m[i], r.Reducer, r.K)
		}
	} else {
		out = make([]*bigfloat.F, d)
		for j := 0; j < d; j++ {
			col := make([]*bigfloat.F, n)
			for i := 0; i < n; i++ {
				col[i] = m[i][j]
			}
			out[j] = reduceSlice(ctx, col, r.Reducer, r.K)
		}
	}
	return out
}

func reduceSlice(ctx *bigfloat.Context, vals []*bigfloat.F, reducer Reducer, k int) *bigfloat.F {
	switch reducer {
	case ReduceSum:
		acc := ctx.FromInt64(0)
		for _, v := range vals {
			next := ctx.Add(acc, v)
			ctx.Release(acc)
			acc = next
		}
		return acc
	case ReduceProduct:
		acc := ctx.FromInt64(1)
		for _, v := range vals {
			next := ctx.Multiply(acc, v)
			ctx.Release(acc)
			acc = next
		}
		return acc
	case ReduceArithmeticMean:
		sum := reduceSlice(ctx, vals, ReduceSum, 0)
		n := ctx.FromInt64(int64(len(vals)))
		out := ctx.Divide(sum, n)
		ctx.Release(sum)
		ctx.Release(n)
		return out
	case ReduceGeometricMean:
		product := reduceSlice(ctx, vals, ReduceProduct, 0)
		n := ctx.FromFloat64(1.0 / float64(len(vals)))
		out := ctx.Pow(product, n)
		ctx.Release(product)
		ctx.Release(n)
		return out
	case ReduceMin:
		best := ctx.Clone(vals[0])
		for _, v := range vals[1:] {
			if ctx.Compare(v, best) < 0 {
				ctx.Release(best)
				best = ctx.Clone(v)
			}
		}
		return best
	case ReduceMax:
		best := ctx.Clone(vals[0])
		for _, v := range vals[1:] {
			if ctx.Compare(v, best) > 0 {
				ctx.Release(best)
				best = ctx.Clone(v)
			}
		}
		return best
	case ReduceOrdinal:
		sorted := make([]*bigfloat.F, len(vals))
		for i, v := range vals {
			sorted[i] = ctx.Clone(v)
		}
		for i := 1; i < len(sorted); i++ {
			j := i
			for j > 0 && ctx.Compare(sorted[j-1], sorted[j]) > 0 {
				sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
				j--
			}
		}
		result := ctx.Clone(sorted[k])
		for _, s := range sorted {
			ctx.Release(s)
		}
		return result
	default:
		panic("stats: unknown reducer")
	}
}

// CombineOp names a binary combiner
// equal-length statistics.
type CombineOp int

const (
	CombineAdd CombineOp = iota
	CombineSub
	CombineMul
	CombineDiv
	CombineMin
	CombineMax
)

// Combine produces elementwise A∘B for two statistics of equal length.
type Combine struct {
	A, B Statistic
	Op   CombineOp
}

func (c Combine) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	a := c.A.Evaluate(ctx, particles, topo)
	b := c.B.Evaluate(ctx, particles, topo)
	if len(a) != len(b) {
		panic(fmt.Sprintf("stats: combine length mismatch: %d != %d", len(a), len(b)))
	}
	out := make([]*bigfloat.F, len(a))
	for i := range a {
		switch c.Op {
		case CombineAdd:
			out[i] = ctx.Add(a[i], b[i])
		case CombineSub:
			out[i] = ctx.Sub(a[i], b[i])
		case CombineMul:
			out[i] = ctx.Multiply(a[i], b[i])
		case CombineDiv:
			out[i] = ctx.Divide(a[i], b[i])
		case CombineMin:
			out[i] = ctx.Min(a[i], b[i])
		case CombineMax:
			out[i] = ctx.Max(a[i], b[i])
		}
		ctx.Release(a[i])
		ctx.Release(b[i])
	}
	return out
}

// Elementwise applies a unary op to every entry of an inner statistic.
type Elementwise struct {
	Inner    Statistic
	Op       ElementwiseOp
	Exponent float64
}

func (e Elementwise) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	in := e.Inner.Evaluate(ctx, particles, topo)
	out := make([]*bigfloat.F, len(in))
	for i, v := range in {
		out[i] = applyElementwise(ctx, e.Op, e.Exponent, v)
		ctx.Release(v)
	}
	return out
}

// GlobalBestPosition yields the swarm-wide best attractor position (a
// D-vector), queried from the topology directly rather than via a
// Specific/Reduction pair so it stays correct regardless of topology
// family.
type GlobalBestPosition struct{}

func (GlobalBestPosition) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	v := topo.OverallAttractorPosition(ctx)
	return v.E
}

// GlobalBestValue yields the swarm-wide best attractor value as a
// length-1 vector.
type GlobalBestValue struct{}

func (GlobalBestValue) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	return []*bigfloat.F{topo.OverallAttractorValue(ctx)}
}

// LocalUpdateCounts yields each particle's local-attractor update
// counter, as doubles.
type LocalUpdateCounts struct{}

func (LocalUpdateCounts) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	out := make([]*bigfloat.F, len(particles))
	for i, p := range particles {
		out[i] = ctx.FromInt64(int64(p.LocalAttractorUpdateCount))
	}
	return out
}

// GlobalUpdateCounts yields how many times each particle's proposals have
// replaced a global attractor view, as tracked by the topology.
type GlobalUpdateCounts struct{}

func (GlobalUpdateCounts) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	out := make([]*bigfloat.F, len(particles))
	for i := range particles {
		out[i] = ctx.FromInt64(int64(topo.GlobalAttractorUpdateCount(i)))
	}
	return out
}

// Precision yields the context's current working precision as a length-1
// vector.
type Precision struct{}

func (Precision) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	return []*bigfloat.F{ctx.FromInt64(int64(ctx.Precision()))}
}

// Named attaches a user-chosen identifier to a Statistic, used both for
// the output file name (.STAT.<name>.txt) and for display.
type Named struct {
	Name  string
	Inner Statistic
}

func (n Named) Evaluate(ctx *bigfloat.Context, particles []*particle.Particle, topo topology.Topology) []*bigfloat.F {
	return n.Inner.Evaluate(ctx, particles, topo)
}

// ToString renders a vector of values as their canonical strings joined
// by single spaces.
func ToString(ctx *bigfloat.Context, vals []*bigfloat.F) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = ctx.String(v)
	}
	return strings.Join(parts, " ")
}

// AppendLine appends "<step> <rendered vector>\n" to the statistic's
// output file, creating it if necessary.
func AppendLine(path string, step int, rendered string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%d %s\n", step, rendered); err != nil {
		return err
	}
	return w.Flush()
}
