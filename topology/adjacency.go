package topology

import (
	"fmt"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/vec"
)

// AdjacencyTopology implements the lbest/ring/grid/wheel family: each
// particle maintains its own attractor view, and a propose by particle i
// is checked against the view of every neighbor of i (including i
// itself). Grounded on the Ring/RandomExpander neighbor-list shape,
// generalized from a single shared comparator to N independently owned
// attractor views plus a cached overall best.
type AdjacencyTopology struct {
	num       int
	mode      PropagationMode
	fn        strategy.Function
	neighbors [][]int // neighbors[i] includes i itself

	views   []*view
	pending []proposal

	overallValid bool
	overallIdx   int

	updateCounts []int
}

func newAdjacencyTopology(ctx *bigfloat.Context, dims int, mode PropagationMode, fn strategy.Function, neighbors [][]int) *AdjacencyTopology {
	views := make([]*view, len(neighbors))
	for i := range views {
		views[i] = newView(ctx, dims)
	}
	return &AdjacencyTopology{
		num:          len(neighbors),
		mode:         mode,
		fn:           fn,
		neighbors:    neighbors,
		views:        views,
		updateCounts: make([]int, len(neighbors)),
	}
}

// lbestNeighbors builds the symmetric adjacency list for lbest-k: each
// particle connects to itself plus the k/2 particles on either side of it
// in index order, wrapping around. k must be even and less than num.
func lbestNeighbors(num, k int) [][]int {
	if k%2 != 0 {
		panic(fmt.Sprintf("topology: lbest degree must be even, got %d", k))
	}
	if k < 0 || k >= num {
		panic(fmt.Sprintf("topology: lbest degree %d out of range for %d particles", k, num))
	}
	out := make([][]int, num)
	half := k / 2
	for i := 0; i < num; i++ {
		set := map[int]bool{i: true}
		for d := 1; d <= half; d++ {
			set[((i-d)%num+num)%num] = true
			set[(i+d)%num] = true
		}
		list := make([]int, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		out[i] = list
	}
	return out
}

// gridNeighbors builds the von-Neumann torus adjacency for an R-row,
// C-column grid: each particle connects to itself and its four
// orthogonal neighbors, wrapping at the edges.
func gridNeighbors(rows, cols int) [][]int {
	num := rows * cols
	idx := func(r, c int) int {
		r = ((r % rows) + rows) % rows
		c = ((c % cols) + cols) % cols
		return r*cols + c
	}
	out := make([][]int, num)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := idx(r, c)
			// A dimension of size 1 or 2 makes opposite torus neighbors
			// coincide; dedupe so a degenerate grid doesn't double-apply
			// the same neighbor's proposal.
			set := map[int]bool{i: true, idx(r-1, c): true, idx(r+1, c): true, idx(r, c-1): true, idx(r, c+1): true}
			list := make([]int, 0, len(set))
			for n := range set {
				list = append(list, n)
			}
			out[i] = list
		}
	}
	return out
}

// wheelNeighbors builds the star-to-particle-0 adjacency: particle 0
// connects to everyone, every other particle connects only to itself and
// particle 0.
func wheelNeighbors(num int) [][]int {
	out := make([][]int, num)
	hub := make([]int, num)
	for i := range hub {
		hub[i] = i
	}
	out[0] = hub
	for i := 1; i < num; i++ {
		out[i] = []int{i, 0}
	}
	return out
}

// NewLBest creates an lbest-k topology, degree k (even, 0 < k < num).
func NewLBest(ctx *bigfloat.Context, numParticles, dims, k int, mode PropagationMode, fn strategy.Function) *AdjacencyTopology {
	return newAdjacencyTopology(ctx, dims, mode, fn, lbestNeighbors(numParticles, k))
}

// NewRing creates the ring topology, lbest-2.
func NewRing(ctx *bigfloat.Context, numParticles, dims int, mode PropagationMode, fn strategy.Function) *AdjacencyTopology {
	return newAdjacencyTopology(ctx, dims, mode, fn, lbestNeighbors(numParticles, 2))
}

// NewGrid creates the R×C von-Neumann torus topology.
func NewGrid(ctx *bigfloat.Context, rows, cols, dims int, mode PropagationMode, fn strategy.Function) *AdjacencyTopology {
	return newAdjacencyTopology(ctx, dims, mode, fn, gridNeighbors(rows, cols))
}

// NewWheel creates the star-to-particle-0 topology.
func NewWheel(ctx *bigfloat.Context, numParticles, dims int, mode PropagationMode, fn strategy.Function) *AdjacencyTopology {
	return newAdjacencyTopology(ctx, dims, mode, fn, wheelNeighbors(numParticles))
}

func (t *AdjacencyTopology) Size() int { return t.num }

func (t *AdjacencyTopology) applyTo(ctx *bigfloat.Context, particleID int, pos *vec.Vector, value *bigfloat.F) {
	for _, n := range t.neighbors[particleID] {
		if t.views[n].replace(ctx, pos, value) {
			t.overallValid = false
			t.updateCounts[particleID]++
		}
	}
}

// GlobalAttractorUpdateCount returns the number of times particleID's
// proposals have replaced a neighbor's view (or its own), attributed to
// particleID regardless of which view in its neighborhood accepted it.
func (t *AdjacencyTopology) GlobalAttractorUpdateCount(particleID int) int {
	return t.updateCounts[particleID]
}

// SetGlobalAttractorUpdateCounts installs previously-persisted counts,
// one per particle in ID order.
func (t *AdjacencyTopology) SetGlobalAttractorUpdateCounts(counts []int) {
	copy(t.updateCounts, counts)
}

func (t *AdjacencyTopology) Propose(ctx *bigfloat.Context, particleID int, pos *vec.Vector, value *bigfloat.F) {
	if t.mode == EachParticle {
		t.applyTo(ctx, particleID, pos, value)
		return
	}
	t.pending = append(t.pending, proposal{particleID, pos.Clone(), ctx.Clone(value)})
}

func (t *AdjacencyTopology) ApplyPendingUpdates(ctx *bigfloat.Context) {
	for _, p := range t.pending {
		t.applyTo(ctx, p.particleID, p.pos, p.value)
		p.pos.Release()
		ctx.Release(p.value)
	}
	t.pending = t.pending[:0]
}

func (t *AdjacencyTopology) GlobalAttractorPosition(ctx *bigfloat.Context, particleID int) *vec.Vector {
	return t.views[particleID].pos.Clone()
}

func (t *AdjacencyTopology) GlobalAttractorValue(ctx *bigfloat.Context, particleID int) *bigfloat.F {
	return t.views[particleID].valueFor(ctx, t.fn)
}

func (t *AdjacencyTopology) recomputeOverall(ctx *bigfloat.Context) {
	best := 0
	for i := 1; i < len(t.views); i++ {
		vi := t.views[i].valueFor(ctx, t.fn)
		vb := t.views[best].valueFor(ctx, t.fn)
		if ctx.Compare(vi, vb) < 0 {
			best = i
		}
		ctx.Release(vi)
		ctx.Release(vb)
	}
	t.overallIdx = best
	t.overallValid = true
}

func (t *AdjacencyTopology) OverallAttractorPosition(ctx *bigfloat.Context) *vec.Vector {
	if !t.overallValid {
		t.recomputeOverall(ctx)
	}
	return t.views[t.overallIdx].pos.Clone()
}

func (t *AdjacencyTopology) OverallAttractorValue(ctx *bigfloat.Context) *bigfloat.F {
	if !t.overallValid {
		t.recomputeOverall(ctx)
	}
	return t.views[t.overallIdx].valueFor(ctx, t.fn)
}
