package topology

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/vec"
)

// StoreGBest writes a GBest topology's state to w. The
// objective function reference is not part of the serialized state; the
// caller re-wires it when reconstructing the topology on restore.
func StoreGBest(ctx *bigfloat.Context, w *bufio.Writer, t *GBest) error {
	if _, err := fmt.Fprintf(w, "gbest %d %d\n", t.num, int(t.mode)); err != nil {
		return err
	}
	return storeView(ctx, w, t.v)
}

// LoadGBest reconstructs a GBest topology from a reader positioned at the
// line StoreGBest wrote.
func LoadGBest(ctx *bigfloat.Context, r *bufio.Reader, fn strategy.Function) (*GBest, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	var num, mode int
	if _, err := fmt.Sscanf(header, "gbest %d %d", &num, &mode); err != nil {
		return nil, fmt.Errorf("topology: corrupt gbest header %q: %w", header, err)
	}
	v, err := loadView(ctx, r)
	if err != nil {
		return nil, err
	}
	return &GBest{num: num, mode: PropagationMode(mode), fn: fn, v: v, updateCounts: make([]int, num)}, nil
}

// StoreAdjacency writes an AdjacencyTopology's state to w, including its
// neighbor lists so the exact same graph is reconstructed on restore.
func StoreAdjacency(ctx *bigfloat.Context, w *bufio.Writer, t *AdjacencyTopology) error {
	if _, err := fmt.Fprintf(w, "adjacency %d %d\n", t.num, int(t.mode)); err != nil {
		return err
	}
	for _, nbrs := range t.neighbors {
		if _, err := fmt.Fprintf(w, "%d", len(nbrs)); err != nil {
			return err
		}
		for _, n := range nbrs {
			if _, err := fmt.Fprintf(w, " %d", n); err != nil {
				return err
			}
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	for _, v := range t.views {
		if err := storeView(ctx, w, v); err != nil {
			return err
		}
	}
	return nil
}

// LoadAdjacency reconstructs an AdjacencyTopology from a reader positioned
// at the line StoreAdjacency wrote.
func LoadAdjacency(ctx *bigfloat.Context, r *bufio.Reader, fn strategy.Function) (*AdjacencyTopology, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	var num, mode int
	if _, err := fmt.Sscanf(header, "adjacency %d %d", &num, &mode); err != nil {
		return nil, fmt.Errorf("topology: corrupt adjacency header %q: %w", header, err)
	}
	neighbors := make([][]int, num)
	for i := 0; i < num; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("topology: corrupt neighbor line %q", line)
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || count != len(fields)-1 {
			return nil, fmt.Errorf("topology: corrupt neighbor line %q", line)
		}
		nbrs := make([]int, count)
		for j, s := range fields[1:] {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("topology: corrupt neighbor entry in %q: %w", line, err)
			}
			nbrs[j] = n
		}
		neighbors[i] = nbrs
	}
	views := make([]*view, num)
	for i := range views {
		v, err := loadView(ctx, r)
		if err != nil {
			return nil, err
		}
		views[i] = v
	}
	return &AdjacencyTopology{
		num:          num,
		mode:         PropagationMode(mode),
		fn:           fn,
		neighbors:    neighbors,
		views:        views,
		updateCounts: make([]int, num),
	}, nil
}

func storeView(ctx *bigfloat.Context, w *bufio.Writer, v *view) error {
	if err := vec.Store(ctx, w, v.pos); err != nil {
		return err
	}
	if err := ctx.Store(w, v.value); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d\n", v.valueAt); err != nil {
		return err
	}
	return nil
}

func loadView(ctx *bigfloat.Context, r *bufio.Reader) (*view, error) {
	pos, err := vec.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	valLine, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	value, err := ctx.Load(valLine)
	if err != nil {
		return nil, err
	}
	stampLine, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	var stamp uint
	if _, err := fmt.Sscanf(stampLine, "%d", &stamp); err != nil {
		return nil, fmt.Errorf("topology: corrupt precision stamp %q: %w", stampLine, err)
	}
	return &view{pos: pos, value: value, valueAt: stamp}, nil
}
