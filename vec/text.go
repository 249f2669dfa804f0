package vec

import (
	"bufio"
	"fmt"

	"github.com/shiblon/bigpso/bigfloat"
)

// Store writes v as a dimension count followed by one bigfloat.Store line
// per component, for use by the checkpoint format.
func Store(ctx *bigfloat.Context, w *bufio.Writer, v *Vector) error {
	if _, err := fmt.Fprintf(w, "%d\n", v.Len()); err != nil {
		return err
	}
	for _, f := range v.E {
		if err := ctx.Store(w, f); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a Vector previously written by Store from r.
func Load(ctx *bigfloat.Context, r *bufio.Reader) (*Vector, error) {
	dimsLine, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	var dims int
	if _, err := fmt.Sscanf(dimsLine, "%d", &dims); err != nil {
		return nil, fmt.Errorf("vec: corrupt dimension line %q: %w", dimsLine, err)
	}
	v := &Vector{ctx: ctx, E: make([]*bigfloat.F, dims)}
	for i := 0; i < dims; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		f, err := ctx.Load(line)
		if err != nil {
			return nil, err
		}
		v.E[i] = f
	}
	return v, nil
}
