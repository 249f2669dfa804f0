package engine

import (
	"fmt"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/vec"
)

// guardedFunction wraps an objective with the process-wide "evaluation in
// progress" flag: an evaluation may not trigger
// another evaluation. The engine is single-threaded and cooperative, so a
// single unexported flag (not an atomic) is sufficient; it exists to catch
// programming errors, not races.
type guardedFunction struct {
	inner strategy.Function
}

var evaluationInProgress bool

func newGuardedFunction(inner strategy.Function) *guardedFunction {
	return &guardedFunction{inner: inner}
}

func (g *guardedFunction) Dimensions() int        { return g.inner.Dimensions() }
func (g *guardedFunction) Bounds() strategy.Bounds { return g.inner.Bounds() }

func (g *guardedFunction) Evaluate(ctx *bigfloat.Context, pos *vec.Vector) *bigfloat.F {
	if evaluationInProgress {
		panic(fmt.Sprintf("engine: reentrant objective evaluation at position %s", pos.String()))
	}
	evaluationInProgress = true
	defer func() { evaluationInProgress = false }()
	return g.inner.Evaluate(ctx, pos)
}
