// Package particle implements a single swarm member: owned
// position/velocity/local-attractor vectors, a lazily (re)evaluated
// local-attractor value, and the glue that proposes improvements to the
// configured topology. Grounded on pso/particle.Particle
// (Pos/Vel/BestPos/BestVal/Init/UpdateCur/UpdateBest/String), reshaped
// around owned bigfloat.F/vec.Vector handles and an objective/topology
// indirection in place of a single flat fitness function.
package particle

import (
	"bufio"
	"fmt"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
	"github.com/shiblon/bigpso/vec"
)

// Particle is one swarm member. ID identifies it to its Topology.
type Particle struct {
	ID int

	fn   strategy.Function
	topo topology.Topology

	Position *vec.Vector
	Velocity *vec.Vector

	LocalAttractor *vec.Vector

	localAttractorValue    *bigfloat.F
	localAttractorValueAt  uint
	localAttractorValueSet bool

	LocalAttractorUpdateCount int
}

// New creates a particle at the given initial position and velocity,
// seeding its local attractor at that same position. Ownership of pos and
// vel transfers to the particle.
func New(ctx *bigfloat.Context, id int, fn strategy.Function, topo topology.Topology, pos, vel *vec.Vector) *Particle {
	if pos.Len() != vel.Len() {
		panic(fmt.Sprintf("particle: position and velocity have different lengths: %d != %d", pos.Len(), vel.Len()))
	}
	p := &Particle{
		ID:             id,
		fn:             fn,
		topo:           topo,
		Position:       pos,
		Velocity:       vel,
		LocalAttractor: pos.Clone(),
	}
	p.refreshLocalAttractorValue(ctx)
	p.proposeCurrentPosition(ctx)
	return p
}

// SetPosition releases the current position, installs pos (taking
// ownership), evaluates the objective there, and if the result is no
// worse than the cached local-attractor value (or none is cached yet)
// adopts pos as the new local attractor and proposes it to the topology.
func (p *Particle) SetPosition(ctx *bigfloat.Context, pos *vec.Vector) {
	p.Position.Release()
	p.Position = pos

	value := p.fn.Evaluate(ctx, pos)
	defer ctx.Release(value)

	if !p.localAttractorValueSet || ctx.Compare(value, p.localAttractorValue) <= 0 {
		p.LocalAttractor.Release()
		p.LocalAttractor = pos.Clone()
		if p.localAttractorValueSet {
			ctx.Release(p.localAttractorValue)
		}
		p.localAttractorValue = ctx.Clone(value)
		p.localAttractorValueAt = ctx.Precision()
		p.localAttractorValueSet = true
		p.LocalAttractorUpdateCount++
		p.topo.Propose(ctx, p.ID, pos, value)
	}
}

// SetTopology rewires the particle to a different Topology instance,
// used when a checkpoint reconstructs particles before their topology
// does.
func (p *Particle) SetTopology(topo topology.Topology) { p.topo = topo }

// SetVelocity releases the current velocity and installs vel, taking
// ownership.
func (p *Particle) SetVelocity(ctx *bigfloat.Context, vel *vec.Vector) {
	p.Velocity.Release()
	p.Velocity = vel
}

// SetLocalAttractor forcibly replaces the local attractor (e.g. on
// restore), invalidating the cached value and bumping the update
// counter. Ownership of pos transfers to the particle.
func (p *Particle) SetLocalAttractor(ctx *bigfloat.Context, pos *vec.Vector) {
	p.LocalAttractor.Release()
	p.LocalAttractor = pos
	if p.localAttractorValueSet {
		ctx.Release(p.localAttractorValue)
	}
	p.localAttractorValueSet = false
	p.LocalAttractorUpdateCount++
}

// GetLocalAttractorValue returns a clone of the local attractor's
// objective value, lazily (re)evaluating it if it was never computed or
// the context's precision has changed since.
func (p *Particle) GetLocalAttractorValue(ctx *bigfloat.Context) *bigfloat.F {
	if !p.localAttractorValueSet || p.localAttractorValueAt != ctx.Precision() {
		p.refreshLocalAttractorValue(ctx)
	}
	return ctx.Clone(p.localAttractorValue)
}

func (p *Particle) refreshLocalAttractorValue(ctx *bigfloat.Context) {
	if p.localAttractorValueSet {
		ctx.Release(p.localAttractorValue)
	}
	p.localAttractorValue = p.fn.Evaluate(ctx, p.LocalAttractor)
	p.localAttractorValueAt = ctx.Precision()
	p.localAttractorValueSet = true
}

func (p *Particle) proposeCurrentPosition(ctx *bigfloat.Context) {
	value := p.fn.Evaluate(ctx, p.Position)
	defer ctx.Release(value)
	p.topo.Propose(ctx, p.ID, p.Position, value)
}

// UpdatePosition delegates to updater to compute the next position and
// velocity from the particle's current state and its two attractors, then
// installs them via SetPosition/SetVelocity so local-attractor and
// topology bookkeeping stays correct.
func (p *Particle) UpdatePosition(ctx *bigfloat.Context, updater strategy.PositionVelocityUpdater, bounds strategy.Bounds, bh strategy.BoundHandling, va strategy.VelocityAdjustment, chi, cLocal, cGlobal float64) {
	globalPos := p.topo.GlobalAttractorPosition(ctx, p.ID)
	defer globalPos.Release()

	rawPos, rawVel := updater.Update(ctx, p.Position, p.Velocity, p.LocalAttractor, globalPos, chi, cLocal, cGlobal)

	boundedPos, boundedVel := bh.Apply(ctx, bounds, rawPos, rawVel)
	rawPos.Release()
	rawVel.Release()

	adjustedVel := va.Adjust(ctx, boundedVel)
	boundedVel.Release()

	p.SetVelocity(ctx, adjustedVel)
	p.SetPosition(ctx, boundedPos)
}

// Release releases every handle the particle owns. The particle must not
// be used afterward.
func (p *Particle) Release(ctx *bigfloat.Context) {
	p.Position.Release()
	p.Velocity.Release()
	p.LocalAttractor.Release()
	if p.localAttractorValueSet {
		ctx.Release(p.localAttractorValue)
	}
}

// Store writes the particle's position, velocity, and local attractor, in
// that order. The cached local-attractor value is
// not stored; Load re-evaluates it from the restored local attractor.
func (p *Particle) Store(ctx *bigfloat.Context, w *bufio.Writer) error {
	if err := vec.Store(ctx, w, p.Position); err != nil {
		return err
	}
	if err := vec.Store(ctx, w, p.Velocity); err != nil {
		return err
	}
	return vec.Store(ctx, w, p.LocalAttractor)
}

// Load reads a particle previously written by Store, wiring it to fn and
// topo.
func Load(ctx *bigfloat.Context, r *bufio.Reader, id int, fn strategy.Function, topo topology.Topology) (*Particle, error) {
	pos, err := vec.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	vel, err := vec.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	local, err := vec.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	p := &Particle{ID: id, fn: fn, topo: topo, Position: pos, Velocity: vel, LocalAttractor: local}
	p.refreshLocalAttractorValue(ctx)
	return p, nil
}

// String renders a short human-readable summary.
func (p *Particle) String(ctx *bigfloat.Context) string {
	return fmt.Sprintf("particle %d (global updates=%d, attractor updates=%d):\n  x=%s\n  x'=%s\n  local=%s",
		p.ID, p.topo.GlobalAttractorUpdateCount(p.ID), p.LocalAttractorUpdateCount, p.Position.String(), p.Velocity.String(), p.LocalAttractor.String())
}
