package engine

import (
	"math"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/checkpoint"
	"github.com/shiblon/bigpso/config"
	"github.com/shiblon/bigpso/particle"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
	"github.com/shiblon/bigpso/vec"
)

// interval is a per-dimension sampling range, applied to either the
// position or velocity sampling grid.
type interval struct{ Lo, Hi float64 }

// buildGrid starts every particle/dimension cell at fn's declared bounds
// (the same default every position and velocity interval starts from,
// since no separate default velocity range is configured), then
// replays cfg's initializationInformation records in declaration order so
// later records refine earlier ones.
func buildGrid(cfg *config.Config, fn strategy.Function) (pos, vel [][]interval) {
	b := fn.Bounds()
	pos = make([][]interval, cfg.Particles)
	vel = make([][]interval, cfg.Particles)
	for p := 0; p < cfg.Particles; p++ {
		pos[p] = make([]interval, cfg.Dimensions)
		vel[p] = make([]interval, cfg.Dimensions)
		for d := 0; d < cfg.Dimensions; d++ {
			pos[p][d] = interval{b.Lo[d], b.Hi[d]}
			vel[p][d] = interval{b.Lo[d], b.Hi[d]}
		}
	}

	for _, spec := range cfg.InitSpecs {
		grid := pos
		if !spec.Position {
			grid = vel
		}
		for p := spec.PFrom; p < spec.PTo && p < len(grid); p++ {
			for d := spec.DFrom; d < spec.DTo && d < len(grid[p]); d++ {
				grid[p][d] = applyRule(grid[p][d], spec.Rule)
			}
		}
	}
	return pos, vel
}

// applyRule computes the refined interval for one rule. randomCenterAndRange
// draws its own center independently per (particle, dimension) cell rather
// than once per dimension column: sharing the draw across a particle range
// is not required, and independent draws are the simpler, still-valid
// reading (see DESIGN.md Open Question resolution).
func applyRule(cur interval, r config.InitRule) interval {
	switch r.Kind {
	case config.RuleBounds:
		return interval{r.Lo, r.Hi}
	case config.RuleCenterAndRange:
		return interval{r.Center - r.Range, r.Center + r.Range}
	case config.RuleRandomCenterAndRange:
		center := r.Lo + randFloat64()*(r.Hi-r.Lo)
		return interval{center - r.Range, center + r.Range}
	case config.RuleScale:
		return interval{cur.Lo * r.Scale, cur.Hi * r.Scale}
	case config.RulePowerScale:
		factor := math.Pow(2, r.Scale)
		return interval{cur.Lo * factor, cur.Hi * factor}
	default:
		return cur
	}
}

// randFloat64 is used only to pick randomCenterAndRange centers. It draws
// from a package-level LCG with a fixed starting seed, separate from the
// context's configured RNG stream; its state is not checkpointed and
// carries over between engines built in the same process. All other
// initial sampling goes through ctx.Uniform().
var randSeed uint64 = 0x2545f4914f6cdd1d

func randFloat64() float64 {
	randSeed = randSeed*6364136223846793005 + 1442695040888963407
	return float64(randSeed>>11) / float64(1<<53)
}

func sampleInInterval(ctx *bigfloat.Context, iv interval) *bigfloat.F {
	lo := ctx.FromFloat64(iv.Lo)
	hi := ctx.FromFloat64(iv.Hi)
	span := ctx.Sub(hi, lo)
	u := ctx.Uniform()
	scaled := ctx.Multiply(u, span)
	out := ctx.Add(lo, scaled)
	ctx.Release(lo)
	ctx.Release(hi)
	ctx.Release(span)
	ctx.Release(u)
	ctx.Release(scaled)
	return out
}

// buildSwarm constructs N particles and their topology per cfg, then drains the topology's pending queue so
// the initial local/global attractors are visible before the first
// iteration.
func buildSwarm(ctx *bigfloat.Context, cfg *config.Config, fn strategy.Function) ([]*particle.Particle, topology.Topology, checkpoint.TopologyKind) {
	posGrid, velGrid := buildGrid(cfg, fn)

	topo := buildTopology(ctx, cfg, fn)

	particles := make([]*particle.Particle, cfg.Particles)
	for p := 0; p < cfg.Particles; p++ {
		pos := vec.New(ctx, cfg.Dimensions)
		for d := 0; d < cfg.Dimensions; d++ {
			pos.Set(d, sampleInInterval(ctx, posGrid[p][d]))
		}

		velVec := vec.New(ctx, cfg.Dimensions)
		switch cfg.InitVelocity {
		case config.VelocityZero:
			for d := 0; d < cfg.Dimensions; d++ {
				velVec.Set(d, ctx.FromInt64(0))
			}
		case config.VelocityHalfDiff:
			for d := 0; d < cfg.Dimensions; d++ {
				second := sampleInInterval(ctx, posGrid[p][d])
				diff := ctx.Sub(second, pos.E[d])
				ctx.Release(second)
				half := ctx.Multiply2Exp(diff, -1)
				ctx.Release(diff)
				velVec.Set(d, half)
			}
		case config.VelocityRandom:
			for d := 0; d < cfg.Dimensions; d++ {
				velVec.Set(d, sampleInInterval(ctx, velGrid[p][d]))
			}
		}

		particles[p] = particle.New(ctx, p, fn, topo, pos, velVec)
	}

	topo.ApplyPendingUpdates(ctx)
	kind := checkpoint.KindGBest
	if cfg.Neighborhood.Kind != config.NeighborhoodGBest {
		kind = checkpoint.KindAdjacency
	}
	return particles, topo, kind
}

// buildTopology constructs the configured Topology family.
func buildTopology(ctx *bigfloat.Context, cfg *config.Config, fn strategy.Function) topology.Topology {
	mode := cfg.UpdateGlobalAttractor
	switch cfg.Neighborhood.Kind {
	case config.NeighborhoodLBest:
		return topology.NewLBest(ctx, cfg.Particles, cfg.Dimensions, cfg.Neighborhood.Degree, mode, fn)
	case config.NeighborhoodRing:
		return topology.NewRing(ctx, cfg.Particles, cfg.Dimensions, mode, fn)
	case config.NeighborhoodGrid:
		return topology.NewGrid(ctx, cfg.Neighborhood.Rows, cfg.Neighborhood.Cols, cfg.Dimensions, mode, fn)
	case config.NeighborhoodWheel:
		return topology.NewWheel(ctx, cfg.Particles, cfg.Dimensions, mode, fn)
	default:
		return topology.NewGBest(ctx, cfg.Particles, cfg.Dimensions, mode, fn)
	}
}
