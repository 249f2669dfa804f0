package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/checkpoint"
	"github.com/shiblon/bigpso/config"
	"github.com/shiblon/bigpso/strategy"
)

// Restore rebuilds an Engine from a checkpoint file, re-creating the bound/velocity/update policy objects and
// compiled statistics from cfg exactly as New does, but taking the swarm,
// topology, step count, and RNG stream from the checkpoint instead of
// initializing fresh state.
func Restore(cfg *config.Config, objective strategy.Function, prefix, checkpointPath string, logger *zerolog.Logger) (*Engine, error) {
	runID := uuid.New()
	log := nopLogger()
	if logger != nil {
		withID := logger.With().Str("run_id", runID.String()).Logger()
		log = &withID
	}

	ctx := bigfloat.NewContext(cfg.InitialPrecision, cfg.PrecisionMargin, cfg.CheckPrecision, cfg.CheckPrecisionProbability)

	bounds := strategy.NewDefaultBounds(cfg.Dimensions)
	for _, fb := range cfg.FunctionBounds {
		bounds.Refine(fb.DFrom, fb.DTo, fb.Lo, fb.Hi)
	}

	bounded := &strategy.BoundedFunction{Inner: objective, Policy: cfg.BoundsBehavior}
	guarded := newGuardedFunction(bounded)

	state, err := checkpoint.Load(ctx, checkpointPath, guarded)
	if err != nil {
		return nil, fmt.Errorf("engine: restore: %w", err)
	}
	ctx.SetRandomSource(state.Source)

	e := &Engine{
		ctx:     ctx,
		cfg:     cfg,
		prefix:  prefix,
		updater: strategy.Standard{},
		bound:   buildBoundHandling(cfg),
		velAdj:  buildVelocityAdjustment(cfg),
		bounds:  bounds,
		logger:  log,
		runID:   runID,

		particles: state.Particles,
		topo:      state.Topology,
		topoKind:  state.TopoKind,
		step:      state.Step,
	}

	stmts, err := compileStatistics(cfg, objective, prefix)
	if err != nil {
		return nil, fmt.Errorf("engine: restore: %w", err)
	}
	e.statistics = stmts

	e.preserveSteps = preserveStepsSorted(cfg)
	for e.preserveIdx < len(e.preserveSteps) && e.preserveSteps[e.preserveIdx] <= e.step {
		e.preserveIdx++
	}

	if cfg.RunCheckPath != "" {
		gate, err := loadGate(cfg.RunCheckPath)
		if err != nil {
			return nil, fmt.Errorf("engine: restore: run-gate: %w", err)
		}
		e.gate = gate
	}

	e.leakBaseline = ctx.Allocator().InUseCount() - ctx.Allocator().CachedCount()
	e.startStep = e.step

	e.logger.Info().Int("step", e.step).Str("checkpoint", checkpointPath).Msg("restored run")

	return e, nil
}
