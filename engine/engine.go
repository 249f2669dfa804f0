// Package engine implements the single-threaded, cooperative iteration
// loop: particle updates in ascending index order, precision escalation
// at the safe points between them, topology propagation, scheduled
// statistics, and timed/step-stamped backups. Grounded on the pso
// package's Run loop shape (a swarm, a step counter, a periodic backup
// write), generalized to the bigfloat substrate and extended with the
// run-gate, leak diagnostics, and statistics scheduling.
package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/checkpoint"
	"github.com/shiblon/bigpso/config"
	"github.com/shiblon/bigpso/particle"
	"github.com/shiblon/bigpso/rng"
	"github.com/shiblon/bigpso/rungate"
	"github.com/shiblon/bigpso/stats"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
)

const (
	runCheckPeriod = 60 * time.Second
	backupPeriod   = 5 * time.Minute
)

// compiledStatistic pairs a parsed statistic expression with the schedule
// window and output file it was declared with.
type compiledStatistic struct {
	name          string
	stat          stats.Statistic
	from, to, per int
	path          string
}

// Engine owns the live run state: the swarm, the topology, the precision
// context, and everything needed to drive the main iteration loop.
type Engine struct {
	ctx *bigfloat.Context
	cfg *config.Config

	prefix string

	updater strategy.PositionVelocityUpdater
	bound   strategy.BoundHandling
	velAdj  strategy.VelocityAdjustment
	bounds  strategy.Bounds

	particles []*particle.Particle
	topo      topology.Topology
	topoKind  checkpoint.TopologyKind

	step int

	gate *rungate.Gate

	statistics []compiledStatistic

	preserveSteps []int
	preserveIdx   int

	leakBaseline int
	startStep    int

	lastRunCheck time.Time
	lastBackup   time.Time

	logger *zerolog.Logger
	runID  uuid.UUID
}

// New builds an Engine from a freshly initialized swarm. prefix names the
// `<prefix>.*` filesystem artifacts. logger may be nil, in which case a
// no-op logger is used.
func New(cfg *config.Config, objective strategy.Function, prefix string, logger *zerolog.Logger) (*Engine, error) {
	runID := uuid.New()
	log := nopLogger()
	if logger != nil {
		withID := logger.With().Str("run_id", runID.String()).Logger()
		log = &withID
	}

	ctx := bigfloat.NewContext(cfg.InitialPrecision, cfg.PrecisionMargin, cfg.CheckPrecision, cfg.CheckPrecisionProbability)
	ctx.SetRandomSource(buildRNG(cfg.SeedSpec))

	bounds := strategy.NewDefaultBounds(cfg.Dimensions)
	for _, fb := range cfg.FunctionBounds {
		bounds.Refine(fb.DFrom, fb.DTo, fb.Lo, fb.Hi)
	}

	bounded := &strategy.BoundedFunction{Inner: objective, Policy: cfg.BoundsBehavior}
	guarded := newGuardedFunction(bounded)

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
	}

	particles, topo, kind := buildSwarm(ctx, cfg, guarded)
	e.particles = particles
	e.topo = topo
	e.topoKind = kind

	stmts, err := compileStatistics(cfg, objective, prefix)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.statistics = stmts

	e.preserveSteps = preserveStepsSorted(cfg)

	if cfg.RunCheckPath != "" {
		gate, err := loadGate(cfg.RunCheckPath)
		if err != nil {
			return nil, fmt.Errorf("engine: run-gate: %w", err)
		}
		e.gate = gate
	}

	e.leakBaseline = ctx.Allocator().InUseCount() - ctx.Allocator().CachedCount()
	e.startStep = 0

	return e, nil
}

func buildBoundHandling(cfg *config.Config) strategy.BoundHandling {
	if cfg.BoundHandling == config.BoundHandlingReflection {
		return strategy.Reflection{}
	}
	return strategy.Absorption{}
}

func buildVelocityAdjustment(cfg *config.Config) strategy.VelocityAdjustment {
	if cfg.VelocityAdjustment == config.VelocityAdjustmentRandomReinjection {
		scale := cfg.ReinjectionScale
		if scale == 0 {
			scale = 0.001
		}
		return strategy.RandomReinjection{Scale: scale}
	}
	return strategy.NoAdjustment{}
}

func buildRNG(spec string) *rng.Engine {
	seed, intense, drawBits, name := parseSeedSpec(spec)
	return rng.New63(seed, intense, drawBits, name)
}

// compileStatistics parses every declared statistic's token list into the
// stats package's AST once, at construction time, and names each one's
// output file `<prefix>.STAT.<name>.txt`
func compileStatistics(cfg *config.Config, fn strategy.Function, prefix string) ([]compiledStatistic, error) {
	out := make([]compiledStatistic, 0, len(cfg.Statistics))
	for _, s := range cfg.Statistics {
		stmt, err := parseTokens(s.Tokens, fn)
		if err != nil {
			return nil, fmt.Errorf("statistic %q: %w", s.Name, err)
		}
		name := s.Name
		if name == "" {
			name = "unnamed"
		}
		out = append(out, compiledStatistic{
			name: name,
			stat: stmt,
			from: cfg.ShowStatisticsFrom,
			to:   cfg.ShowStatisticsTo,
			per:  cfg.ShowStatisticsPeriod,
			path: fmt.Sprintf("%s.STAT.%s.txt", prefix, name),
		})
	}
	return out, nil
}

func preserveStepsSorted(cfg *config.Config) []int {
	out := make([]int, len(cfg.PreserveBackupSteps))
	for i, s := range cfg.PreserveBackupSteps {
		out[i] = s.Step
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j-1] > out[j] {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}

func loadGate(path string) (*rungate.Gate, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rungate.Parse(strings.NewReader(""))
		}
		return nil, err
	}
	defer f.Close()
	return rungate.Parse(f)
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
