package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/config"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
)

func baseConfig(particles, dims, steps int) *config.Config {
	return &config.Config{
		Particles:                 particles,
		Dimensions:                dims,
		Steps:                     steps,
		Chi:                       0.729,
		CoeffLocalAttractor:       1.49,
		CoeffGlobalAttractor:      1.49,
		InitialPrecision:          80,
		PrecisionMargin:           8,
		CheckPrecision:            bigfloat.CheckNever,
		CheckPrecisionProbability: 0,
		InitVelocity:              config.VelocityZero,
		UpdateGlobalAttractor:     topology.EachIteration,
		Neighborhood:              config.NeighborhoodSpec{Kind: config.NeighborhoodGBest},
		BoundsBehavior:            strategy.Normal,
		BoundHandling:             config.BoundHandlingAbsorption,
		VelocityAdjustment:        config.VelocityAdjustmentNone,
		SeedSpec:                  "fast63 12345",
	}
}

// scenario A: a small sphere swarm under gbest must reduce
// its global-attractor value over a handful of steps.
func TestRunReducesGlobalAttractorOnSphere(t *testing.T) {
	cfg := baseConfig(6, 2, 25)
	fn := strategy.NewSphere(2)

	eng, err := New(cfg, fn, filepath.Join(t.TempDir(), "run"), nil)
	require.NoError(t, err)

	before := eng.topo.OverallAttractorValue(eng.ctx)
	beforeF := eng.ctx.ToFloat64(before)
	eng.ctx.Release(before)

	require.NoError(t, eng.Run())

	after := eng.topo.OverallAttractorValue(eng.ctx)
	afterF := eng.ctx.ToFloat64(after)
	eng.ctx.Release(after)

	require.LessOrEqual(t, afterF, beforeF, "global attractor value should not have worsened after a full run")
	require.Equal(t, cfg.Steps, eng.step)
}

// scenario D: a ring topology runs to completion, exercising
// AdjacencyTopology rather than GBest end to end through the engine.
func TestRunWithRingTopology(t *testing.T) {
	cfg := baseConfig(8, 2, 20)
	cfg.Neighborhood = config.NeighborhoodSpec{Kind: config.NeighborhoodRing}
	fn := strategy.NewSphere(2)

	eng, err := New(cfg, fn, filepath.Join(t.TempDir(), "run"), nil)
	require.NoError(t, err)
	require.NoError(t, eng.Run())
	require.Equal(t, cfg.Steps, eng.step)
}

// Backup round trip: a run stopped early must be
// resumable from the file its own backup cadence produced, continuing
// from the saved step rather than restarting at zero.
func TestBackupAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "run")
	cfg := baseConfig(4, 2, 10)
	fn := strategy.NewSphere(2)

	eng, err := New(cfg, fn, prefix, nil)
	require.NoError(t, err)
	require.NoError(t, eng.writeBackup(eng.backupPath()))

	_, err = os.Stat(eng.backupPath())
	require.NoError(t, err)

	cfg2 := baseConfig(4, 2, 10)
	restored, err := Restore(cfg2, fn, prefix, eng.backupPath(), nil)
	require.NoError(t, err)
	require.Equal(t, eng.step, restored.step)
	require.Equal(t, len(eng.particles), len(restored.particles))

	require.NoError(t, restored.Run())
	require.Equal(t, cfg2.Steps, restored.step)
}

// Preserved backup steps must leave a
// stamped copy in addition to the rolling backup file.
func TestPreservedBackupStepWritesStampedCopy(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "run")
	cfg := baseConfig(3, 1, 3)
	cfg.PreserveBackupSteps = []config.PreserveBackupStep{{Step: 1}}
	fn := strategy.NewSphere(1)

	eng, err := New(cfg, fn, prefix, nil)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	_, err = os.Stat(eng.stampedBackupPath(1))
	require.NoError(t, err, "expected a stamped backup at the preserved step")
}

// Statistics scheduling: a declared statistic must
// produce an output file once its window is crossed.
func TestStatisticsAreWrittenOnSchedule(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "run")
	cfg := baseConfig(3, 1, 4)
	cfg.ShowStatisticsFrom = 0
	cfg.ShowStatisticsTo = 4
	cfg.ShowStatisticsPeriod = 1
	cfg.Statistics = []config.ShowStatisticSpec{
		{Name: "gbval", Tokens: []string{"globalBestValue"}},
	}
	fn := strategy.NewSphere(1)

	eng, err := New(cfg, fn, prefix, nil)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	data, err := os.ReadFile(prefix + ".STAT.gbval.txt")
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
