package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/shiblon/bigpso/checkpoint"
	"github.com/shiblon/bigpso/stats"
	"github.com/shiblon/bigpso/topology"
)

// Run drives the main loop until the configured step count
// is reached or the run-gate forces a graceful shutdown. On normal
// completion it performs a final backup and logs completion; on gated
// shutdown it performs a backup and leaves a `<prefix>.SHUTDOWN` sentinel
// so a supervisor can relaunch via `r <prefix>.confBU`.
func (e *Engine) Run() error {
	now := time.Now()
	e.lastRunCheck = now
	e.lastBackup = now

	for e.step < e.cfg.Steps {
		if e.gate != nil && time.Since(e.lastRunCheck) >= runCheckPeriod {
			e.lastRunCheck = time.Now()
			if !e.gate.Allowed(e.lastRunCheck) {
				e.logger.Info().Int("step", e.step).Msg("run-gate disallows further progress, shutting down")
				return e.shutdown()
			}
		}

		if time.Since(e.lastBackup) >= backupPeriod {
			if err := e.writeBackup(e.backupPath()); err != nil {
				return fmt.Errorf("engine: backup write: %w", err)
			}
			e.lastBackup = time.Now()
		}

		if e.preserveIdx < len(e.preserveSteps) && e.step == e.preserveSteps[e.preserveIdx] {
			if err := e.writeBackup(e.backupPath()); err != nil {
				return fmt.Errorf("engine: backup write: %w", err)
			}
			if err := e.copyFile(e.backupPath(), e.stampedBackupPath(e.step)); err != nil {
				return fmt.Errorf("engine: preserved backup copy: %w", err)
			}
			for e.preserveIdx < len(e.preserveSteps) && e.preserveSteps[e.preserveIdx] <= e.step {
				e.preserveIdx++
			}
		}

		e.observeLeaks()

		for i, p := range e.particles {
			p.UpdatePosition(e.ctx, e.updater, e.bounds, e.bound, e.velAdj, e.cfg.Chi, e.cfg.CoeffLocalAttractor, e.cfg.CoeffGlobalAttractor)
			if e.cfg.UpdateGlobalAttractor == topology.EachParticle {
				e.topo.ApplyPendingUpdates(e.ctx)
			}
			if e.ctx.RaisePrecisionPending() {
				e.ctx.RaisePrecision()
				e.logger.Debug().Int("step", e.step).Int("particle", i).Uint("precision", e.ctx.Precision()).Msg("precision raised")
			}
		}

		if e.cfg.UpdateGlobalAttractor != topology.EachParticle {
			e.topo.ApplyPendingUpdates(e.ctx)
		}

		if e.ctx.RaisePrecisionPending() {
			e.ctx.RaisePrecision()
			e.logger.Debug().Int("step", e.step).Uint("precision", e.ctx.Precision()).Msg("precision raised")
		}

		if err := e.evaluateStatistics(); err != nil {
			return fmt.Errorf("engine: statistics: %w", err)
		}

		e.step++
	}

	if err := e.writeBackup(e.backupPath()); err != nil {
		return fmt.Errorf("engine: final backup: %w", err)
	}
	e.logger.Info().Int("step", e.step).Msg("run complete")
	return nil
}

// observeLeaks implements: a step-over-step change in
// (in-use − cached) more than two steps after the run's start (or
// restore) indicates something failed to release a temporary handle.
func (e *Engine) observeLeaks() {
	current := e.ctx.Allocator().InUseCount() - e.ctx.Allocator().CachedCount()
	if current != e.leakBaseline && e.step > e.startStep+2 {
		e.logger.Warn().Int("step", e.step).Int("live_handles", current).Int("baseline", e.leakBaseline).Msg("live handle count drifted from baseline")
	}
	e.leakBaseline = current
}

// evaluateStatistics runs every scheduled statistic whose window matches
// the current step, inside a statistical
// region so the precision-check policy can suppress checks triggered by
// read-only statistics evaluation.
func (e *Engine) evaluateStatistics() error {
	leave := e.ctx.EnterStatisticalRegion()
	defer leave()

	for _, s := range e.statistics {
		if e.step < s.from || e.step > s.to {
			continue
		}
		if s.per <= 0 || (e.step-s.from)%s.per != 0 {
			continue
		}
		vals := s.stat.Evaluate(e.ctx, e.particles, e.topo)
		rendered := stats.ToString(e.ctx, vals)
		for _, v := range vals {
			e.ctx.Release(v)
		}
		if err := stats.AppendLine(s.path, e.step, rendered); err != nil {
			return fmt.Errorf("statistic %q: %w", s.name, err)
		}
	}
	return nil
}

func (e *Engine) backupPath() string { return e.prefix + ".backup" }
func (e *Engine) stampedBackupPath(step int) string {
	return fmt.Sprintf("%s.S%d.backup", e.prefix, step)
}
func (e *Engine) shutdownSentinelPath() string { return e.prefix + ".SHUTDOWN" }

func (e *Engine) writeBackup(path string) error {
	state := checkpoint.State{
		Step:      e.step,
		Particles: e.particles,
		Topology:  e.topo,
		TopoKind:  e.topoKind,
		Source:    e.ctx.RandomSource(),
	}
	return checkpoint.Store(e.ctx, path, state)
}

func (e *Engine) copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// shutdown performs a final backup and leaves the `<prefix>.SHUTDOWN`
// sentinel, so that `r
// <prefix>.confBU` (or a `restartAll` supervisor) can resume the run.
func (e *Engine) shutdown() error {
	if err := e.writeBackup(e.backupPath()); err != nil {
		return fmt.Errorf("engine: shutdown backup: %w", err)
	}
	f, err := os.Create(e.shutdownSentinelPath())
	if err != nil {
		return fmt.Errorf("engine: shutdown sentinel: %w", err)
	}
	return f.Close()
}

