package config

import (
	"strings"
	"testing"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
)

func TestParseBasicFields(t *testing.T) {
	src := `
# a comment
particles 20
dimensions 3
steps 100
parameterChi 0.7298
parameterCoefficientLocalAttractor 2.05
parameterCoefficientGlobalAttractor 2.05
initialPrecision 80
precision 10
outputPrecision 40
checkPrecision allExceptStatistics
checkPrecisionProbability 0.01
initializeVelocity halfDiff
updateGlobalAttractor eachParticle
functionBehaviorOutsideOfBounds periodic
`
	c, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.Particles != 20 || c.Dimensions != 3 || c.Steps != 100 {
		t.Fatalf("unexpected core dims: %+v", c)
	}
	if c.Chi != 0.7298 {
		t.Fatalf("expected chi 0.7298, got %v", c.Chi)
	}
	if c.InitialPrecision != 80 || c.PrecisionMargin != 10 || c.OutputPrecision != 40 {
		t.Fatalf("unexpected precision fields: %+v", c)
	}
	if c.CheckPrecision != bigfloat.CheckAlwaysExceptStatistics {
		t.Fatalf("expected CheckAlwaysExceptStatistics, got %v", c.CheckPrecision)
	}
	if c.InitVelocity != VelocityHalfDiff {
		t.Fatalf("expected VelocityHalfDiff, got %v", c.InitVelocity)
	}
	if c.UpdateGlobalAttractor != topology.EachParticle {
		t.Fatalf("expected EachParticle, got %v", c.UpdateGlobalAttractor)
	}
	if c.BoundsBehavior != strategy.Periodic {
		t.Fatalf("expected Periodic, got %v", c.BoundsBehavior)
	}
}

func TestParseInitializationInformation(t *testing.T) {
	src := `
particles 5
dimensions 2
steps 1
initializationInformation position 0 5 0 2 bounds -10 10
initializationInformation velocity 0 5 0 2 centerAndRange 0 1
initializationInformation position 0 5 0 1 randomCenterAndRange -1 1 0.5
initializationInformation position 0 5 0 1 scale 2.0
initializationInformation position 0 5 0 1 powerScale 3.0
`
	c, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(c.InitSpecs) != 5 {
		t.Fatalf("expected 5 init specs, got %d", len(c.InitSpecs))
	}
	if c.InitSpecs[0].Rule.Kind != RuleBounds || c.InitSpecs[0].Rule.Lo != -10 || c.InitSpecs[0].Rule.Hi != 10 {
		t.Fatalf("bad bounds rule: %+v", c.InitSpecs[0].Rule)
	}
	if c.InitSpecs[1].Position {
		t.Fatalf("expected velocity spec")
	}
	if c.InitSpecs[2].Rule.Kind != RuleRandomCenterAndRange {
		t.Fatalf("expected randomCenterAndRange, got %+v", c.InitSpecs[2].Rule)
	}
	if c.InitSpecs[3].Rule.Kind != RuleScale || c.InitSpecs[3].Rule.Scale != 2.0 {
		t.Fatalf("bad scale rule: %+v", c.InitSpecs[3].Rule)
	}
	if c.InitSpecs[4].Rule.Kind != RulePowerScale || c.InitSpecs[4].Rule.Scale != 3.0 {
		t.Fatalf("bad powerScale rule: %+v", c.InitSpecs[4].Rule)
	}
}

func TestParseFunctionBoundsAndStatistics(t *testing.T) {
	src := `
particles 5
dimensions 2
steps 1
functionBounds 0 2 -100 100
showStatistics 0 100 10
showStatistic global best value
showNamedStatistic spread combine sub position globalAttractor
`
	c, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(c.FunctionBounds) != 1 || c.FunctionBounds[0].Lo != -100 || c.FunctionBounds[0].Hi != 100 {
		t.Fatalf("bad function bounds: %+v", c.FunctionBounds)
	}
	if c.ShowStatisticsFrom != 0 || c.ShowStatisticsTo != 100 || c.ShowStatisticsPeriod != 10 {
		t.Fatalf("bad showStatistics fields: %+v", c)
	}
	if len(c.Statistics) != 2 {
		t.Fatalf("expected 2 statistic specs, got %d", len(c.Statistics))
	}
	if c.Statistics[1].Name != "spread" {
		t.Fatalf("expected named statistic 'spread', got %q", c.Statistics[1].Name)
	}
}

func TestParsePreserveBackupAndRunCheck(t *testing.T) {
	src := `
particles 5
dimensions 2
steps 1
preserveBackup 100
preserveBackup 200
runCheck /var/run/bigpso.gate
srand lcg 12345
`
	c, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(c.PreserveBackupSteps) != 2 || c.PreserveBackupSteps[0].Step != 100 || c.PreserveBackupSteps[1].Step != 200 {
		t.Fatalf("bad preserveBackup steps: %+v", c.PreserveBackupSteps)
	}
	if c.RunCheckPath != "/var/run/bigpso.gate" {
		t.Fatalf("bad runCheck path: %q", c.RunCheckPath)
	}
	if c.SeedSpec != "lcg 12345" {
		t.Fatalf("bad srand spec: %q", c.SeedSpec)
	}
}

func TestParseNeighborhood(t *testing.T) {
	src := `
particles 8
dimensions 2
steps 1
neighborhood grid 2 4
`
	c, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.Neighborhood.Kind != NeighborhoodGrid || c.Neighborhood.Rows != 2 || c.Neighborhood.Cols != 4 {
		t.Fatalf("bad neighborhood spec: %+v", c.Neighborhood)
	}
}

func TestParseRejectsMissingRequiredFields(t *testing.T) {
	if _, err := Parse(strings.NewReader("dimensions 2\nsteps 1\n")); err == nil {
		t.Fatal("expected error for missing particles")
	}
}

func TestParseRejectsUnknownDirective(t *testing.T) {
	if _, err := Parse(strings.NewReader("bogusDirective 1 2 3\n")); err == nil {
		t.Fatal("expected error for unknown directive")
	}
}
