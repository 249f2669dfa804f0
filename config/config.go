// Package config parses the line-oriented configuration format: one
// directive per line, whitespace-separated fields, no nesting, several
// directives repeatable. No general-purpose TOML/YAML/JSON library fits
// this grammar, since positional numeric arguments and repeatable
// directives with no nested structure are not what those formats model,
// so this package is a hand-written bufio.Scanner-based reader, justified
// stdlib-only (see DESIGN.md). The plain line-at-a-time scanning style is
// carried over from rungate.Parse, modeled on the same need.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shiblon/bigpso/bigfloat"
	"github.com/shiblon/bigpso/strategy"
	"github.com/shiblon/bigpso/topology"
)

// VelocityInit selects how initial particle velocities are sampled.
type VelocityInit int

const (
	VelocityZero VelocityInit = iota
	VelocityHalfDiff
	VelocityRandom
)

// InitSpec is one `initializationInformation` record: it
// applies a sampling rule to a rectangular slice of the particle×dimension
// grid, for either position or velocity.
type InitSpec struct {
	Position bool // false means velocity
	PFrom, PTo int
	DFrom, DTo int

	Rule InitRule
}

// InitRule tags which sampling rule an InitSpec applies and carries its
// parameters.
type InitRule struct {
	Kind   InitRuleKind
	Lo, Hi float64 // Bounds, RandomCenterAndRange
	Center float64 // CenterAndRange
	Range  float64 // CenterAndRange, RandomCenterAndRange
	Scale  float64 // Scale, PowerScale
}

type InitRuleKind int

const (
	RuleBounds InitRuleKind = iota
	RuleCenterAndRange
	RuleRandomCenterAndRange
	RuleScale
	RulePowerScale
)

// NeighborhoodKind selects which attractor topology family the engine
// constructs. The enumerated configuration surface otherwise only covers
// the Function/BoundHandling/VelocityAdjustment plugin surface the
// objective and updater already decide, so this directive is a
// supplemented addition the engine needs to pick a concrete Topology at
// all; see DESIGN.md.
type NeighborhoodKind int

const (
	NeighborhoodGBest NeighborhoodKind = iota
	NeighborhoodLBest
	NeighborhoodRing
	NeighborhoodGrid
	NeighborhoodWheel
)

// NeighborhoodSpec is the parsed `neighborhood` directive.
type NeighborhoodSpec struct {
	Kind       NeighborhoodKind
	Degree     int // lbest
	Rows, Cols int // grid
}

// BoundHandlingChoice selects which of strategy's two reference
// BoundHandling implementations the engine wires up. The Non-goals only
// exclude a catalog beyond one reference implementation each; exposing
// every reference plugin via configuration, rather than hardcoding a
// single choice, is carried over from the rest of this package's
// directive style; see DESIGN.md.
type BoundHandlingChoice int

const (
	BoundHandlingAbsorption BoundHandlingChoice = iota
	BoundHandlingReflection
)

// VelocityAdjustmentChoice selects which of strategy's two reference
// VelocityAdjustment implementations the engine wires up.
type VelocityAdjustmentChoice int

const (
	VelocityAdjustmentNone VelocityAdjustmentChoice = iota
	VelocityAdjustmentRandomReinjection
)

// FunctionBoundsRecord is one `functionBounds` directive.
type FunctionBoundsRecord struct {
	DFrom, DTo int
	Lo, Hi     float64
}

// PreserveBackupStep is one repeatable `preserveBackup step` directive.
type PreserveBackupStep struct {
	Step int
}

// ShowStatisticSpec is one `showStatistic`/`showNamedStatistic` directive.
// The expression itself is left as raw tokens; engine wiring interprets
// them against the concrete statistic catalog it supports.
type ShowStatisticSpec struct {
	Name   string // empty for the unnamed showStatistic form
	Tokens []string
}

// DebugSwarmConfig carries the out-of-core-scope visualization toggles
// the parser still accepts but the engine ignores.
type DebugSwarmConfig struct {
	Resolution     int
	Frequency      int
	GnuplotTerm    string
	OutputExt      string
	TrajectoryLen  int
	EchoGlobalBest bool
}

// Config is the fully parsed configuration surface.
type Config struct {
	Particles  int
	Dimensions int
	Steps      int

	Chi                  float64
	CoeffLocalAttractor  float64
	CoeffGlobalAttractor float64

	InitialPrecision         uint
	PrecisionMargin          uint
	OutputPrecision          uint
	CheckPrecision           bigfloat.PrecisionCheckPolicy
	CheckPrecisionProbability float64

	InitVelocity VelocityInit

	UpdateGlobalAttractor topology.PropagationMode

	Neighborhood NeighborhoodSpec

	BoundsBehavior strategy.OutsideBoundsPolicy

	BoundHandling       BoundHandlingChoice
	VelocityAdjustment  VelocityAdjustmentChoice
	ReinjectionScale    float64

	InitSpecs      []InitSpec
	FunctionBounds []FunctionBoundsRecord

	ShowStatisticsFrom   int
	ShowStatisticsTo     int
	ShowStatisticsPeriod int
	Statistics           []ShowStatisticSpec

	PreserveBackupSteps []PreserveBackupStep
	RunCheckPath        string

	SeedSpec string

	Debug DebugSwarmConfig
}

// Parse reads a configuration file's contents into a Config.
func Parse(r io.Reader) (*Config, error) {
	c := &Config{
		InitialPrecision: 64,
		PrecisionMargin:  8,
		OutputPrecision:  64,
		CheckPrecision:   bigfloat.CheckAlwaysExceptStatistics,
	}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if err := c.applyDirective(fields); err != nil {
			return nil, fmt.Errorf("config: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDirective(fields []string) error {
	directive, args := fields[0], fields[1:]
	switch directive {
	case "particles":
		return setInt(&c.Particles, args)
	case "dimensions":
		return setInt(&c.Dimensions, args)
	case "steps":
		return setInt(&c.Steps, args)
	case "parameterChi":
		return setFloat(&c.Chi, args)
	case "parameterCoefficientLocalAttractor":
		return setFloat(&c.CoeffLocalAttractor, args)
	case "parameterCoefficientGlobalAttractor":
		return setFloat(&c.CoeffGlobalAttractor, args)
	case "initialPrecision":
		return setUint(&c.InitialPrecision, args)
	case "precision":
		return setUint(&c.PrecisionMargin, args)
	case "outputPrecision":
		return setUint(&c.OutputPrecision, args)
	case "checkPrecision":
		return setCheckPrecision(&c.CheckPrecision, args)
	case "checkPrecisionProbability":
		return setFloat(&c.CheckPrecisionProbability, args)
	case "initializeVelocity":
		return setVelocityInit(&c.InitVelocity, args)
	case "updateGlobalAttractor":
		return setPropagationMode(&c.UpdateGlobalAttractor, args)
	case "neighborhood":
		spec, err := parseNeighborhood(args)
		if err != nil {
			return err
		}
		c.Neighborhood = spec
		return nil
	case "functionBehaviorOutsideOfBounds":
		return setBoundsBehavior(&c.BoundsBehavior, args)
	case "boundHandling":
		if len(args) != 1 {
			return fmt.Errorf("boundHandling requires exactly one value")
		}
		switch args[0] {
		case "absorption":
			c.BoundHandling = BoundHandlingAbsorption
		case "reflection":
			c.BoundHandling = BoundHandlingReflection
		default:
			return fmt.Errorf("boundHandling: unknown value %q", args[0])
		}
		return nil
	case "velocityAdjustment":
		if len(args) < 1 {
			return fmt.Errorf("velocityAdjustment requires at least one value")
		}
		switch args[0] {
		case "none":
			c.VelocityAdjustment = VelocityAdjustmentNone
		case "randomReinjection":
			c.VelocityAdjustment = VelocityAdjustmentRandomReinjection
			if len(args) == 2 {
				scale, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return err
				}
				c.ReinjectionScale = scale
			}
		default:
			return fmt.Errorf("velocityAdjustment: unknown value %q", args[0])
		}
		return nil
	case "initializationInformation":
		spec, err := parseInitSpec(args)
		if err != nil {
			return err
		}
		c.InitSpecs = append(c.InitSpecs, spec)
		return nil
	case "functionBounds":
		rec, err := parseFunctionBounds(args)
		if err != nil {
			return err
		}
		c.FunctionBounds = append(c.FunctionBounds, rec)
		return nil
	case "showStatistics":
		return parseShowStatistics(c, args)
	case "showStatistic":
		c.Statistics = append(c.Statistics, ShowStatisticSpec{Tokens: args})
		return nil
	case "showNamedStatistic":
		if len(args) < 1 {
			return fmt.Errorf("showNamedStatistic requires a name")
		}
		c.Statistics = append(c.Statistics, ShowStatisticSpec{Name: args[0], Tokens: args[1:]})
		return nil
	case "preserveBackup":
		step, err := requireInt(args, "preserveBackup")
		if err != nil {
			return err
		}
		c.PreserveBackupSteps = append(c.PreserveBackupSteps, PreserveBackupStep{Step: step})
		return nil
	case "runCheck":
		if len(args) != 1 {
			return fmt.Errorf("runCheck requires exactly one path")
		}
		c.RunCheckPath = args[0]
		return nil
	case "srand":
		c.SeedSpec = strings.Join(args, " ")
		return nil
	case "debugSwarmResolution":
		return setInt(&c.Debug.Resolution, args)
	case "debugSwarmFrequency":
		return setInt(&c.Debug.Frequency, args)
	case "debugSwarmGnuplotTerminal":
		if len(args) != 1 {
			return fmt.Errorf("debugSwarmGnuplotTerminal requires exactly one value")
		}
		c.Debug.GnuplotTerm = args[0]
		return nil
	case "debugSwarmOutputExtension":
		if len(args) != 1 {
			return fmt.Errorf("debugSwarmOutputExtension requires exactly one value")
		}
		c.Debug.OutputExt = args[0]
		return nil
	case "debugSwarmTrajectoryLength":
		return setInt(&c.Debug.TrajectoryLen, args)
	case "debugSwarmEchoGlobalBest":
		c.Debug.EchoGlobalBest = true
		return nil
	default:
		return fmt.Errorf("unknown option %q", directive)
	}
}

func (c *Config) validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("config: particles must be positive")
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("config: dimensions must be positive")
	}
	if c.Steps < 0 {
		return fmt.Errorf("config: steps must be non-negative")
	}
	switch c.Neighborhood.Kind {
	case NeighborhoodLBest:
		if c.Neighborhood.Degree <= 0 || c.Neighborhood.Degree%2 != 0 {
			return fmt.Errorf("config: neighborhood lbest degree must be a positive even number, got %d", c.Neighborhood.Degree)
		}
	case NeighborhoodGrid:
		if c.Neighborhood.Rows*c.Neighborhood.Cols != c.Particles {
			return fmt.Errorf("config: neighborhood grid %d x %d does not hold %d particles", c.Neighborhood.Rows, c.Neighborhood.Cols, c.Particles)
		}
	}
	return nil
}

func requireInt(args []string, name string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s requires exactly one integer argument", name)
	}
	return strconv.Atoi(args[0])
}

func setInt(dst *int, args []string) error {
	v, err := requireInt(args, "option")
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setUint(dst *uint, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("option requires exactly one integer argument")
	}
	v, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return err
	}
	*dst = uint(v)
	return nil
}

func setFloat(dst *float64, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("option requires exactly one numeric argument")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setCheckPrecision(dst *bigfloat.PrecisionCheckPolicy, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("checkPrecision requires exactly one value")
	}
	switch args[0] {
	case "all":
		*dst = bigfloat.CheckAlways
	case "allExceptStatistics":
		*dst = bigfloat.CheckAlwaysExceptStatistics
	case "never":
		*dst = bigfloat.CheckNever
	default:
		return fmt.Errorf("checkPrecision: unknown value %q", args[0])
	}
	return nil
}

func setVelocityInit(dst *VelocityInit, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("initializeVelocity requires exactly one value")
	}
	switch args[0] {
	case "zero":
		*dst = VelocityZero
	case "halfDiff":
		*dst = VelocityHalfDiff
	case "random":
		*dst = VelocityRandom
	default:
		return fmt.Errorf("initializeVelocity: unknown value %q", args[0])
	}
	return nil
}

func setPropagationMode(dst *topology.PropagationMode, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("updateGlobalAttractor requires exactly one value")
	}
	switch args[0] {
	case "eachIteration":
		*dst = topology.EachIteration
	case "eachParticle":
		*dst = topology.EachParticle
	default:
		return fmt.Errorf("updateGlobalAttractor: unknown value %q", args[0])
	}
	return nil
}

func setBoundsBehavior(dst *strategy.OutsideBoundsPolicy, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("functionBehaviorOutsideOfBounds requires exactly one value")
	}
	switch args[0] {
	case "normal":
		*dst = strategy.Normal
	case "infinity":
		*dst = strategy.Infinity
	case "periodic":
		*dst = strategy.Periodic
	default:
		return fmt.Errorf("functionBehaviorOutsideOfBounds: unknown value %q", args[0])
	}
	return nil
}

func parseNeighborhood(args []string) (NeighborhoodSpec, error) {
	if len(args) < 1 {
		return NeighborhoodSpec{}, fmt.Errorf("neighborhood requires a kind")
	}
	switch args[0] {
	case "gbest":
		return NeighborhoodSpec{Kind: NeighborhoodGBest}, nil
	case "ring":
		return NeighborhoodSpec{Kind: NeighborhoodRing}, nil
	case "wheel":
		return NeighborhoodSpec{Kind: NeighborhoodWheel}, nil
	case "lbest":
		degree, err := requireInt(args[1:], "neighborhood lbest")
		if err != nil {
			return NeighborhoodSpec{}, err
		}
		return NeighborhoodSpec{Kind: NeighborhoodLBest, Degree: degree}, nil
	case "grid":
		ints, err := parseInts(args[1:])
		if err != nil || len(ints) != 2 {
			return NeighborhoodSpec{}, fmt.Errorf("neighborhood grid requires exactly 2 integers: rows cols")
		}
		return NeighborhoodSpec{Kind: NeighborhoodGrid, Rows: ints[0], Cols: ints[1]}, nil
	default:
		return NeighborhoodSpec{}, fmt.Errorf("neighborhood: unknown kind %q", args[0])
	}
}

func parseInitSpec(args []string) (InitSpec, error) {
	if len(args) < 6 {
		return InitSpec{}, fmt.Errorf("initializationInformation requires at least 6 fields")
	}
	var spec InitSpec
	switch args[0] {
	case "position":
		spec.Position = true
	case "velocity":
		spec.Position = false
	default:
		return InitSpec{}, fmt.Errorf("initializationInformation: first field must be position|velocity, got %q", args[0])
	}
	ints, err := parseInts(args[1:5])
	if err != nil {
		return InitSpec{}, err
	}
	spec.PFrom, spec.PTo, spec.DFrom, spec.DTo = ints[0], ints[1], ints[2], ints[3]

	rest := args[5:]
	if len(rest) == 0 {
		return InitSpec{}, fmt.Errorf("initializationInformation missing rule")
	}
	rule, err := parseInitRule(rest)
	if err != nil {
		return InitSpec{}, err
	}
	spec.Rule = rule
	return spec, nil
}

func parseInitRule(fields []string) (InitRule, error) {
	kind, nums := fields[0], fields[1:]
	switch kind {
	case "bounds":
		vals, err := parseFloats(nums, 2)
		if err != nil {
			return InitRule{}, err
		}
		return InitRule{Kind: RuleBounds, Lo: vals[0], Hi: vals[1]}, nil
	case "centerAndRange":
		vals, err := parseFloats(nums, 2)
		if err != nil {
			return InitRule{}, err
		}
		return InitRule{Kind: RuleCenterAndRange, Center: vals[0], Range: vals[1]}, nil
	case "randomCenterAndRange":
		vals, err := parseFloats(nums, 3)
		if err != nil {
			return InitRule{}, err
		}
		return InitRule{Kind: RuleRandomCenterAndRange, Lo: vals[0], Hi: vals[1], Range: vals[2]}, nil
	case "scale":
		vals, err := parseFloats(nums, 1)
		if err != nil {
			return InitRule{}, err
		}
		return InitRule{Kind: RuleScale, Scale: vals[0]}, nil
	case "powerScale":
		vals, err := parseFloats(nums, 1)
		if err != nil {
			return InitRule{}, err
		}
		return InitRule{Kind: RulePowerScale, Scale: vals[0]}, nil
	default:
		return InitRule{}, fmt.Errorf("initializationInformation: unknown rule %q", kind)
	}
}

func parseFunctionBounds(args []string) (FunctionBoundsRecord, error) {
	if len(args) != 4 {
		return FunctionBoundsRecord{}, fmt.Errorf("functionBounds requires exactly 4 fields: dFrom dTo lo hi")
	}
	ints, err := parseInts(args[:2])
	if err != nil {
		return FunctionBoundsRecord{}, err
	}
	floats, err := parseFloats(args[2:], 2)
	if err != nil {
		return FunctionBoundsRecord{}, err
	}
	return FunctionBoundsRecord{DFrom: ints[0], DTo: ints[1], Lo: floats[0], Hi: floats[1]}, nil
}

func parseShowStatistics(c *Config, args []string) error {
	ints, err := parseInts(args)
	if err != nil || len(ints) != 3 {
		return fmt.Errorf("showStatistics requires exactly 3 integers: from to period")
	}
	c.ShowStatisticsFrom, c.ShowStatisticsTo, c.ShowStatisticsPeriod = ints[0], ints[1], ints[2]
	return nil
}

func parseInts(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(fields []string, want int) ([]float64, error) {
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d numeric fields, got %d", want, len(fields))
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}
