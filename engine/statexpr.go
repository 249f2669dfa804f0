package engine

import (
	"fmt"
	"strconv"

	"github.com/shiblon/bigpso/stats"
	"github.com/shiblon/bigpso/strategy"
)

// parseTokens turns a showStatistic/showNamedStatistic token list into a
// stats.Statistic tree. Grammar is prefix notation so a single
// index-advancing recursive-descent parser handles both Specific- and
// Statistic-layer nodes without backtracking:
//
//	statistic  := "reduction" axis reducer [k] specific
//	            | "combine" combineOp statistic statistic
//	            | "elementwise" elementwiseOp [exponent] statistic
//	            | "globalBestPosition" | "globalBestValue"
//	            | "localUpdateCounts" | "globalUpdateCounts" | "precision"
//	            | "named" name statistic
//	specific   := "position" | "velocity" | "localAttractor" | "globalAttractor"
//	            | "constant" constName [literal] "shapedLike" specific
//	            | "elementwiseSpecific" elementwiseOp [exponent] specific
//	            | "distanceToOptimum" [iters]
func parseTokens(tokens []string, fn strategy.Function) (stats.Statistic, error) {
	p := &tokenParser{tokens: tokens, fn: fn}
	s, err := p.statistic()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("statistic expression: unexpected trailing tokens %v", p.tokens[p.pos:])
	}
	return s, nil
}

type tokenParser struct {
	tokens []string
	pos    int
	fn     strategy.Function
}

func (p *tokenParser) next() (string, error) {
	if p.pos >= len(p.tokens) {
		return "", fmt.Errorf("statistic expression: unexpected end of tokens")
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, nil
}

func (p *tokenParser) nextFloat() (float64, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(t, 64)
}

func (p *tokenParser) nextInt() (int, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(t)
}

func (p *tokenParser) statistic() (stats.Statistic, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	switch kw {
	case "reduction":
		axisTok, err := p.next()
		if err != nil {
			return nil, err
		}
		axis, err := parseAxis(axisTok)
		if err != nil {
			return nil, err
		}
		reducerTok, err := p.next()
		if err != nil {
			return nil, err
		}
		reducer, needsK, err := parseReducer(reducerTok)
		if err != nil {
			return nil, err
		}
		k := 0
		if needsK {
			k, err = p.nextInt()
			if err != nil {
				return nil, err
			}
		}
		inner, err := p.specific()
		if err != nil {
			return nil, err
		}
		return stats.Reduction{Inner: inner, Axis: axis, Reducer: reducer, K: k}, nil
	case "combine":
		opTok, err := p.next()
		if err != nil {
			return nil, err
		}
		op, err := parseCombineOp(opTok)
		if err != nil {
			return nil, err
		}
		a, err := p.statistic()
		if err != nil {
			return nil, err
		}
		b, err := p.statistic()
		if err != nil {
			return nil, err
		}
		return stats.Combine{A: a, B: b, Op: op}, nil
	case "elementwise":
		opTok, err := p.next()
		if err != nil {
			return nil, err
		}
		op, needsExp, err := parseElementwiseOp(opTok)
		if err != nil {
			return nil, err
		}
		exp := 0.0
		if needsExp {
			exp, err = p.nextFloat()
			if err != nil {
				return nil, err
			}
		}
		inner, err := p.statistic()
		if err != nil {
			return nil, err
		}
		return stats.Elementwise{Inner: inner, Op: op, Exponent: exp}, nil
	case "globalBestPosition":
		return stats.GlobalBestPosition{}, nil
	case "globalBestValue":
		return stats.GlobalBestValue{}, nil
	case "localUpdateCounts":
		return stats.LocalUpdateCounts{}, nil
	case "globalUpdateCounts":
		return stats.GlobalUpdateCounts{}, nil
	case "precision":
		return stats.Precision{}, nil
	case "named":
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		inner, err := p.statistic()
		if err != nil {
			return nil, err
		}
		return stats.Named{Name: name, Inner: inner}, nil
	default:
		return nil, fmt.Errorf("statistic expression: unknown keyword %q", kw)
	}
}

func (p *tokenParser) specific() (stats.Specific, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	switch kw {
	case "position":
		return stats.PositionSpecific{}, nil
	case "velocity":
		return stats.VelocitySpecific{}, nil
	case "localAttractor":
		return stats.LocalAttractorSpecific{}, nil
	case "globalAttractor":
		return stats.GlobalAttractorSpecific{}, nil
	case "constant":
		nameTok, err := p.next()
		if err != nil {
			return nil, err
		}
		which, literal, err := parseConstant(nameTok, p)
		if err != nil {
			return nil, err
		}
		shapeKw, err := p.next()
		if err != nil {
			return nil, err
		}
		if shapeKw != "shapedLike" {
			return nil, fmt.Errorf("statistic expression: constant requires \"shapedLike\", got %q", shapeKw)
		}
		shape, err := p.specific()
		if err != nil {
			return nil, err
		}
		return stats.ConstantSpecific{Which: which, Literal: literal, Shape: shape}, nil
	case "elementwiseSpecific":
		opTok, err := p.next()
		if err != nil {
			return nil, err
		}
		op, needsExp, err := parseElementwiseOp(opTok)
		if err != nil {
			return nil, err
		}
		exp := 0.0
		if needsExp {
			exp, err = p.nextFloat()
			if err != nil {
				return nil, err
			}
		}
		inner, err := p.specific()
		if err != nil {
			return nil, err
		}
		return stats.ElementwiseSpecific{Inner: inner, Op: op, Exponent: exp}, nil
	case "distanceToOptimum":
		iters := 0
		if p.pos < len(p.tokens) {
			if n, err := strconv.Atoi(p.tokens[p.pos]); err == nil {
				iters = n
				p.pos++
			}
		}
		return stats.DistanceToNearestOptimumSpecific{Fn: p.fn, Iter: iters}, nil
	default:
		return nil, fmt.Errorf("statistic expression: unknown specific keyword %q", kw)
	}
}

func parseAxis(s string) (stats.Axis, error) {
	switch s {
	case "particles":
		return stats.AxisParticles, nil
	case "dimensions":
		return stats.AxisDimensions, nil
	default:
		return 0, fmt.Errorf("statistic expression: unknown axis %q", s)
	}
}

func parseReducer(s string) (reducer stats.Reducer, needsK bool, err error) {
	switch s {
	case "sum":
		return stats.ReduceSum, false, nil
	case "product":
		return stats.ReduceProduct, false, nil
	case "arithmeticMean":
		return stats.ReduceArithmeticMean, false, nil
	case "geometricMean":
		return stats.ReduceGeometricMean, false, nil
	case "min":
		return stats.ReduceMin, false, nil
	case "max":
		return stats.ReduceMax, false, nil
	case "ordinal":
		return stats.ReduceOrdinal, true, nil
	default:
		return 0, false, fmt.Errorf("statistic expression: unknown reducer %q", s)
	}
}

func parseCombineOp(s string) (stats.CombineOp, error) {
	switch s {
	case "add":
		return stats.CombineAdd, nil
	case "sub":
		return stats.CombineSub, nil
	case "mul":
		return stats.CombineMul, nil
	case "div":
		return stats.CombineDiv, nil
	case "min":
		return stats.CombineMin, nil
	case "max":
		return stats.CombineMax, nil
	default:
		return 0, fmt.Errorf("statistic expression: unknown combine op %q", s)
	}
}

func parseElementwiseOp(s string) (op stats.ElementwiseOp, needsExponent bool, err error) {
	switch s {
	case "sqrt":
		return stats.OpSqrt, false, nil
	case "abs":
		return stats.OpAbs, false, nil
	case "exp":
		return stats.OpExp, false, nil
	case "logE":
		return stats.OpLogE, false, nil
	case "log2":
		return stats.OpLog2, false, nil
	case "log2AsFloat64":
		return stats.OpLog2AsFloat64, false, nil
	case "sin":
		return stats.OpSin, false, nil
	case "cos":
		return stats.OpCos, false, nil
	case "tan":
		return stats.OpTan, false, nil
	case "arcsin":
		return stats.OpArcsin, false, nil
	case "arccos":
		return stats.OpArccos, false, nil
	case "arctan":
		return stats.OpArctan, false, nil
	case "pow":
		return stats.OpPow, true, nil
	default:
		return 0, false, fmt.Errorf("statistic expression: unknown elementwise op %q", s)
	}
}

func parseConstant(s string, p *tokenParser) (stats.NamedConstant, float64, error) {
	switch s {
	case "pi":
		return stats.ConstantPi, 0, nil
	case "e":
		return stats.ConstantE, 0, nil
	case "posInf":
		return stats.ConstantPosInf, 0, nil
	case "negInf":
		return stats.ConstantNegInf, 0, nil
	case "literal":
		v, err := p.nextFloat()
		if err != nil {
			return 0, 0, err
		}
		return stats.ConstantLiteral, v, nil
	default:
		return 0, 0, fmt.Errorf("statistic expression: unknown constant %q", s)
	}
}
