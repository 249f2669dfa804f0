// Package rng implements the deterministic pseudo-random streams that
// drive the swarm's stochastic updates. All four table
// variants share one Engine type distinguished by Variant and DrawBits,
// which together determine how many 63-bit draws a bignum sample
// consumes and how many bits of each draw are used.
package rng

import "math/big"

// Variant selects the transition function and bignum-sampling strategy.
type Variant int

const (
	// Fast63 steps a fixed 2^63-modulus LCG and uses every bit of each
	// draw when filling a bignum sample.
	Fast63 Variant = iota
	// Intense63 uses the same transition as Fast63 but only the top
	// DrawBits bits of each draw contribute to a bignum sample, trading
	// throughput for a more thoroughly mixed low end.
	Intense63
	// FastMod steps a generic-modulus LCG (modulus <= 2^63) and uses
	// each full draw when filling a bignum sample.
	FastMod
	// IntenseMod is to FastMod as Intense63 is to Fast63.
	IntenseMod
)

// fixed constants for the 2^63 variants: a 64-bit multiplicative
// congruential step (PCG's LCG constants) reduced into [0, 2^63) by
// clearing the top bit, as specified in
const (
	lcg64Mult = 6364136223846793005
	lcg64Add  = 1442695040888963407
	topBit63  = uint64(1) << 63
)

// Engine is one deterministic random stream. Its zero value is not usable;
// construct with New.
type Engine struct {
	variant  Variant
	state    uint64
	modulus  uint64 // only meaningful for FastMod/IntenseMod
	mult     uint64
	add      uint64
	drawBits int // bits of each draw used by the Intense variants; 0 means "all"
	name     string
}

// New63 creates a 2^63-modulus LCG stream (Fast63 or Intense63).
func New63(seed uint64, intense bool, drawBits int, name string) *Engine {
	v := Fast63
	if intense {
		v = Intense63
	}
	return &Engine{variant: v, state: seed & (topBit63 - 1), drawBits: drawBits, name: name}
}

// NewMod creates a generic-modulus LCG stream (FastMod or IntenseMod).
// modulus must be in (0, 2^63].
func NewMod(seed, modulus, mult, add uint64, intense bool, name string) *Engine {
	v := FastMod
	if intense {
		v = IntenseMod
	}
	return &Engine{variant: v, state: seed % modulus, modulus: modulus, mult: mult, add: add, name: name}
}

// Name reports the stream's identity (seed, modulus, multiplier, adder, as
// supplied at construction), used verbatim in checkpoint serialization.
func (e *Engine) Name() string { return e.name }

// Variant reports which of the four table variants this engine implements.
func (e *Engine) Variant() Variant { return e.variant }

// step advances the LCG state by one transition.
func (e *Engine) step() {
	switch e.variant {
	case Fast63, Intense63:
		e.state = (lcg64Mult*e.state + lcg64Add) & (topBit63 - 1)
	case FastMod, IntenseMod:
		e.state = modMulAdd(e.state, e.mult, e.add, e.modulus)
	}
}

// Next63 returns the next 63-bit integer in [0, 2^63), advancing the
// stream. For the Mod variants the value is in [0, modulus).
func (e *Engine) Next63() uint64 {
	e.step()
	return e.state
}

// drawWidth returns the number of usable bits per draw.
func (e *Engine) drawWidth() int {
	switch e.variant {
	case Fast63, FastMod:
		return 63
	default: // Intense63, IntenseMod
		if e.drawBits <= 0 || e.drawBits > 63 {
			return 63
		}
		return e.drawBits
	}
}

// DrawBits returns a random integer built from enough successive draws to
// contain at least nBits bits of entropy, using only the top drawWidth()
// bits of each draw for the Intense variants. The result is
// in [0, 2^nBits).
func (e *Engine) DrawBits(nBits int) *big.Int {
	if nBits <= 0 {
		return big.NewInt(0)
	}
	width := e.drawWidth()
	out := new(big.Int)
	have := 0
	for have < nBits {
		v := e.Next63()
		if width < 63 {
			v >>= uint(63 - width)
		}
		out.Lsh(out, uint(width))
		out.Or(out, new(big.Int).SetUint64(v))
		have += width
	}
	// Trim to exactly nBits by dropping the extra low-order bits.
	if have > nBits {
		out.Rsh(out, uint(have-nBits))
	}
	return out
}

// State is the serializable transition state of an Engine.
type State struct {
	Variant  Variant
	Seed     uint64
	Modulus  uint64
	Mult     uint64
	Add      uint64
	DrawBits int
	Name     string
}

// State captures the engine's current state for checkpointing.
func (e *Engine) State() State {
	return State{
		Variant:  e.variant,
		Seed:     e.state,
		Modulus:  e.modulus,
		Mult:     e.mult,
		Add:      e.add,
		DrawBits: e.drawBits,
		Name:     e.name,
	}
}

// Restore rebuilds an Engine from a previously captured State.
func Restore(s State) *Engine {
	return &Engine{
		variant:  s.Variant,
		state:    s.Seed,
		modulus:  s.Modulus,
		mult:     s.Mult,
		add:      s.Add,
		drawBits: s.DrawBits,
		name:     s.Name,
	}
}

// modMulAdd computes (mult*s + add) mod modulus without overflowing
// uint64, via a 128-bit intermediate. modulus may exceed 2^32, so a naive
// uint64 multiply is not safe.
func modMulAdd(s, mult, add, modulus uint64) uint64 {
	product := new(big.Int).Mul(new(big.Int).SetUint64(mult), new(big.Int).SetUint64(s))
	product.Add(product, new(big.Int).SetUint64(add))
	product.Mod(product, new(big.Int).SetUint64(modulus))
	return product.Uint64()
}
