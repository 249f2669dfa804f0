package bigfloat

import "math"

func nan() float64        { return math.NaN() }
func inf(sign int) float64 { return math.Inf(sign) }
func log2(v float64) float64 { return math.Log2(v) }
