package bigfloat

// kind distinguishes an ordinary finite handle from one of the three
// immortal sentinels. Sentinels never carry a *big.Float payload.
type kind uint8

const (
	kindFinite kind = iota
	kindNaN
	kindPosInf
	kindNegInf
)

// F is an owned handle to a pooled arbitrary-precision float, or one of the
// three distinguished sentinels (+Inf, -Inf, NaN). Every non-sentinel F
// returned by a Context operation is owned by exactly one holder and must
// eventually reach Release, directly or by being handed to another holder.
type F struct {
	kind kind
	val  *bigFloat // nil for sentinels
}

// the three immortal singletons. Comparing an F against these by pointer
// identity is how IsNaN/IsInfinite/etc. are implemented; they are never
// placed on the allocator's free list.
var (
	sentinelNaN    = &F{kind: kindNaN}
	sentinelPosInf = &F{kind: kindPosInf}
	sentinelNegInf = &F{kind: kindNegInf}
)

// NaN returns the unique NaN singleton.
func NaN() *F { return sentinelNaN }

// PosInf returns the unique +Inf singleton.
func PosInf() *F { return sentinelPosInf }

// NegInf returns the unique -Inf singleton.
func NegInf() *F { return sentinelNegInf }

// IsSentinel reports whether f is one of the three immortal singletons.
func IsSentinel(f *F) bool {
	return f == sentinelNaN || f == sentinelPosInf || f == sentinelNegInf
}

// IsNaN reports whether f is the NaN singleton.
func IsNaN(f *F) bool { return f == sentinelNaN }

// IsPosInf reports whether f is the +Inf singleton.
func IsPosInf(f *F) bool { return f == sentinelPosInf }

// IsNegInf reports whether f is the -Inf singleton.
func IsNegInf(f *F) bool { return f == sentinelNegInf }

// IsInfinite reports whether f is either infinity singleton.
func IsInfinite(f *F) bool { return f == sentinelPosInf || f == sentinelNegInf }
