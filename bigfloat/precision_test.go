package bigfloat

import "testing"

func TestPrecisionCheckNeverNeverFlags(t *testing.T) {
	c := NewContext(64, 8, CheckNever, 1.0)
	one := c.FromInt64(1)
	tiny := c.Multiply2Exp(one, -63)
	sum := c.Add(one, tiny)
	_ = sum
	if c.RaisePrecisionPending() {
		t.Fatal("CheckNever should never flag precision loss")
	}
}

func TestPrecisionCheckAllFlagsNearCancellation(t *testing.T) {
	c := NewContext(64, 8, CheckAlways, 1.0)
	one := c.FromInt64(1)
	tiny := c.Multiply2Exp(one, -60)
	sum := c.Add(one, tiny)
	diff := c.Sub(sum, one)
	_ = diff
	if !c.RaisePrecisionPending() {
		t.Fatal("expected near-cancellation to flag precision loss under CheckAlways")
	}
}

func TestPrecisionCheckSuppressedDuringStatistics(t *testing.T) {
	c := NewContext(64, 8, CheckAlwaysExceptStatistics, 1.0)
	leave := c.EnterStatisticalRegion()
	one := c.FromInt64(1)
	tiny := c.Multiply2Exp(one, -60)
	sum := c.Add(one, tiny)
	diff := c.Sub(sum, one)
	_ = diff
	leave()
	if c.RaisePrecisionPending() {
		t.Fatal("expected statistics region to suppress the precision check")
	}
}
