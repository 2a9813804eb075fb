package pan

import (
	"math"
	"testing"
)

func TestCenterPanIsEqualPower(t *testing.T) {
	l, r := LeftPan(0), RightPan(0)
	want := math.Sqrt2 / 2
	if math.Abs(l-want) > 1e-9 {
		t.Errorf("LeftPan(0) = %f, want %f", l, want)
	}
	if math.Abs(r-want) > 1e-9 {
		t.Errorf("RightPan(0) = %f, want %f", r, want)
	}
	if math.Abs(l*l+r*r-1.0) > 1e-9 {
		t.Errorf("l^2+r^2 = %f, want 1.0 (equal power)", l*l+r*r)
	}
}

func TestHardLeftAndHardRight(t *testing.T) {
	if l := LeftPan(-1); math.Abs(l-1.0) > 1e-9 {
		t.Errorf("LeftPan(-1) = %f, want 1.0", l)
	}
	if r := RightPan(-1); math.Abs(r) > 1e-9 {
		t.Errorf("RightPan(-1) = %f, want 0.0", r)
	}
	if l := LeftPan(1); math.Abs(l) > 1e-9 {
		t.Errorf("LeftPan(1) = %f, want 0.0", l)
	}
	if r := RightPan(1); math.Abs(r-1.0) > 1e-9 {
		t.Errorf("RightPan(1) = %f, want 1.0", r)
	}
}

func TestEqualPowerAcrossRange(t *testing.T) {
	for _, p := range []float64{-1, -0.5, -0.25, 0, 0.25, 0.5, 1} {
		l, r := LeftPan(p), RightPan(p)
		if sum := l*l + r*r; math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("pan=%f: l^2+r^2 = %f, want 1.0", p, sum)
		}
	}
}
