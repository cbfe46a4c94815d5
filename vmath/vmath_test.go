package vmath

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHeadingConventions(t *testing.T) {
	tests := []struct {
		deg   float64
		yDown bool
		want  Vec2
	}{
		{0, true, Vec2{0, -1}},
		{0, false, Vec2{0, 1}},
		{90, true, Vec2{1, 0}},
		{180, true, Vec2{0, 1}},
		{180, false, Vec2{0, -1}},
		{270, false, Vec2{-1, 0}},
	}
	for _, tt := range tests {
		got := Heading(tt.deg, tt.yDown)
		if !almost(got.X, tt.want.X) || !almost(got.Y, tt.want.Y) {
			t.Errorf("Heading(%v, %v) = %v, want %v", tt.deg, tt.yDown, got, tt.want)
		}
	}
}

func TestDirectionToInvertsHeading(t *testing.T) {
	from := V(10, 10)
	for _, yDown := range []bool{true, false} {
		for _, deg := range []float64{0, 45, 90, 135, -90, -170} {
			to := from.Add(Heading(deg, yDown).Scale(5))
			got := DirectionTo(from, to, yDown)
			if !almost(NormalizeDegrees(got-deg), 0) {
				t.Errorf("yDown=%v: DirectionTo for %v = %v", yDown, deg, got)
			}
		}
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := map[float64]float64{0: 0, 180: 180, 190: -170, -180: 180, 720: 0, -450: -90}
	for in, want := range tests {
		if got := NormalizeDegrees(in); !almost(got, want) {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFastRandDeterministic(t *testing.T) {
	a, b := NewFastRand(42), NewFastRand(42)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("sequences diverged at %d", i)
		}
	}
}

func TestFastRandFloatRange(t *testing.T) {
	r := NewFastRand(7)
	for i := 0; i < 10000; i++ {
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
	if r.Intn(0) != 0 {
		t.Error("Intn(0) should be 0")
	}
}

func TestClamp(t *testing.T) {
	v := V(-5, 50).Clamp(V(0, 0), V(10, 10))
	if v != V(0, 10) {
		t.Errorf("Clamp = %v", v)
	}
}
