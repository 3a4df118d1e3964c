package ndarray

import (
	"math"
	"testing"
)

func filled(w, h int, fn func(x, y int) float64) *Array {
	a := NewArray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a.Set(x, y, fn(x, y))
		}
	}
	return a
}

func TestAtReturnsFalseForMaskedCell(t *testing.T) {
	a := NewArray(2, 2)
	a.Set(0, 0, 5)
	a.SetMasked(0, 0)
	if _, ok := a.At(0, 0); ok {
		t.Fatalf("expected masked cell to report invalid")
	}
}

func TestSetClearsMaskOnCell(t *testing.T) {
	a := NewArray(2, 2)
	a.SetMasked(1, 1)
	a.Set(1, 1, 3)
	v, ok := a.At(1, 1)
	if !ok || v != 3 {
		t.Fatalf("expected cell unmasked after Set, got %v, %v", v, ok)
	}
}

func TestMaskEqualMasksMatchingSamples(t *testing.T) {
	a := filled(2, 2, func(x, y int) float64 { return float64(x + y) })
	a.MaskEqual(0)
	if _, ok := a.At(0, 0); ok {
		t.Fatalf("expected (0,0)==0 to be masked")
	}
	if _, ok := a.At(1, 1); !ok {
		t.Fatalf("expected (1,1)==2 to remain valid")
	}
}

func TestMaskEqualLeavesMaskNilWhenNoMatch(t *testing.T) {
	a := filled(2, 2, func(x, y int) float64 { return 7 })
	a.MaskEqual(-1)
	if a.Mask != nil {
		t.Fatalf("expected no mask allocated when nothing matches")
	}
}

func TestMaskNonFiniteMasksNaNAndInf(t *testing.T) {
	a := NewArray(2, 2)
	a.Set(0, 0, math.NaN())
	a.Set(1, 0, math.Inf(1))
	a.Set(0, 1, math.Inf(-1))
	a.Set(1, 1, 1.5)
	a.MaskNonFinite()

	if _, ok := a.At(0, 0); ok {
		t.Fatalf("expected NaN masked")
	}
	if _, ok := a.At(1, 0); ok {
		t.Fatalf("expected +Inf masked")
	}
	if _, ok := a.At(0, 1); ok {
		t.Fatalf("expected -Inf masked")
	}
	v, ok := a.At(1, 1)
	if !ok || v != 1.5 {
		t.Fatalf("expected finite cell to remain valid, got %v, %v", v, ok)
	}
}

func TestAggregateFirstReturnsTopLeft(t *testing.T) {
	a1 := filled(1, 1, func(x, y int) float64 { return 1 })
	a2 := filled(1, 1, func(x, y int) float64 { return 2 })
	a3 := filled(1, 1, func(x, y int) float64 { return 3 })
	a4 := filled(1, 1, func(x, y int) float64 { return 4 })
	out := AggregateFirst(a1, a2, a3, a4)
	if out != a1 {
		t.Fatalf("expected AggregateFirst to return a1 unchanged")
	}
}

func TestAggregateMeanAveragesValidCells(t *testing.T) {
	a1 := filled(1, 1, func(x, y int) float64 { return 2 })
	a2 := filled(1, 1, func(x, y int) float64 { return 4 })
	a3 := filled(1, 1, func(x, y int) float64 { return 6 })
	a4 := filled(1, 1, func(x, y int) float64 { return 8 })
	out := AggregateMean(a1, a2, a3, a4)
	v, ok := out.At(0, 0)
	if !ok || v != 5 {
		t.Fatalf("expected mean 5, got %v, %v", v, ok)
	}
}

func TestAggregateMeanExcludesMaskedCells(t *testing.T) {
	a1 := NewArray(1, 1)
	a1.SetMasked(0, 0)
	a2 := filled(1, 1, func(x, y int) float64 { return 10 })
	a3 := filled(1, 1, func(x, y int) float64 { return 20 })
	a4 := filled(1, 1, func(x, y int) float64 { return 30 })
	out := AggregateMean(a1, a2, a3, a4)
	v, ok := out.At(0, 0)
	if !ok || v != 20 {
		t.Fatalf("expected mean of 3 valid cells = 20, got %v, %v", v, ok)
	}
}

func TestAggregateMeanAllMaskedStaysMasked(t *testing.T) {
	a := NewArray(1, 1)
	a.SetMasked(0, 0)
	out := AggregateMean(a, a, a, a)
	if _, ok := out.At(0, 0); ok {
		t.Fatalf("expected output masked when every input is masked")
	}
}

func TestAggregateMinMax(t *testing.T) {
	a1 := filled(1, 1, func(x, y int) float64 { return 5 })
	a2 := filled(1, 1, func(x, y int) float64 { return 1 })
	a3 := filled(1, 1, func(x, y int) float64 { return 9 })
	a4 := filled(1, 1, func(x, y int) float64 { return 3 })
	min := AggregateMin(a1, a2, a3, a4)
	max := AggregateMax(a1, a2, a3, a4)
	v, _ := min.At(0, 0)
	if v != 1 {
		t.Fatalf("expected min 1, got %v", v)
	}
	v, _ = max.At(0, 0)
	if v != 9 {
		t.Fatalf("expected max 9, got %v", v)
	}
}

func TestAggregateSum(t *testing.T) {
	a1 := filled(1, 1, func(x, y int) float64 { return 1 })
	a2 := filled(1, 1, func(x, y int) float64 { return 2 })
	a3 := filled(1, 1, func(x, y int) float64 { return 3 })
	a4 := filled(1, 1, func(x, y int) float64 { return 4 })
	out := AggregateSum(a1, a2, a3, a4)
	v, ok := out.At(0, 0)
	if !ok || v != 10 {
		t.Fatalf("expected sum 10, got %v, %v", v, ok)
	}
}

func TestDownsampleHalvesDimensions(t *testing.T) {
	a := filled(4, 4, func(x, y int) float64 { return float64(x + y) })
	out := Downsample(a, AggregateMean)
	if out.Width != 2 || out.Height != 2 {
		t.Fatalf("expected 2x2 output, got %dx%d", out.Width, out.Height)
	}
}

func TestDownsampleFirstMatchesStridedSample(t *testing.T) {
	a := filled(4, 4, func(x, y int) float64 { return float64(10*y + x) })
	out := DownsampleFirst(a)
	if out.Width != 2 || out.Height != 2 {
		t.Fatalf("expected 2x2 output, got %dx%d", out.Width, out.Height)
	}
	v, ok := out.At(0, 0)
	if !ok || v != 0 {
		t.Fatalf("expected (0,0) to be source (0,0)=0, got %v", v)
	}
	v, ok = out.At(1, 1)
	if !ok || v != 22 {
		t.Fatalf("expected (1,1) to be source (2,2)=22, got %v", v)
	}
}

func TestDownsampleDefaultsNilAggregatorToMean(t *testing.T) {
	a := filled(2, 2, func(x, y int) float64 { return float64(x + y) })
	out := Downsample(a, nil)
	v, ok := out.At(0, 0)
	if !ok {
		t.Fatalf("expected valid output cell")
	}
	want := (0.0 + 1.0 + 1.0 + 2.0) / 4.0
	if v != want {
		t.Fatalf("expected default mean %v, got %v", want, v)
	}
}

func TestNBytesAccountsForMaskPlane(t *testing.T) {
	a := NewArray(4, 4)
	withoutMask := a.NBytes()
	a.SetMasked(0, 0)
	withMask := a.NBytes()
	if withMask <= withoutMask {
		t.Fatalf("expected NBytes to grow once a mask plane is allocated")
	}
}

func TestCardinalDivRound(t *testing.T) {
	cases := []struct{ num, denom, want int }{
		{10, 5, 2}, {11, 5, 3}, {1, 5, 1}, {0, 5, 0},
	}
	for _, c := range cases {
		if got := CardinalDivRound(c.num, c.denom); got != c.want {
			t.Errorf("CardinalDivRound(%d,%d) = %d, want %d", c.num, c.denom, got, c.want)
		}
	}
}

func TestCardinalLog2(t *testing.T) {
	cases := []struct{ x, want int }{
		{1, 0}, {2, 1}, {8, 3}, {12, 2}, {0, 0},
	}
	for _, c := range cases {
		if got := CardinalLog2(c.x); got != c.want {
			t.Errorf("CardinalLog2(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}
