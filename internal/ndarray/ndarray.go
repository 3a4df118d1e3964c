// Package ndarray implements a minimal 2-D numeric array with an optional
// no-data mask, the aggregation functions used to combine four quadrants
// into one coarser array, and a strided-read fast path for deriving a tile
// directly from a larger backing array without building intermediate
// levels.
package ndarray

import "math"

// Array is a row-major 2-D array of float64 samples with an optional
// per-cell mask marking no-data values. A nil Mask means every cell is
// valid.
type Array struct {
	Width, Height int
	Data          []float64
	Mask          []bool // true = masked/no-data; len == len(Data) when non-nil
}

// NewArray allocates a zero-filled array of the given dimensions.
func NewArray(width, height int) *Array {
	return &Array{Width: width, Height: height, Data: make([]float64, width*height)}
}

// NBytes reports the resident size of the array's backing storage.
func (a *Array) NBytes() int64 {
	n := int64(len(a.Data)) * 8
	if a.Mask != nil {
		n += int64(len(a.Mask))
	}
	return n
}

func (a *Array) index(x, y int) int { return y*a.Width + x }

// At returns the value and validity at (x, y).
func (a *Array) At(x, y int) (value float64, valid bool) {
	i := a.index(x, y)
	if a.Mask != nil && a.Mask[i] {
		return 0, false
	}
	return a.Data[i], true
}

// Set writes value at (x, y) and marks it valid.
func (a *Array) Set(x, y int, value float64) {
	i := a.index(x, y)
	a.Data[i] = value
	if a.Mask != nil {
		a.Mask[i] = false
	}
}

// SetMasked marks (x, y) as no-data, allocating the mask plane on first use.
func (a *Array) SetMasked(x, y int) {
	if a.Mask == nil {
		a.Mask = make([]bool, len(a.Data))
	}
	a.Mask[a.index(x, y)] = true
}

// MaskEqual builds a mask over a freshly-read array, treating any sample
// equal to noData as invalid. Mirrors the equal-value no-data convention
// used by integer raster formats.
func (a *Array) MaskEqual(noData float64) {
	mask := make([]bool, len(a.Data))
	any := false
	for i, v := range a.Data {
		if v == noData {
			mask[i] = true
			any = true
		}
	}
	if any {
		a.Mask = mask
	}
}

// MaskNonFinite builds a mask over the array treating NaN and Inf samples
// as invalid, the convention used for floating-point and complex rasters
// where no sentinel value is available.
func (a *Array) MaskNonFinite() {
	mask := make([]bool, len(a.Data))
	any := false
	for i, v := range a.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			mask[i] = true
			any = true
		}
	}
	if any {
		a.Mask = mask
	}
}

// Aggregator combines four same-shape quadrant arrays, in the order
// (topLeft, topRight, bottomLeft, bottomRight), into one array of that
// shape. Masked input cells should propagate to masked output cells unless
// the aggregator documents otherwise.
type Aggregator func(a1, a2, a3, a4 *Array) *Array

// AggregateFirst returns the top-left quadrant unchanged. Downsample still
// builds all four quadrants before calling it; DownsampleFirst is the
// stride-2 path that reads only the top-left samples.
func AggregateFirst(a1, _, _, _ *Array) *Array { return a1 }

// AggregateMin takes the element-wise minimum across all four quadrants,
// ignoring masked cells; a cell masked in all four inputs stays masked.
func AggregateMin(a1, a2, a3, a4 *Array) *Array {
	return combine(a1, a2, a3, a4, math.Min)
}

// AggregateMax takes the element-wise maximum across all four quadrants,
// ignoring masked cells; a cell masked in all four inputs stays masked.
func AggregateMax(a1, a2, a3, a4 *Array) *Array {
	return combine(a1, a2, a3, a4, math.Max)
}

// AggregateSum adds all four quadrants element-wise. A masked cell
// contributes nothing to the sum; a cell masked in all four stays masked.
func AggregateSum(a1, a2, a3, a4 *Array) *Array {
	out := NewArray(a1.Width, a1.Height)
	for i := range out.Data {
		var sum float64
		valid := false
		for _, a := range [4]*Array{a1, a2, a3, a4} {
			if a.Mask == nil || !a.Mask[i] {
				sum += a.Data[i]
				valid = true
			}
		}
		out.Data[i] = sum
		if !valid {
			out.SetMasked(i%out.Width, i/out.Width)
		}
	}
	return out
}

// AggregateMean averages the valid samples across all four quadrants. A
// cell masked in all four stays masked.
func AggregateMean(a1, a2, a3, a4 *Array) *Array {
	out := NewArray(a1.Width, a1.Height)
	for i := range out.Data {
		var sum float64
		var count int
		for _, a := range [4]*Array{a1, a2, a3, a4} {
			if a.Mask == nil || !a.Mask[i] {
				sum += a.Data[i]
				count++
			}
		}
		if count == 0 {
			out.SetMasked(i%out.Width, i/out.Width)
			continue
		}
		out.Data[i] = sum / float64(count)
	}
	return out
}

func combine(a1, a2, a3, a4 *Array, op func(a, b float64) float64) *Array {
	out := NewArray(a1.Width, a1.Height)
	for i := range out.Data {
		first := true
		var acc float64
		valid := false
		for _, a := range [4]*Array{a1, a2, a3, a4} {
			if a.Mask != nil && a.Mask[i] {
				continue
			}
			if first {
				acc = a.Data[i]
				first = false
			} else {
				acc = op(acc, a.Data[i])
			}
			valid = true
		}
		out.Data[i] = acc
		if !valid {
			out.SetMasked(i%out.Width, i/out.Width)
		}
	}
	return out
}

// quadrants splits a into its four stride-2 quadrants in the canonical
// (topLeft, topRight, bottomLeft, bottomRight) order, each half the width
// and height of a (rounded down).
func quadrants(a *Array) (a1, a2, a3, a4 *Array) {
	w, h := a.Width/2, a.Height/2
	a1, a2, a3, a4 = NewArray(w, h), NewArray(w, h), NewArray(w, h), NewArray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			copyCell(a, a1, 2*x, 2*y, x, y)
			copyCell(a, a2, 2*x+1, 2*y, x, y)
			copyCell(a, a3, 2*x, 2*y+1, x, y)
			copyCell(a, a4, 2*x+1, 2*y+1, x, y)
		}
	}
	return
}

func copyCell(src, dst *Array, sx, sy, dx, dy int) {
	v, ok := src.At(sx, sy)
	if !ok {
		dst.SetMasked(dx, dy)
		return
	}
	dst.Set(dx, dy, v)
}

// Downsample halves both dimensions of a, combining each 2x2 block with
// aggregator. Prefer DownsampleFirst over Downsample(a, AggregateFirst): it
// takes a stride-2-slice fast path that skips building the other three
// quadrants entirely.
func Downsample(a *Array, aggregator Aggregator) *Array {
	if aggregator == nil {
		aggregator = AggregateMean
	}
	a1, a2, a3, a4 := quadrants(a)
	return aggregator(a1, a2, a3, a4)
}

// DownsampleFirst is the optimized equivalent of Downsample(a,
// AggregateFirst): it reads every other row and column directly, never
// allocating the other three quadrants.
func DownsampleFirst(a *Array) *Array {
	w, h := a.Width/2, a.Height/2
	out := NewArray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			copyCell(a, out, 2*x, 2*y, x, y)
		}
	}
	return out
}

// CardinalDivRound returns ceil(num/denom) for positive integers.
func CardinalDivRound(num, denom int) int {
	return (num + denom - 1) / denom
}

// CardinalLog2 returns the number of times x divides evenly by 2.
func CardinalLog2(x int) int {
	n := 0
	for x > 0 && x%2 == 0 {
		n++
		x /= 2
	}
	return n
}
