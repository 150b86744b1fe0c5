package enrich

import (
	"math"
	"slices"
)

// minQuartileSample is the smallest sample the IQR filter is applied to;
// below it quartiles say nothing useful and the filter passes everything.
const minQuartileSample = 4

const iqrFactor = 1.5

// quantile interpolates linearly between the closest ranks at position
// p*(n-1) of the sorted sample.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantile(sorted, 0.5), true
}

// fence is an inclusive [Lower, Upper] acceptance range.
type fence struct {
	Q1, Q3       float64
	Lower, Upper float64
}

func (f fence) contains(v float64) bool {
	return v >= f.Lower && v <= f.Upper
}

// iqrFence computes Q1 - 1.5*IQR .. Q3 + 1.5*IQR. ok is false when the
// sample is too small to filter.
func iqrFence(values []float64) (fence, bool) {
	if len(values) < minQuartileSample {
		return fence{}, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	return fence{
		Q1:    q1,
		Q3:    q3,
		Lower: q1 - iqrFactor*iqr,
		Upper: q3 + iqrFactor*iqr,
	}, true
}

// Quantile returns the p-quantile of values, interpolating linearly between
// ranks. It is NaN for an empty sample.
func Quantile(values []float64, p float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantile(sorted, p)
}
