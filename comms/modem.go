package comms

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Metric measures the distance between one symbol period of received signal
// and one constellation point. Both slices have the constellation's Dim
// samples. Smaller means closer; negative values are allowed, as with the
// matched filter correlation.
type Metric func(segment, point []complex128) float64

// Decision reduces the per-point metrics for one symbol period to a symbol
// value.
type Decision func(metrics []float64) int

// ArgMin is the default hard decision rule: the index of the smallest
// metric. Ties go to the lower symbol value.
func ArgMin(metrics []float64) int {
	best := 0
	for i, v := range metrics {
		if v < metrics[best] {
			best = i
		}
	}
	return best
}

// EuclideanMetric is the distance |x - p| between scalar points.
func EuclideanMetric(segment, point []complex128) float64 {
	return cmplx.Abs(segment[0] - point[0])
}

// IncoherentMetric compares signal magnitude against a nonnegative real
// level, ignoring carrier phase. Used for OOK-style alphabets.
func IncoherentMetric(segment, point []complex128) float64 {
	return math.Abs(cmplx.Abs(segment[0]) - real(point[0]))
}

// MatchedFilterMetric is the negated magnitude of the correlation between a
// received segment and a constellation waveform. The strongest correlation
// gives the smallest (most negative) metric.
func MatchedFilterMetric(segment, point []complex128) float64 {
	var acc complex128
	for i := range point {
		acc += segment[i] * cmplx.Conj(point[i])
	}
	return -cmplx.Abs(acc)
}

// DefaultMetric returns the metric a constellation kind is demodulated with
// when none is supplied.
func (k Kind) DefaultMetric() Metric {
	switch k {
	case KindReal:
		return IncoherentMetric
	case KindVector:
		return MatchedFilterMetric
	default:
		return EuclideanMetric
	}
}

// Modulate maps symbols to baseband signal points of the constellation,
// concatenating the per-symbol waveforms for vector kinds. Every symbol must
// lie in [0, Size()).
func Modulate(symbols []int, c *Constellation) ([]complex128, error) {
	m := c.Size()
	out := make([]complex128, 0, len(symbols)*c.Dim)
	for i, s := range symbols {
		if s < 0 || s >= m {
			return nil, fmt.Errorf("%w: symbol %d is %d, outside [0, %d)", ErrInvalidInput, i, s, m)
		}
		out = append(out, c.Point(s)...)
	}
	return out, nil
}

func symbolPeriods(x []complex128, c *Constellation) (int, error) {
	if len(x)%c.Dim != 0 {
		return 0, fmt.Errorf("%w: signal length %d is not a multiple of %d samples per symbol",
			ErrInvalidInput, len(x), c.Dim)
	}
	return len(x) / c.Dim, nil
}

// SoftDemodulate returns the metric of every constellation point for every
// symbol period of x, one row per symbol, without making a decision. A nil
// metric selects the constellation kind's default.
func SoftDemodulate(x []complex128, c *Constellation, metric Metric) ([][]float64, error) {
	if metric == nil {
		metric = c.Kind.DefaultMetric()
	}
	nsym, err := symbolPeriods(x, c)
	if err != nil {
		return nil, err
	}
	m := c.Size()
	rows := make([][]float64, nsym)
	for i := 0; i < nsym; i++ {
		seg := x[i*c.Dim : (i+1)*c.Dim]
		row := make([]float64, m)
		for s := 0; s < m; s++ {
			row[s] = metric(seg, c.Point(s))
		}
		rows[i] = row
	}
	return rows, nil
}

// DemodulateWith recovers symbols from a baseband signal using an explicit
// distance metric and decision rule. A nil metric selects the kind default;
// a nil decision selects ArgMin.
func DemodulateWith(x []complex128, c *Constellation, metric Metric, decision Decision) ([]int, error) {
	if decision == nil {
		decision = ArgMin
	}
	rows, err := SoftDemodulate(x, c, metric)
	if err != nil {
		return nil, err
	}
	syms := make([]int, len(rows))
	for i, row := range rows {
		syms[i] = decision(row)
	}
	return syms, nil
}

// Demodulate recovers symbols from a baseband signal using the
// constellation's default metric and the ArgMin decision rule.
func Demodulate(x []complex128, c *Constellation) ([]int, error) {
	return DemodulateWith(x, c, nil, nil)
}

// DiffEncode differentially encodes a baseband signal. The output is one
// sample longer than the input and starts with the reference value 1;
// y[j] = x[j-1] * y[j-1] for j >= 1, so information rides on the phase
// change between consecutive samples.
func DiffEncode(x []complex128) []complex128 {
	y := make([]complex128, len(x)+1)
	y[0] = 1
	for j := 1; j < len(y); j++ {
		y[j] = x[j-1] * y[j-1]
	}
	return y
}

// DiffDecode reverses DiffEncode: y[j] = x[j+1] * conj(x[j]). The output is
// one sample shorter than the input.
func DiffDecode(x []complex128) []complex128 {
	if len(x) == 0 {
		return nil
	}
	y := make([]complex128, len(x)-1)
	for j := range y {
		y[j] = x[j+1] * cmplx.Conj(x[j])
	}
	return y
}
