package comms

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// sqrtEps is the tolerance for detecting the singular points of the filter
// formulas; exact floating equality is unreliable there.
var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)

// defaultSpan picks a filter length in symbol periods for a given roll-off.
// The rule comes from the usual square-root raised cosine length
// recommendation, which is conservative for the plain raised cosine.
func defaultSpan(beta float64) int {
	if beta < 0.68 {
		return 33 - int(44*beta)
	}
	return 4
}

func checkPulseParams(beta float64, sps int) error {
	if beta < 0 || beta > 1 {
		return fmt.Errorf("%w: roll-off %g outside [0, 1]", ErrInvalidParameter, beta)
	}
	if sps < 1 {
		return fmt.Errorf("%w: samples per symbol must be positive, got %d", ErrInvalidParameter, sps)
	}
	return nil
}

// sinc is the normalized sinc function sin(pi t)/(pi t).
func sinc(t float64) float64 {
	if t == 0 {
		return 1
	}
	return math.Sin(math.Pi*t) / (math.Pi * t)
}

// RaisedCosineFIR designs a raised cosine pulse shaping filter with roll-off
// beta in [0, 1] and sps samples per symbol. A span of zero or less selects
// an automatic length in symbols based on the roll-off. The filter is
// symmetric, has odd length with a group delay of (len-1)/2 samples, and is
// normalized to unit energy.
func RaisedCosineFIR(beta float64, sps, span int) ([]float64, error) {
	if err := checkPulseParams(beta, sps); err != nil {
		return nil, err
	}
	if span <= 0 {
		span = defaultSpan(beta)
	}
	delay := span * sps / 2
	b := make([]float64, 2*delay+1)
	for i := range b {
		t := float64(i-delay) / float64(sps)
		denom := 1 - (2*beta*t)*(2*beta*t)
		if math.Abs(denom) > sqrtEps {
			b[i] = sinc(t) * math.Cos(math.Pi*beta*t) / denom / float64(sps)
		} else {
			// analytic limit at t = +-1/(2 beta)
			b[i] = beta * math.Sin(math.Pi/(2*beta)) / (2 * float64(sps))
		}
	}
	normalizeEnergy(b)
	return b, nil
}

// RootRaisedCosineFIR designs a square-root raised cosine filter with
// roll-off beta in [0, 1] and sps samples per symbol. A span of zero or less
// selects an automatic length in symbols. Used on both ends of a link, the
// cascade is a raised cosine with no intersymbol interference at the symbol
// instants. The filter is symmetric and normalized to unit energy.
func RootRaisedCosineFIR(beta float64, sps, span int) ([]float64, error) {
	if err := checkPulseParams(beta, sps); err != nil {
		return nil, err
	}
	if span <= 0 {
		span = defaultSpan(beta)
	}
	delay := span * sps / 2
	b := make([]float64, 2*delay+1)
	for i := range b {
		t := float64(i-delay) / float64(sps)
		switch {
		case i == delay:
			b[i] = -(math.Pi*(beta-1) - 4*beta) / (math.Pi * float64(sps))
		case beta > 0 && math.Abs(math.Abs(4*beta*t)-1) < sqrtEps:
			// analytic limit at t = +-1/(4 beta)
			b[i] = (math.Pi*(beta+1)*math.Sin(math.Pi*(beta+1)/(4*beta)) -
				4*beta*math.Sin(math.Pi*(beta-1)/(4*beta)) +
				math.Pi*(beta-1)*math.Cos(math.Pi*(beta-1)/(4*beta))) /
				(2 * math.Pi * float64(sps))
		default:
			// equivalent to the textbook form, folded so that beta = 0
			// degenerates to sinc(t)/sps instead of 0 * Inf
			num := 4*beta*math.Cos((1+beta)*math.Pi*t) + math.Sin((1-beta)*math.Pi*t)/t
			b[i] = -num / (float64(sps) * math.Pi * ((4*beta*t)*(4*beta*t) - 1))
		}
	}
	normalizeEnergy(b)
	return b, nil
}

// normalizeEnergy scales coefficients in place to unit L2 norm.
func normalizeEnergy(b []float64) {
	floats.Scale(1/floats.Norm(b, 2), b)
}

// UpFirDn upsamples x by the integer factor up, applies the FIR filter h,
// and downsamples by the integer factor down. The convolution is full, so
// the output carries the filter's leading transient; its length is
// ceil(((len(x)-1)*up + len(h)) / down).
func UpFirDn(h []float64, x []complex128, up, down int) []complex128 {
	if len(x) == 0 || len(h) == 0 || up < 1 || down < 1 {
		return nil
	}
	nfull := (len(x)-1)*up + len(h)
	y := make([]complex128, (nfull+down-1)/down)
	for o := range y {
		pos := o * down
		// Only taps aligned with a nonzero upsampled input contribute.
		for k := pos % up; k < len(h); k += up {
			xi := (pos - k) / up
			if xi < 0 {
				break
			}
			if xi < len(x) {
				y[o] += complex(h[k], 0) * x[xi]
			}
		}
	}
	return y
}
