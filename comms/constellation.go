package comms

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/stat"
)

// Kind identifies the geometry of a constellation. It is fixed when the
// constellation is built and selects the default demodulation metric.
type Kind int

const (
	// KindReal marks scalar constellations whose points are all nonnegative
	// reals (OOK, uncentered PAM). Demodulated incoherently, by magnitude.
	KindReal Kind = iota

	// KindComplex marks scalar complex constellations (PSK, QAM, centered
	// PAM). Demodulated by Euclidean distance.
	KindComplex

	// KindVector marks constellations carrying one waveform of Dim samples
	// per symbol (FSK, MSK). Demodulated by matched filter correlation.
	KindVector
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindComplex:
		return "complex"
	case KindVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Constellation maps symbol values 0..Size()-1 to baseband signal points.
// Scalar kinds use one sample per symbol; vector kinds use Dim samples per
// symbol, stored symbol-major in Points. Unless a constructor documents
// otherwise, the mean squared magnitude over all points is 1.
type Constellation struct {
	Kind   Kind
	Dim    int          // samples per symbol, 1 for scalar kinds
	Points []complex128 // Size()*Dim samples
}

// Size returns the symbol alphabet size m.
func (c *Constellation) Size() int {
	return len(c.Points) / c.Dim
}

// Point returns the waveform for symbol s. The returned slice aliases the
// constellation table; callers must not modify it.
func (c *Constellation) Point(s int) []complex128 {
	return c.Points[s*c.Dim : (s+1)*c.Dim]
}

// OOK returns the on-off keying constellation {0, sqrt(2)}, scaled for unit
// average energy per bit over equally likely bits.
func OOK() *Constellation {
	return &Constellation{
		Kind:   KindReal,
		Dim:    1,
		Points: []complex128{0, complex(math.Sqrt2, 0)},
	}
}

// PAM returns an m-ary pulse amplitude constellation of equally spaced real
// levels scaled for unit average energy per symbol. centered subtracts the
// level mean before normalization. gray reorders the levels so adjacent
// symbol values land on adjacent levels; it requires m to be a power of two.
func PAM(m int, gray, centered bool) (*Constellation, error) {
	if m < 2 {
		return nil, fmt.Errorf("%w: alphabet size must be at least 2, got %d", ErrInvalidParameter, m)
	}
	levels := make([]float64, m)
	for i := range levels {
		levels[i] = float64(i)
	}
	if centered {
		mean := stat.Mean(levels, nil)
		for i := range levels {
			levels[i] -= mean
		}
	}
	var ms float64
	for _, v := range levels {
		ms += v * v
	}
	rms := math.Sqrt(ms / float64(m))
	pts := make([]complex128, m)
	for i, v := range levels {
		pts[i] = complex(v/rms, 0)
	}
	if gray {
		if m&(m-1) != 0 {
			return nil, fmt.Errorf("%w: Gray coding needs a power-of-2 alphabet, got %d", ErrInvalidParameter, m)
		}
		pts = reorder(pts, InvertMap(GrayCode(m)))
	}
	kind := KindReal
	if centered {
		kind = KindComplex // negative levels, incoherent detection would fold them
	}
	return &Constellation{Kind: kind, Dim: 1, Points: pts}, nil
}

// PSK returns an m-ary phase shift keying constellation on the unit circle,
// Gray coded when gray is set. The phase of symbol 0 is pi/4 for m = 4 (so
// QPSK is symmetric about both axes) and 0 otherwise; use PSKWithPhase to
// choose it explicitly.
func PSK(m int, gray bool) (*Constellation, error) {
	phase0 := 0.0
	if m == 4 {
		phase0 = math.Pi / 4
	}
	return PSKWithPhase(m, phase0, gray)
}

// PSKWithPhase returns an m-ary PSK constellation with symbol 0 at phase0.
// Coordinates are rounded to 8 decimal places to suppress floating noise in
// the trigonometry.
func PSKWithPhase(m int, phase0 float64, gray bool) (*Constellation, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: alphabet size must be positive, got %d", ErrInvalidParameter, m)
	}
	pts := make([]complex128, m)
	for i := range pts {
		theta := 2*math.Pi*float64(i)/float64(m) + phase0
		pts[i] = complex(round8(math.Cos(theta)), round8(math.Sin(theta)))
	}
	if gray {
		if m&(m-1) != 0 {
			return nil, fmt.Errorf("%w: Gray coding needs a power-of-2 alphabet, got %d", ErrInvalidParameter, m)
		}
		pts = reorder(pts, InvertMap(GrayCode(m)))
	}
	return &Constellation{Kind: KindComplex, Dim: 1, Points: pts}, nil
}

// QAM returns a square m-ary quadrature amplitude constellation. m must be a
// perfect square. The n x n grid is centered and scaled by its population
// standard deviation. With gray set, the Gray code map is laid over the grid
// in boustrophedon order (every odd row reversed) so that geometrically
// adjacent points differ in a single bit; this requires m to also be a power
// of two, which covers the standard 4/16/64/256 sizes.
func QAM(m int, gray bool) (*Constellation, error) {
	n := int(math.Round(math.Sqrt(float64(m))))
	if n*n != m {
		return nil, fmt.Errorf("%w: alphabet size must be a perfect square, got %d", ErrInvalidParameter, m)
	}
	pts := make([]complex128, m)
	mean := complex(float64(n-1)/2, float64(n-1)/2)
	var variance float64
	for r := 0; r < n; r++ {
		for i := 0; i < n; i++ {
			p := complex(float64(r), float64(i)) - mean
			pts[r*n+i] = p
			variance += real(p)*real(p) + imag(p)*imag(p)
		}
	}
	std := math.Sqrt(variance / float64(m))
	for i := range pts {
		pts[i] /= complex(std, 0)
	}
	if gray {
		if m&(m-1) != 0 {
			return nil, fmt.Errorf("%w: Gray coding needs a power-of-2 alphabet, got %d", ErrInvalidParameter, m)
		}
		code := GrayCode(m)
		for r := 1; r < n; r += 2 {
			row := code[r*n : (r+1)*n]
			for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
				row[i], row[j] = row[j], row[i]
			}
		}
		pts = reorder(pts, InvertMap(code))
	}
	return &Constellation{Kind: KindComplex, Dim: 1, Points: pts}, nil
}

// FSK returns an m-ary frequency shift keying constellation with n complex
// baseband samples per symbol. Tones are spread evenly across (-0.5, 0.5)
// cycles per sample with a 1/(2m) guard to the Nyquist edges. When n is not
// positive it defaults to 2m samples per symbol, which gives every tone an
// integral cycle count and a continuous output signal at the cost of
// bandwidth efficiency; n must be at least m.
func FSK(m, n int) (*Constellation, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: alphabet size must be positive, got %d", ErrInvalidParameter, m)
	}
	if n <= 0 {
		n = 2 * m
	}
	if n < m {
		return nil, fmt.Errorf("%w: need at least m samples per symbol, got n=%d for m=%d", ErrInvalidParameter, n, m)
	}
	pts := make([]complex128, 0, m*n)
	scale := 0.5 - 0.5/float64(m)
	for i := 0; i < m; i++ {
		f := 0.0
		if m > 1 {
			f = (-1 + 2*float64(i)/float64(m-1)) * scale
		}
		for k := 0; k < n; k++ {
			pts = append(pts, cmplx.Exp(complex(0, -2*math.Pi*f*float64(k))))
		}
	}
	return &Constellation{Kind: KindVector, Dim: n, Points: pts}, nil
}

// MSK returns a minimum shift keying constellation with 4 baseband samples
// per 2-bit symbol. MSK is a continuous-phase 2-FSK whose waveform depends
// on the previous bit; folding that history into the alphabet yields a
// time-invariant 4-ary vector constellation.
func MSK() *Constellation {
	return &Constellation{
		Kind: KindVector,
		Dim:  4,
		Points: []complex128{
			1, 1i, -1, -1i,
			1, 1i, -1, 1i,
			1, -1i, -1, -1i,
			1, -1i, -1, 1i,
		},
	}
}

func reorder(pts []complex128, idx []int) []complex128 {
	out := make([]complex128, len(pts))
	for i := range out {
		out[i] = pts[idx[i]]
	}
	return out
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
