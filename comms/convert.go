package comms

import (
	"fmt"
	"math"
	"math/cmplx"
)

// rectPulse is the implied pulse shape when none is given: one symbol period
// of constant amplitude with unit energy.
func rectPulse(sps int) []float64 {
	g := make([]float64, sps)
	amp := 1 / math.Sqrt(float64(sps))
	for i := range g {
		g[i] = amp
	}
	return g
}

// UpconvertBaseband upsamples a complex baseband signal by sps and applies
// the pulse shaping filter g (rectangular if nil), returning the shaped
// signal at the passband sampling rate without carrier modulation. This is
// the zero-carrier half of Upconvert; the filter introduces a group delay of
// (len(g)-1)/2 samples.
func UpconvertBaseband(x []complex128, sps int, g []float64) ([]complex128, error) {
	if sps < 1 {
		return nil, fmt.Errorf("%w: samples per symbol must be positive, got %d", ErrInvalidParameter, sps)
	}
	if g == nil {
		g = rectPulse(sps)
	}
	return UpFirDn(g, x, sps, 1), nil
}

// Upconvert pulse shapes a complex baseband signal and modulates it onto
// carrier fc at sampling rate fs, producing a real passband signal scaled by
// sqrt(2). fc must be nonzero; the fc = 0 case is UpconvertBaseband, which
// keeps the complex baseband representation.
func Upconvert(x []complex128, sps int, fc, fs float64, g []float64) ([]float64, error) {
	if fc == 0 {
		return nil, fmt.Errorf("%w: zero carrier frequency, use UpconvertBaseband", ErrInvalidParameter)
	}
	y, err := UpconvertBaseband(x, sps, g)
	if err != nil {
		return nil, err
	}
	pb := make([]float64, len(y))
	for i, v := range y {
		t := float64(i) / fs
		pb[i] = math.Sqrt2 * real(v*cmplx.Exp(complex(0, -2*math.Pi*fc*t)))
	}
	return pb, nil
}

// Downconvert mixes a real passband signal down from carrier fc at sampling
// rate fs, applies the matched filter g (rectangular if nil) and downsamples
// by sps, returning the recovered complex baseband signal. Together with
// Upconvert the chain adds a group delay of (len(g)-1)/2 passband samples on
// each side.
func Downconvert(pb []float64, sps int, fc, fs float64, g []float64) ([]complex128, error) {
	if fc == 0 {
		return nil, fmt.Errorf("%w: zero carrier frequency, use DownconvertBaseband", ErrInvalidParameter)
	}
	y := make([]complex128, len(pb))
	for i, v := range pb {
		t := float64(i) / fs
		y[i] = complex(math.Sqrt2*v, 0) * cmplx.Exp(complex(0, 2*math.Pi*fc*t))
	}
	return DownconvertBaseband(y, sps, g)
}

// DownconvertBaseband applies matched filtering and downsampling by sps to a
// complex baseband signal already at the passband sampling rate.
func DownconvertBaseband(x []complex128, sps int, g []float64) ([]complex128, error) {
	if sps < 1 {
		return nil, fmt.Errorf("%w: samples per symbol must be positive, got %d", ErrInvalidParameter, sps)
	}
	if g == nil {
		g = rectPulse(sps)
	}
	return UpFirDn(g, x, 1, sps), nil
}
