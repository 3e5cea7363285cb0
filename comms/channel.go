package comms

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxAlphabet bounds the alphabet size BER can score; it is the size of the
// popcount table.
const maxAlphabet = 64

// popcount[v] is the number of set bits in v, covering every 6-bit symbol
// XOR.
var popcount = [maxAlphabet]int{
	0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4,
	1, 2, 2, 3, 2, 3, 3, 4, 2, 3, 3, 4, 3, 4, 4, 5,
	1, 2, 2, 3, 2, 3, 3, 4, 2, 3, 3, 4, 3, 4, 4, 5,
	2, 3, 3, 4, 3, 4, 4, 5, 3, 4, 4, 5, 4, 5, 5, 6,
}

var rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))

// Seed reseeds the package random source used by RandomData and AWGN.
func Seed(seed uint64) {
	rng = rand.New(rand.NewSource(seed))
}

// RandomData returns n uniformly random symbols in [0, m).
func RandomData(n, m int) []int {
	syms := make([]int, n)
	for i := range syms {
		syms[i] = rng.Intn(m)
	}
	return syms
}

// AWGN adds white Gaussian noise to a complex baseband signal for the given
// SNR in dB. When measured is set the signal level is taken as the
// population standard deviation of x, otherwise unit level is assumed.
// Noise power is split equally between the real and imaginary rails.
func AWGN(x []complex128, snrDB float64, measured bool) []complex128 {
	level := 1.0
	if measured {
		level = stdComplex(x)
	}
	noise := distuv.Normal{
		Mu:    0,
		Sigma: level * math.Pow(10, -snrDB/20) / math.Sqrt2,
		Src:   rng,
	}
	y := make([]complex128, len(x))
	for i, v := range x {
		y[i] = v + complex(noise.Rand(), noise.Rand())
	}
	return y
}

// AWGNReal adds white Gaussian noise to a real signal, such as a passband
// waveform, for the given SNR in dB.
func AWGNReal(x []float64, snrDB float64, measured bool) []float64 {
	level := 1.0
	if measured {
		level = math.Sqrt(stat.PopVariance(x, nil))
	}
	noise := distuv.Normal{
		Mu:    0,
		Sigma: level * math.Pow(10, -snrDB/20),
		Src:   rng,
	}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v + noise.Rand()
	}
	return y
}

// stdComplex is the population standard deviation of a complex sequence,
// sqrt(mean |x - mean(x)|^2).
func stdComplex(x []complex128) float64 {
	if len(x) == 0 {
		return 0
	}
	var mean complex128
	for _, v := range x {
		mean += v
	}
	mean /= complex(float64(len(x)), 0)
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += real(d)*real(d) + imag(d)*imag(d)
	}
	return math.Sqrt(ss / float64(len(x)))
}

// SER measures the symbol error rate between two equal-length symbol
// sequences: the fraction of positions where they disagree.
func SER(x, y []int) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: length mismatch, %d vs %d", ErrInvalidInput, len(x), len(y))
	}
	if len(x) == 0 {
		return 0, fmt.Errorf("%w: empty symbol sequences", ErrInvalidInput)
	}
	e := 0
	for i := range x {
		if x[i] != y[i] {
			e++
		}
	}
	return float64(e) / float64(len(x)), nil
}

// BER measures the bit error rate between two symbol sequences over an
// alphabet of size m, counting the flipped bits in each symbol pair's
// binary representation. m may not exceed 64; m = 2 degenerates to SER.
func BER(x, y []int, m int) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: length mismatch, %d vs %d", ErrInvalidInput, len(x), len(y))
	}
	if len(x) == 0 {
		return 0, fmt.Errorf("%w: empty symbol sequences", ErrInvalidInput)
	}
	if m < 2 {
		return 0, fmt.Errorf("%w: alphabet size must be at least 2, got %d", ErrInvalidParameter, m)
	}
	if m > maxAlphabet {
		return 0, fmt.Errorf("%w: alphabet size %d exceeds %d", ErrInvalidParameter, m, maxAlphabet)
	}
	for i := range x {
		if x[i] < 0 || x[i] >= m || y[i] < 0 || y[i] >= m {
			return 0, fmt.Errorf("%w: symbol pair (%d, %d) at %d outside [0, %d)",
				ErrInvalidInput, x[i], y[i], i, m)
		}
	}
	if m == 2 {
		return SER(x, y)
	}
	e := 0
	for i := range x {
		e += popcount[x[i]^y[i]]
	}
	return float64(e) / (float64(len(x)) * math.Log2(float64(m))), nil
}
