package comms

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestProperty_GrayInvertIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := 1 << rapid.IntRange(1, 10).Draw(t, "log2m")
		code := GrayCode(m)
		inv := InvertMap(code)
		for i := 0; i < m; i++ {
			require.Equal(t, i, inv[code[i]])
			require.Equal(t, i, code[inv[i]])
		}
	})
}

func TestProperty_BitSymbolRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(1, 6).Draw(t, "log2m")
		m := 1 << k
		nsym := rapid.IntRange(0, 64).Draw(t, "nsym")
		bits := rapid.SliceOfN(rapid.IntRange(0, 1), nsym*k, nsym*k).Draw(t, "bits")

		syms, err := BitsToSymbols(bits, m)
		require.NoError(t, err)
		require.Len(t, syms, nsym)

		back, err := SymbolsToBits(syms, m)
		require.NoError(t, err)
		require.Len(t, back, len(bits))
		for i := range bits {
			require.Equal(t, bits[i], back[i], "bit %d", i)
		}
	})
}

func TestProperty_DiffCodingRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Differential coding is a phase recurrence; unit-magnitude inputs
		// keep the accumulated reference on the unit circle.
		phases := rapid.SliceOfN(rapid.Float64Range(-math.Pi, math.Pi), 1, 128).Draw(t, "phases")
		x := make([]complex128, len(phases))
		for i, p := range phases {
			x[i] = cmplx.Exp(complex(0, p))
		}
		z := DiffDecode(DiffEncode(x))
		require.Len(t, z, len(x))
		for i := range x {
			require.InDelta(t, 0, cmplx.Abs(z[i]-x[i]), 1e-9, "sample %d", i)
		}
	})
}

func TestProperty_ModulateDemodulateRoundTrip(t *testing.T) {
	qpsk, err := PSK(4, true)
	require.NoError(t, err)
	psk8, err := PSK(8, true)
	require.NoError(t, err)
	pam4, err := PAM(4, true, true)
	require.NoError(t, err)
	qam16, err := QAM(16, true)
	require.NoError(t, err)
	fsk2, err := FSK(2, 0)
	require.NoError(t, err)
	consts := []*Constellation{OOK(), pam4, qpsk, psk8, qam16, fsk2, MSK()}

	rapid.Check(t, func(t *rapid.T) {
		c := consts[rapid.IntRange(0, len(consts)-1).Draw(t, "const")]
		data := rapid.SliceOfN(rapid.IntRange(0, c.Size()-1), 0, 256).Draw(t, "data")

		x, err := Modulate(data, c)
		require.NoError(t, err)
		got, err := Demodulate(x, c)
		require.NoError(t, err)
		require.Equal(t, len(data), len(got))
		for i := range data {
			require.Equal(t, data[i], got[i], "symbol %d", i)
		}
	})
}

func TestProperty_PulseFIRNormAndSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		beta := rapid.Float64Range(0, 1).Draw(t, "beta")
		sps := rapid.IntRange(2, 8).Draw(t, "sps")
		span := rapid.IntRange(4, 16).Draw(t, "span")

		for _, design := range []func(float64, int, int) ([]float64, error){
			RaisedCosineFIR, RootRaisedCosineFIR,
		} {
			b, err := design(beta, sps, span)
			require.NoError(t, err)

			var energy float64
			for _, v := range b {
				require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
				energy += v * v
			}
			require.InDelta(t, 1, energy, 1e-9)

			for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
				require.InDelta(t, b[i], b[j], 1e-9)
			}
		}
	})
}
