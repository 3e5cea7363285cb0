package comms

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func testConstellations(t *testing.T) map[string]*Constellation {
	t.Helper()
	qpsk, err := PSK(4, true)
	if err != nil {
		t.Fatal(err)
	}
	psk8, err := PSK(8, true)
	if err != nil {
		t.Fatal(err)
	}
	pam4, err := PAM(4, true, true)
	if err != nil {
		t.Fatal(err)
	}
	qam16, err := QAM(16, true)
	if err != nil {
		t.Fatal(err)
	}
	fsk4, err := FSK(4, 0)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]*Constellation{
		"ook":   OOK(),
		"pam4":  pam4,
		"bpsk":  mustPSK(t, 2),
		"qpsk":  qpsk,
		"psk8":  psk8,
		"qam16": qam16,
		"fsk4":  fsk4,
		"msk":   MSK(),
	}
}

func mustPSK(t *testing.T, m int) *Constellation {
	t.Helper()
	c, err := PSK(m, true)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// Noiseless modulate/demodulate must recover every symbol exactly.
func TestModulateDemodulate_RoundTrip(t *testing.T) {
	Seed(7)
	for name, c := range testConstellations(t) {
		data := RandomData(256, c.Size())
		x, err := Modulate(data, c)
		if err != nil {
			t.Fatalf("%s: modulate: %v", name, err)
		}
		if len(x) != len(data)*c.Dim {
			t.Fatalf("%s: signal length %d, want %d", name, len(x), len(data)*c.Dim)
		}
		got, err := Demodulate(x, c)
		if err != nil {
			t.Fatalf("%s: demodulate: %v", name, err)
		}
		for i := range data {
			if got[i] != data[i] {
				t.Fatalf("%s: symbol %d = %d, want %d", name, i, got[i], data[i])
			}
		}
	}
}

func TestModulate_SymbolOutOfRange(t *testing.T) {
	c := mustPSK(t, 4)
	if _, err := Modulate([]int{0, 4}, c); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
	if _, err := Modulate([]int{-1}, c); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestDemodulate_PartialSymbolPeriod(t *testing.T) {
	c := MSK()
	x := make([]complex128, 6) // not a multiple of Dim=4
	if _, err := Demodulate(x, c); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

// OOK detection is incoherent: a carrier phase rotation must not affect the
// decisions.
func TestDemodulate_OOKPhaseRotation(t *testing.T) {
	c := OOK()
	data := []int{0, 1, 1, 0, 1, 0, 0, 1}
	x, err := Modulate(data, c)
	if err != nil {
		t.Fatal(err)
	}
	rot := cmplx.Exp(complex(0, 1.1))
	for i := range x {
		x[i] *= rot
	}
	got, err := Demodulate(x, c)
	if err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("symbol %d = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestSoftDemodulate(t *testing.T) {
	c := mustPSK(t, 4)
	x, err := Modulate([]int{2, 0}, c)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := SoftDemodulate(x, c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || len(rows[0]) != 4 {
		t.Fatalf("metric matrix is %dx%d, want 2x4", len(rows), len(rows[0]))
	}
	if ArgMin(rows[0]) != 2 || ArgMin(rows[1]) != 0 {
		t.Errorf("soft metrics do not favor the transmitted symbols: %v", rows)
	}
	// The transmitted point has zero Euclidean distance.
	if rows[0][2] > 1e-12 {
		t.Errorf("distance to transmitted point = %g, want 0", rows[0][2])
	}
}

func TestDemodulateWith_CustomDecision(t *testing.T) {
	c := mustPSK(t, 2)
	x, err := Modulate([]int{0, 1, 0}, c)
	if err != nil {
		t.Fatal(err)
	}
	// A decision rule that always picks symbol 1, regardless of metric.
	always1 := func(metrics []float64) int { return 1 }
	got, err := DemodulateWith(x, c, nil, always1)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range got {
		if s != 1 {
			t.Errorf("symbol %d = %d, want 1", i, s)
		}
	}
}

func TestDiffEncode(t *testing.T) {
	c := mustPSK(t, 4)
	data := []int{1, 3, 0, 2, 2, 1}
	x, err := Modulate(data, c)
	if err != nil {
		t.Fatal(err)
	}
	y := DiffEncode(x)
	if len(y) != len(x)+1 {
		t.Fatalf("length = %d, want %d", len(y), len(x)+1)
	}
	if y[0] != 1 {
		t.Errorf("reference sample = %v, want 1", y[0])
	}
	// Each phase transition carries one input sample.
	for j := 0; j < len(x); j++ {
		if cmplx.Abs(y[j+1]/y[j]-x[j]) > 1e-8 {
			t.Errorf("transition %d = %v, want %v", j, y[j+1]/y[j], x[j])
		}
	}
}

func TestDiffDecode_RoundTrip(t *testing.T) {
	c := mustPSK(t, 4)
	data := []int{0, 1, 2, 3, 3, 1, 0, 2}
	x, err := Modulate(data, c)
	if err != nil {
		t.Fatal(err)
	}
	z := DiffDecode(DiffEncode(x))
	if len(z) != len(x) {
		t.Fatalf("length = %d, want %d", len(z), len(x))
	}
	for i := range x {
		if cmplx.Abs(z[i]-x[i]) > 1e-8 {
			t.Errorf("sample %d = %v, want %v", i, z[i], x[i])
		}
	}
	// The differential chain must survive an unknown carrier phase offset.
	y := DiffEncode(x)
	rot := cmplx.Exp(complex(0, math.Pi/5))
	for i := range y {
		y[i] *= rot
	}
	got, err := Demodulate(DiffDecode(y), c)
	if err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("rotated chain: symbol %d = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestDiffDecode_Empty(t *testing.T) {
	if got := DiffDecode(nil); len(got) != 0 {
		t.Errorf("DiffDecode(nil) = %v, want empty", got)
	}
	if got := DiffDecode([]complex128{1}); len(got) != 0 {
		t.Errorf("DiffDecode of one sample = %v, want empty", got)
	}
}
