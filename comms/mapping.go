package comms

import "fmt"

// GrayCode returns the Gray code map of size m: entry i is i XOR (i >> 1).
// Adjacent entries differ in exactly one bit when m is a power of two.
func GrayCode(m int) []int {
	code := make([]int, m)
	for i := range code {
		code[i] = i ^ (i >> 1)
	}
	return code
}

// InvertMap returns the inverse permutation of m, such that
// InvertMap(m)[m[i]] == i.
func InvertMap(m []int) []int {
	inv := make([]int, len(m))
	for i, v := range m {
		inv[v] = i
	}
	return inv
}

// bitsPerSymbol returns log2(m) for a power-of-two alphabet size.
func bitsPerSymbol(m int) (int, error) {
	if m < 2 || m&(m-1) != 0 {
		return 0, fmt.Errorf("%w: alphabet size must be a power of 2, got %d", ErrInvalidParameter, m)
	}
	k := 0
	for v := m; v > 1; v >>= 1 {
		k++
	}
	return k, nil
}

// BitsToSymbols packs a bit stream into symbols for an alphabet of size m.
// Each symbol consumes log2(m) bits, most significant first. The bit count
// must be an exact multiple of log2(m); a partial trailing group is an
// error, never silently truncated.
func BitsToSymbols(bits []int, m int) ([]int, error) {
	k, err := bitsPerSymbol(m)
	if err != nil {
		return nil, err
	}
	if len(bits)%k != 0 {
		return nil, fmt.Errorf("%w: bit count %d is not a multiple of %d", ErrInvalidInput, len(bits), k)
	}
	syms := make([]int, len(bits)/k)
	for i, b := range bits {
		if b != 0 && b != 1 {
			return nil, fmt.Errorf("%w: bit %d is %d, want 0 or 1", ErrInvalidInput, i, b)
		}
		syms[i/k] = syms[i/k]<<1 | b
	}
	return syms, nil
}

// SymbolsToBits expands symbols into a bit stream, log2(m) bits per symbol,
// most significant first.
func SymbolsToBits(syms []int, m int) ([]int, error) {
	k, err := bitsPerSymbol(m)
	if err != nil {
		return nil, err
	}
	bits := make([]int, 0, len(syms)*k)
	for i, s := range syms {
		if s < 0 || s >= m {
			return nil, fmt.Errorf("%w: symbol %d is %d, outside [0, %d)", ErrInvalidInput, i, s, m)
		}
		for j := k - 1; j >= 0; j-- {
			bits = append(bits, (s>>j)&1)
		}
	}
	return bits, nil
}
