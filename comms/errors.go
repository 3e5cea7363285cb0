package comms

import "errors"

var (
	// ErrInvalidParameter reports a structurally invalid argument, such as an
	// alphabet size that is not a power of two where one is required, or a
	// roll-off factor outside [0, 1].
	ErrInvalidParameter = errors.New("comms: invalid parameter")

	// ErrInvalidInput reports data outside the declared domain, such as bit
	// values other than 0/1, out-of-range symbols, or mismatched lengths.
	ErrInvalidInput = errors.New("comms: invalid input")
)
