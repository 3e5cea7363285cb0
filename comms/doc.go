// Package comms is a digital communications toolbox: symbol constellations
// (OOK, PAM, PSK, QAM, FSK, MSK), Gray-coded bit/symbol mapping, baseband
// modulation and demodulation, additive noise channels with symbol and bit
// error rate measurement, raised cosine pulse shaping filter design, and
// passband up/down conversion with matched filtering.
//
// All operations are pure functions over caller-owned slices. Constellations
// and filters are value objects computed from their parameters; nothing in
// the package holds state between calls apart from the reseedable random
// source behind RandomData and AWGN.
package comms
