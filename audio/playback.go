package audio

import (
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Player writes precomputed real signals to the default output device.
type Player struct {
	stream *portaudio.Stream
	buf    []float32
}

// NewPlayer opens the default output stream at the given sampling rate.
func NewPlayer(sampleRate float64) (*Player, error) {
	p := &Player{buf: make([]float32, framesPerBuffer)}
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, framesPerBuffer, p.buf)
	if err != nil {
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	p.stream = stream
	return p, nil
}

// Play normalizes samples to the +-1 full scale range and writes them to
// the output stream in buffer-sized chunks, padding the tail with silence.
// It blocks until the whole signal has been handed to the device.
func (p *Player) Play(samples []float64) error {
	if p.stream == nil {
		return fmt.Errorf("player is closed")
	}
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	gain := 1.0
	if peak > 0 {
		gain = 1 / peak
	}

	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	defer p.stream.Stop()

	for i := 0; i < len(samples); i += framesPerBuffer {
		for j := range p.buf {
			if i+j < len(samples) {
				p.buf[j] = float32(samples[i+j] * gain)
			} else {
				p.buf[j] = 0
			}
		}
		if err := p.stream.Write(); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

// Close closes the output stream.
func (p *Player) Close() error {
	if p.stream == nil {
		return nil
	}
	err := p.stream.Close()
	p.stream = nil
	return err
}
