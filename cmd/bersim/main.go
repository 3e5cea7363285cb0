// bersim sweeps SNR over an AWGN channel and reports symbol and bit error
// rates for a chosen modulation scheme. With a carrier configured, scalar
// schemes run through the full passband chain: root raised cosine pulse
// shaping, upconversion, noise, downconversion and matched filtering.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ryswick/gocomms/audio"
	"github.com/ryswick/gocomms/comms"
	"github.com/ryswick/gocomms/iqplot"
)

type config struct {
	Scheme       string  `yaml:"scheme"`
	Symbols      int     `yaml:"symbols"`
	SNRStart     float64 `yaml:"snr_start"`
	SNRStop      float64 `yaml:"snr_stop"`
	SNRStep      float64 `yaml:"snr_step"`
	Beta         float64 `yaml:"beta"`
	SPS          int     `yaml:"sps"`
	Carrier      float64 `yaml:"carrier"`
	SampleRate   float64 `yaml:"sample_rate"`
	Differential bool    `yaml:"differential"`
}

func defaultConfig() config {
	return config{
		Scheme:     "qpsk",
		Symbols:    10000,
		SNRStart:   0,
		SNRStop:    20,
		SNRStep:    2,
		Beta:       0.25,
		SPS:        6,
		Carrier:    0,
		SampleRate: 108000,
	}
}

func constellationFor(scheme string) (*comms.Constellation, error) {
	switch strings.ToLower(scheme) {
	case "ook":
		return comms.OOK(), nil
	case "pam4":
		return comms.PAM(4, true, true)
	case "bpsk":
		return comms.PSK(2, true)
	case "qpsk":
		return comms.PSK(4, true)
	case "psk8":
		return comms.PSK(8, true)
	case "qam16":
		return comms.QAM(16, true)
	case "qam64":
		return comms.QAM(64, true)
	case "fsk2":
		return comms.FSK(2, 0)
	case "fsk4":
		return comms.FSK(4, 0)
	case "msk":
		return comms.MSK(), nil
	default:
		return nil, fmt.Errorf("unknown scheme %q", scheme)
	}
}

type trialResult struct {
	ser, ber float64
	received []complex128
	passband []float64
}

func runTrial(cfg config, c *comms.Constellation, snrDB float64) (trialResult, error) {
	var res trialResult
	m := c.Size()
	data := comms.RandomData(cfg.Symbols, m)
	x, err := comms.Modulate(data, c)
	if err != nil {
		return res, err
	}
	if cfg.Differential {
		if c.Dim != 1 {
			return res, fmt.Errorf("differential coding needs a scalar constellation")
		}
		x = comms.DiffEncode(x)
	}

	var y []complex128
	if c.Dim == 1 && cfg.Carrier > 0 {
		g, err := comms.RootRaisedCosineFIR(cfg.Beta, cfg.SPS, 0)
		if err != nil {
			return res, err
		}
		pb, err := comms.Upconvert(x, cfg.SPS, cfg.Carrier, cfg.SampleRate, g)
		if err != nil {
			return res, err
		}
		res.passband = pb
		pb = comms.AWGNReal(pb, snrDB, true)
		y, err = comms.Downconvert(pb, cfg.SPS, cfg.Carrier, cfg.SampleRate, g)
		if err != nil {
			return res, err
		}
		span := (len(g) - 1) / cfg.SPS // matched-pair group delay in symbols
		if len(y) < span+len(x) {
			return res, fmt.Errorf("recovered baseband too short: %d samples", len(y))
		}
		y = y[span : span+len(x)]
	} else if c.Kind == comms.KindReal {
		// Real alphabets carry no quadrature component, so noise goes on
		// the real rail only; complex noise would cost them 3 dB.
		re := make([]float64, len(x))
		for i, v := range x {
			re[i] = real(v)
		}
		re = comms.AWGNReal(re, snrDB, false)
		y = make([]complex128, len(re))
		for i, v := range re {
			y[i] = complex(v, 0)
		}
	} else {
		y = comms.AWGN(x, snrDB, false)
	}

	if cfg.Differential {
		y = comms.DiffDecode(y)
	}
	res.received = y

	got, err := comms.Demodulate(y, c)
	if err != nil {
		return res, err
	}
	if res.ser, err = comms.SER(data, got); err != nil {
		return res, err
	}
	if res.ber, err = comms.BER(data, got, m); err != nil {
		return res, err
	}
	return res, nil
}

func main() {
	cfg := defaultConfig()

	configPath := pflag.String("config", "", "YAML sweep configuration file")
	scheme := pflag.String("scheme", cfg.Scheme, "modulation scheme (ook pam4 bpsk qpsk psk8 qam16 qam64 fsk2 fsk4 msk)")
	symbols := pflag.Int("symbols", cfg.Symbols, "symbols per trial")
	snrStart := pflag.Float64("snr-start", cfg.SNRStart, "first SNR in dB")
	snrStop := pflag.Float64("snr-stop", cfg.SNRStop, "last SNR in dB")
	snrStep := pflag.Float64("snr-step", cfg.SNRStep, "SNR step in dB")
	beta := pflag.Float64("beta", cfg.Beta, "pulse shaping roll-off")
	sps := pflag.Int("sps", cfg.SPS, "passband samples per symbol")
	carrier := pflag.Float64("fc", cfg.Carrier, "carrier frequency in Hz (0 simulates at baseband)")
	sampleRate := pflag.Float64("fs", cfg.SampleRate, "passband sampling rate in Hz")
	differential := pflag.Bool("diff", cfg.Differential, "differentially encode and decode")
	seed := pflag.Uint64("seed", 0, "random seed (0 keeps the time-based default)")
	plotAddr := pflag.String("plot", "", "serve a live constellation plot on this address")
	play := pflag.Bool("play", false, "play the final passband signal through the default audio device")
	listDevices := pflag.Bool("list-devices", false, "list audio devices and exit")
	pflag.Parse()

	if *listDevices {
		if err := audio.Init(); err != nil {
			log.Fatal("portaudio init failed", "err", err)
		}
		defer audio.Terminate()
		if err := audio.PrintDevices(); err != nil {
			log.Fatal("listing devices failed", "err", err)
		}
		return
	}

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatal("reading config failed", "err", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatal("parsing config failed", "err", err)
		}
	}
	// Explicit flags win over the config file.
	if pflag.CommandLine.Changed("scheme") {
		cfg.Scheme = *scheme
	}
	if pflag.CommandLine.Changed("symbols") {
		cfg.Symbols = *symbols
	}
	if pflag.CommandLine.Changed("snr-start") {
		cfg.SNRStart = *snrStart
	}
	if pflag.CommandLine.Changed("snr-stop") {
		cfg.SNRStop = *snrStop
	}
	if pflag.CommandLine.Changed("snr-step") {
		cfg.SNRStep = *snrStep
	}
	if pflag.CommandLine.Changed("beta") {
		cfg.Beta = *beta
	}
	if pflag.CommandLine.Changed("sps") {
		cfg.SPS = *sps
	}
	if pflag.CommandLine.Changed("fc") {
		cfg.Carrier = *carrier
	}
	if pflag.CommandLine.Changed("fs") {
		cfg.SampleRate = *sampleRate
	}
	if pflag.CommandLine.Changed("diff") {
		cfg.Differential = *differential
	}

	if *seed != 0 {
		comms.Seed(*seed)
	}
	if cfg.SNRStep <= 0 {
		log.Fatal("snr-step must be positive", "step", cfg.SNRStep)
	}

	c, err := constellationFor(cfg.Scheme)
	if err != nil {
		log.Fatal("bad scheme", "err", err)
	}

	var plot *iqplot.Server
	if *plotAddr != "" {
		plot = iqplot.NewServer(*plotAddr)
		go func() {
			if err := plot.Start(); err != nil {
				log.Error("plot server stopped", "err", err)
			}
		}()
		if c.Dim == 1 {
			if err := iqplot.Plot(plot, c.Points, "x", true); err != nil {
				log.Warn("plotting reference constellation failed", "err", err)
			}
		}
	}

	log.Info("starting sweep",
		"scheme", cfg.Scheme, "symbols", cfg.Symbols,
		"snr", fmt.Sprintf("%g..%g step %g dB", cfg.SNRStart, cfg.SNRStop, cfg.SNRStep),
		"carrier", cfg.Carrier)

	var last trialResult
	for snr := cfg.SNRStart; snr <= cfg.SNRStop+1e-9; snr += cfg.SNRStep {
		res, err := runTrial(cfg, c, snr)
		if err != nil {
			log.Fatal("trial failed", "snr", snr, "err", err)
		}
		log.Info("trial done", "snr", snr, "ser", res.ser, "ber", res.ber)
		if plot != nil && c.Dim == 1 {
			if err := plot.Render(res.received, ".", nil); err != nil {
				log.Warn("plotting received points failed", "err", err)
			}
		}
		last = res
	}

	if *play {
		if last.passband == nil {
			log.Fatal("nothing to play, set --fc for a passband simulation")
		}
		if err := audio.Init(); err != nil {
			log.Fatal("portaudio init failed", "err", err)
		}
		defer audio.Terminate()
		player, err := audio.NewPlayer(cfg.SampleRate)
		if err != nil {
			log.Fatal("opening audio output failed", "err", err)
		}
		defer player.Close()
		log.Info("playing passband signal", "samples", len(last.passband), "rate", cfg.SampleRate)
		if err := player.Play(last.passband); err != nil {
			log.Fatal("playback failed", "err", err)
		}
	}
}
