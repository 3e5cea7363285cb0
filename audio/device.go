// Package audio plays generated passband signals through the sound card.
// It is the acoustic transmit path of the toolbox: a real passband waveform
// from comms.Upconvert can be sent straight to the default output device.
package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Init initializes PortAudio. Call once before any other function in this
// package; pair with Terminate.
func Init() error {
	return portaudio.Initialize()
}

// Terminate releases PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// DeviceInfo describes one audio device.
type DeviceInfo struct {
	Name              string
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListDevices returns all available audio devices.
func ListDevices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var defaultName string
	if d, err := portaudio.DefaultOutputDevice(); err == nil {
		defaultName = d.Name
	}

	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			Name:              d.Name,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			IsDefault:         d.Name == defaultName,
		})
	}
	return result, nil
}

// HasOutputDevice returns true if a default output device is available.
func HasOutputDevice() bool {
	_, err := portaudio.DefaultOutputDevice()
	return err == nil
}

// PrintDevices prints all available audio devices.
func PrintDevices() error {
	devices, err := ListDevices()
	if err != nil {
		return err
	}
	fmt.Println("Audio devices:")
	if len(devices) == 0 {
		fmt.Println("  (no devices found)")
		return nil
	}
	for i, d := range devices {
		defaultStr := ""
		if d.IsDefault {
			defaultStr = " [DEFAULT]"
		}
		fmt.Printf("  %d: %s (out:%d rate:%.0f)%s\n",
			i, d.Name, d.MaxOutputChannels, d.DefaultSampleRate, defaultStr)
	}
	if !HasOutputDevice() {
		fmt.Println("\n  WARNING: no default output device, playback unavailable.")
	}
	return nil
}
