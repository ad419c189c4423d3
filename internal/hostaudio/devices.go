package hostaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device summarizes one PortAudio device for listing and selection.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// ListDevices returns every PortAudio device visible on the host.
// Initialize must have been called first.
func ListDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("hostaudio: enumerate devices: %w", err)
	}
	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// inputDevice resolves deviceID to a *portaudio.DeviceInfo, treating
// DefaultDeviceID as a request for the system default input device.
func inputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultDeviceID {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("hostaudio: default input device: %w", err)
		}
		return device, nil
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("hostaudio: enumerate devices: %w", err)
	}
	if deviceID < 0 || deviceID >= len(infos) {
		return nil, fmt.Errorf("hostaudio: invalid device id %d", deviceID)
	}
	return infos[deviceID], nil
}
