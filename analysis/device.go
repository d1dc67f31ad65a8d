package analysis

import "strings"

// ComputingDevice selects the Fourier-transform backend.
type ComputingDevice int

const (
	// Cpu runs transforms inline on the calling goroutine.
	Cpu ComputingDevice = iota
	// Gpu routes transforms through an accelerator-style submission queue.
	Gpu
)

// DeviceFromCode converts an integer code to a device. The conversion is
// total: 0 is Cpu, 1 is Gpu, and any other value falls back to Gpu.
func DeviceFromCode(code int) ComputingDevice {
	switch code {
	case 0:
		return Cpu
	case 1:
		return Gpu
	default:
		return Gpu
	}
}

// DeviceFromString converts a case-insensitive name to a device. The
// conversion is total: unrecognized names fall back to Gpu.
func DeviceFromString(name string) ComputingDevice {
	switch strings.ToLower(name) {
	case "cpu":
		return Cpu
	case "gpu":
		return Gpu
	default:
		return Gpu
	}
}

func (d ComputingDevice) String() string {
	switch d {
	case Cpu:
		return "cpu"
	default:
		return "gpu"
	}
}
