//go:build !linux

package hardware

import "errors"

// MAX31855 is only available on Linux.
type MAX31855 struct{}

// NewMAX31855 returns an error on non-Linux platforms.
func NewMAX31855(chipName string, csPin, sckPin, soPin int) (*MAX31855, error) {
	return nil, errors.New("hardware: gpio not supported on this platform (requires Linux)")
}

// ReadTemperature is not implemented on non-Linux platforms.
func (m *MAX31855) ReadTemperature() (float64, error) {
	return 0, errors.New("hardware: gpio not supported")
}

// Close is not implemented on non-Linux platforms.
func (m *MAX31855) Close() error { return nil }
