//go:build !linux

package hardware

import (
	"errors"
	"time"
)

// GPIOBuzzer is only available on Linux.
type GPIOBuzzer struct{}

// NewGPIOBuzzer returns an error on non-Linux platforms.
func NewGPIOBuzzer(chipName string, pin int, beep time.Duration) (*GPIOBuzzer, error) {
	return nil, errors.New("hardware: gpio not supported on this platform (requires Linux)")
}

// Arm is not implemented on non-Linux platforms.
func (b *GPIOBuzzer) Arm() {}

// Close is not implemented on non-Linux platforms.
func (b *GPIOBuzzer) Close() error { return nil }
