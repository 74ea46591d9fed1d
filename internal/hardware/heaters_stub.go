//go:build !linux

package hardware

import (
	"errors"

	"github.com/glockwork/ControLeo2/internal/reflow"
)

// RelayBank is only available on Linux.
type RelayBank struct{}

// NewRelayBank returns an error on non-Linux platforms.
func NewRelayBank(chipName string, pins [reflow.HeaterCount]int) (*RelayBank, error) {
	return nil, errors.New("hardware: gpio not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (b *RelayBank) Set(on [reflow.HeaterCount]bool) error {
	return errors.New("hardware: gpio not supported")
}

// AllOff is not implemented on non-Linux platforms.
func (b *RelayBank) AllOff() error {
	return errors.New("hardware: gpio not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RelayBank) Close() error { return nil }
