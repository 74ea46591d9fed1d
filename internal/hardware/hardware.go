// Package hardware drives the oven peripherals: the MAX31855 thermocouple
// amplifier, the heater relays and the alarm buzzer. Real implementations
// use the Linux GPIO character device; a thermal simulator and test fakes
// stand in everywhere else.
package hardware

import (
	"fmt"

	"github.com/glockwork/ControLeo2/internal/reflow"
)

// HeaterBank switches the heater relays.
type HeaterBank interface {
	// Set drives every heater relay to the given state.
	Set(on [reflow.HeaterCount]bool) error

	// AllOff forces every relay off.
	AllOff() error

	// Close forces the relays off and releases the hardware.
	Close() error
}

// Buzzer sounds the audible alarm. Arm starts a beep; the implementation
// decides when it stops.
type Buzzer interface {
	Arm()
}

// FaultKind identifies a thermocouple wiring fault.
type FaultKind int

const (
	FaultOpenCircuit FaultKind = iota
	FaultShortToGround
	FaultShortToSupply
)

func (k FaultKind) String() string {
	switch k {
	case FaultShortToGround:
		return "short to ground"
	case FaultShortToSupply:
		return "short to supply"
	default:
		return "open circuit"
	}
}

// FaultError reports a thermocouple wiring fault.
type FaultError struct {
	Kind FaultKind
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("thermocouple %s", e.Kind)
}
